package burs

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/burgo"
)

// operatorKey identifies an Operator by the (nodeType, arity) pair its
// matchers agree on. Go's native comparable-interface{} semantics make
// this safe to use directly as a map key, so long as burgo.NodeType
// values are themselves comparable (strings, ints, small structs, never
// slices or maps), which is a precondition on grammar authors, not
// something this package can check.
type operatorKey struct {
	nodeType burgo.NodeType
	arity    int
}

// ProductionTable is the central BURS algorithm: clients register
// pattern matchers and closures, call GenerateStates once, and from then
// on the table is frozen and safe to share across Reducers without
// synchronization (spec.md §5).
type ProductionTable struct {
	operators map[operatorKey]*Operator

	// opsByType indexes the same operators by nodeType alone, so that a
	// node with k actual children can find a variadic operator that was
	// registered with fewer declared positions (arity <= k).
	opsByType map[burgo.NodeType][]*Operator

	// states is the canonical, deduplicated set of generated states,
	// keyed by State.dedupKey(). It is the single source of truth for
	// "is this state new" during GenerateStates.
	states map[string]*State

	// byNumber indexes the same states by their assigned number, for
	// Reducer's state lookups.
	byNumber map[int]*State
	nextSeq  int
	nextNum  int

	closureDefs []*Closure

	generated bool
}

// NewProductionTable creates an empty, mutable table.
func NewProductionTable() *ProductionTable {
	return &ProductionTable{
		operators: make(map[operatorKey]*Operator),
		opsByType: make(map[burgo.NodeType][]*Operator),
		states:    make(map[string]*State),
		byNumber:  make(map[int]*State),
		nextNum:   1, // state numbering starts at 1 (spec.md §9)
	}
}

func (t *ProductionTable) operatorFor(nodeType burgo.NodeType, arity int, isVarArgs bool) *Operator {
	key := operatorKey{nodeType: nodeType, arity: arity}
	op, ok := t.operators[key]
	if !ok {
		op = newOperator(nodeType, arity, isVarArgs)
		t.operators[key] = op
		t.opsByType[nodeType] = append(t.opsByType[nodeType], op)
	}
	return op
}

// GetOperatorForArity finds the Operator that should handle a node of
// the given nodeType with k actual children: an exact-arity operator if
// one was registered, else a variadic operator whose declared arity is
// at most k (label()'s lookup of (T, k), generalized to variadic
// matchers that declare fewer positions than a call can carry).
func (t *ProductionTable) GetOperatorForArity(nodeType burgo.NodeType, k int) (*Operator, bool) {
	if op, ok := t.operators[operatorKey{nodeType: nodeType, arity: k}]; ok {
		return op, true
	}
	for _, op := range t.opsByType[nodeType] {
		if op.isVarArgs && op.arity <= k {
			return op, true
		}
	}
	return nil, false
}

// AddPatternMatch registers a fixed-arity pattern matcher: target ←
// nodeType(childTypes…), with the given own cost and optional semantic
// hooks. pre and post may be nil.
func (t *ProductionTable) AddPatternMatch(target burgo.Nonterminal, nodeType burgo.NodeType, cost burgo.Cost, predicate, pre, post *burgo.Callback, childTypes ...burgo.Nonterminal) *PatternMatcher {
	if t.generated {
		panic("burs: AddPatternMatch after GenerateStates")
	}
	p := newPatternMatcher(t.nextSeq, target, nodeType, cost, false, predicate, pre, post, childTypes)
	t.nextSeq++
	op := t.operatorFor(nodeType, len(childTypes), false)
	op.addMatcher(p)
	return p
}

// AddVarArgsPatternMatch registers a variadic pattern matcher whose last
// childType repeats for every operand beyond len(childTypes)-1.
func (t *ProductionTable) AddVarArgsPatternMatch(target burgo.Nonterminal, nodeType burgo.NodeType, cost burgo.Cost, predicate, pre, post *burgo.Callback, childTypes ...burgo.Nonterminal) *PatternMatcher {
	if t.generated {
		panic("burs: AddVarArgsPatternMatch after GenerateStates")
	}
	if len(childTypes) == 0 {
		panic("burs: AddVarArgsPatternMatch requires at least one childType to repeat")
	}
	p := newPatternMatcher(t.nextSeq, target, nodeType, cost, true, predicate, pre, post, childTypes)
	t.nextSeq++
	op := t.operatorFor(nodeType, len(childTypes), true)
	op.isVarArgs = true
	op.addMatcher(p)
	return p
}

// AddClosure registers a unit production target ← source. Closure cycles
// are rejected immediately with ClosureCycleError, per spec.md §7 (a
// grammar-load-time validation, not a generation-time one).
func (t *ProductionTable) AddClosure(target, source burgo.Nonterminal, cost burgo.Cost, pre, post *burgo.Callback) (*Closure, error) {
	if t.generated {
		panic("burs: AddClosure after GenerateStates")
	}
	if err := t.checkAcyclic(target, source); err != nil {
		return nil, err
	}
	c := newClosure(t.nextSeq, target, source, cost, pre, post)
	t.nextSeq++
	t.closureDefs = append(t.closureDefs, c)
	return c, nil
}

// checkAcyclic walks every closure chain reachable from source looking
// for target; if found, adding target<-source would close a cycle.
func (t *ProductionTable) checkAcyclic(target, source burgo.Nonterminal) error {
	visited := map[burgo.Nonterminal]bool{}
	stack := []burgo.Nonterminal{source}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return &ClosureCycleError{Nonterminal: target}
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, c := range t.closureDefs {
			if c.target == cur {
				stack = append(stack, c.source)
			}
		}
	}
	return nil
}

func (t *ProductionTable) closureSourceOf(n burgo.Nonterminal) (burgo.Nonterminal, bool) {
	for _, c := range t.closureDefs {
		if c.target == n {
			return c.source, true
		}
	}
	return nil, false
}

// CanProduce reports whether the state numbered stateNumber can produce goal,
// without performing any reduction, a convenience predicate over the
// generated tables (spec.md §6).
func (t *ProductionTable) CanProduce(stateNumber int, goal burgo.Nonterminal) bool {
	s, ok := t.byNumber[stateNumber]
	if !ok {
		return false
	}
	_, err := s.getProduction(goal)
	return err == nil
}

// GetState returns the canonical state with the given number.
func (t *ProductionTable) GetState(number int) (*State, bool) {
	s, ok := t.byNumber[number]
	return s, ok
}

// GetOperator returns the Operator registered for (nodeType, arity), if
// any.
func (t *ProductionTable) GetOperator(nodeType burgo.NodeType, arity int) (*Operator, bool) {
	op, ok := t.operators[operatorKey{nodeType: nodeType, arity: arity}]
	return op, ok
}

// closure applies every registered closure to s until no further closure
// is accepted, then freezes s. Restricting acceptance to nonterminals
// that are currently infinity (State.addClosure already enforces the
// "never displace a pattern" half of this) both keeps the computation
// terminating and forbids a closure from ever winning over a pattern,
// spec.md §9(iii).
func (t *ProductionTable) closure(s *State) {
	for {
		changed := false
		for _, c := range t.closureDefs {
			if s.getCost(c.target) < burgo.Infinity {
				continue
			}
			tracer().Debugf("closure: attempting %v<=%v on candidate state for %v", c.target, c.source, s.NodeType())
			if burgo.AddCost(s.getCost(c.source), c.ownCost) >= burgo.Infinity {
				continue
			}
			if s.addClosure(c) {
				tracer().Debugf("closure: recorded %v<=%v at cost %d", c.target, c.source, s.getCost(c.target))
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	s.finish()
}

// dedup returns the canonical state for candidate: either candidate
// itself, newly numbered and inserted, or a pre-existing state with the
// same (nodeType, patterns) key.
func (t *ProductionTable) dedup(candidate *State) *State {
	key := candidate.dedupKey()
	if existing, ok := t.states[key]; ok {
		tracer().Debugf("dedup(%v): candidate collapses onto existing state %d", candidate.NodeType(), existing.Number())
		return existing
	}
	candidate.number = t.nextNum
	t.nextNum++
	t.states[key] = candidate
	t.byNumber[candidate.number] = candidate
	tracer().Debugf("dedup(%v): new canonical state %d", candidate.NodeType(), candidate.number)
	return candidate
}

// orderedOperators returns every registered Operator sorted by
// (nodeType, arity) string representation. Go map iteration order is
// randomized; sorting here makes the order in which operators are visited
// deterministic. Representers within a dimension are still enumerated in
// map order (Operator.RepresentersAt), so two tables built from the same
// productions agree on the generated state set and transitions, but not
// necessarily on state numbering.
func (t *ProductionTable) orderedOperators() []*Operator {
	keys := make([]operatorKey, 0, len(t.operators))
	for k := range t.operators {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		si, sj := fmt.Sprintf("%v", keys[i].nodeType), fmt.Sprintf("%v", keys[j].nodeType)
		if si != sj {
			return si < sj
		}
		return keys[i].arity < keys[j].arity
	})
	ops := make([]*Operator, len(keys))
	for i, k := range keys {
		ops[i] = t.operators[k]
	}
	return ops
}

// GenerateStates runs the worklist-driven fixed-point computation
// described in spec.md §4.6. It is idempotent: a second call is a no-op.
func (t *ProductionTable) GenerateStates() error {
	if t.generated {
		return nil
	}
	worklist := arraylist.New()
	ops := t.orderedOperators()
	t.generateLeafStates(ops, worklist)
	for !worklist.Empty() {
		v, _ := worklist.Get(0)
		worklist.Remove(0)
		s := v.(*State)
		tracer().Debugf("--- dequeued state %d (nodeType=%v), worklist size=%d -----", s.Number(), s.NodeType(), worklist.Size())
		for _, op := range ops {
			if op.arity == 0 {
				continue
			}
			for dim := 0; dim < op.arity; dim++ {
				t.projectAndPermute(op, dim, s, worklist)
			}
		}
	}
	t.generated = true
	tracer().Infof("burs: generated %d states over %d operators", len(t.states), len(t.operators))
	return nil
}

// generateLeafStates seeds one candidate State per operator of arity 0,
// applies closure, dedups, and records it as the operator's leaf state.
func (t *ProductionTable) generateLeafStates(ops []*Operator, worklist *arraylist.List) {
	tracer().Debugf("burs: seeding leaf states over %d operators", len(ops))
	for _, op := range ops {
		if op.arity != 0 {
			continue
		}
		cand := newState(op.nodeType)
		for _, m := range op.matchers {
			if m.ownCost < cand.getCost(m.target) {
				cand.setPatternProduction(m, m.ownCost)
			}
		}
		if cand.IsEmpty() {
			continue
		}
		t.closure(cand)
		result := t.dedup(cand)
		op.leafState = result
		op.addTransition(nil, result)
		tracer().Debugf("leaf(%v) -> state %d (new=%v)", op.nodeType, result.Number(), result == cand)
		if result == cand {
			worklist.Add(result)
		}
	}
}

// projectAndPermute implements one (op, dim) step of the main loop: it
// projects s onto (op, dim); if that yields a RepresenterState op hasn't
// seen at dim before, it permutes every tuple that fixes dim to the new
// pivot and ranges every other dimension over its known representers,
// building and registering a candidate result state for each.
func (t *ProductionTable) projectAndPermute(op *Operator, dim int, s *State, worklist *arraylist.List) {
	before := len(op.reps[dim])
	pivot := op.projectAt(dim, s)
	if len(op.reps[dim]) == before {
		// pivot was already known at this dimension: no new information.
		tracer().Debugf("project(%v,dim=%d,state=%d) -> known representer, skipping", op.nodeType, dim, s.Number())
		return
	}
	tracer().Debugf("project(%v,dim=%d,state=%d) -> new representer %s", op.nodeType, dim, s.Number(), pivot.Key())
	ranges := make([][]*RepresenterState, op.arity)
	for i := 0; i < op.arity; i++ {
		if i == dim {
			ranges[i] = []*RepresenterState{pivot}
			continue
		}
		ranges[i] = op.RepresentersAt(i)
	}
	for _, i := range ranges {
		if len(i) == 0 {
			tracer().Debugf("permute(%v,dim=%d) deferred: some other dimension has no known representer yet", op.nodeType, dim)
			return
		}
	}
	t.permute(op, ranges, make([]*RepresenterState, op.arity), 0, worklist)
}

// permute is the recursive cross-product enumeration over ranges; tuple
// is filled in left to right and evaluated once every slot is set.
func (t *ProductionTable) permute(op *Operator, ranges [][]*RepresenterState, tuple []*RepresenterState, i int, worklist *arraylist.List) {
	if i == len(ranges) {
		tracer().Debugf("permute(%v) evaluating tuple %v", op.nodeType, tuple)
		t.evaluate(op, tuple, worklist)
		return
	}
	for _, r := range ranges[i] {
		tuple[i] = r
		t.permute(op, ranges, tuple, i+1, worklist)
	}
}

// evaluate builds the candidate result state for one child tuple: every
// matcher of op is tried, its cost computed as its own cost plus the sum
// of the tuple's per-position costs for that matcher's required
// nonterminals, and installed if it beats the candidate's current cost
// for the matcher's target.
func (t *ProductionTable) evaluate(op *Operator, tuple []*RepresenterState, worklist *arraylist.List) {
	cand := newState(op.nodeType)
	for _, m := range op.matchers {
		cost := m.ownCost
		ok := true
		for j := 0; j < m.Size(); j++ {
			n := m.GetNonterminal(j)
			c := tuple[minInt2(j, len(tuple)-1)].CostOf(n)
			cost = burgo.AddCost(cost, c)
			if cost >= burgo.Infinity {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if cost < cand.getCost(m.target) {
			cand.setPatternProduction(m, cost)
		}
	}
	if cand.IsEmpty() {
		tracer().Debugf("evaluate(%v): no matcher fired for tuple %v", op.nodeType, tuple)
		return
	}
	t.closure(cand)
	result := t.dedup(cand)
	op.addTransition(tuple, result)
	tracer().Debugf("evaluate(%v): tuple %v -> state %d (new=%v)", op.nodeType, tuple, result.Number(), result == cand)
	if result == cand {
		worklist.Add(result)
	}
}

func minInt2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (t *ProductionTable) String() string {
	return fmt.Sprintf("ProductionTable(operators=%d,states=%d,generated=%v)", len(t.operators), len(t.states), t.generated)
}
