package burs

import (
	"testing"

	"github.com/npillmayer/burgo"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// node is a minimal BurgInput for building test trees by hand.
type node struct {
	nodeType burgo.NodeType
	children []*node
	state    int
}

func leaf(nodeType burgo.NodeType) *node { return &node{nodeType: nodeType} }

func tree(nodeType burgo.NodeType, children ...*node) *node {
	return &node{nodeType: nodeType, children: children}
}

func (n *node) GetNodeType() burgo.NodeType       { return n.nodeType }
func (n *node) GetSubtreeCount() int              { return len(n.children) }
func (n *node) GetSubtree(i int) BurgInput        { return n.children[i] }
func (n *node) GetStateNumber() int               { return n.state }
func (n *node) SetStateNumber(s int)               { n.state = s }

var _ BurgInput = (*node)(nil)

// --- S1: minimal arithmetic grammar -------------------------------------

func arithmeticTable(t *testing.T) *ProductionTable {
	table := NewProductionTable()
	table.AddPatternMatch("Reg", "CONST", 1, nil, nil, nil)
	table.AddPatternMatch("Reg", "PLUS", 1, nil, nil, nil, "Reg", "Reg")
	if _, err := table.AddClosure("Addr", "Reg", 0, nil, nil); err != nil {
		t.Fatalf("AddClosure: %v", err)
	}
	if err := table.GenerateStates(); err != nil {
		t.Fatalf("GenerateStates: %v", err)
	}
	return table
}

func TestS1MinimalArithmeticGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.burs")
	defer teardown()

	table := arithmeticTable(t)
	if len(table.states) != 3 {
		t.Fatalf("expected 3 generated states, got %d: %v", len(table.states), table.states)
	}

	input := tree("PLUS", leaf("CONST"), leaf("CONST"))
	r := NewReducer(table)
	r.Label(input)
	if input.state == stateSentinel {
		t.Fatalf("root node was not labeled")
	}
	s, _ := table.GetState(input.state)
	if got := s.getCost("Reg"); got != 3 {
		t.Errorf("expected cost 3 for Reg, got %d", got)
	}
	if got := s.getCost("Addr"); got != 3 {
		t.Errorf("expected cost 3 for Addr (via closure), got %d", got)
	}

	result, err := r.Reduce(input, "Reg", nil)
	if err != nil {
		t.Fatalf("Reduce(Reg): %v", err)
	}
	_ = result

	result, err = r.Reduce(input, "Addr", nil)
	if err != nil {
		t.Fatalf("Reduce(Addr): %v", err)
	}
	_ = result
}

// --- S2: closure chain ---------------------------------------------------

func TestS2ClosureChain(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.burs")
	defer teardown()

	table := NewProductionTable()
	table.AddPatternMatch("A", "X", 0, nil, nil, nil)
	if _, err := table.AddClosure("B", "A", 1, nil, nil); err != nil {
		t.Fatalf("AddClosure B<-A: %v", err)
	}
	if _, err := table.AddClosure("C", "B", 1, nil, nil); err != nil {
		t.Fatalf("AddClosure C<-B: %v", err)
	}
	if err := table.GenerateStates(); err != nil {
		t.Fatalf("GenerateStates: %v", err)
	}

	op, ok := table.GetOperator("X", 0)
	if !ok {
		t.Fatalf("no operator for leaf X")
	}
	s := op.leafState
	if got := s.getCost("A"); got != 0 {
		t.Errorf("getCost(A) = %d, want 0", got)
	}
	if got := s.getCost("B"); got != 1 {
		t.Errorf("getCost(B) = %d, want 1", got)
	}
	if got := s.getCost("C"); got != 2 {
		t.Errorf("getCost(C) = %d, want 2", got)
	}

	prod, err := s.getProduction("C")
	if err != nil {
		t.Fatalf("getProduction(C): %v", err)
	}
	if _, ok := prod.(*Closure); !ok {
		t.Fatalf("getProduction(C) = %T, want *Closure", prod)
	}

	// reduce and verify postCallback order: X, then B, then C.
	var order []string
	post := func(name string) *burgo.Callback {
		return burgo.NewCallback(name, func(visitor interface{}, n BurgInput, childResults ...interface{}) (interface{}, error) {
			order = append(order, name)
			return name, nil
		})
	}
	table2 := NewProductionTable()
	table2.AddPatternMatch("A", "X", 0, nil, nil, post("X"))
	if _, err := table2.AddClosure("B", "A", 1, nil, post("B")); err != nil {
		t.Fatalf("%v", err)
	}
	if _, err := table2.AddClosure("C", "B", 1, nil, post("C")); err != nil {
		t.Fatalf("%v", err)
	}
	if err := table2.GenerateStates(); err != nil {
		t.Fatalf("%v", err)
	}
	input := leaf("X")
	r := NewReducer(table2)
	r.Label(input)
	if _, err := r.Reduce(input, "C", nil); err != nil {
		t.Fatalf("Reduce(C): %v", err)
	}
	want := []string{"X", "B", "C"}
	if len(order) != len(want) {
		t.Fatalf("callback order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("callback order = %v, want %v", order, want)
		}
	}
}

// --- S3: cost tie -----------------------------------------------------
//
// spec.md's prose calls this "the one recorded LAST wins" but immediately
// qualifies it with "(strict < comparison means the first-set remains)",
// the mechanism, not the prose label, is authoritative: a later matcher at
// equal cost fails the strict less-than test and never displaces the one
// already recorded.

func TestS3CostTie(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.burs")
	defer teardown()

	table := NewProductionTable()
	table.AddPatternMatch("Reg", "X", 1, nil, nil, nil)
	first := table.AddPatternMatch("Reg", "NEG", 2, nil, nil, nil, "Reg")
	second := table.AddPatternMatch("Reg", "NEG", 2, nil, nil, nil, "Reg")
	if err := table.GenerateStates(); err != nil {
		t.Fatalf("GenerateStates: %v", err)
	}

	op, ok := table.GetOperator("NEG", 1)
	if !ok {
		t.Fatalf("no operator for NEG/1")
	}
	// Any generated state for NEG(X) should record `first`, not `second`.
	found := false
	for _, s := range op.stateToRep[0] {
		for _, rs := range s.representedStates {
			p, err := rs.getProduction("Reg")
			if err != nil {
				continue
			}
			pm, ok := p.(*PatternMatcher)
			if !ok || pm.nodeType != "NEG" {
				continue
			}
			found = true
			if pm != first {
				t.Errorf("tie-break kept %v, want the first-added matcher (strict < never displaces an equal cost)", pm)
			}
			if pm == second {
				t.Errorf("tie-break incorrectly let the later, equal-cost matcher displace the first")
			}
		}
	}
	if !found {
		t.Fatalf("no NEG(Reg) state found to check tie-break on")
	}
}

// --- S4: variadic selection -----------------------------------------------

func TestS4VariadicSelection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.burs")
	defer teardown()

	table := NewProductionTable()
	table.AddPatternMatch("Item", "ATOM", 1, nil, nil, nil)
	var seenActuals []interface{}
	post := burgo.NewCallback("list", func(visitor interface{}, n BurgInput, childResults ...interface{}) (interface{}, error) {
		seenActuals = childResults
		return "list", nil
	})
	table.AddVarArgsPatternMatch("List", "LIST", 1, nil, nil, post, "Item")
	if err := table.GenerateStates(); err != nil {
		t.Fatalf("GenerateStates: %v", err)
	}

	input := tree("LIST", leaf("ATOM"), leaf("ATOM"), leaf("ATOM"))
	r := NewReducer(table)
	r.Label(input)
	if input.state == stateSentinel {
		t.Fatalf("LIST node was not labeled")
	}
	if _, err := r.Reduce(input, "List", nil); err != nil {
		t.Fatalf("Reduce(List): %v", err)
	}
	if len(seenActuals) != 1 {
		t.Fatalf("postCallback actuals = %v, want exactly 1 (the bundled aggregate)", seenActuals)
	}
	bundle, ok := seenActuals[0].([]interface{})
	if !ok {
		t.Fatalf("actuals[0] = %T, want []interface{}", seenActuals[0])
	}
	if len(bundle) != 3 {
		t.Fatalf("bundled variadic actuals = %v, want 3 entries", bundle)
	}
}

// --- S5: missing production / unlabeled node ------------------------------

func TestS5MissingProduction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.burs")
	defer teardown()

	table := arithmeticTable(t)
	r := NewReducer(table)

	unknown := leaf("BOGUS")
	r.Label(unknown)
	if unknown.state != stateSentinel {
		t.Fatalf("expected BOGUS to remain unlabeled, got state %d", unknown.state)
	}
	_, err := r.Reduce(unknown, "Reg", nil)
	if err == nil {
		t.Fatalf("expected UnlabeledNodeError, got nil")
	}
	if _, ok := err.(*UnlabeledNodeError); !ok {
		t.Fatalf("expected *UnlabeledNodeError, got %T: %v", err, err)
	}

	// A known node asked for a goal it cannot produce gets NoProduction.
	input := tree("PLUS", leaf("CONST"), leaf("CONST"))
	r.Label(input)
	_, err = r.Reduce(input, "NoSuchGoal", nil)
	if _, ok := err.(*NoProductionError); !ok {
		t.Fatalf("expected *NoProductionError, got %T: %v", err, err)
	}
}

// --- S6: dedup across iterations ------------------------------------------

func TestS6DedupAcrossIterations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.burs")
	defer teardown()

	// Two CONST-like leaf types get distinct leaf states, but PLUS trees
	// built over either of them must fold onto the same PLUS state.
	table := NewProductionTable()
	table.AddPatternMatch("Reg", "CONST", 1, nil, nil, nil)
	table.AddPatternMatch("Reg", "LIT", 1, nil, nil, nil)
	table.AddPatternMatch("Reg", "PLUS", 1, nil, nil, nil, "Reg", "Reg")
	if err := table.GenerateStates(); err != nil {
		t.Fatalf("GenerateStates: %v", err)
	}

	a := tree("PLUS", leaf("CONST"), leaf("CONST"))
	b := tree("PLUS", leaf("LIT"), leaf("LIT"))
	r := NewReducer(table)
	r.Label(a)
	r.Label(b)
	if a.state == stateSentinel || b.state == stateSentinel {
		t.Fatalf("both trees should label: a=%d b=%d", a.state, b.state)
	}
	if a.state != b.state {
		t.Fatalf("CONST-leaf and LIT-leaf PLUS trees should dedup to the same state, got %d vs %d", a.state, b.state)
	}
}

// --- property tests --------------------------------------------------------

func TestClosureIdempotence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.burs")
	defer teardown()

	table := arithmeticTable(t)
	for _, s := range table.states {
		before := s.getCost("Addr")
		table.closure(s) // re-applying after finish must add nothing
		if got := s.getCost("Addr"); got != before {
			t.Errorf("closure not idempotent: cost changed from %d to %d", before, got)
		}
	}
}

func TestNoPatternClosureOverlap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.burs")
	defer teardown()

	table := arithmeticTable(t)
	for _, s := range table.states {
		for n := range s.patterns {
			if _, ok := s.closures[n]; ok {
				t.Errorf("state %d has both a pattern and a closure for %v", s.number, n)
			}
		}
	}
}

// TestDeterminism checks spec.md §8 property 1 literally: two tables built
// from the same productions in the same order have equal state sets as
// mappings (nodeType, patterns) -> canonical state. It deliberately does
// NOT require the two tables to assign the same numbers to corresponding
// states, RepresenterState enumeration order can differ between runs
// (map iteration is randomized), so only the key set, not the numbering,
// is part of the guarantee.
func TestDeterminism(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.burs")
	defer teardown()

	table1 := arithmeticTable(t)
	table2 := arithmeticTable(t)
	if len(table1.states) != len(table2.states) {
		t.Fatalf("determinism: %d vs %d states", len(table1.states), len(table2.states))
	}
	for key := range table1.states {
		if _, ok := table2.states[key]; !ok {
			t.Fatalf("determinism: key %s present in table1 but not table2", key)
		}
	}
}

// TestDedupIdentity checks spec.md §8 property 7: within one table, two
// generated States with equal (nodeType, patterns) are the same object.
func TestDedupIdentity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.burs")
	defer teardown()

	table := NewProductionTable()
	table.AddPatternMatch("Reg", "CONST", 1, nil, nil, nil)
	table.AddPatternMatch("Reg", "LIT", 1, nil, nil, nil)
	table.AddPatternMatch("Reg", "PLUS", 1, nil, nil, nil, "Reg", "Reg")
	if err := table.GenerateStates(); err != nil {
		t.Fatalf("GenerateStates: %v", err)
	}
	a := tree("PLUS", leaf("CONST"), leaf("CONST"))
	b := tree("PLUS", leaf("LIT"), leaf("LIT"))
	r := NewReducer(table)
	r.Label(a)
	r.Label(b)
	sa, _ := table.GetState(a.state)
	sb, _ := table.GetState(b.state)
	if sa != sb {
		t.Fatalf("dedup identity: equal (nodeType, patterns) states are distinct objects: %p vs %p", sa, sb)
	}
}
