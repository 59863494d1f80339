package burs

import (
	"github.com/npillmayer/burgo"
)

// stateSentinel is the state number an unlabeled node carries: 0 and
// negative numbers are both valid sentinels (spec.md §9), this package
// always writes and checks 0.
const stateSentinel = 0

// BurgInput is the consumer-supplied tree interface the Reducer walks.
// Implementations own their own node representation; this package only
// ever reads nodeType/children and writes back one int per node.
type BurgInput interface {
	GetNodeType() burgo.NodeType
	GetSubtreeCount() int
	GetSubtree(i int) BurgInput
	GetStateNumber() int
	SetStateNumber(n int)
}

// Reducer pairs a generated, frozen ProductionTable with the two-pass
// label/reduce algorithm. Multiple Reducers may share one table
// concurrently without synchronization, since GenerateStates freezes the
// table for good (spec.md §5).
type Reducer struct {
	table *ProductionTable
}

// NewReducer wraps table, which must already have had GenerateStates
// called on it.
func NewReducer(table *ProductionTable) *Reducer {
	return &Reducer{table: table}
}

// mustNotBeMissingTransition panics with err if it is a
// *MissingTransitionError. A HyperPlane/Operator lookup failing with this
// error means the generator produced a table that doesn't cover a
// transition the same generator's own operator set promised to cover: a
// generator or grammar bug, not a property of the input tree (errors.go's
// doc comment on MissingTransitionError). Label only ever calls this with
// errors from getRepresenterState/getNextDimension/getResultState, which
// return no other error type.
func mustNotBeMissingTransition(err error) {
	if mte, ok := err.(*MissingTransitionError); ok {
		panic(mte)
	}
}

// Label runs pass 1 (post-order): every node in the subtree rooted at
// node is assigned a state number, or left at the sentinel if its
// (nodeType, childCount) has no matching Operator. A *MissingTransitionError
// from the table itself is not a sentinel case: it means the tables are
// internally inconsistent, and Label panics rather than mask it as an
// ordinary "node type not covered" result.
func (r *Reducer) Label(node BurgInput) {
	k := node.GetSubtreeCount()
	for i := 0; i < k; i++ {
		r.Label(node.GetSubtree(i))
	}
	op, ok := r.table.GetOperatorForArity(node.GetNodeType(), k)
	if !ok {
		tracer().Debugf("label(%v,arity=%d): no operator, leaving sentinel", node.GetNodeType(), k)
		node.SetStateNumber(stateSentinel)
		return
	}
	if k == 0 {
		if op.leafState == nil {
			node.SetStateNumber(stateSentinel)
			return
		}
		tracer().Debugf("label(%v): leaf -> state %d", node.GetNodeType(), op.leafState.Number())
		node.SetStateNumber(op.leafState.Number())
		return
	}
	h := op.transitionTable
	for dim := 0; dim < k-1; dim++ {
		rep, err := op.getRepresenterState(node.GetSubtree(dim).GetStateNumber(), dim)
		if err != nil {
			mustNotBeMissingTransition(err)
			tracer().Debugf("label(%v,dim=%d): %v, leaving sentinel", node.GetNodeType(), dim, err)
			node.SetStateNumber(stateSentinel)
			return
		}
		next, err := h.getNextDimension(rep)
		if err != nil {
			mustNotBeMissingTransition(err)
			tracer().Debugf("label(%v,dim=%d): %v, leaving sentinel", node.GetNodeType(), dim, err)
			node.SetStateNumber(stateSentinel)
			return
		}
		h = next
	}
	rep, err := op.getRepresenterState(node.GetSubtree(k-1).GetStateNumber(), k-1)
	if err != nil {
		mustNotBeMissingTransition(err)
		tracer().Debugf("label(%v,dim=%d): %v, leaving sentinel", node.GetNodeType(), k-1, err)
		node.SetStateNumber(stateSentinel)
		return
	}
	result, err := h.getResultState(rep)
	if err != nil {
		mustNotBeMissingTransition(err)
		tracer().Debugf("label(%v): %v, leaving sentinel", node.GetNodeType(), err)
		node.SetStateNumber(stateSentinel)
		return
	}
	tracer().Debugf("label(%v,arity=%d): -> state %d", node.GetNodeType(), k, result.Number())
	node.SetStateNumber(result.Number())
}

// checkArity validates that nargs actual arguments are compatible with
// cb's declared signature before it is invoked through reflection, so a
// mismatched callback fails with a typed *ArityMismatchError instead of
// an untyped reflect.Value.Call panic (spec.md §4.7/§7). A nil cb is
// always compatible, since it is never invoked.
func checkArity(cb *burgo.Callback, nargs int) error {
	if cb == nil {
		return nil
	}
	want := cb.ParameterCount()
	if cb.IsVariadic() {
		if nargs < want-1 {
			return &ArityMismatchError{Callback: cb.Name(), Expected: want - 1, Actual: nargs}
		}
		return nil
	}
	if nargs != want {
		return &ArityMismatchError{Callback: cb.Name(), Expected: want, Actual: nargs}
	}
	return nil
}

// invoke arity-checks cb against args before invoking it. A nil cb is a
// no-op, matching the "pre/postCall may be nil" contract callers relied
// on before this helper existed.
func invoke(cb *burgo.Callback, args ...interface{}) (interface{}, error) {
	if cb == nil {
		return nil, nil
	}
	if err := checkArity(cb, len(args)); err != nil {
		return nil, err
	}
	return cb.Invoke(args...)
}

// invokeBool arity-checks cb against args before invoking it as a predicate.
func invokeBool(cb *burgo.Callback, args ...interface{}) (bool, error) {
	if err := checkArity(cb, len(args)); err != nil {
		return false, err
	}
	return cb.InvokeBool(args...), nil
}

// Reduce runs pass 2: obtains the state Label assigned to node and
// reduces node toward goal, invoking visitor's callbacks bottom-up.
// visitor is passed through to every callback unchanged, it is typically
// the accumulator/symbol-table object a grammar's semantic actions
// close over.
func (r *Reducer) Reduce(node BurgInput, goal burgo.Nonterminal, visitor interface{}) (interface{}, error) {
	num := node.GetStateNumber()
	if num == stateSentinel {
		return nil, &UnlabeledNodeError{NodeType: node.GetNodeType()}
	}
	state, ok := r.table.GetState(num)
	if !ok {
		return nil, &UnlabeledNodeError{NodeType: node.GetNodeType()}
	}
	production, err := state.getProduction(goal)
	if err != nil {
		return nil, err
	}
	var pending []*Closure
	for {
		clo, isClosure := production.(*Closure)
		if !isClosure {
			break
		}
		tracer().Debugf("reduce(%v): unwinding closure %v<=%v", node.GetNodeType(), clo.target, clo.source)
		if _, err := invoke(clo.preCall, visitor, node, goal); err != nil {
			return nil, err
		}
		pending = append(pending, clo)
		production, err = state.getProduction(clo.source)
		if err != nil {
			return nil, err
		}
	}
	matcher := production.(*PatternMatcher)
	if matcher.predicate != nil {
		ok, err := invokeBool(matcher.predicate, visitor, node)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &NoProductionError{StateNumber: state.Number(), Goal: goal}
		}
	}
	if _, err := invoke(matcher.preCall, visitor, node, goal); err != nil {
		return nil, err
	}
	actuals, err := r.reduceChildren(node, matcher, visitor)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("reduce(%v): state %d matched %v<-%v with %d actuals", node.GetNodeType(), state.Number(), matcher.target, matcher.nodeType, len(actuals))
	var result interface{}
	if matcher.postCall != nil {
		callArgs := append([]interface{}{visitor, node}, actuals...)
		result, err = invoke(matcher.postCall, callArgs...)
		if err != nil {
			return nil, err
		}
	}
	for i := len(pending) - 1; i >= 0; i-- {
		clo := pending[i]
		if clo.postCall == nil {
			continue
		}
		result, err = invoke(clo.postCall, visitor, node, result)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// reduceChildren recurses into node's children using matcher's declared
// nonterminals as their goals, then bundles the results into the actuals
// list a postCallback receives: one entry per fixed child, and for a
// variadic matcher, every operand at or beyond the last declared position
// collapses into a single trailing []interface{} aggregate (spec.md
// §9(ii), resolving the original's unfinished variadic-actuals path).
func (r *Reducer) reduceChildren(node BurgInput, matcher *PatternMatcher, visitor interface{}) ([]interface{}, error) {
	k := node.GetSubtreeCount()
	if !matcher.isVarArgs {
		actuals := make([]interface{}, k)
		for i := 0; i < k; i++ {
			v, err := r.Reduce(node.GetSubtree(i), matcher.GetNonterminal(i), visitor)
			if err != nil {
				return nil, err
			}
			actuals[i] = v
		}
		return actuals, nil
	}
	fixed := matcher.Size() - 1
	if fixed < 0 {
		fixed = 0
	}
	actuals := make([]interface{}, 0, fixed+1)
	for i := 0; i < fixed && i < k; i++ {
		v, err := r.Reduce(node.GetSubtree(i), matcher.GetNonterminal(i), visitor)
		if err != nil {
			return nil, err
		}
		actuals = append(actuals, v)
	}
	variadic := make([]interface{}, 0, k-fixed)
	for i := fixed; i < k; i++ {
		v, err := r.Reduce(node.GetSubtree(i), matcher.GetNonterminal(i), visitor)
		if err != nil {
			return nil, err
		}
		variadic = append(variadic, v)
	}
	actuals = append(actuals, variadic)
	return actuals, nil
}

// CanProduce is the node-aware convenience predicate from spec.md §6: it
// reports whether node's labeled state can produce goal, without
// reducing anything. visitor is unused today but kept in the signature
// so that future predicate-gated productions can be evaluated the same
// way canProduce is evaluated inside Reduce.
func (r *Reducer) CanProduce(node BurgInput, goal burgo.Nonterminal, visitor interface{}) bool {
	return r.table.CanProduce(node.GetStateNumber(), goal)
}
