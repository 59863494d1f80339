package burs

import (
	"fmt"

	"github.com/npillmayer/burgo"
)

// Operator groups every production whose pattern matches a given
// (nodeType, arity) pair. It owns, per operand dimension, the set of
// RepresenterStates that dimension has ever produced, plus the root of
// the transition HyperPlane tree that maps child-state tuples to parent
// states.
type Operator struct {
	nodeType  burgo.NodeType
	arity     int
	isVarArgs bool

	// relevant[i] is the set of nonterminals some pattern of this
	// operator uses at operand position i; it bounds what projectState
	// carries forward for that dimension.
	relevant []map[burgo.Nonterminal]bool

	// reps[i] canonicalizes RepresenterStates at dimension i by key, so
	// that two States projecting identically fold onto one object.
	reps []map[string]*RepresenterState

	// stateToRep[i] remembers, for every State that has been projected
	// at dimension i, which RepresenterState it folded onto, this is
	// what getRepresenterState serves at label time.
	stateToRep []map[int]*RepresenterState

	transitionTable *HyperPlane

	// leafState is the (unique) state produced by this operator when
	// arity == 0; leaf operators have no dimensions and no transition
	// table.
	leafState *State

	matchers []*PatternMatcher
}

func newOperator(nodeType burgo.NodeType, arity int, isVarArgs bool) *Operator {
	op := &Operator{
		nodeType:  nodeType,
		arity:     arity,
		isVarArgs: isVarArgs,
	}
	if arity > 0 {
		op.relevant = make([]map[burgo.Nonterminal]bool, arity)
		op.reps = make([]map[string]*RepresenterState, arity)
		op.stateToRep = make([]map[int]*RepresenterState, arity)
		for i := 0; i < arity; i++ {
			op.relevant[i] = make(map[burgo.Nonterminal]bool)
			op.reps[i] = make(map[string]*RepresenterState)
			op.stateToRep[i] = make(map[int]*RepresenterState)
		}
		op.transitionTable = newHyperPlane()
	}
	return op
}

// NodeType, Arity, IsVarArgs, Size are the Operator's identity and shape.
func (op *Operator) NodeType() burgo.NodeType { return op.nodeType }
func (op *Operator) Arity() int               { return op.arity }
func (op *Operator) IsVarArgs() bool          { return op.isVarArgs }
func (op *Operator) Size() int                { return len(op.matchers) }

// addMatcher registers p as one of this operator's pattern matchers,
// folding its per-position nonterminal usage into op.relevant. Leaf
// operators (arity 0) never call this for their dimensions since they
// have none.
func (op *Operator) addMatcher(p *PatternMatcher) {
	op.matchers = append(op.matchers, p)
	for i := 0; i < op.arity; i++ {
		op.relevant[i][p.GetNonterminal(i)] = true
	}
}

// dimension returns the operand width this operator actually dispatches
// on: arity for fixed-arity operators, or arity for variadic ones too,
// the self-loop at the last dimension absorbs any extra operands, so the
// walk in label() still advances exactly `arity` times logically, just
// re-entering the last HyperPlane repeatedly.
func (op *Operator) dimension() int { return op.arity }

// projectAt computes the RepresenterState that State s projects to at
// operand dimension dim, canonicalizing against this operator's existing
// representer set for that dimension so that equal projections fold onto
// the same object. It also records the (state number -> representer)
// mapping consumed by getRepresenterState.
func (op *Operator) projectAt(dim int, s *State) *RepresenterState {
	dim = op.clampDim(dim)
	cand := projectState(s, op.relevant[dim])
	r, ok := op.reps[dim][cand.key]
	if !ok {
		r = cand
		op.reps[dim][cand.key] = r
	} else {
		r.merge(s)
	}
	op.stateToRep[dim][s.number] = r
	return r
}

// clampDim folds any dimension at or beyond a variadic operator's last
// declared position onto that last position: a variadic matcher declares
// only `arity` operand slots, and the HyperPlane self-loop at the last
// one absorbs every further operand of a many-children call, so there is
// only ever one representer set to consult past that point.
func (op *Operator) clampDim(dim int) int {
	if op.isVarArgs && dim >= op.arity-1 {
		return op.arity - 1
	}
	return dim
}

// RepresentersAt returns every distinct RepresenterState known at
// dimension dim, in no particular order; table.go's permute step ranges
// over this to enumerate candidate child tuples.
func (op *Operator) RepresentersAt(dim int) []*RepresenterState {
	out := make([]*RepresenterState, 0, len(op.reps[dim]))
	for _, r := range op.reps[dim] {
		out = append(out, r)
	}
	return out
}

// getRepresenterState returns the unique RepresenterState at dimension
// dim that represents the state numbered childStateNumber. Each state
// belongs to at most one representer per dimension by construction
// (projectAt always either creates or reuses exactly one), so this never
// needs to disambiguate.
func (op *Operator) getRepresenterState(childStateNumber, dim int) (*RepresenterState, error) {
	dim = op.clampDim(dim)
	if dim < 0 || dim >= len(op.stateToRep) {
		return nil, &MissingTransitionError{NodeType: op.nodeType, Dim: dim}
	}
	r, ok := op.stateToRep[dim][childStateNumber]
	if !ok {
		return nil, &MissingTransitionError{NodeType: op.nodeType, Dim: dim}
	}
	return r, nil
}

// addTransition inserts a path of length len(tuple) into the HyperPlane
// tree, with result filed at the leaf. tuple must have exactly op.arity
// entries; variadic operators still address their transition table with
// exactly `arity` representers per call, repetition beyond arity is
// handled by the HyperPlane self-loop, not by longer tuples.
func (op *Operator) addTransition(tuple []*RepresenterState, result *State) {
	if op.arity == 0 {
		op.leafState = result
		return
	}
	h := op.transitionTable
	for i := 0; i < len(tuple)-1; i++ {
		h = h.addIntermediate(tuple[i])
	}
	h.addFinal(tuple[len(tuple)-1], result)
}

func (op *Operator) String() string {
	return fmt.Sprintf("op(%v/%d,varargs=%v,matchers=%d)", op.nodeType, op.arity, op.isVarArgs, len(op.matchers))
}
