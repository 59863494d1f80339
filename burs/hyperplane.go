package burs

import "fmt"

// HyperPlane is one dimension of an Operator's multi-dimensional
// transition table, mapping a child's RepresenterState (at this
// dimension) either onward to the next dimension's HyperPlane, or, at
// the last dimension, to the resulting parent State.
//
// A variadic operator's last dimension is both final and intermediate at
// once: finalDimension supplies the result for exactly `arity` children,
// while nextDimension loops the same key back to this very HyperPlane so
// that a (k+1)-th, (k+2)-th, … child of the same represented type keeps
// matching. Go's garbage collector makes the self-reference unremarkable;
// unlike jburg's Java original there is no need to route it through an
// arena index to avoid a retain cycle.
type HyperPlane struct {
	nextDimension  map[*RepresenterState]*HyperPlane
	finalDimension map[*RepresenterState]*State
}

func newHyperPlane() *HyperPlane {
	return &HyperPlane{
		nextDimension:  make(map[*RepresenterState]*HyperPlane),
		finalDimension: make(map[*RepresenterState]*State),
	}
}

// addIntermediate installs r -> next, returning next if r was not
// already present, or the pre-existing HyperPlane for r otherwise (so
// that addTransition's path-building shares prefixes across calls).
func (h *HyperPlane) addIntermediate(r *RepresenterState) *HyperPlane {
	if next, ok := h.nextDimension[r]; ok {
		return next
	}
	next := newHyperPlane()
	h.nextDimension[r] = next
	return next
}

// addFinal installs r -> result at the last dimension, then re-derives
// IsVarArgs over the whole plane: if every final result reached from here
// and every child plane is itself variadic (or a self-loop), r is also
// installed as a self-loop in nextDimension so that further operands
// matching r continue to be accepted at this same HyperPlane. This mirrors
// jburg's HyperPlane.add, which recomputes isVarArgs() after every
// finalDimension insertion rather than trusting a caller-supplied flag:
// an Operator shared by a fixed-arity and a variadic matcher at the same
// (nodeType, arity) must not let the variadic matcher's registration
// self-loop a result state that only the fixed-arity matcher ever reaches.
func (h *HyperPlane) addFinal(r *RepresenterState, result *State) {
	h.finalDimension[r] = result
	if h.IsVarArgs() {
		h.nextDimension[r] = h
	}
}

// IsVarArgs reports whether every production reachable from this
// HyperPlane, at this dimension and every dimension beyond it, is
// variadic: every state in finalDimension must itself be variadic
// (State.isVarArgs), and every child plane in nextDimension must either
// be a self-loop back to h or itself satisfy IsVarArgs. A single
// fixed-arity result sharing this plane with variadic ones is enough to
// make the whole plane non-variadic, exactly as jburg's HyperPlane.isVarArgs
// defines it.
func (h *HyperPlane) IsVarArgs() bool {
	for _, s := range h.finalDimension {
		if !s.isVarArgs() {
			return false
		}
	}
	for _, child := range h.nextDimension {
		if child != h && !child.IsVarArgs() {
			return false
		}
	}
	return true
}

// getNextDimension advances past representer r, or returns
// MissingTransitionError if r has no transition at this HyperPlane.
func (h *HyperPlane) getNextDimension(r *RepresenterState) (*HyperPlane, error) {
	if next, ok := h.nextDimension[r]; ok {
		return next, nil
	}
	return nil, &MissingTransitionError{NodeType: r.nodeType, Dim: -1}
}

// getResultState reads the final-dimension result for representer r, or
// returns MissingTransitionError.
func (h *HyperPlane) getResultState(r *RepresenterState) (*State, error) {
	if result, ok := h.finalDimension[r]; ok {
		return result, nil
	}
	return nil, &MissingTransitionError{NodeType: r.nodeType, Dim: -1}
}

func (h *HyperPlane) String() string {
	return fmt.Sprintf("hyperplane(next=%d,final=%d,varargs=%v)", len(h.nextDimension), len(h.finalDimension), h.IsVarArgs())
}
