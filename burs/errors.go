package burs

import (
	"fmt"

	"github.com/npillmayer/burgo"
)

// NoProductionError is returned when a reducer is asked for a goal a
// node's state cannot produce.
type NoProductionError struct {
	StateNumber int
	Goal        burgo.Nonterminal
}

func (e *NoProductionError) Error() string {
	return fmt.Sprintf("state %d cannot produce %v", e.StateNumber, e.Goal)
}

// UnlabeledNodeError is returned when reduce is called on a node that
// label never assigned a state number to (either label was never run, or
// the operator set cannot classify the node's (nodeType, arity)).
type UnlabeledNodeError struct {
	NodeType burgo.NodeType
}

func (e *UnlabeledNodeError) Error() string {
	return fmt.Sprintf("unlabeled node of type %v", e.NodeType)
}

// MissingTransitionError indicates a HyperPlane lookup failed: the
// generator produced a tree that exercises a transition the tables don't
// have. This is always a grammar or generator bug, never a property of
// well-typed input, so Reducer.Label surfaces it as a panic rather than
// asking every caller to check for it.
type MissingTransitionError struct {
	NodeType burgo.NodeType
	Dim      int
}

func (e *MissingTransitionError) Error() string {
	return fmt.Sprintf("no transition for node type %v at dimension %d", e.NodeType, e.Dim)
}

// ArityMismatchError is returned when a callback's declared parameter
// count is incompatible with the actual number of reduced children.
type ArityMismatchError struct {
	Callback string
	Expected int
	Actual   int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("callback %s expected %d actuals, received %d", e.Callback, e.Expected, e.Actual)
}

// ClosureCycleError is detected at grammar-load time: a chain of closures
// that returns to its own source.
type ClosureCycleError struct {
	Nonterminal burgo.Nonterminal
}

func (e *ClosureCycleError) Error() string {
	return fmt.Sprintf("closure cycle detected at nonterminal %v", e.Nonterminal)
}
