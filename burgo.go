package burgo

import (
	"fmt"
	"reflect"
)

// --- Grammar symbol types ---------------------------------------------

// Nonterminal is an opaque, hashable, orderable grammar symbol (a goal
// type, e.g. "Reg" or "Addr"). Values are supplied by the caller and must
// be comparable (usable as a Go map key); typically a small string or int
// based type, or a pointer to an interned symbol.
type Nonterminal = interface{}

// NodeType is an opaque, hashable, orderable operator identifier (e.g.
// "PLUS", "SELECT"). Values are supplied by the caller and, like
// Nonterminal, must be comparable.
type NodeType = interface{}

// --- Cost arithmetic ----------------------------------------------------

// Cost is a production cost, computed as a wide integer to avoid overflow
// across chains of closures and pattern matches.
type Cost int64

// Infinity is the sentinel cost meaning "no production". Any Cost at or
// above Infinity must be treated as unreachable; AddCost guarantees that
// Infinity plus anything saturates at Infinity, so chained sums never wrap
// around into a small, falsely-attractive number.
const Infinity Cost = 1<<31 - 1 // mirrors Java's Integer.MAX_VALUE

// AddCost adds two costs, saturating at Infinity instead of overflowing or
// wrapping past the sentinel.
func AddCost(a, b Cost) Cost {
	if a >= Infinity || b >= Infinity {
		return Infinity
	}
	sum := a + b
	if sum >= Infinity {
		return Infinity
	}
	return sum
}

// --- Semantic-callback host routine --------------------------------------

// Callback wraps an arbitrary Go function as the "host routine" used by
// predicates, pre-callbacks and post-callbacks: something callable with a
// positional argument list that can report its own parameter count and
// whether it is variadic. The first formal parameter is always the
// visitor, the second the tree node; remaining parameters are the reduced
// child results (for a pre-callback, the goal nonterminal; for a
// predicate, nothing further).
type Callback struct {
	name string
	fn   reflect.Value
	typ  reflect.Type
}

// NewCallback wraps fn, a function value, as a Callback. A nil fn yields a
// nil *Callback. It panics if fn is not a function, this is a grammar-construction-time
// programming error, not a runtime condition callers need to recover from.
func NewCallback(name string, fn interface{}) *Callback {
	if fn == nil {
		return nil
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("burgo: NewCallback(%q): not a function: %T", name, fn))
	}
	return &Callback{name: name, fn: v, typ: v.Type()}
}

// Name returns the callback's diagnostic name (the Go identifier it was
// registered under, not necessarily func.Name()).
func (c *Callback) Name() string {
	if c == nil {
		return "<nil>"
	}
	return c.name
}

// ParameterCount returns the number of formal parameters fn declares. For
// a variadic fn, this includes the trailing slice parameter itself (i.e.
// it is the count as reflect.Type.NumIn reports it).
func (c *Callback) ParameterCount() int {
	return c.typ.NumIn()
}

// IsVariadic reports whether fn's last parameter is declared with "...".
func (c *Callback) IsVariadic() bool {
	return c.typ.IsVariadic()
}

// Invoke calls fn with args, returning its first result (or nil, if fn
// returns nothing) and any error it returns as its last result. Any panic
// raised by fn is not recovered here: it propagates unchanged out of
// Invoke, matching the "any exception from a user callback propagates
// unchanged" policy.
func (c *Callback) Invoke(args ...interface{}) (interface{}, error) {
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.New(c.typ.In(minInt(i, c.typ.NumIn()-1))).Elem()
			continue
		}
		in[i] = reflect.ValueOf(a)
	}
	out := c.fn.Call(in)
	var (
		result interface{}
		err    error
	)
	if len(out) > 0 {
		if e, ok := out[len(out)-1].Interface().(error); ok {
			err = e
			out = out[:len(out)-1]
		}
	}
	if len(out) > 0 {
		result = out[0].Interface()
	}
	return result, err
}

// InvokeBool calls fn and interprets its sole result as a bool; used for
// predicates, which the spec defines as callable(visitor, node) -> bool.
func (c *Callback) InvokeBool(args ...interface{}) bool {
	result, err := c.Invoke(args...)
	if err != nil {
		panic(err)
	}
	b, _ := result.(bool)
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
