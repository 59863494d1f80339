package burs

import (
	"fmt"

	"github.com/npillmayer/burgo"
)

// Production is either a PatternMatcher or a Closure: something a State
// can record as the best known way to produce a given nonterminal.
type Production interface {
	// Target is the nonterminal this production produces.
	Target() burgo.Nonterminal
	// OwnCost is this production's own, un-aggregated cost.
	OwnCost() burgo.Cost
	// id is the production's creation-order identity, used (together with
	// the target nonterminal it is filed under) as the only ingredient of
	// State's dedup key, see state.go.
	id() int
	String() string
}

// PatternMatcher encodes a nodeType(childType, …) pattern match: target ←
// nodeType(childTypes…). For a variadic matcher, the last entry of
// childTypes is repeated for every operand beyond arity-1.
type PatternMatcher struct {
	target     burgo.Nonterminal
	nodeType   burgo.NodeType
	childTypes []burgo.Nonterminal
	ownCost    burgo.Cost
	isVarArgs  bool
	predicate  *burgo.Callback
	preCall    *burgo.Callback
	postCall   *burgo.Callback
	seq        int
}

var _ Production = (*PatternMatcher)(nil)

func newPatternMatcher(seq int, target burgo.Nonterminal, nodeType burgo.NodeType, cost burgo.Cost, isVarArgs bool, predicate, pre, post *burgo.Callback, childTypes []burgo.Nonterminal) *PatternMatcher {
	return &PatternMatcher{
		target:     target,
		nodeType:   nodeType,
		childTypes: append([]burgo.Nonterminal(nil), childTypes...),
		ownCost:    cost,
		isVarArgs:  isVarArgs,
		predicate:  predicate,
		preCall:    pre,
		postCall:   post,
		seq:        seq,
	}
}

// Target implements Production.
func (p *PatternMatcher) Target() burgo.Nonterminal { return p.target }

// OwnCost implements Production.
func (p *PatternMatcher) OwnCost() burgo.Cost { return p.ownCost }

func (p *PatternMatcher) id() int { return p.seq }

// NodeType is the operator this matcher matches.
func (p *PatternMatcher) NodeType() burgo.NodeType { return p.nodeType }

// IsVarArgs reports whether this matcher accepts a variable number of
// trailing operands, all matching the last entry of childTypes.
func (p *PatternMatcher) IsVarArgs() bool { return p.isVarArgs }

// Predicate, PreCallback and PostCallback expose the matcher's optional
// semantic-action hooks.
func (p *PatternMatcher) Predicate() *burgo.Callback    { return p.predicate }
func (p *PatternMatcher) PreCallback() *burgo.Callback  { return p.preCall }
func (p *PatternMatcher) PostCallback() *burgo.Callback { return p.postCall }

// Size returns the matcher's declared arity (the length of childTypes,
// i.e. not adjusted for variadic repetition).
func (p *PatternMatcher) Size() int { return len(p.childTypes) }

// IsLeaf reports whether this matcher has zero children.
func (p *PatternMatcher) IsLeaf() bool { return len(p.childTypes) == 0 }

// GetNonterminal returns the nonterminal the i-th operand must produce.
// For variadic matchers and i >= Size()-1, it returns the last entry of
// childTypes, since that single entry stands for every trailing operand.
func (p *PatternMatcher) GetNonterminal(i int) burgo.Nonterminal {
	if p.isVarArgs && i >= p.Size() {
		return p.childTypes[len(p.childTypes)-1]
	}
	return p.childTypes[i]
}

// UsesNonterminalAt tests whether this matcher's i-th operand is produced
// from nonterminal n.
func (p *PatternMatcher) UsesNonterminalAt(n burgo.Nonterminal, i int) bool {
	if p.isVarArgs && i >= p.Size() {
		return p.Size() > 0 && p.GetNonterminal(p.Size()-1) == n
	}
	return i < len(p.childTypes) && p.GetNonterminal(i) == n
}

// AcceptsDimension reports whether this matcher can match an operator
// invocation with dim children: size==dim for fixed arity, size<=dim for
// variadic.
func (p *PatternMatcher) AcceptsDimension(dim int) bool {
	if p.isVarArgs {
		return p.Size() <= dim
	}
	return p.Size() == dim
}

func (p *PatternMatcher) String() string {
	return fmt.Sprintf("%v<-%v%v:%d", p.target, p.nodeType, p.childTypes, p.ownCost)
}

// Closure encodes a unit production target ← source. Target must differ
// from source; cycles among closures are forbidden and are validated by
// ProductionTable when the closure is registered.
type Closure struct {
	target   burgo.Nonterminal
	source   burgo.Nonterminal
	ownCost  burgo.Cost
	preCall  *burgo.Callback
	postCall *burgo.Callback
	seq      int
}

var _ Production = (*Closure)(nil)

func newClosure(seq int, target, source burgo.Nonterminal, cost burgo.Cost, pre, post *burgo.Callback) *Closure {
	return &Closure{target: target, source: source, ownCost: cost, preCall: pre, postCall: post, seq: seq}
}

// Target implements Production.
func (c *Closure) Target() burgo.Nonterminal { return c.target }

// OwnCost implements Production.
func (c *Closure) OwnCost() burgo.Cost { return c.ownCost }

func (c *Closure) id() int { return c.seq }

// Source is the nonterminal this closure produces Target from.
func (c *Closure) Source() burgo.Nonterminal { return c.source }

// PreCallback and PostCallback expose the closure's optional semantic-action hooks.
func (c *Closure) PreCallback() *burgo.Callback  { return c.preCall }
func (c *Closure) PostCallback() *burgo.Callback { return c.postCall }

func (c *Closure) String() string {
	return fmt.Sprintf("%v<=%v:%d", c.target, c.source, c.ownCost)
}
