package burs

import (
	"fmt"
	"sort"

	"github.com/cnf/structhash"
	"github.com/npillmayer/burgo"
)

// State is an equivalence class of input subtrees: all of them have the
// same nodeType/arity and match the same set of best-cost productions.
//
// State's hash/equality semantics are load-bearing: they are defined in
// terms of (nodeType, patterns) only, never costs, never closures.
// Closures can inflate a state's costs across fixed-point iterations
// without carrying any new information; hashing on cost would mean the
// worklist never converges, since every iteration would manufacture a
// "new" state that is really the old one with bigger numbers attached.
// See dedupKey below and design note 9 in DESIGN.md.
type State struct {
	nodeType burgo.NodeType

	patterns     map[burgo.Nonterminal]*PatternMatcher
	patternCosts map[burgo.Nonterminal]burgo.Cost
	closures     map[burgo.Nonterminal]*Closure

	// number is assigned once, on first insertion into the canonical
	// state set. -1 until then; 0 is never assigned (numbering starts at
	// 1, so that 0 and negative numbers both serve as "unlabeled"
	// sentinels on caller trees).
	number int

	finished bool
}

func newState(nodeType burgo.NodeType) *State {
	return &State{
		nodeType:     nodeType,
		patterns:     make(map[burgo.Nonterminal]*PatternMatcher),
		patternCosts: make(map[burgo.Nonterminal]burgo.Cost),
		closures:     make(map[burgo.Nonterminal]*Closure),
		number:       -1,
	}
}

// NodeType returns the node type this state's subtrees share.
func (s *State) NodeType() burgo.NodeType { return s.nodeType }

// Number returns the state's canonical number, or -1 if it has not yet
// been inserted into the canonical state set.
func (s *State) Number() int { return s.number }

// Size returns the number of pattern-matching productions recorded.
func (s *State) Size() int { return len(s.patterns) }

// IsEmpty reports whether this state has no pattern-matching productions.
func (s *State) IsEmpty() bool { return len(s.patterns) == 0 }

// setPatternProduction records p as the best known production for
// p.Target(), displacing any prior entry. The caller must only call this
// when cost improves on the current cost for p.Target(), this is a
// generator-internal invariant, not a grammar error, so it panics rather
// than returning an error.
func (s *State) setPatternProduction(p *PatternMatcher, cost burgo.Cost) {
	if s.finished {
		panic("burs: setPatternProduction on a finished state")
	}
	if cur := s.getCostLocked(p.target); cost >= cur {
		panic(fmt.Sprintf("burs: setPatternProduction: cost %d not better than current %d for %v", cost, cur, p.target))
	}
	s.patternCosts[p.target] = cost
	s.patterns[p.target] = p
}

// getCostLocked is getCost without the finished-state distinction; both
// currently behave identically, but keeping the name distinct documents
// that the public surface (getCost) is allowed during and after
// construction while mutation is not.
func (s *State) getCostLocked(n burgo.Nonterminal) burgo.Cost {
	return s.getCost(n)
}

// getCost returns the aggregated cost of producing nonterminal n: the
// pattern cost if n is matched directly, else the closure chain's cost
// (recursively, guaranteed to terminate because closures are acyclic),
// else burgo.Infinity.
func (s *State) getCost(n burgo.Nonterminal) burgo.Cost {
	if c, ok := s.patternCosts[n]; ok {
		return c
	}
	if clo, ok := s.closures[n]; ok {
		return burgo.AddCost(clo.ownCost, s.getCost(clo.source))
	}
	return burgo.Infinity
}

// getProduction returns the Production recorded for goal, a pattern
// matcher if one exists, else a closure, else NoProductionError.
func (s *State) getProduction(goal burgo.Nonterminal) (Production, error) {
	if p, ok := s.patterns[goal]; ok {
		return p, nil
	}
	if c, ok := s.closures[goal]; ok {
		return c, nil
	}
	return nil, &NoProductionError{StateNumber: s.number, Goal: goal}
}

// getNonClosureProductions returns this state's pattern-matching
// productions.
func (s *State) getNonClosureProductions() []*PatternMatcher {
	result := make([]*PatternMatcher, 0, len(s.patterns))
	for _, p := range s.patterns {
		result = append(result, p)
	}
	return result
}

// isVarArgs reports whether every pattern-matching production in this
// state is variadic; an empty state is, vacuously, not variadic.
func (s *State) isVarArgs() bool {
	if len(s.patterns) == 0 {
		return false
	}
	for _, p := range s.patterns {
		if !p.isVarArgs {
			return false
		}
	}
	return true
}

// addClosure accepts closure c iff it improves on the current cost for
// c.target, and iff c.target has no pattern match yet (a closure must
// never occlude a pattern match, spec.md §9(iii)). Returns whether it was
// accepted.
func (s *State) addClosure(c *Closure) bool {
	if s.finished {
		panic("burs: addClosure on a finished state")
	}
	if _, hasPattern := s.patterns[c.target]; hasPattern {
		return false
	}
	cost := burgo.AddCost(c.ownCost, s.getCost(c.source))
	if cost < s.getCost(c.target) {
		s.closures[c.target] = c
		return true
	}
	return false
}

// finish freezes the state: it must be called exactly once, after closure
// application reaches a fixed point, before the state is considered for
// deduplication or inserted into the canonical state set.
func (s *State) finish() {
	s.finished = true
}

// dedupKey computes the canonical identity of this state: its node type
// plus, for every nonterminal it matches directly, the identity of the
// pattern recorded (not its cost, not its closures). Two states with the
// same dedupKey are the same state for all generator purposes.
func (s *State) dedupKey() string {
	type entry struct {
		Nonterminal string
		ProductionID int
	}
	type key struct {
		NodeType string
		Entries  []entry
	}
	entries := make([]entry, 0, len(s.patterns))
	for n, p := range s.patterns {
		entries = append(entries, entry{Nonterminal: fmt.Sprintf("%v", n), ProductionID: p.id()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Nonterminal < entries[j].Nonterminal })
	k := key{NodeType: fmt.Sprintf("%v", s.nodeType), Entries: entries}
	h, err := structhash.Hash(k, 1)
	if err != nil {
		panic(err)
	}
	return h
}

func (s *State) String() string {
	if len(s.patterns) == 0 {
		return fmt.Sprintf("State %d %v", s.number, s.nodeType)
	}
	nts := make([]burgo.Nonterminal, 0, len(s.patterns))
	for n := range s.patterns {
		nts = append(nts, n)
	}
	sort.Slice(nts, func(i, j int) bool {
		return fmt.Sprintf("%v", nts[i]) < fmt.Sprintf("%v", nts[j])
	})
	out := fmt.Sprintf("State %d %v(patterns(", s.number, s.nodeType)
	for i, n := range nts {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%v=%s", n, s.patterns[n])
	}
	out += ")"
	if len(s.closures) > 0 {
		out += fmt.Sprintf("%v", s.closures)
	}
	out += ")"
	return out
}
