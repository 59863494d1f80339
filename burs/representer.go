package burs

import (
	"fmt"
	"sort"

	"github.com/cnf/structhash"
	"github.com/npillmayer/burgo"
)

// RepresenterState is the projection of a State onto a single operand
// position: everything an Operator needs to know about one child, for
// the purpose of transition-table lookup, is the nodeType of the child's
// state plus the cost at which it can produce each nonterminal, not the
// productions themselves, and not which concrete State it came from.
//
// Its identity is (nodeType, costs), two different States that happen to
// cost the same for every nonterminal project onto the very same
// RepresenterState, which is the whole point: it is what keeps the number
// of representer states, and hence transition-table entries, bounded even
// though the number of States can grow combinatorially with tree shape.
type RepresenterState struct {
	nodeType burgo.NodeType
	costs    map[burgo.Nonterminal]burgo.Cost

	// representedStates collects every State that projects onto this
	// RepresenterState, keyed by state number. Kept for diagnostics and
	// for dump.go; never consulted for identity or transition lookup.
	representedStates map[int]*State

	key string
}

// projectState builds the RepresenterState that s projects to at one
// operand position, carrying forward only the nonterminals in relevant
// (those actually used at that position by some pattern of the owning
// operator, spec.md §4.3). It is pure: given two States that agree on
// nodeType and on s.getCost(n) for every n in relevant, it returns
// RepresenterStates with identical keys, even though they are distinct Go
// values, callers must go through Operator's canonicalizing table (see
// operator.go) to fold those into one.
func projectState(s *State, relevant map[burgo.Nonterminal]bool) *RepresenterState {
	costs := make(map[burgo.Nonterminal]burgo.Cost, len(relevant))
	for n := range relevant {
		if c := s.getCost(n); c < burgo.Infinity {
			costs[n] = c
		}
	}
	r := &RepresenterState{
		nodeType:          s.nodeType,
		costs:             costs,
		representedStates: map[int]*State{s.number: s},
	}
	r.key = r.computeKey()
	return r
}

// NodeType returns the node type of the states this RepresenterState
// represents.
func (r *RepresenterState) NodeType() burgo.NodeType { return r.nodeType }

// CostOf returns the cost of producing nonterminal n, or burgo.Infinity.
func (r *RepresenterState) CostOf(n burgo.Nonterminal) burgo.Cost {
	if c, ok := r.costs[n]; ok {
		return c
	}
	return burgo.Infinity
}

// merge folds another State that projects to the same key into this
// RepresenterState's representedStates set. It is a no-op on costs: by
// construction, callers only merge States whose projectState().key
// already equals r.key.
func (r *RepresenterState) merge(s *State) {
	r.representedStates[s.number] = s
}

func (r *RepresenterState) computeKey() string {
	type entry struct {
		Nonterminal string
		Cost        burgo.Cost
	}
	type key struct {
		NodeType string
		Entries  []entry
	}
	entries := make([]entry, 0, len(r.costs))
	for n, c := range r.costs {
		entries = append(entries, entry{Nonterminal: fmt.Sprintf("%v", n), Cost: c})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Nonterminal < entries[j].Nonterminal })
	k := key{NodeType: fmt.Sprintf("%v", r.nodeType), Entries: entries}
	h, err := structhash.Hash(k, 1)
	if err != nil {
		panic(err)
	}
	return h
}

// Key returns the RepresenterState's dedup identity, as computed at
// construction time.
func (r *RepresenterState) Key() string { return r.key }

func (r *RepresenterState) String() string {
	nts := make([]burgo.Nonterminal, 0, len(r.costs))
	for n := range r.costs {
		nts = append(nts, n)
	}
	sort.Slice(nts, func(i, j int) bool {
		return fmt.Sprintf("%v", nts[i]) < fmt.Sprintf("%v", nts[j])
	})
	out := fmt.Sprintf("rep(%v:", r.nodeType)
	for i, n := range nts {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%v=%d", n, r.costs[n])
	}
	out += ")"
	return out
}
