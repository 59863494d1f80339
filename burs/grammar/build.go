package grammar

import (
	"github.com/npillmayer/burgo"
	"github.com/npillmayer/burgo/burs"
)

// Callbacks optionally supplies the semantic-action hooks a textual
// grammar cannot express: a pattern's key is "target<-nodeType", a
// closure's key is "target<-source". Any hook left nil is simply omitted
// from the registered production.
type Callbacks struct {
	Predicate   map[string]*burgo.Callback
	PreCallback map[string]*burgo.Callback
	PostCallback map[string]*burgo.Callback
}

func (c *Callbacks) lookup(key string) (predicate, pre, post *burgo.Callback) {
	if c == nil {
		return nil, nil, nil
	}
	return c.Predicate[key], c.PreCallback[key], c.PostCallback[key]
}

// Build registers every declaration in g against table, in source order
// (preserving the tie-break rule: among equal-cost matchers for the same
// target, the first one recorded wins),
// and returns the first error encountered, typically a ClosureCycleError.
func Build(g *Grammar, table *burs.ProductionTable) error {
	return BuildWithCallbacks(g, table, nil)
}

// BuildWithCallbacks is Build, additionally wiring cb's semantic-action
// hooks onto the matching declarations.
func BuildWithCallbacks(g *Grammar, table *burs.ProductionTable, cb *Callbacks) error {
	for _, decl := range g.Patterns {
		predicate, pre, post := cb.lookup(decl.Target + "<-" + decl.NodeType)
		childTypes := make([]burgo.Nonterminal, len(decl.ChildTypes))
		for i, ct := range decl.ChildTypes {
			childTypes[i] = ct
		}
		if decl.IsVarArgs {
			table.AddVarArgsPatternMatch(decl.Target, decl.NodeType, burgo.Cost(decl.Cost), predicate, pre, post, childTypes...)
		} else {
			table.AddPatternMatch(decl.Target, decl.NodeType, burgo.Cost(decl.Cost), predicate, pre, post, childTypes...)
		}
	}
	for _, decl := range g.Closures {
		_, pre, post := cb.lookup(decl.Target + "<-" + decl.Source)
		if _, err := table.AddClosure(decl.Target, decl.Source, burgo.Cost(decl.Cost), pre, post); err != nil {
			return err
		}
	}
	return nil
}
