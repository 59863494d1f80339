package burs

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"
)

// Renderer emits a human-readable snapshot of a ProductionTable. Exact
// bytes are not part of the core contract (spec.md §6), only the
// hierarchical shape (operators, then states, then per-state patterns
// and closures) is. Neither XMLRenderer nor PrettyRenderer renders an
// operator's HyperPlane transition tree.
type Renderer interface {
	Render(t *ProductionTable, w io.Writer) error
}

// Dump writes t's snapshot to w using r. attrs is not passed to r:
// Renderer.Render takes no attributes, so attrs has no effect on the output.
func (t *ProductionTable) Dump(w io.Writer, r Renderer, attrs map[string]string) error {
	return r.Render(t, w)
}

type xmlOperator struct {
	NodeType string     `xml:"nodeType,attr"`
	Arity    int        `xml:"arity,attr"`
	VarArgs  bool       `xml:"varargs,attr,omitempty"`
	States   []xmlState `xml:"state"`
}

type xmlState struct {
	Number   int          `xml:"number,attr"`
	Patterns []xmlProd    `xml:"pattern"`
	Closures []xmlClosure `xml:"closure"`
}

type xmlProd struct {
	Target string `xml:"target,attr"`
	Cost   int64  `xml:"cost,attr"`
}

type xmlClosure struct {
	Target string `xml:"target,attr"`
	Source string `xml:"source,attr"`
}

type xmlTable struct {
	XMLName   xml.Name      `xml:"productionTable"`
	Operators []xmlOperator `xml:"operator"`
}

// XMLRenderer emits the dump format as XML, grouping operators by
// (nodeType, arity), then states by number, then each state's patterns
// and closures, the persisted layout spec.md §6 describes.
type XMLRenderer struct{ Indent string }

var _ Renderer = XMLRenderer{}

func (x XMLRenderer) Render(t *ProductionTable, w io.Writer) error {
	doc := xmlTable{}
	keys := make([]operatorKey, 0, len(t.operators))
	for k := range t.operators {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		si, sj := fmt.Sprintf("%v", keys[i].nodeType), fmt.Sprintf("%v", keys[j].nodeType)
		if si != sj {
			return si < sj
		}
		return keys[i].arity < keys[j].arity
	})
	for _, k := range keys {
		op := t.operators[k]
		xo := xmlOperator{NodeType: fmt.Sprintf("%v", op.nodeType), Arity: op.arity, VarArgs: op.isVarArgs}
		states := statesOf(op, t)
		sort.Slice(states, func(i, j int) bool { return states[i].Number() < states[j].Number() })
		for _, s := range states {
			xs := xmlState{Number: s.Number()}
			xs.Patterns = patternsOf(s)
			xs.Closures = closuresOf(s)
			xo.States = append(xo.States, xs)
		}
		doc.Operators = append(doc.Operators, xo)
	}
	indent := x.Indent
	if indent == "" {
		indent = "  "
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", indent)
	return enc.Encode(doc)
}

// PrettyRenderer emits a colored tree to the console via pterm, one
// branch per operator and one leaf per state; self-looping variadic
// transitions are annotated inline rather than expanded, since they
// don't terminate structurally.
type PrettyRenderer struct{}

var _ Renderer = PrettyRenderer{}

func (PrettyRenderer) Render(t *ProductionTable, w io.Writer) error {
	root := pterm.TreeNode{Text: t.String()}
	keys := make([]operatorKey, 0, len(t.operators))
	for k := range t.operators {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		si, sj := fmt.Sprintf("%v", keys[i].nodeType), fmt.Sprintf("%v", keys[j].nodeType)
		if si != sj {
			return si < sj
		}
		return keys[i].arity < keys[j].arity
	})
	for _, k := range keys {
		op := t.operators[k]
		opNode := pterm.TreeNode{Text: op.String()}
		states := statesOf(op, t)
		sort.Slice(states, func(i, j int) bool { return states[i].Number() < states[j].Number() })
		for _, s := range states {
			stateNode := pterm.TreeNode{Text: s.String()}
			if op.isVarArgs {
				stateNode.Children = append(stateNode.Children, pterm.TreeNode{Text: "<variadic/>"})
			}
			opNode.Children = append(opNode.Children, stateNode)
		}
		root.Children = append(root.Children, opNode)
	}
	s, err := pterm.DefaultTree.WithRoot(root).Srender()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func statesOf(op *Operator, t *ProductionTable) []*State {
	seen := map[int]bool{}
	var out []*State
	if op.leafState != nil {
		seen[op.leafState.Number()] = true
		out = append(out, op.leafState)
	}
	for _, s := range t.byNumber {
		if seen[s.Number()] {
			continue
		}
		// A state belongs to op's dump if op has projected it onto one of
		// its operand dimensions; stateToRep[dim] tracks exactly the states
		// op has seen as children.
		for dim := 0; dim < op.arity; dim++ {
			if _, ok := op.stateToRep[dim][s.Number()]; ok {
				if !seen[s.Number()] {
					seen[s.Number()] = true
					out = append(out, s)
				}
				break
			}
		}
	}
	return out
}

func patternsOf(s *State) []xmlProd {
	out := make([]xmlProd, 0, len(s.patterns))
	for n, p := range s.patterns {
		out = append(out, xmlProd{Target: fmt.Sprintf("%v", n), Cost: int64(p.ownCost)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

func closuresOf(s *State) []xmlClosure {
	out := make([]xmlClosure, 0, len(s.closures))
	for n, c := range s.closures {
		out = append(out, xmlClosure{Target: fmt.Sprintf("%v", n), Source: fmt.Sprintf("%v", c.source)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}
