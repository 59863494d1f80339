package burs

import "testing"

func TestPatternMatcherFixedArity(t *testing.T) {
	m := newPatternMatcher(0, "Reg", "PLUS", 1, false, nil, nil, nil, []interface{}{"Reg", "Addr"})
	if m.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", m.Size())
	}
	if m.IsLeaf() {
		t.Fatalf("IsLeaf() = true for a 2-child matcher")
	}
	if m.GetNonterminal(0) != "Reg" || m.GetNonterminal(1) != "Addr" {
		t.Fatalf("GetNonterminal mismatch: %v, %v", m.GetNonterminal(0), m.GetNonterminal(1))
	}
	if !m.UsesNonterminalAt("Reg", 0) || m.UsesNonterminalAt("Reg", 1) {
		t.Fatalf("UsesNonterminalAt mismatch")
	}
	if !m.AcceptsDimension(2) || m.AcceptsDimension(1) || m.AcceptsDimension(3) {
		t.Fatalf("AcceptsDimension should accept exactly size==2 for a fixed-arity matcher")
	}
}

func TestPatternMatcherVariadic(t *testing.T) {
	m := newPatternMatcher(0, "List", "LIST", 2, true, nil, nil, nil, []interface{}{"Item"})
	if !m.AcceptsDimension(1) || !m.AcceptsDimension(5) || m.AcceptsDimension(0) {
		t.Fatalf("AcceptsDimension should accept size<=dim for a variadic matcher")
	}
	for i := 0; i < 5; i++ {
		if m.GetNonterminal(i) != "Item" {
			t.Errorf("GetNonterminal(%d) = %v, want Item", i, m.GetNonterminal(i))
		}
	}
	if !m.UsesNonterminalAt("Item", 4) {
		t.Fatalf("a variadic matcher's trailing operands should all report UsesNonterminalAt(Item, i)")
	}
}

func TestPatternMatcherLeaf(t *testing.T) {
	m := newPatternMatcher(0, "Reg", "CONST", 1, false, nil, nil, nil, nil)
	if !m.IsLeaf() {
		t.Fatalf("IsLeaf() = false for a zero-child matcher")
	}
	if !m.AcceptsDimension(0) || m.AcceptsDimension(1) {
		t.Fatalf("a leaf matcher should accept only dimension 0")
	}
}

func TestClosureFields(t *testing.T) {
	c := newClosure(3, "Addr", "Reg", 0, nil, nil)
	if c.Target() != "Addr" || c.Source() != "Reg" || c.OwnCost() != 0 {
		t.Fatalf("unexpected closure fields: %+v", c)
	}
	if c.id() != 3 {
		t.Fatalf("id() = %d, want 3", c.id())
	}
}
