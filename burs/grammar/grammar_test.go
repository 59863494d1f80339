package grammar

import (
	"testing"

	"github.com/npillmayer/burgo/burs"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const arithmeticGrammar = `
# a minimal arithmetic grammar
pattern Reg <- CONST() : 1
pattern Reg <- PLUS(Reg, Reg) : 1
closure Addr <- Reg : 0
`

func TestParseArithmeticGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.grammar")
	defer teardown()

	g, err := Parse(arithmeticGrammar)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(g.Patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d: %+v", len(g.Patterns), g.Patterns)
	}
	if len(g.Closures) != 1 {
		t.Fatalf("expected 1 closure, got %d: %+v", len(g.Closures), g.Closures)
	}
	if g.Patterns[1].NodeType != "PLUS" || len(g.Patterns[1].ChildTypes) != 2 {
		t.Fatalf("unexpected second pattern: %+v", g.Patterns[1])
	}
	if g.Closures[0].Target != "Addr" || g.Closures[0].Source != "Reg" {
		t.Fatalf("unexpected closure: %+v", g.Closures[0])
	}
}

func TestParseVariadicPattern(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.grammar")
	defer teardown()

	g, err := Parse("pattern List <- LIST(Item...) : 2\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(g.Patterns) != 1 || !g.Patterns[0].IsVarArgs {
		t.Fatalf("expected one variadic pattern, got %+v", g.Patterns)
	}
	if len(g.Patterns[0].ChildTypes) != 1 || g.Patterns[0].ChildTypes[0] != "Item" {
		t.Fatalf("unexpected childTypes: %+v", g.Patterns[0].ChildTypes)
	}
}

func TestParseSyntaxError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.grammar")
	defer teardown()

	if _, err := Parse("pattern Reg PLUS(Reg) : 1\n"); err == nil {
		t.Fatalf("expected a ParseError for a missing arrow, got nil")
	}
}

func TestBuildIntoProductionTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.grammar")
	defer teardown()

	g, err := Parse(arithmeticGrammar)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	table := burs.NewProductionTable()
	if err := Build(g, table); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := table.GenerateStates(); err != nil {
		t.Fatalf("GenerateStates: %v", err)
	}
	if _, ok := table.GetOperator("CONST", 0); !ok {
		t.Fatalf("expected an operator for CONST/0")
	}
	if _, ok := table.GetOperator("PLUS", 2); !ok {
		t.Fatalf("expected an operator for PLUS/2")
	}
}

func TestBuildRejectsClosureCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "burgo.grammar")
	defer teardown()

	g, err := Parse("closure A <- B : 0\nclosure B <- A : 0\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	table := burs.NewProductionTable()
	if err := Build(g, table); err == nil {
		t.Fatalf("expected a ClosureCycleError, got nil")
	}
}
