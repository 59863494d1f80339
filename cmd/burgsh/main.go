package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/npillmayer/burgo/burs"
	"github.com/npillmayer/burgo/burs/grammar"
	"github.com/npillmayer/burgo/env"
)

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

// tracer traces with key 'burgo.burgsh'.
func tracer() tracing.Trace {
	return tracing.Select("burgo.burgsh")
}

// main starts an interactive CLI ("burgsh"), where users load a textual
// BURS grammar, generate its tables, and reduce small s-expression-like
// trees against it. burgsh is intended as a sandbox for experimenting
// with a grammar before wiring it into a real front end.
func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	loadf := flag.String("load", "", "Grammar file to load on startup")
	flag.Parse()
	tracer().SetTraceLevel(traceLevel(*tlevel))
	pterm.Info.Println("Welcome to burgsh")
	tracer().Infof("Trace level is %s", *tlevel)

	repl, err := readline.New("burgsh> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &shell{repl: repl, goal: "start", env: env.NewEnvironment()}
	if *loadf != "" {
		if err := intp.load(*loadf); err != nil {
			tracer().Errorf("%v", err)
		}
	}
	tracer().Infof("Quit with <ctrl>D or :quit")
	intp.REPL()
}

func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// shell is our interpreter object: a single table loaded from a grammar
// file, plus a reducer built once the table is generated.
type shell struct {
	repl    *readline.Instance
	table   *burs.ProductionTable
	reducer *burs.Reducer
	goal    string
	env     *env.Environment
}

func (s *shell) load(filename string) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	g, err := grammar.Parse(string(src))
	if err != nil {
		return err
	}
	table := burs.NewProductionTable()
	if err := grammar.Build(g, table); err != nil {
		return err
	}
	if err := table.GenerateStates(); err != nil {
		return err
	}
	s.table = table
	s.reducer = burs.NewReducer(table)
	pterm.Info.Println(fmt.Sprintf("loaded %s: %s", filename, table.String()))
	return nil
}

// REPL starts interactive mode.
func (s *shell) REPL() {
	for {
		line, err := s.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := s.eval(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	println("Good bye!")
}

// eval dispatches one REPL line: ":"-prefixed commands, or a bare
// nodeType(...) tree to reduce against the loaded table.
func (s *shell) eval(line string) (bool, error) {
	if strings.HasPrefix(line, ":") {
		return s.command(line[1:])
	}
	if s.reducer == nil {
		return false, fmt.Errorf("no grammar loaded; use :load <file>")
	}
	tree, err := parseTree(line)
	if err != nil {
		return false, err
	}
	s.reducer.Label(tree)
	result, err := s.reducer.Reduce(tree, s.goal, s.env)
	if err != nil {
		return false, err
	}
	pterm.Info.Println(fmt.Sprintf("state=%d result=%v", tree.GetStateNumber(), result))
	return false, nil
}

func (s *shell) command(cmd string) (bool, error) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return false, nil
	}
	switch fields[0] {
	case "quit", "exit":
		return true, nil
	case "load":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: :load <file>")
		}
		return false, s.load(fields[1])
	case "dump":
		if s.table == nil {
			return false, fmt.Errorf("no grammar loaded")
		}
		r := burs.Renderer(burs.PrettyRenderer{})
		if len(fields) >= 2 && fields[1] == "xml" {
			r = burs.XMLRenderer{}
		}
		return false, s.table.Dump(os.Stdout, r, nil)
	case "goal":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: :goal <nonterminal>")
		}
		s.goal = fields[1]
		pterm.Info.Println("default goal set to " + s.goal)
		return false, nil
	case "set":
		if len(fields) < 3 {
			return false, fmt.Errorf("usage: :set <name> <value>")
		}
		s.env.Define(fields[1], fields[2])
		pterm.Info.Println("set " + fields[1] + " = " + fields[2])
		return false, nil
	case "vars":
		s.env.Each(func(name string, value interface{}) {
			pterm.Info.Println(name + " = " + fmt.Sprintf("%v", value))
		})
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

// --- tiny tree literal parser -----------------------------------------
//
// Accepts input of the shape NODETYPE or NODETYPE(child, child, …) where
// every child is itself a tree literal, e.g. PLUS(CONST,CONST). This is
// deliberately not the grammar DSL's lexer/parser: it builds treeNode
// values (burs.BurgInput) directly, not grammar declarations.

// treeNode is the shell's own burs.BurgInput implementation.
type treeNode struct {
	nodeType string
	children []*treeNode
	state    int
}

func (n *treeNode) GetNodeType() interface{}            { return n.nodeType }
func (n *treeNode) GetSubtreeCount() int                 { return len(n.children) }
func (n *treeNode) GetSubtree(i int) burs.BurgInput      { return n.children[i] }
func (n *treeNode) GetStateNumber() int                  { return n.state }
func (n *treeNode) SetStateNumber(s int)                 { n.state = s }

func parseTree(s string) (*treeNode, error) {
	s = strings.TrimSpace(s)
	n, rest, err := parseTreeNode(s)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("trailing input: %q", rest)
	}
	return n, nil
}

func parseTreeNode(s string) (*treeNode, string, error) {
	i := 0
	for i < len(s) && (isIdentRune(rune(s[i]))) {
		i++
	}
	if i == 0 {
		return nil, s, fmt.Errorf("expected node type at %q", s)
	}
	n := &treeNode{nodeType: s[:i]}
	rest := s[i:]
	if !strings.HasPrefix(rest, "(") {
		return n, rest, nil
	}
	rest = rest[1:]
	for {
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, ")") {
			return n, rest[1:], nil
		}
		child, r, err := parseTreeNode(rest)
		if err != nil {
			return nil, s, err
		}
		n.children = append(n.children, child)
		rest = strings.TrimSpace(r)
		if strings.HasPrefix(rest, ",") {
			rest = rest[1:]
			continue
		}
		if strings.HasPrefix(rest, ")") {
			return n, rest[1:], nil
		}
		return nil, s, fmt.Errorf(`expected "," or ")" at %q`, rest)
	}
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}
