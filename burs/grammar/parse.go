package grammar

import "fmt"

// PatternDecl is one parsed "pattern target <- nodeType(childTypes…) :
// cost" line.
type PatternDecl struct {
	Target     string
	NodeType   string
	ChildTypes []string
	IsVarArgs  bool
	Cost       int64
	Line       int
}

// ClosureDecl is one parsed "closure target <- source : cost" line.
type ClosureDecl struct {
	Target string
	Source string
	Cost   int64
	Line   int
}

// Grammar is the parsed form of a grammar text: an ordered list of
// pattern and closure declarations, in source order (order matters for
// tie-breaking: among equal-cost matchers, the one recorded first wins).
type Grammar struct {
	Patterns []PatternDecl
	Closures []ClosureDecl
}

// ParseError reports a syntax error together with the offending line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("burs/grammar: line %d: %s", e.Line, e.Message)
}

// Parse tokenizes and parses src into a Grammar.
func Parse(src string) (*Grammar, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseGrammar()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(typ tokType, what string) (token, error) {
	t := p.next()
	if t.typ != typ {
		return t, &ParseError{Line: t.line, Message: fmt.Sprintf("expected %s, got %q", what, t.lexeme)}
	}
	return t, nil
}

func (p *parser) parseGrammar() (*Grammar, error) {
	g := &Grammar{}
	for p.peek().typ != tokEOF {
		switch p.peek().typ {
		case tokPattern:
			p.next()
			decl, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			g.Patterns = append(g.Patterns, decl)
		case tokClosure:
			p.next()
			decl, err := p.parseClosure()
			if err != nil {
				return nil, err
			}
			g.Closures = append(g.Closures, decl)
		default:
			t := p.peek()
			return nil, &ParseError{Line: t.line, Message: fmt.Sprintf(`expected "pattern" or "closure", got %q`, t.lexeme)}
		}
	}
	return g, nil
}

// parsePattern parses: IDENT <- IDENT ( [IDENT [, IDENT]* ["..."]]? ) : NUMBER
func (p *parser) parsePattern() (PatternDecl, error) {
	decl := PatternDecl{Line: p.peek().line}
	target, err := p.expect(tokIdent, "target nonterminal")
	if err != nil {
		return decl, err
	}
	decl.Target = target.lexeme
	if _, err := p.expect(tokArrow, `"<-"`); err != nil {
		return decl, err
	}
	nodeType, err := p.expect(tokIdent, "node type")
	if err != nil {
		return decl, err
	}
	decl.NodeType = nodeType.lexeme
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return decl, err
	}
	for p.peek().typ != tokRParen {
		ct, err := p.expect(tokIdent, "child nonterminal")
		if err != nil {
			return decl, err
		}
		decl.ChildTypes = append(decl.ChildTypes, ct.lexeme)
		if p.peek().typ == tokEllipsis {
			p.next()
			decl.IsVarArgs = true
			break
		}
		if p.peek().typ == tokComma {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return decl, err
	}
	if _, err := p.expect(tokColon, `":"`); err != nil {
		return decl, err
	}
	cost, err := p.expect(tokNumber, "cost")
	if err != nil {
		return decl, err
	}
	decl.Cost = parseInt(cost.lexeme)
	return decl, nil
}

// parseClosure parses: IDENT <- IDENT : NUMBER
func (p *parser) parseClosure() (ClosureDecl, error) {
	decl := ClosureDecl{Line: p.peek().line}
	target, err := p.expect(tokIdent, "target nonterminal")
	if err != nil {
		return decl, err
	}
	decl.Target = target.lexeme
	if _, err := p.expect(tokArrow, `"<-"`); err != nil {
		return decl, err
	}
	source, err := p.expect(tokIdent, "source nonterminal")
	if err != nil {
		return decl, err
	}
	decl.Source = source.lexeme
	if _, err := p.expect(tokColon, `":"`); err != nil {
		return decl, err
	}
	cost, err := p.expect(tokNumber, "cost")
	if err != nil {
		return decl, err
	}
	decl.Cost = parseInt(cost.lexeme)
	return decl, nil
}

func parseInt(s string) int64 {
	var n int64
	for _, r := range s {
		n = n*10 + int64(r-'0')
	}
	return n
}
