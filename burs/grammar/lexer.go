package grammar

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'burgo.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("burgo.grammar")
}

// tokType enumerates this package's own tiny token set; it is
// deliberately not the wider gorgo.TokType/Token machinery, since the
// grammar DSL has no use for spans, lexemes-as-values or a pluggable
// Tokenizer interface, one lexmachine-backed scanner is all there is.
type tokType int

const (
	tokEOF tokType = iota
	tokIdent
	tokNumber
	tokArrow   // <-
	tokColon   // :
	tokComma   // ,
	tokLParen  // (
	tokRParen  // )
	tokEllipsis // ...
	tokPattern // keyword "pattern"
	tokClosure // keyword "closure"
)

type token struct {
	typ    tokType
	lexeme string
	line   int
}

func (t token) String() string { return fmt.Sprintf("%d:%q", t.typ, t.lexeme) }

var keywords = map[string]tokType{
	"pattern": tokPattern,
	"closure": tokClosure,
}

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`#[^\n]*`), skip)
	lexer.Add([]byte(`( |\t|\n|\r)+`), skip)
	lexer.Add([]byte(`<-`), makeToken(tokArrow))
	lexer.Add([]byte(`\.\.\.`), makeToken(tokEllipsis))
	lexer.Add([]byte(`:`), makeToken(tokColon))
	lexer.Add([]byte(`,`), makeToken(tokComma))
	lexer.Add([]byte(`\(`), makeToken(tokLParen))
	lexer.Add([]byte(`\)`), makeToken(tokRParen))
	lexer.Add([]byte(`[0-9]+`), makeToken(tokNumber))
	lexer.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeIdent)
	if err := lexer.Compile(); err != nil {
		panic(fmt.Sprintf("burs/grammar: lexer DFA did not compile: %v", err))
	}
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(typ tokType) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return token{typ: typ, lexeme: string(m.Bytes), line: m.StartLine}, nil
	}
}

func makeIdent(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	lexeme := string(m.Bytes)
	if typ, ok := keywords[lexeme]; ok {
		return token{typ: typ, lexeme: lexeme, line: m.StartLine}, nil
	}
	return token{typ: tokIdent, lexeme: lexeme, line: m.StartLine}, nil
}

// tokenize runs the shared lexmachine DFA over src and returns every
// token, terminated by one synthetic tokEOF.
func tokenize(src string) ([]token, error) {
	scanner, err := lexer.Scanner([]byte(src))
	if err != nil {
		return nil, err
	}
	var toks []token
	for {
		tok, err, eof := scanner.Next()
		if eof {
			break
		}
		if err != nil {
			if ui, is := err.(*machines.UnconsumedInput); is {
				tracer().Errorf("burs/grammar: unconsumed input at byte %d", ui.FailTC)
				scanner.TC = ui.FailTC
				continue
			}
			return nil, err
		}
		toks = append(toks, tok.(token))
	}
	toks = append(toks, token{typ: tokEOF, lexeme: "<eof>"})
	return toks, nil
}
