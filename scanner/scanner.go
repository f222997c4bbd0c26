/*
Package scanner turns raw input into the []symbol.Symbol[T] sequences the
recognizer consumes. Two ways are provided: Bytes, for grammars over raw
bytes (used by cmd/cfgrepl for its byte-level demo grammar), and Lexer, an
adapter over timtadh/lexmachine for grammars over a token alphabet — grounded
directly in the teacher's own lr/scanner/lexmachine.go adapter, down to the
retry-on-UnconsumedInput loop.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package scanner

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/arborio/cfgearley/symbol"
)

// tracer traces with key 'cfgearley.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("cfgearley.scanner")
}

// Bytes casts raw input into terminal symbols over byte, one per input byte.
func Bytes(src []byte) []symbol.Byte {
	return symbol.CastBytes(src)
}

// Lexer wraps a compiled lexmachine DFA and hands back a terminal stream
// keyed by lexmachine token id, suitable as input to earley.Parse[int].
type Lexer struct {
	lex *lexmachine.Lexer
}

// NewLexer compiles a lexer from a caller-supplied init hook (which Adds the
// grammar's token patterns), plus convenience lists for literal and keyword
// tokens and the token-id table — the same four-argument shape the teacher's
// NewLMAdapter takes.
func NewLexer(init func(*lexmachine.Lexer), literals []string, keywords []string, tokenIDs map[string]int) (*Lexer, error) {
	lex := lexmachine.NewLexer()
	init(lex)
	for _, lit := range literals {
		pattern := "\\" + strings.Join(strings.Split(lit, ""), "\\")
		lex.Add([]byte(pattern), tokenAction(tokenIDs[lit]))
	}
	for _, kw := range keywords {
		lex.Add([]byte(strings.ToLower(kw)), tokenAction(tokenIDs[kw]))
	}
	if err := lex.Compile(); err != nil {
		return nil, err
	}
	return &Lexer{lex: lex}, nil
}

func tokenAction(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// Skip is a pre-built lexmachine.Action for patterns that should produce no
// token at all (whitespace, comments).
func Skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// Tokenize runs the compiled lexer over input end to end, returning one
// terminal symbol per recognized token. An UnconsumedInput error (a byte run
// that matched nothing) is logged and skipped forward, matching the
// teacher's recovery loop, rather than aborting the whole scan.
func (l *Lexer) Tokenize(input []byte) ([]symbol.Symbol[int], error) {
	s, err := l.lex.Scanner(input)
	if err != nil {
		return nil, err
	}
	var out []symbol.Symbol[int]
	for {
		tok, err, eof := s.Next()
		for err != nil {
			tracer().Errorf("scanner: %v", err)
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				s.TC = ui.FailTC
			}
			tok, err, eof = s.Next()
		}
		if eof {
			return out, nil
		}
		token := tok.(*lexmachine.Token)
		out = append(out, symbol.Term(token.Type))
	}
}
