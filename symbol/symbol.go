/*
Package symbol defines the Symbol abstraction the rest of the cfgearley
toolbox is polymorphic over: a cheaply-discriminated tagged value that is
either a terminal (comparable to an input element) or a nonterminal
identifier (a dense integer).

The engine never inspects a terminal's structure, only compares it for
equality against the next input element, so any comparable Go type may be
used — byte, rune, a token struct, whatever a caller's scanner produces.
Byte-oriented parsing (spec's "common instantiation") is provided by
CastBytes.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package symbol

import "fmt"

// NT identifies a nonterminal. IDs are dense: a grammar with n distinct
// nonterminals uses the range [0, n).
type NT uint32

// Symbol is either a terminal of type T or a nonterminal. The zero value is
// the nonterminal with id 0 — construct values with Term or Nonterm instead
// of relying on zero values.
type Symbol[T comparable] struct {
	nt     NT
	term   T
	isTerm bool
}

// Term wraps a terminal value as a Symbol.
func Term[T comparable](t T) Symbol[T] {
	return Symbol[T]{term: t, isTerm: true}
}

// Nonterm wraps a nonterminal id as a Symbol.
func Nonterm[T comparable](nt NT) Symbol[T] {
	return Symbol[T]{nt: nt}
}

// IsTerminal reports whether s is a terminal.
func (s Symbol[T]) IsTerminal() bool {
	return s.isTerm
}

// Terminal returns the wrapped terminal value and true, or the zero value
// and false if s is a nonterminal.
func (s Symbol[T]) Terminal() (T, bool) {
	return s.term, s.isTerm
}

// Nonterminal returns the wrapped nonterminal id and true, or 0 and false if
// s is a terminal.
func (s Symbol[T]) Nonterminal() (NT, bool) {
	return s.nt, !s.isTerm
}

func (s Symbol[T]) String() string {
	if s.isTerm {
		return fmt.Sprintf("%v", s.term)
	}
	return fmt.Sprintf("NT(%d)", s.nt)
}

// Byte is the common byte-terminal instantiation used by byte-level parsing.
type Byte = Symbol[byte]

// CastBytes converts a raw byte slice into terminal symbols, one per byte.
// This is the common instantiation referenced throughout spec.md: "byte-level
// parsing is simply the common instantiation" of the generic terminal type.
func CastBytes(src []byte) []Byte {
	out := make([]Byte, len(src))
	for i, b := range src {
		out[i] = Term(b)
	}
	return out
}

// Labels binds debug-only names to nonterminal ids, for pretty-printing
// traces, grammars and REPL output without threading a name through every
// Symbol value.
type Labels map[NT]string

// Name returns the bound label for nt, or a synthetic placeholder if none
// was bound.
func (l Labels) Name(nt NT) string {
	if name, ok := l[nt]; ok {
		return name
	}
	return fmt.Sprintf("nt%d", nt)
}

// Bind records a debug label for nt, returning l for chaining.
func (l Labels) Bind(nt NT, name string) Labels {
	l[nt] = name
	return l
}
