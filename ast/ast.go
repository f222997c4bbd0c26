/*
Package ast implements the extractor: given a grammar, the recognizer's
completion trace, and the original input, it reconstructs one concrete
derivation tree.

This is the "subtle reconstruction problem" spec.md calls out alongside the
recognizer itself: the trace only says which (origin, end, nonterminal)
triples were completed, not how a particular rule's right-hand side split
that span among its symbols. The extractor rediscovers the split right-to-left
(left-to-right is available via Direction), depth-first, preferring — at
every choice point — the first rule in grammar declaration order that can be
made to match, exactly as spec.md §5 prescribes for disambiguation.

A completion trace entry is already globally valid: (origin, end, nt) means
nt derives input[origin:end] regardless of who needed it. The recognizer's
chart compresses right-recursion waiter chains into bypass records purely to
keep its own completion lookups fast; that compression carries no additional
semantic information beyond what the trace already records, so the extractor
never needs to consult the chart — trace-only backward reconstruction is
already sound and complete.

The teacher's own tree-building stage (terex/termr, driven from lr/sppf's
packed shared-packed-parse-forest) solves a related but larger problem (an
ambiguous forest, not a single preferred tree); the single-best-derivation
walk implemented here is grounded in spec.md's own description rather than
transplanted from sppf, which is why the data types here (Node, not
sppf.Symbol) are new rather than reused.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package ast

import (
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/schuko/tracing"

	"github.com/arborio/cfgearley/cfg"
	"github.com/arborio/cfgearley/earley"
	"github.com/arborio/cfgearley/symbol"
)

// tracer traces with key 'cfgearley.ast'.
func tracer() tracing.Trace {
	return tracing.Select("cfgearley.ast")
}

// ErrNoDerivation is returned when no rule can be made to reconstruct some
// span the trace claims was completed: an internal inconsistency between the
// trace and the grammar, not a property of the input, so spec.md §7 treats it
// as a programmer-facing panic rather than a recoverable error — see
// Reconstruct's doc comment.
var ErrNoDerivation = errors.New("ast: no rule reconstructs the claimed span")

// Node is one interior or leaf point of a derivation tree. Exactly one of
// Rule (interior) or Term (leaf) is set.
type Node[T comparable] struct {
	NT       symbol.NT
	Rule     *cfg.Rule[T]
	Children []*Node[T]
	Term     *symbol.Symbol[T]
	Origin   int
	End      int
}

// IsLeaf reports whether n is a terminal leaf rather than a rule application.
func (n *Node[T]) IsLeaf() bool { return n.Term != nil }

// Direction selects which end of a rule's right-hand side the extractor
// fixes first when searching for a split point. spec.md leaves this an open
// choice; right-to-left is the default and the one this package's tests
// exercise, matching the teacher's general preference (terex walks trees
// right-to-left when flattening argument lists) for right-to-left traversal.
type Direction int

const (
	RightToLeft Direction = iota
	LeftToRight
)

// Option configures Reconstruct.
type Option func(*config)

type config struct {
	direction Direction
}

// WithDirection overrides the default right-to-left split search.
func WithDirection(d Direction) Option {
	return func(c *config) { c.direction = d }
}

type compKey struct {
	origin, end int
	nt          symbol.NT
}

// Reconstruct walks the recognizer's completion trace to produce one
// derivation tree for start spanning the whole input, applying the
// first-matching-rule-in-declaration-order disambiguation policy at every
// choice point.
//
// A non-nil error here always means ErrNoDerivation or a left-recursion
// no-progress cycle: both indicate the trace is inconsistent with the
// grammar (a bug upstream of this function, most plausibly in the
// recognizer), never an ordinary "didn't parse" outcome — that case is
// already rejected earlier, by earley.Parse returning
// earley.NoSurvivingStatesError. Per spec.md §7's error/panic split,
// callers may choose to treat a non-nil return here as a panic-worthy
// invariant violation; Reconstruct itself stays a plain error return so
// callers retain that choice.
func Reconstruct[T comparable](g *cfg.Grammar[T], trace []earley.TraceEntry[T], input []symbol.Symbol[T], start symbol.NT, opts ...Option) (*Node[T], error) {
	cfgOpt := config{direction: RightToLeft}
	for _, o := range opts {
		o(&cfgOpt)
	}

	e := &extractor[T]{
		g:          g,
		input:      input,
		dir:        cfgOpt.direction,
		byKey:      map[compKey][]int{},
		endIndex:   map[endKey][]int{},
		startIndex: map[startKey][]int{},
		inProgress: map[compKey]bool{},
		memo:       map[compKey]*memoEntry[T]{},
	}
	e.indexTrace(trace)

	node, err := e.build(start, 0, len(input))
	if err != nil {
		return nil, err
	}
	tracer().Debugf("ast: reconstructed tree for nt%d over [0,%d)", start, len(input))
	return node, nil
}

type endKey struct {
	end int
	nt  symbol.NT
}
type startKey struct {
	start int
	nt    symbol.NT
}

type memoEntry[T comparable] struct {
	node *Node[T]
	err  error
}

type extractor[T comparable] struct {
	g          *cfg.Grammar[T]
	input      []symbol.Symbol[T]
	dir        Direction
	byKey      map[compKey][]int // (origin,end,nt) -> rule indices, grammar order
	endIndex   map[endKey][]int  // (end,nt) -> sorted distinct origins
	startIndex map[startKey][]int
	inProgress map[compKey]bool
	memo       map[compKey]*memoEntry[T]
}

func (e *extractor[T]) indexTrace(trace []earley.TraceEntry[T]) {
	seenEnds := map[endKey]map[int]bool{}
	seenStarts := map[startKey]map[int]bool{}
	for _, t := range trace {
		// Find the global rule index for t.Rule by its slot within its LHS's
		// range: rules are grouped by LHS, so a linear scan within that
		// range recovers the index cheaply without storing one on TraceEntry.
		lo, hi := e.g.RangeFor(t.NT)
		idx := -1
		for i := lo; i < hi; i++ {
			if &e.g.Rules[i] == t.Rule {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue // defensive: a trace entry whose rule isn't in this grammar
		}
		k := compKey{t.Origin, t.End, t.NT}
		e.byKey[k] = append(e.byKey[k], idx)

		ek := endKey{t.End, t.NT}
		if seenEnds[ek] == nil {
			seenEnds[ek] = map[int]bool{}
		}
		if !seenEnds[ek][t.Origin] {
			seenEnds[ek][t.Origin] = true
			e.endIndex[ek] = append(e.endIndex[ek], t.Origin)
		}

		sk := startKey{t.Origin, t.NT}
		if seenStarts[sk] == nil {
			seenStarts[sk] = map[int]bool{}
		}
		if !seenStarts[sk][t.End] {
			seenStarts[sk][t.End] = true
			e.startIndex[sk] = append(e.startIndex[sk], t.End)
		}
	}
	for k := range e.byKey {
		sort.Ints(e.byKey[k])
	}
	for k := range e.endIndex {
		// Greedy longest-match-first: try the earliest (widest) origin before
		// a later (narrower) one, so an ambiguous span prefers consuming as
		// much as possible — the "ambiguous-prefix greedy resolution" policy
		// spec.md §8 tests for.
		sort.Ints(e.endIndex[k])
	}
	for k := range e.startIndex {
		sort.Sort(sort.Reverse(sort.IntSlice(e.startIndex[k])))
	}
}

// build reconstructs the single preferred derivation of nt over [origin,end),
// trying rules in grammar order and caching the outcome (success or failure)
// so that repeated reference to the same span — the hallmark of right
// recursion, now collapsed by the chart's bypass records, and of diamond
// sharing in general — costs one reconstruction, not one per reference.
func (e *extractor[T]) build(nt symbol.NT, origin, end int) (*Node[T], error) {
	key := compKey{origin, end, nt}
	if m, ok := e.memo[key]; ok {
		return m.node, m.err
	}
	if e.inProgress[key] {
		err := fmt.Errorf("ast: left-recursion made no progress reconstructing nt%d over [%d,%d)", nt, origin, end)
		return nil, err
	}
	e.inProgress[key] = true
	node, err := e.buildUncached(nt, origin, end, key)
	delete(e.inProgress, key)
	e.memo[key] = &memoEntry[T]{node: node, err: err}
	return node, err
}

func (e *extractor[T]) buildUncached(nt symbol.NT, origin, end int, key compKey) (*Node[T], error) {
	for _, ri := range e.byKey[key] {
		rule := &e.g.Rules[ri]
		children, ok := e.matchRHS(rule.RHS, origin, end)
		if ok {
			return &Node[T]{NT: nt, Rule: rule, Children: children, Origin: origin, End: end}, nil
		}
	}
	return nil, fmt.Errorf("%w: nt%d over [%d,%d)", ErrNoDerivation, nt, origin, end)
}

// matchRHS tries to partition [origin,end) among rhs's symbols in order,
// peeling one symbol at a time from whichever end e.dir fixes, and returns
// the matched children in rule order whichever direction was used.
func (e *extractor[T]) matchRHS(rhs []symbol.Symbol[T], origin, end int) ([]*Node[T], bool) {
	if len(rhs) == 0 {
		return nil, origin == end
	}
	if e.dir == RightToLeft {
		return e.matchFromRight(rhs, origin, end)
	}
	return e.matchFromLeft(rhs, origin, end)
}

func (e *extractor[T]) matchFromRight(rhs []symbol.Symbol[T], origin, end int) ([]*Node[T], bool) {
	last := rhs[len(rhs)-1]
	head := rhs[:len(rhs)-1]

	if term, isTerm := last.Terminal(); isTerm {
		if end-1 < origin || end-1 >= len(e.input) {
			return nil, false
		}
		if t, ok := e.input[end-1].Terminal(); !ok || t != term {
			return nil, false
		}
		var rest []*Node[T]
		var ok bool
		if len(head) == 0 {
			rest, ok = nil, origin == end-1
		} else {
			rest, ok = e.matchFromRight(head, origin, end-1)
		}
		if !ok {
			return nil, false
		}
		leaf := e.input[end-1]
		return append(rest, &Node[T]{Term: &leaf, Origin: end - 1, End: end}), true
	}

	nt, _ := last.Nonterminal()
	for _, s := range e.endIndex[endKey{end, nt}] {
		if s < origin {
			continue
		}
		child, err := e.build(nt, s, end)
		if err != nil {
			continue
		}
		var rest []*Node[T]
		var ok bool
		if len(head) == 0 {
			rest, ok = nil, origin == s
		} else {
			rest, ok = e.matchFromRight(head, origin, s)
		}
		if ok {
			return append(rest, child), true
		}
	}
	return nil, false
}

func (e *extractor[T]) matchFromLeft(rhs []symbol.Symbol[T], origin, end int) ([]*Node[T], bool) {
	first := rhs[0]
	tail := rhs[1:]

	if term, isTerm := first.Terminal(); isTerm {
		if origin >= end || origin >= len(e.input) {
			return nil, false
		}
		if t, ok := e.input[origin].Terminal(); !ok || t != term {
			return nil, false
		}
		leaf := e.input[origin]
		var rest []*Node[T]
		var ok bool
		if len(tail) == 0 {
			rest, ok = nil, origin+1 == end
		} else {
			rest, ok = e.matchFromLeft(tail, origin+1, end)
		}
		if !ok {
			return nil, false
		}
		return append([]*Node[T]{{Term: &leaf, Origin: origin, End: origin + 1}}, rest...), true
	}

	nt, _ := first.Nonterminal()
	for _, s := range e.startIndex[startKey{origin, nt}] {
		if s > end {
			continue
		}
		child, err := e.build(nt, origin, s)
		if err != nil {
			continue
		}
		var rest []*Node[T]
		var ok bool
		if len(tail) == 0 {
			rest, ok = nil, s == end
		} else {
			rest, ok = e.matchFromLeft(tail, s, end)
		}
		if ok {
			return append([]*Node[T]{child}, rest...), true
		}
	}
	return nil, false
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
