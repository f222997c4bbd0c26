/*
Package cfg implements the grammar data structure consumed by the recognizer
and extractor: an immutable table of rules indexed by nonterminal, with
nullability precomputed per rule and per nonterminal.

Grammar construction (parsing some source grammar notation into a []Rule) is
an external collaborator, out of scope here — cfg only consumes the prepared
rule list.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package cfg

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/schuko/tracing"

	"github.com/arborio/cfgearley/symbol"
)

// tracer traces with key 'cfgearley.cfg'.
func tracer() tracing.Trace {
	return tracing.Select("cfgearley.cfg")
}

var (
	// ErrUnknownNonterminal is returned by Build when a rule's RHS mentions a
	// nonterminal id for which no rule exists anywhere in the grammar.
	ErrUnknownNonterminal = errors.New("cfg: rule references nonterminal with no productions")
	// ErrDuplicateRule is returned by Build when two rules have identical
	// (lhs, rhs).
	ErrDuplicateRule = errors.New("cfg: duplicate rule")
	// ErrUnitCycle is returned by Build when the unit-production graph
	// (A ::= B, B ::= A, …) contains a cycle, which would make reconstruction
	// loop forever without making terminal progress.
	ErrUnitCycle = errors.New("cfg: cycle in unit-production graph")
)

// Rule is lhs_nt ::= rhs, where rhs is a (possibly empty) ordered sequence of
// symbols. An empty RHS denotes an epsilon-rule.
type Rule[T comparable] struct {
	LHS symbol.NT
	RHS []symbol.Symbol[T]
}

func (r Rule[T]) String() string {
	return fmt.Sprintf("nt%d ::= %v", r.LHS, r.RHS)
}

// Grammar is an immutable, validated rule table. Construct one with Build.
// Rules are sorted by LHS; rule identity (a pointer into Rules) is stable for
// the grammar's lifetime, which lets the extractor use *Rule as a
// disambiguation key.
type Grammar[T comparable] struct {
	Rules        []Rule[T]
	RuleNullable []bool
	NTNullable   []bool
	ntIndex      []int // nt's rules occupy Rules[ntIndex[nt]:ntIndex[nt+1]]
}

// Build sorts rules by LHS (stably, so rule declaration order — the
// disambiguation policy — survives among rules sharing an LHS), computes the
// nullability closure, and validates the grammar.
func Build[T comparable](rules []Rule[T]) (*Grammar[T], error) {
	sorted := make([]Rule[T], len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LHS < sorted[j].LHS
	})

	var ntIndex []int
	for i, r := range sorted {
		nt := int(r.LHS)
		for len(ntIndex) <= nt {
			ntIndex = append(ntIndex, i)
		}
	}
	ntIndex = append(ntIndex, len(sorted))

	g := &Grammar[T]{Rules: sorted, ntIndex: ntIndex}

	if err := g.checkKnownNonterminals(); err != nil {
		return nil, err
	}
	if err := g.checkDuplicateRules(); err != nil {
		return nil, err
	}
	g.closeNullable()
	if err := g.checkUnitCycles(); err != nil {
		return nil, err
	}
	tracer().Debugf("cfg: built grammar with %d rules, %d nonterminals", len(g.Rules), len(g.ntIndex)-1)
	return g, nil
}

func (g *Grammar[T]) checkKnownNonterminals() error {
	maxNT := NT(len(g.ntIndex) - 1)
	for _, r := range g.Rules {
		for _, sym := range r.RHS {
			if nt, ok := sym.Nonterminal(); ok {
				if nt >= maxNT || g.rangeFor(nt).Len() == 0 {
					return fmt.Errorf("%w: nt%d in rule %s", ErrUnknownNonterminal, nt, r)
				}
			}
		}
	}
	return nil
}

// NT is re-exported for readability within this package's error messages.
type NT = symbol.NT

type ntRange struct{ start, end int }

func (r ntRange) Len() int { return r.end - r.start }

func (g *Grammar[T]) rangeFor(nt NT) ntRange {
	n := int(nt)
	if n < 0 || n >= len(g.ntIndex)-1 {
		return ntRange{}
	}
	return ntRange{g.ntIndex[n], g.ntIndex[n+1]}
}

// RulesFor returns the (contiguous, grammar-ordered) slice of rules whose LHS
// is nt. O(1).
func (g *Grammar[T]) RulesFor(nt NT) []Rule[T] {
	rng := g.rangeFor(nt)
	return g.Rules[rng.start:rng.end]
}

// RangeFor returns the [start, end) indices into g.Rules occupied by nt's
// rules, so callers that need a stable global rule index (the recognizer and
// extractor both do, for state/disambiguation ordering) can compute it as
// start+i without resorting to pointer arithmetic over Rules.
func (g *Grammar[T]) RangeFor(nt NT) (start, end int) {
	rng := g.rangeFor(nt)
	return rng.start, rng.end
}

// NumNonterminals returns the number of distinct nonterminal ids spanned by
// the grammar's rules.
func (g *Grammar[T]) NumNonterminals() int {
	return len(g.ntIndex) - 1
}

// checkDuplicateRules hashes each rule's canonical (lhs, rhs) shape with
// structhash — mirroring the backlink-keying idiom from the teacher's Earley
// completer (it hashes an anonymous struct of otherwise-unexported fields to
// get a stable map key) — and rejects any second rule hashing identically.
func (g *Grammar[T]) checkDuplicateRules() error {
	seen := treeset.NewWithStringComparator()
	for _, r := range g.Rules {
		key := ruleKey(r)
		digest, err := structhash.Hash(key, 1)
		if err != nil {
			return fmt.Errorf("cfg: hashing rule %s: %w", r, err)
		}
		if seen.Contains(digest) {
			return fmt.Errorf("%w: %s", ErrDuplicateRule, r)
		}
		seen.Add(digest)
	}
	return nil
}

// ruleKey builds a canonical string shape for a rule so that structhash sees
// a plain, exported-field value rather than our tagged Symbol union.
func ruleKey[T comparable](r Rule[T]) struct {
	LHS NT
	RHS string
} {
	return struct {
		LHS NT
		RHS string
	}{LHS: r.LHS, RHS: fmt.Sprint(r.RHS)}
}

// closeNullable computes, by fixed-point iteration, which rules and
// nonterminals derive epsilon: a rule is nullable iff every RHS symbol is a
// nullable nonterminal (an empty RHS is trivially nullable); a nonterminal is
// nullable iff any of its rules is.
func (g *Grammar[T]) closeNullable() {
	ruleNullable := make([]bool, len(g.Rules))
	ntNullable := make([]bool, len(g.ntIndex)-1)
	for i, r := range g.Rules {
		if len(r.RHS) == 0 {
			ruleNullable[i] = true
			ntNullable[r.LHS] = true
		}
	}
	for dirty := true; dirty; {
		dirty = false
		for i, r := range g.Rules {
			if ruleNullable[i] {
				continue
			}
			allNullable := true
			for _, sym := range r.RHS {
				nt, isNT := sym.Nonterminal()
				if !isNT || !ntNullable[nt] {
					allNullable = false
					break
				}
			}
			if allNullable {
				ruleNullable[i] = true
				ntNullable[r.LHS] = true
				dirty = true
			}
		}
	}
	g.RuleNullable = ruleNullable
	g.NTNullable = ntNullable
}

// checkUnitCycles rejects grammars whose unit-production graph (rules of the
// exact shape A ::= B, a single nonterminal RHS) contains a cycle: such a
// cycle lets the extractor loop forever reconstructing A from B from A… with
// no terminal progress. Per spec.md's §9 resolution, this is rejected here
// at grammar-build time rather than guarded only at a single level during
// extraction.
func (g *Grammar[T]) checkUnitCycles() error {
	numNT := len(g.ntIndex) - 1
	edges := make([][]NT, numNT)
	for _, r := range g.Rules {
		if len(r.RHS) == 1 {
			if nt, ok := r.RHS[0].Nonterminal(); ok {
				edges[r.LHS] = append(edges[r.LHS], nt)
			}
		}
	}
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, numNT)
	var visit func(nt NT) error
	visit = func(nt NT) error {
		color[nt] = gray
		for _, next := range edges[nt] {
			switch color[next] {
			case gray:
				return fmt.Errorf("%w: nt%d", ErrUnitCycle, next)
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		color[nt] = black
		return nil
	}
	for nt := 0; nt < numNT; nt++ {
		if color[nt] == white {
			if err := visit(NT(nt)); err != nil {
				return err
			}
		}
	}
	return nil
}
