package cfg

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/arborio/cfgearley/symbol"
)

const (
	ntS symbol.NT = iota
	ntA
	ntB
	ntC
)

func t_[T comparable](t T) symbol.Symbol[T] { return symbol.Term(t) }
func n_[T comparable](nt symbol.NT) symbol.Symbol[T] { return symbol.Nonterm[T](nt) }

func TestBuildComputesNullability(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgearley.cfg")
	defer teardown()

	rules := []Rule[byte]{
		{LHS: ntS, RHS: []symbol.Symbol[byte]{n_[byte](ntA), n_[byte](ntB)}},
		{LHS: ntA, RHS: nil},
		{LHS: ntB, RHS: []symbol.Symbol[byte]{t_(byte('x'))}},
	}
	g, err := Build(rules)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !g.NTNullable[ntA] {
		t.Errorf("nt A should be nullable")
	}
	if g.NTNullable[ntB] {
		t.Errorf("nt B should not be nullable")
	}
	if g.NTNullable[ntS] {
		t.Errorf("nt S should not be nullable (B is not)")
	}
}

func TestBuildTransitiveNullability(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgearley.cfg")
	defer teardown()

	// S ::= A ; A ::= B ; B ::= (empty)  — S must end up nullable too.
	rules := []Rule[byte]{
		{LHS: ntS, RHS: []symbol.Symbol[byte]{n_[byte](ntA)}},
		{LHS: ntA, RHS: []symbol.Symbol[byte]{n_[byte](ntB)}},
		{LHS: ntB, RHS: nil},
	}
	g, err := Build(rules)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !g.NTNullable[ntS] || !g.NTNullable[ntA] || !g.NTNullable[ntB] {
		t.Errorf("nullability should have propagated through the unit chain: %v", g.NTNullable)
	}
}

func TestBuildRejectsUnknownNonterminal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgearley.cfg")
	defer teardown()

	rules := []Rule[byte]{
		{LHS: ntS, RHS: []symbol.Symbol[byte]{n_[byte](ntC)}},
	}
	_, err := Build(rules)
	if !errors.Is(err, ErrUnknownNonterminal) {
		t.Fatalf("expected ErrUnknownNonterminal, got %v", err)
	}
}

func TestBuildRejectsDuplicateRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgearley.cfg")
	defer teardown()

	rules := []Rule[byte]{
		{LHS: ntS, RHS: []symbol.Symbol[byte]{t_(byte('x'))}},
		{LHS: ntS, RHS: []symbol.Symbol[byte]{t_(byte('x'))}},
	}
	_, err := Build(rules)
	if !errors.Is(err, ErrDuplicateRule) {
		t.Fatalf("expected ErrDuplicateRule, got %v", err)
	}
}

func TestBuildRejectsUnitCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgearley.cfg")
	defer teardown()

	// A ::= B ; B ::= A — a pure unit cycle with no terminal progress.
	rules := []Rule[byte]{
		{LHS: ntA, RHS: []symbol.Symbol[byte]{n_[byte](ntB)}},
		{LHS: ntB, RHS: []symbol.Symbol[byte]{n_[byte](ntA)}},
	}
	_, err := Build(rules)
	if !errors.Is(err, ErrUnitCycle) {
		t.Fatalf("expected ErrUnitCycle, got %v", err)
	}
}

func TestRulesForAndRangeFor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgearley.cfg")
	defer teardown()

	rules := []Rule[byte]{
		{LHS: ntA, RHS: []symbol.Symbol[byte]{t_(byte('x'))}},
		{LHS: ntA, RHS: []symbol.Symbol[byte]{t_(byte('y'))}},
		{LHS: ntB, RHS: []symbol.Symbol[byte]{t_(byte('z'))}},
	}
	g, err := Build(rules)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(g.RulesFor(ntA)); got != 2 {
		t.Errorf("RulesFor(ntA): want 2 rules, got %d", got)
	}
	lo, hi := g.RangeFor(ntA)
	if hi-lo != 2 {
		t.Errorf("RangeFor(ntA): want span 2, got %d", hi-lo)
	}
	if g.NumNonterminals() < 2 {
		t.Errorf("NumNonterminals: want at least 2, got %d", g.NumNonterminals())
	}
}
