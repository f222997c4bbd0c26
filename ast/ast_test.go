package ast

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/arborio/cfgearley/cfg"
	"github.com/arborio/cfgearley/earley"
	"github.com/arborio/cfgearley/symbol"
)

func t_(b byte) symbol.Symbol[byte] { return symbol.Term(b) }
func n_(nt symbol.NT) symbol.Symbol[byte] { return symbol.Nonterm[byte](nt) }
func bytes_(s string) []symbol.Symbol[byte] {
	out := make([]symbol.Symbol[byte], len(s))
	for i := 0; i < len(s); i++ {
		out[i] = t_(s[i])
	}
	return out
}

const (
	ntSum symbol.NT = iota
	ntProduct
	ntFactor
)

func arithGrammar(t *testing.T) *cfg.Grammar[byte] {
	rules := []cfg.Rule[byte]{
		{LHS: ntSum, RHS: []symbol.Symbol[byte]{n_(ntSum), t_('+'), n_(ntProduct)}},
		{LHS: ntSum, RHS: []symbol.Symbol[byte]{n_(ntProduct)}},
		{LHS: ntProduct, RHS: []symbol.Symbol[byte]{n_(ntProduct), t_('*'), n_(ntFactor)}},
		{LHS: ntProduct, RHS: []symbol.Symbol[byte]{n_(ntFactor)}},
		{LHS: ntFactor, RHS: []symbol.Symbol[byte]{t_('a')}},
		{LHS: ntFactor, RHS: []symbol.Symbol[byte]{t_('('), n_(ntSum), t_(')')}},
	}
	g, err := cfg.Build(rules)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func countLeaves[T comparable](n *Node[T]) int {
	if n.IsLeaf() {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += countLeaves(c)
	}
	return total
}

func TestReconstructArithmeticShape(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgearley.ast")
	defer teardown()

	g := arithGrammar(t)
	input := bytes_("a+a*a")
	sink := &earley.RecordingSink[byte]{}
	_, err := earley.Parse(g, input, ntSum, sink)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tree, err := Reconstruct(g, sink.Entries, input, ntSum)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if tree.NT != ntSum || tree.Origin != 0 || tree.End != len(input) {
		t.Fatalf("root mismatch: %+v", tree)
	}
	if got := countLeaves(tree); got != len(input) {
		t.Errorf("expected %d leaves (one per input byte), got %d", len(input), got)
	}
	// a+a*a should associate as Sum(a, +, Product(a,*,a)): root has 3
	// children, and its rightmost child is itself a Product application.
	if len(tree.Children) != 3 {
		t.Fatalf("expected Sum ::= Sum '+' Product shape (3 children), got %d", len(tree.Children))
	}
	if tree.Children[2].NT != ntProduct {
		t.Errorf("expected rightmost child to be a Product, got nt%d", tree.Children[2].NT)
	}
}

func TestReconstructLeftToRightMatchesRightToLeft(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgearley.ast")
	defer teardown()

	g := arithGrammar(t)
	input := bytes_("a+a+a")
	sink := &earley.RecordingSink[byte]{}
	_, err := earley.Parse(g, input, ntSum, sink)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rtl, err := Reconstruct(g, sink.Entries, input, ntSum, WithDirection(RightToLeft))
	if err != nil {
		t.Fatalf("Reconstruct (right-to-left): %v", err)
	}
	ltr, err := Reconstruct(g, sink.Entries, input, ntSum, WithDirection(LeftToRight))
	if err != nil {
		t.Fatalf("Reconstruct (left-to-right): %v", err)
	}
	if countLeaves(rtl) != countLeaves(ltr) {
		t.Errorf("both directions should cover the whole input: rtl=%d ltr=%d", countLeaves(rtl), countLeaves(ltr))
	}
}

const (
	ntList symbol.NT = iota
	ntItems
	ntItem
)

func listGrammar(t *testing.T) *cfg.Grammar[byte] {
	rules := []cfg.Rule[byte]{
		{LHS: ntList, RHS: []symbol.Symbol[byte]{t_('('), n_(ntItems), t_(')')}},
		{LHS: ntItems, RHS: nil},
		{LHS: ntItems, RHS: []symbol.Symbol[byte]{n_(ntItem)}},
		{LHS: ntItems, RHS: []symbol.Symbol[byte]{n_(ntItem), t_(','), n_(ntItems)}},
		{LHS: ntItem, RHS: []symbol.Symbol[byte]{t_('x')}},
	}
	g, err := cfg.Build(rules)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestReconstructNullableEmptyList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgearley.ast")
	defer teardown()

	g := listGrammar(t)
	input := bytes_("()")
	sink := &earley.RecordingSink[byte]{}
	_, err := earley.Parse(g, input, ntList, sink)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tree, err := Reconstruct(g, sink.Entries, input, ntList)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(tree.Children) != 3 {
		t.Fatalf("List ::= '(' Items ')' should have 3 children, got %d", len(tree.Children))
	}
	items := tree.Children[1]
	if items.IsLeaf() || items.NT != ntItems || len(items.Children) != 0 {
		t.Errorf("Items should reconstruct as an empty (nullable) application, got %+v", items)
	}
}

func TestReconstructRightRecursiveList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cfgearley.ast")
	defer teardown()

	g := listGrammar(t)
	input := bytes_("(x,x,x,x)")
	sink := &earley.RecordingSink[byte]{}
	_, err := earley.Parse(g, input, ntList, sink)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tree, err := Reconstruct(g, sink.Entries, input, ntList)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	xCount := 0
	var walk func(n *Node[byte])
	walk = func(n *Node[byte]) {
		if n.IsLeaf() {
			if v, _ := n.Term.Terminal(); v == 'x' {
				xCount++
			}
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tree)
	if xCount != 4 {
		t.Errorf("expected 4 'x' leaves in the reconstructed tree, got %d", xCount)
	}
}
