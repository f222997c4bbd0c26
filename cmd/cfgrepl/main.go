/*
Command cfgrepl is a small interactive sandbox for experimenting with a
grammar: it reads one line of input at a time, runs it through the
recognizer and extractor, and prints either the derivation tree or the
position the parse failed at. It plays the same role the teacher's T.REPL
(terex/terexlang/trepl) plays for term rewriting, scaled down to this
module's much narrower scope — recognize-then-reconstruct, not evaluate —
and borrows its readline/pterm setup wholesale.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/tracing"

	"github.com/arborio/cfgearley/ast"
	"github.com/arborio/cfgearley/cfg"
	"github.com/arborio/cfgearley/earley"
	"github.com/arborio/cfgearley/scanner"
	"github.com/arborio/cfgearley/symbol"
)

func tracer() tracing.Trace {
	return tracing.Select("cfgearley.cfgrepl")
}

// Nonterminal ids for the bundled demo grammar: a parenthesized,
// comma-separated list grammar chosen to exercise nullability (an empty
// list), right recursion (the tail of a list) and simple disambiguation.
const (
	ntList symbol.NT = iota
	ntItems
	ntItem
)

func demoGrammar() *cfg.Grammar[byte] {
	t := func(b byte) symbol.Symbol[byte] { return symbol.Term(b) }
	n := func(nt symbol.NT) symbol.Symbol[byte] { return symbol.Nonterm[byte](nt) }
	rules := []cfg.Rule[byte]{
		{LHS: ntList, RHS: []symbol.Symbol[byte]{t('('), n(ntItems), t(')')}},
		{LHS: ntItems, RHS: nil}, // empty list
		{LHS: ntItems, RHS: []symbol.Symbol[byte]{n(ntItem)}},
		{LHS: ntItems, RHS: []symbol.Symbol[byte]{n(ntItem), t(','), n(ntItems)}},
		{LHS: ntItem, RHS: []symbol.Symbol[byte]{t('x')}},
	}
	g, err := cfg.Build(rules)
	if err != nil {
		panic(fmt.Errorf("cfgrepl: bundled demo grammar is broken: %w", err))
	}
	return g
}

func main() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{Text: "  >>", Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack)}
	pterm.Error.Prefix = pterm.Prefix{Text: "  Error", Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack)}

	tlevel := flag.String("trace", "Info", "trace level [Debug|Info|Error]")
	flag.Parse()
	tracing.Select("cfgearley").SetTraceLevel(traceLevel(*tlevel))

	pterm.Info.Println("cfgrepl — enter a string over the bundled list grammar, e.g. (x,x,x)")
	g := demoGrammar()

	repl, err := readline.New("cfgrepl> ")
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
	defer repl.Close()

	for {
		line, err := repl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return
		}
		if err != nil {
			tracer().Errorf("%v", err)
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runOne(g, line)
	}
}

func runOne(g *cfg.Grammar[byte], line string) {
	input := scanner.Bytes([]byte(line))

	sink := &earley.RecordingSink[byte]{}
	_, err := earley.Parse(g, input, ntList, sink)
	if err != nil {
		pterm.Error.Printf("rejected: %v\n", err)
		return
	}
	tree, err := ast.Reconstruct(g, sink.Entries, input, ntList)
	if err != nil {
		pterm.Error.Printf("accepted, but reconstruction failed: %v\n", err)
		return
	}
	pterm.Info.Println("accepted")
	printTree(tree, 0)
}

func printTree[T comparable](n *ast.Node[T], depth int) {
	indent := strings.Repeat("  ", depth)
	if n.IsLeaf() {
		fmt.Printf("%s- %v [%d,%d)\n", indent, *n.Term, n.Origin, n.End)
		return
	}
	fmt.Printf("%s- nt%d [%d,%d)\n", indent, n.NT, n.Origin, n.End)
	for _, child := range n.Children {
		printTree(child, depth+1)
	}
}

func traceLevel(s string) tracing.TraceLevel {
	switch strings.ToLower(s) {
	case "debug":
		return tracing.LevelDebug
	case "error":
		return tracing.LevelError
	default:
		return tracing.LevelInfo
	}
}
