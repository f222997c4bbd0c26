/*
Package chart implements the recognizer's completions store: a
position-indexed map from (origin, nonterminal) to the set of states waiting
on that completion, backed by a flat, binary-searchable buffer rather than a
tree — the same "flat buffer plus boundary index" idiom the teacher's own
lr/sparse package uses for parser tables, adapted here to the recognizer's
append-only, per-position write pattern instead of sparse's arbitrary (row,
col) writes.

It also carries the right-recursion mitigation from spec.md §4.2/§4.3:
querying a chain of waiters that each complete trivially (empty remaining
suffix) collapses the whole chain into a flat "bypass" record the first time
it's walked, and every later query of the same chain is O(1).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package chart

import (
	"sort"

	"github.com/npillmayer/schuko/tracing"

	"github.com/arborio/cfgearley/cfg"
	"github.com/arborio/cfgearley/symbol"
)

// tracer traces with key 'cfgearley.chart'.
func tracer() tracing.Trace {
	return tracing.Select("cfgearley.chart")
}

// State is an Earley item (a dotted rule), presented the way spec.md's data
// model does: the input position at which the rule's parse was predicted,
// the nonterminal it derives, a pointer to the rule itself (stable identity
// for the lifetime of the grammar), and the suffix of the rule's RHS still to
// be matched.
type State[T comparable] struct {
	Origin    int
	LHS       symbol.NT
	Rule      *cfg.Rule[T]
	RuleIdx   int
	Remaining []symbol.Symbol[T]
}

// Cmp totally orders states by (origin, lhs, rule index, suffix length), the
// ordering spec.md requires to permit sorted-set operations over them.
func Cmp[T comparable](a, b State[T]) int {
	if a.Origin != b.Origin {
		return a.Origin - b.Origin
	}
	if a.LHS != b.LHS {
		return int(a.LHS) - int(b.LHS)
	}
	if a.RuleIdx != b.RuleIdx {
		return a.RuleIdx - b.RuleIdx
	}
	return len(a.Remaining) - len(b.Remaining)
}

type tag int

const (
	inline tag = iota
	bypass
)

type entry[T comparable] struct {
	nt          symbol.NT
	tag         tag
	state       State[T] // valid when tag == inline
	bypassStart int      // valid when tag == bypass: range into Chart.bypassPool
	bypassEnd   int
}

// Chart is the completions store for one parse. Entries are append-only
// within a position's segment; bypass installation rewrites an entry's tag in
// place (inline → bypass) but never removes or reorders entries, so ranges
// handed out by earlier queries stay valid.
type Chart[T comparable] struct {
	entries    []entry[T]
	index      []int // index[pos]..index[pos+1] bounds pos's segment in entries
	bypassPool []State[T]
}

// New creates an empty chart sized for an input of the given length.
func New[T comparable](inputLen int) *Chart[T] {
	index := make([]int, 1, inputLen+2)
	index[0] = 0
	return &Chart[T]{index: index}
}

// Transaction accumulates the completion entries discovered while processing
// one input position. Entries become queryable, sorted by nonterminal, once
// Close is called — Go has no destructor to run this implicitly (unlike the
// teacher's Drop-based CompletionsTransaction in the original Rust), so
// callers must `defer tx.Close()` themselves.
type Transaction[T comparable] struct {
	chart    *Chart[T]
	startLen int
	closed   bool
}

// OpenSegment begins recording the completions for the next input position.
func (c *Chart[T]) OpenSegment() *Transaction[T] {
	return &Transaction[T]{chart: c, startLen: len(c.entries)}
}

// Push records that `waiter` is waiting on the completion of `nt` at the
// position this transaction is open for.
func (tx *Transaction[T]) Push(nt symbol.NT, waiter State[T]) {
	tx.chart.entries = append(tx.chart.entries, entry[T]{nt: nt, tag: inline, state: waiter})
}

// BatchID returns the position this (still-open) transaction will commit as,
// i.e. the index the segment about to be closed will occupy.
func (tx *Transaction[T]) BatchID() int {
	return len(tx.chart.index) - 1
}

// Close sorts the newly appended entries by nonterminal and commits the
// segment boundary, making the position's completions queryable.
func (tx *Transaction[T]) Close() {
	if tx.closed {
		return
	}
	tx.closed = true
	seg := tx.chart.entries[tx.startLen:]
	sort.Slice(seg, func(i, j int) bool { return seg[i].nt < seg[j].nt })
	tx.chart.index = append(tx.chart.index, len(tx.chart.entries))
}

func (c *Chart[T]) segmentRange(pos int) (int, int) {
	return c.index[pos], c.index[pos+1]
}

func (c *Chart[T]) ntRange(pos int, nt symbol.NT) (int, int) {
	segStart, segEnd := c.segmentRange(pos)
	seg := c.entries[segStart:segEnd]
	lo := sort.Search(len(seg), func(i int) bool { return seg[i].nt >= nt })
	hi := sort.Search(len(seg), func(i int) bool { return seg[i].nt > nt })
	return segStart + lo, segStart + hi
}

// Query returns the waiters recorded for (pos, nt), resolving and memoizing
// right-recursion bypass chains as it goes (see the package doc comment).
func (c *Chart[T]) Query(pos int, nt symbol.NT) []State[T] {
	return c.query(pos, nt, map[posNT]bool{})
}

type posNT struct {
	pos int
	nt  symbol.NT
}

// query resolves (pos, nt), installing bypass records for any trivially-
// completing waiter chain it walks through. visiting guards against a
// degenerate cycle (which would indicate a unit-production cycle cfg.Build
// should already have rejected).
func (c *Chart[T]) query(pos int, nt symbol.NT, visiting map[posNT]bool) []State[T] {
	key := posNT{pos, nt}
	if visiting[key] {
		return nil
	}
	visiting[key] = true
	defer delete(visiting, key)
	start, end := c.ntRange(pos, nt)
	var out []State[T]
	for i := start; i < end; i++ {
		e := &c.entries[i]
		if e.tag == bypass {
			out = append(out, c.bypassPool[e.bypassStart:e.bypassEnd]...)
			continue
		}
		if len(e.state.Remaining) == 0 {
			// e.state is itself a trivially-completing waiter: what actually
			// waits beyond it is whoever is waiting on e.state.LHS at
			// e.state.Origin. Resolve (and cache) that chain so later queries
			// of this exact entry are O(1).
			resolved := c.query(e.state.Origin, e.state.LHS, visiting)
			poolStart := len(c.bypassPool)
			c.bypassPool = append(c.bypassPool, resolved...)
			e.tag = bypass
			e.bypassStart = poolStart
			e.bypassEnd = len(c.bypassPool)
			out = append(out, resolved...)
			tracer().Debugf("chart: installed bypass at pos=%d nt=%d, %d waiters", pos, nt, len(resolved))
		} else {
			out = append(out, e.state)
		}
	}
	return out
}
