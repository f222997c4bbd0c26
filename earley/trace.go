package earley

import (
	"github.com/arborio/cfgearley/cfg"
	"github.com/arborio/cfgearley/symbol"
)

// TraceEntry is one reduction (completion) the recognizer performed: rule
// matched src[Origin:End] and derived NT.
type TraceEntry[T comparable] struct {
	Origin int
	End    int
	NT     symbol.NT
	Rule   *cfg.Rule[T]
}

// TraceSink is a visitor notified of every completion the recognizer
// performs, one call per event; calls are never batched. ε-completions of
// the same nonterminal at the same position are reported once per position
// unless DedupeEpsilonCompletions(false) is given (spec.md §9's OQ-3
// resolution; see RecordingSink for the default recording behavior).
type TraceSink[T comparable] interface {
	Completed(origin, end int, nt symbol.NT, rule *cfg.Rule[T])
}

// NopSink discards every completion. It is the zero-cost default when a
// caller only wants acceptance, not a tree.
type NopSink[T comparable] struct{}

func (NopSink[T]) Completed(int, int, symbol.NT, *cfg.Rule[T]) {}

// RecordingSink appends every completion to Entries, in the arbitrary order
// Parse reports them (ascending End, unspecified order within an End — see
// spec.md §4.2's ordering guarantee). ast.Reconstruct re-sorts before use.
type RecordingSink[T comparable] struct {
	Entries []TraceEntry[T]
}

func (s *RecordingSink[T]) Completed(origin, end int, nt symbol.NT, rule *cfg.Rule[T]) {
	s.Entries = append(s.Entries, TraceEntry[T]{Origin: origin, End: end, NT: nt, Rule: rule})
}
