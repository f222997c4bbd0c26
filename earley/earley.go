/*
Package earley implements the recognizer: an Earley-style chart parser that,
given a grammar and an input, builds the set of partial derivations (states)
and records which nonterminals are recognized between which input positions.

The per-position predict/scan/complete loop, the chart transactions it opens,
and the functional-option configuration are all grounded in the teacher's own
Earley parser (lr/earley/earley.go): a Parser type driving scan/predict/
complete per input token, an Option type, and a tracer() logging hook. The
state representation and the nullable/right-recursion handling follow
spec.md §4.2/§9 (the Aycock–Horspool fix for nullable nonterminals) rather
than the teacher's own (quadratic, hash-keyed-backlink) completer, since that
is the hard algorithmic content this module exists to deliver.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package earley

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/arborio/cfgearley/cfg"
	"github.com/arborio/cfgearley/chart"
	"github.com/arborio/cfgearley/setops"
	"github.com/arborio/cfgearley/symbol"
)

// tracer traces with key 'cfgearley.earley'.
func tracer() tracing.Trace {
	return tracing.Select("cfgearley.earley")
}

// State is re-exported from chart for callers that only import earley.
type State[T comparable] = chart.State[T]

// NoSurvivingStatesError is returned when, after scanning some input
// position, no state survives into the next one: the input is not in the
// language (or the engine lost a state to a bug). It carries the position
// and a snapshot of the states that were live just before the failure, for
// debuggability per spec.md §7.
type NoSurvivingStatesError struct {
	Position     int
	LastSurviving []string
}

func (e *NoSurvivingStatesError) Error() string {
	return fmt.Sprintf("earley: no surviving states after position %d (had %d states before)", e.Position, len(e.LastSurviving))
}

// Option configures a parse. Mirrors the teacher's functional-option pattern
// (earley.StoreTokens, earley.GenerateTree in lr/earley).
type Option[T comparable] func(*config[T])

type config[T comparable]struct {
	dedupeEpsilon bool
}

// DedupeEpsilonCompletions controls whether the recognizer suppresses
// duplicate ε-completion trace entries for the same (position, nt) pair
// (spec.md §9's OQ-3, resolved as "the recognizer dedupes its own trace
// emissions"). Defaults to true; disable only to inspect the raw emission
// pattern.
func DedupeEpsilonCompletions[T comparable](b bool) Option[T] {
	return func(c *config[T]) { c.dedupeEpsilon = b }
}

// Parse runs the recognizer over input, starting from start, reporting every
// completion to sink. It returns the completed chart on success.
func Parse[T comparable](g *cfg.Grammar[T], input []symbol.Symbol[T], start symbol.NT, sink TraceSink[T], opts ...Option[T]) (*chart.Chart[T], error) {
	cfgOpt := config[T]{dedupeEpsilon: true}
	for _, o := range opts {
		o(&cfgOpt)
	}

	c := chart.New[T](len(input))
	r := &recognizer[T]{g: g, chart: c, input: input, sink: sink, cfg: cfgOpt}

	states := r.seed(start)
	states = setops.SortedSet(states, chart.Cmp[T])

	var nextStates []State[T]
	for pos := 0; pos < len(input); pos++ {
		tx := c.OpenSegment()
		term := input[pos]
		r.epsilonSeen = map[symbol.NT]bool{}

		expand := func(pending []State[T]) []State[T] {
			var appended []State[T]
			for _, s := range pending {
				appended = append(appended, r.expandScan(tx, term, s, &nextStates)...)
			}
			return appended
		}
		states = setops.GrowOrderedSet(states, chart.Cmp[T], expand)
		nextStates = setops.SortedSet(nextStates, chart.Cmp[T])
		tx.Close()

		tracer().Debugf("earley: position %d closed with %d states, %d carried forward", pos, len(states), len(nextStates))
		if len(nextStates) == 0 {
			snapshot := make([]string, 0, len(states))
			for _, s := range states {
				snapshot = append(snapshot, fmt.Sprintf("(origin=%d lhs=%d remaining=%d)", s.Origin, s.LHS, len(s.Remaining)))
			}
			return nil, &NoSurvivingStatesError{Position: pos, LastSurviving: snapshot}
		}
		states, nextStates = nextStates, states[:0]
	}

	// Final closure pass: only completion (and the nullable predict-skip) —
	// there is no more input to scan against, so no new rule predictions are
	// worth generating (spec.md §4.2).
	tx := c.OpenSegment()
	r.epsilonSeen = map[symbol.NT]bool{}
	finalExpand := func(pending []State[T]) []State[T] {
		var appended []State[T]
		for _, s := range pending {
			appended = append(appended, r.expandFinal(tx, len(input), s)...)
		}
		return appended
	}
	states = setops.GrowOrderedSet(states, chart.Cmp[T], finalExpand)
	states = setops.SortedSet(states, chart.Cmp[T])
	tx.Close()

	if !r.accepts(states, start) {
		snapshot := make([]string, 0, len(states))
		for _, s := range states {
			snapshot = append(snapshot, fmt.Sprintf("(origin=%d lhs=%d remaining=%d)", s.Origin, s.LHS, len(s.Remaining)))
		}
		return nil, &NoSurvivingStatesError{Position: len(input), LastSurviving: snapshot}
	}
	return c, nil
}

type recognizer[T comparable] struct {
	g           *cfg.Grammar[T]
	chart       *chart.Chart[T]
	input       []symbol.Symbol[T]
	sink        TraceSink[T]
	cfg         config[T]
	epsilonSeen map[symbol.NT]bool
}

// seed builds the prediction closure of start at position 0: one state per
// non-ε rule of start, plus — if start itself is nullable — an immediate
// trace completion for position (0, 0).
func (r *recognizer[T]) seed(start symbol.NT) []State[T] {
	var states []State[T]
	lo, hi := r.g.RangeFor(start)
	for idx := lo; idx < hi; idx++ {
		rule := &r.g.Rules[idx]
		if len(rule.RHS) == 0 {
			continue
		}
		states = append(states, State[T]{Origin: 0, LHS: start, Rule: rule, RuleIdx: idx, Remaining: rule.RHS})
	}
	if r.g.NTNullable[start] {
		for idx := lo; idx < hi; idx++ {
			if r.g.RuleNullable[idx] {
				r.sink.Completed(0, 0, start, &r.g.Rules[idx])
			}
		}
	}
	return states
}

// expandScan processes one pending state while scanning input[pos], where
// term is input[pos] and tx is the open transaction for pos. Terminal
// matches are appended to *next (to seed pos+1); everything else follows
// predict/complete per spec.md §4.2.
func (r *recognizer[T]) expandScan(tx *chart.Transaction[T], term symbol.Symbol[T], s State[T], next *[]State[T]) []State[T] {
	if len(s.Remaining) == 0 {
		r.sink.Completed(s.Origin, tx.BatchID(), s.LHS, s.Rule)
		return r.chart.Query(s.Origin, s.LHS)
	}
	head := s.Remaining[0]
	if t, isTerm := head.Terminal(); isTerm {
		if tt, _ := term.Terminal(); tt == t {
			*next = append(*next, advance(s))
		}
		return nil
	}
	nt, _ := head.Nonterminal()
	return r.predict(tx, nt, s)
}

// expandFinal is expandScan's counterpart for the post-input closure pass: it
// never scans (there is nothing left to match a terminal against) and never
// predicts fresh rules for a nonterminal, only the nullable-skip shortcut.
func (r *recognizer[T]) expandFinal(tx *chart.Transaction[T], pos int, s State[T]) []State[T] {
	if len(s.Remaining) == 0 {
		r.sink.Completed(s.Origin, pos, s.LHS, s.Rule)
		return r.chart.Query(s.Origin, s.LHS)
	}
	head := s.Remaining[0]
	nt, isNT := head.Nonterminal()
	if !isNT {
		return nil // a pending terminal with no more input to scan: dead end
	}
	tx.Push(nt, advance(s))
	if r.g.NTNullable[nt] {
		return r.nullableSkip(tx, nt, s)
	}
	return nil
}

// predict implements spec.md §4.2 step 3: record the waiting-completion
// entry, push a fresh state per rule of nt, and — the Aycock–Horspool fix —
// if nt is nullable, eagerly enqueue the "advance past it" state instead of
// relying on a chart query that can't see this position's own
// not-yet-committed entries.
func (r *recognizer[T]) predict(tx *chart.Transaction[T], nt symbol.NT, s State[T]) []State[T] {
	tx.Push(nt, advance(s))

	var appended []State[T]
	if r.g.NTNullable[nt] {
		appended = append(appended, r.nullableSkip(tx, nt, s)...)
	}

	lo, hi := r.g.RangeFor(nt)
	for idx := lo; idx < hi; idx++ {
		rule := &r.g.Rules[idx]
		if len(rule.RHS) == 0 {
			continue // ε-rules never materialize a literal state; see nullableSkip
		}
		appended = append(appended, State[T]{Origin: tx.BatchID(), LHS: nt, Rule: rule, RuleIdx: idx, Remaining: rule.RHS})
	}
	return appended
}

// nullableSkip announces every nullable rule of nt as completed at the
// current position (deduplicated per position, per spec.md §9's OQ-3) and
// returns the parent state advanced past nt.
func (r *recognizer[T]) nullableSkip(tx *chart.Transaction[T], nt symbol.NT, parent State[T]) []State[T] {
	pos := tx.BatchID()
	if !r.cfg.dedupeEpsilon || !r.epsilonSeen[nt] {
		lo, hi := r.g.RangeFor(nt)
		for idx := lo; idx < hi; idx++ {
			if r.g.RuleNullable[idx] {
				r.sink.Completed(pos, pos, nt, &r.g.Rules[idx])
			}
		}
		r.epsilonSeen[nt] = true
	}
	return []State[T]{advance(parent)}
}

func advance[T comparable](s State[T]) State[T] {
	return State[T]{Origin: s.Origin, LHS: s.LHS, Rule: s.Rule, RuleIdx: s.RuleIdx, Remaining: s.Remaining[1:]}
}

// accepts reports whether states contains a fully-reduced item for
// (origin=0, lhs=start): states is sorted by (origin, lhs, …), so matches are
// confined to a contiguous prefix.
func (r *recognizer[T]) accepts(states []State[T], start symbol.NT) bool {
	for _, s := range states {
		if s.Origin != 0 {
			break
		}
		if s.LHS == start && len(s.Remaining) == 0 {
			return true
		}
	}
	return false
}
