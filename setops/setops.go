/*
Package setops implements generic utilities for sorted-set maintenance in
flat slices: batched dedup-against-prior, transitive-closure growth, and
isolation of newly appended elements. These are the primitives that make both
the recognizer's within-position fixed point and its final completion pass
finite and deterministic, mirroring the teacher's own philosophy for its
iteratable.Set type ("suitable mainly for implementing algorithms around
scanners, parsers") — the implementation here is a free-standing flat-slice
cousin rather than the teacher's boxed iterator type, to fit the per-position
batch-dedup shape spec.md requires.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package setops

import (
	"golang.org/x/exp/slices"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'cfgearley.setops'.
func tracer() tracing.Trace {
	return tracing.Select("cfgearley.setops")
}

// maxClosureIterations guards GrowOrderedSet against a runaway fixed point.
// Exceeding it indicates a bug in the relation being closed over, not a
// property of caller input — mirroring the original recognizer's hand-rolled
// cap of 120 passes.
const maxClosureIterations = 120

// Cmp is a three-way comparator: negative if a < b, zero if equal, positive
// if a > b.
type Cmp[T any] func(a, b T) int

// SortedSet sorts vec and removes adjacent duplicates in place, returning the
// canonical set (possibly a shorter slice sharing vec's backing array).
func SortedSet[T any](vec []T, cmp Cmp[T]) []T {
	slices.SortFunc(vec, cmp)
	return slices.CompactFunc(vec, func(a, b T) bool { return cmp(a, b) == 0 })
}

// IsolateNewElements sorts vec[oldLen:], then drops elements that duplicate
// either another new element or one already present in vec[:oldLen] (which
// is assumed already sorted). It returns vec truncated to the deduplicated
// prefix plus isolated new elements — the set is left as two concatenated
// sorted runs, vec[:oldLen] and the isolated new tail, so a caller can act on
// just the freshly-isolated elements before folding the set back together.
func IsolateNewElements[T any](vec []T, oldLen int, cmp Cmp[T]) []T {
	old := vec[:oldLen]
	newPart := vec[oldLen:]
	slices.SortFunc(newPart, cmp)

	write, check := 0, 0
	for read := 0; read < len(newPart); read++ {
		v := newPart[read]
		for check < len(old) && cmp(old[check], v) < 0 {
			check++
		}
		dupOfOld := check < len(old) && cmp(old[check], v) == 0
		dupOfPrev := write > 0 && cmp(newPart[write-1], v) == 0
		if !dupOfOld && !dupOfPrev {
			newPart[write] = v
			write++
		}
	}
	return vec[:oldLen+write]
}

// GrowOrderedSet computes the transitive closure of a relation over vec: step
// is invoked with the elements discovered in the previous round (the whole
// of vec for the first round), and returns the elements reachable from them
// in one step. Those are appended, deduplicated against everything seen so
// far, and become next round's pending range. The loop halts when a round
// produces nothing new.
//
// IsolateNewElements requires its "old" argument to be fully sorted, so vec
// is re-sorted (folding the previous round's isolated tail back into the
// prefix) at the end of every round, before the isolated tail is captured as
// the next pending range — otherwise vec degrades into several unmerged
// sorted runs after the first round and later duplicates escape dedup.
func GrowOrderedSet[T any](vec []T, cmp Cmp[T], step func(pending []T) []T) []T {
	vec = SortedSet(vec, cmp)
	pending := append([]T(nil), vec...)
	iterations := 0
	for len(pending) > 0 {
		iterations++
		if iterations > maxClosureIterations {
			panic("setops: closure iteration cap exceeded — runaway transitive closure")
		}
		appended := step(pending)
		oldLen := len(vec)
		vec = append(vec, appended...)
		vec = IsolateNewElements(vec, oldLen, cmp)
		pending = append([]T(nil), vec[oldLen:]...)
		vec = SortedSet(vec, cmp)
	}
	tracer().Debugf("setops: closure saturated after %d rounds, %d elements", iterations, len(vec))
	return vec
}
