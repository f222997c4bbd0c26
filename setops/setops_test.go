package setops

import (
	"testing"
)

func intCmp(a, b int) int { return a - b }

func TestSortedSetDedupes(t *testing.T) {
	got := SortedSet([]int{3, 1, 2, 1, 3, 2}, intCmp)
	want := []int{1, 2, 3}
	if !equal(got, want) {
		t.Errorf("SortedSet: got %v, want %v", got, want)
	}
}

func TestIsolateNewElements(t *testing.T) {
	vec := []int{1, 2, 3, 2, 4, 1, 5}
	got := IsolateNewElements(vec, 3, intCmp)
	want := []int{1, 2, 3, 4, 5}
	if !equal(got, want) {
		t.Errorf("IsolateNewElements: got %v, want %v", got, want)
	}
}

func TestGrowOrderedSetClosure(t *testing.T) {
	// relation: n -> n/2 (integer division), starting from {16}; closure
	// should reach {0,1,2,4,8,16}.
	step := func(pending []int) []int {
		var out []int
		for _, v := range pending {
			if v > 0 {
				out = append(out, v/2)
			}
		}
		return out
	}
	got := GrowOrderedSet([]int{16}, intCmp, step)
	want := []int{0, 1, 2, 4, 8, 16}
	if !equal(got, want) {
		t.Errorf("GrowOrderedSet: got %v, want %v", got, want)
	}
}

func TestGrowOrderedSetPanicsOnRunaway(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected a panic from a non-converging closure")
		}
	}()
	// relation always produces a fresh, never-before-seen element: never
	// converges, must trip the iteration cap.
	next := 1000
	step := func(pending []int) []int {
		next++
		return []int{next}
	}
	GrowOrderedSet([]int{0}, intCmp, step)
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
