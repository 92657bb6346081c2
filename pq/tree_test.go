package pq

import "testing"

func values(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func mustReduce(t *testing.T, tr *Tree, s []int) {
	t.Helper()
	ok, err := tr.Reduce(s)
	if !ok {
		t.Fatalf("Reduce(%v) failed: %v", s, err)
	}
}

// runIndices returns, for every value in want, its index in frontier, in
// the order want lists them.
func runIndices(frontier, want []int) []int {
	pos := make(map[int]int, len(frontier))
	for i, v := range frontier {
		pos[v] = i
	}
	out := make([]int, len(want))
	for i, v := range want {
		out[i] = pos[v]
	}
	return out
}

// assertConsecutive fails unless every value in want occupies a
// contiguous run of indices in frontier (in any internal order).
func assertConsecutive(t *testing.T, frontier, want []int) {
	t.Helper()
	idx := runIndices(frontier, want)
	lo, hi := idx[0], idx[0]
	for _, i := range idx {
		if i < lo {
			lo = i
		}
		if i > hi {
			hi = i
		}
	}
	if hi-lo+1 != len(want) {
		t.Fatalf("%v not consecutive in %v", want, frontier)
	}
}

func TestReduce_ScenarioA(t *testing.T) {
	tr := New(values(9)[1:]) // {1..8}
	sets := [][]int{{3, 4}, {3, 4, 6}, {3, 4, 5}, {4, 5}, {2, 6}, {1, 2}, {4, 5}}
	for _, s := range sets {
		mustReduce(t, tr, s)
	}

	front := tr.Frontier()
	assertConsecutive(t, front, []int{3, 4, 5})
	assertConsecutive(t, front, []int{3, 4, 6})
	assertConsecutive(t, front, []int{2, 6})
	assertConsecutive(t, front, []int{1, 2})
}

func TestReduce_ScenarioB(t *testing.T) {
	tr := New(values(9)[1:])
	for _, s := range [][]int{{3, 4}, {3, 4, 6}, {3, 4, 5}, {4, 5}, {2, 6}, {1, 2}, {4, 5}} {
		mustReduce(t, tr, s)
	}

	ok, err := tr.Reduce([]int{3, 5})
	if ok {
		t.Fatalf("Reduce({3,5}) succeeded, want failure")
	}
	if err == nil {
		t.Fatalf("expected non-nil error on failure")
	}
}

func TestReduce_ScenarioC(t *testing.T) {
	tr := New(values(6)) // {0..5}
	sets := [][]int{{1, 4}, {0, 2, 3, 4, 5}, {0, 2, 4, 5}, {2, 5}, {0, 2}}
	for _, s := range sets {
		mustReduce(t, tr, s)
	}

	front := tr.Frontier()
	assertConsecutive(t, front, []int{1, 4})
	assertConsecutive(t, front, []int{0, 2, 4, 5})
}

func TestReduce_ScenarioD(t *testing.T) {
	tr := New(values(8))
	before := tr.Print()

	mustReduce(t, tr, nil)
	if got := tr.Print(); got != before {
		t.Fatalf("empty reduction changed tree: %q -> %q", before, got)
	}

	mustReduce(t, tr, []int{3})
	if got := tr.Print(); got != before {
		t.Fatalf("singleton reduction changed tree: %q -> %q", before, got)
	}
}

func TestReduce_SmallSetsBypassValidation(t *testing.T) {
	tr := New(values(5))
	if ok, err := tr.Reduce([]int{99}); !ok {
		t.Fatalf("singleton reduction with an out-of-ground-set value should always succeed, got: %v", err)
	}
	if tr.invalid {
		t.Fatalf("singleton reduction with an unknown value should not poison the tree")
	}

	if ok, _ := tr.Reduce([]int{3, 99}); ok {
		t.Fatalf("expected a 2-element set with an unknown value to fail")
	}
	if !tr.invalid {
		t.Fatalf("expected tree to be poisoned after a genuine failure")
	}

	if ok, err := tr.Reduce(nil); !ok {
		t.Fatalf("empty reduction on a poisoned tree should always succeed, got: %v", err)
	}
	if ok, err := tr.Reduce([]int{2}); !ok {
		t.Fatalf("singleton reduction on a poisoned tree should always succeed, got: %v", err)
	}
}

func TestReduce_ScenarioF(t *testing.T) {
	tr := New(values(9)[1:])
	for _, s := range [][]int{{3, 4}, {3, 4, 6}, {3, 4, 5}, {4, 5}, {2, 6}, {1, 2}, {4, 5}} {
		mustReduce(t, tr, s)
	}

	beforeFrontier := tr.Frontier()
	beforeReductions := tr.Reductions()

	ok, _ := tr.SafeReduce([]int{3, 5})
	if ok {
		t.Fatalf("SafeReduce({3,5}) succeeded, want failure")
	}

	if got := tr.Frontier(); !intsEqual(got, beforeFrontier) {
		t.Fatalf("frontier changed after failed SafeReduce: %v -> %v", beforeFrontier, got)
	}
	afterReductions := tr.Reductions()
	if len(afterReductions) != len(beforeReductions) {
		t.Fatalf("reductions log changed after failed SafeReduce: %v -> %v", beforeReductions, afterReductions)
	}
	for i := range afterReductions {
		if !intsEqual(afterReductions[i], beforeReductions[i]) {
			t.Fatalf("reductions log changed after failed SafeReduce at %d: %v -> %v", i, beforeReductions[i], afterReductions[i])
		}
	}

	if ok, err := tr.Reduce([]int{1, 2}); !ok {
		t.Fatalf("tree was poisoned by a failed SafeReduce: %v", err)
	}
}

func intsEqual(a, b []int) bool {
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

func TestReduce_PoisonsAfterFailure(t *testing.T) {
	tr := New(values(9)[1:])
	for _, s := range [][]int{{3, 4}, {3, 4, 6}, {3, 4, 5}, {4, 5}, {2, 6}, {1, 2}, {4, 5}} {
		mustReduce(t, tr, s)
	}
	if ok, _ := tr.Reduce([]int{3, 5}); ok {
		t.Fatalf("expected Reduce({3,5}) to fail")
	}
	if ok, err := tr.Reduce([]int{1, 2}); ok {
		t.Fatalf("poisoned tree accepted a reduction")
	} else if _, isPoisoned := err.(*PoisonedTreeError); !isPoisoned {
		t.Fatalf("expected PoisonedTreeError, got %T: %v", err, err)
	}
}

func TestReduce_UnknownElement(t *testing.T) {
	tr := New(values(5))
	ok, err := tr.Reduce([]int{2, 99})
	if ok {
		t.Fatalf("expected failure for unknown element")
	}
	if _, isUnknown := err.(*UnknownElementError); !isUnknown {
		t.Fatalf("expected UnknownElementError, got %T: %v", err, err)
	}
}

func TestTree_ContainedAndReductions(t *testing.T) {
	tr := New(values(6))
	mustReduce(t, tr, []int{1, 4})
	mustReduce(t, tr, []int{0, 2})

	got := tr.Contained()
	want := []int{0, 1, 2, 4}
	if !intsEqual(got, want) {
		t.Fatalf("Contained() = %v, want %v", got, want)
	}

	log := tr.Reductions()
	if len(log) != 2 || !intsEqual(log[0], []int{1, 4}) || !intsEqual(log[1], []int{0, 2}) {
		t.Fatalf("Reductions() = %v", log)
	}

	reduced := tr.ReducedFrontier()
	if len(reduced) != len(want) {
		t.Fatalf("ReducedFrontier() = %v, want length %d", reduced, len(want))
	}
}

func TestTree_CopyIsIndependent(t *testing.T) {
	tr := New(values(8))
	mustReduce(t, tr, []int{1, 2, 3})

	cp := tr.Copy()
	mustReduce(t, cp, []int{4, 5})

	if cp.Print() == tr.Print() {
		t.Fatalf("copy shares structure with original after divergent reduction")
	}
	if len(tr.Reductions()) != 1 {
		t.Fatalf("original tree's reduction log mutated by copy's reduction")
	}
}
