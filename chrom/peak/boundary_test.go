package peak

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var valley = []float64{1, 0, 1, 2, 5, 2, 1, 0, 1}

func TestNaiveDescent(t *testing.T) {
	left, right, ok := NaiveDescent{}.Limits(valley, 4)
	if !ok || left != 1 || right != 7 {
		t.Fatalf("Limits = (%d, %d, %v), want (1, 7, true)", left, right, ok)
	}
}

func TestToleranceDescent(t *testing.T) {
	left, right, ok := ToleranceDescent{Atol: math.Inf(1), Rtol: 0.01}.Limits(valley, 4)
	if !ok || left != 1 || right != 7 {
		t.Fatalf("Limits = (%d, %d, %v), want (1, 7, true)", left, right, ok)
	}

	// dy = 1.5 stops the walk right next to the apex.
	if _, _, ok := (ToleranceDescent{Atol: 1.5, Rtol: 1}).Limits(valley, 4); ok {
		t.Fatal("expected tolerance descent to fail without movement")
	}
}

func TestWalkFailsAtEdge(t *testing.T) {
	signal := []float64{3, 5, 4, 3, 2, 1, 0.5, 1}
	if _, _, ok := (NaiveDescent{}).Limits(signal, 1); ok {
		t.Fatal("expected failure when the walk reaches index 0")
	}

	signal = []float64{1, 0, 1, 2, 3, 2, 1}
	if _, _, ok := (NaiveDescent{}).Limits(signal, 4); ok {
		t.Fatal("expected failure when the walk reaches the last index")
	}

	if _, _, ok := (NaiveDescent{}).Limits(signal, 0); ok {
		t.Fatal("expected failure for apex at the edge")
	}
}

func TestResolverFallback(t *testing.T) {
	r := NewResolver(1.5, 1)

	p, ok := r.Resolve(valley, 4)
	if !ok {
		t.Fatal("expected naive fallback to resolve the peak")
	}
	if p.Strategy != "naive" {
		t.Fatalf("Strategy = %q, want naive", p.Strategy)
	}

	r = NewResolver(math.Inf(1), 0.01)
	p, ok = r.Resolve(valley, 4)
	if !ok || p.Strategy != "tolerance" {
		t.Fatalf("Resolve = %+v, %v; want tolerance strategy", p, ok)
	}
}

func TestResolveAll(t *testing.T) {
	signal := []float64{3, 5, 4, 3, 2, 1, 0.5, 1, 0, 1, 2, 5, 2, 1, 0, 1}
	peaks, unresolved := NewResolver(math.Inf(1), 1e-3).ResolveAll(signal, []int{11, 1})

	want := []Peak{{Apex: 11, Left: 8, Right: 14, BaselineLeft: 8, BaselineRight: 14}}
	if diff := cmp.Diff(want, peaks, cmpopts.IgnoreFields(Peak{}, "Strategy")); diff != "" {
		t.Fatalf("peaks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, unresolved); diff != "" {
		t.Fatalf("unresolved mismatch (-want +got):\n%s", diff)
	}
}
