package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if !scalar.EqualWithinAbs(got[i], want[i], eps) {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], math.Abs(got[i]-want[i]), eps)
		}
	}
}

// RequireRelative fails t if got deviates from want by more than rel
// (relative to |want|). A zero want must be matched exactly.
func RequireRelative(t *testing.T, name string, got, want, rel float64) {
	t.Helper()
	if want == 0 {
		if got != 0 {
			t.Fatalf("%s = %v, want 0", name, got)
		}
		return
	}
	if d := math.Abs(got-want) / math.Abs(want); d > rel {
		t.Fatalf("%s = %v, want %v (relative error %.3g > %.3g)", name, got, want, d, rel)
	}
}

// RequireBumpArea fails t if got is not within rel of the analytic area of b.
func RequireBumpArea(t *testing.T, name string, got float64, b Bump, rel float64) {
	t.Helper()
	RequireRelative(t, name+" area", got, b.Area(), rel)
}
