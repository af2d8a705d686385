package testutil

import (
	"math"
	"testing"
)

func TestAxis(t *testing.T) {
	ax := Axis(1, 0.5, 4)
	want := []float64{1, 1.5, 2, 2.5}
	RequireSliceNearlyEqual(t, ax, want, 0)
}

func TestChromatogramPeak(t *testing.T) {
	ax := Axis(0, 1, 101)
	b := Bump{Center: 50, Height: 10, Sigma: 5}
	y := Chromatogram(ax, 0, 0, b)

	if y[50] != 10 {
		t.Fatalf("apex = %v, want 10", y[50])
	}

	sum := 0.0
	for _, v := range y {
		sum += v
	}
	if math.Abs(sum-b.Area())/b.Area() > 1e-6 {
		t.Fatalf("numeric area %v, analytic %v", sum, b.Area())
	}
}

func TestChromatogramBaseline(t *testing.T) {
	y := Chromatogram(Axis(0, 1, 3), 2, 0.5)
	RequireSliceNearlyEqual(t, y, []float64{2, 2.5, 3}, 1e-15)
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
		if a[i] < -1 || a[i] > 1 {
			t.Fatalf("noise[%d] = %v out of range", i, a[i])
		}
	}
}

func TestDC(t *testing.T) {
	d := DC(0.5, 4)
	for i, v := range d {
		if v != 0.5 {
			t.Fatalf("DC[%d] = %v, want 0.5", i, v)
		}
	}
}
