package smooth

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-chrom/internal/testutil"
)

func TestCoefficientsKnown(t *testing.T) {
	got, err := Coefficients(Config{Window: 5, Order: 2})
	if err != nil {
		t.Fatalf("Coefficients error: %v", err)
	}

	want := []float64{-3.0 / 35, 12.0 / 35, 17.0 / 35, 12.0 / 35, -3.0 / 35}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestCoefficientsSumToOne(t *testing.T) {
	for _, cfg := range []Config{{7, 3}, {9, 2}, {11, 4}, {21, 0}} {
		c, err := Coefficients(cfg)
		if err != nil {
			t.Fatalf("%+v: %v", cfg, err)
		}
		sum := 0.0
		for _, v := range c {
			sum += v
		}
		testutil.RequireRelative(t, "sum", sum, 1, 1e-12)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "disabled", cfg: Config{Window: 0, Order: 9}},
		{name: "even", cfg: Config{Window: 6, Order: 2}, want: ErrEvenWindow},
		{name: "order too high", cfg: Config{Window: 5, Order: 5}, want: ErrOrderTooHigh},
		{name: "negative order", cfg: Config{Window: 5, Order: -1}, want: ErrBadOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFilterPreservesPolynomial(t *testing.T) {
	x := testutil.Axis(0, 1, 40)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 0.5 + 0.2*v - 0.01*v*v + 0.0003*v*v*v
	}

	got, err := Filter(y, Config{Window: 7, Order: 3})
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, y, 1e-9)
}

func TestFilterLongKernelUsesFFT(t *testing.T) {
	x := testutil.Axis(0, 1, 600)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 1e-3 * v * v
	}

	got, err := Filter(y, Config{Window: 101, Order: 2})
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, y, 1e-6)
}

func TestFilterReducesNoise(t *testing.T) {
	noise := testutil.DeterministicNoise(7, 1, 500)
	got, err := Filter(noise, Config{Window: 11, Order: 2})
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}

	var in, out float64
	for i := range noise {
		in += noise[i] * noise[i]
		out += got[i] * got[i]
	}
	if out >= in/2 {
		t.Fatalf("noise energy %v not reduced enough from %v", out, in)
	}
}

func TestFilterDisabledCopies(t *testing.T) {
	y := []float64{1, 5, 2}
	got, err := Filter(y, Config{Window: 1})
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}
	got[0] = 99
	if y[0] != 1 {
		t.Fatal("Filter returned the input slice instead of a copy")
	}
}

func TestFilterShortSignal(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	got, err := Filter(y, Config{Window: 7, Order: 1})
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}
	// Window shrinks to 3, which still reproduces a straight line.
	testutil.RequireSliceNearlyEqual(t, got, y, 1e-12)

	got, err = Filter(y[:3], Config{Window: 7, Order: 3})
	if err != nil {
		t.Fatalf("Filter error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, y[:3], 0)
}

func TestFilterEmpty(t *testing.T) {
	if _, err := Filter(nil, DefaultConfig()); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("err = %v, want ErrEmptySignal", err)
	}
}

func TestDirectMatchesOverlapAdd(t *testing.T) {
	signal := testutil.DeterministicNoise(3, 1, 1000)
	kernel := testutil.DeterministicNoise(4, 1, 80)

	want := direct(signal, kernel)
	got, err := overlapAdd(signal, kernel)
	if err != nil {
		t.Fatalf("overlapAdd error: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
}
