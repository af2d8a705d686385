package testutil

import (
	"math"
	"math/rand"
)

// Bump describes one Gaussian peak of a synthetic chromatogram.
type Bump struct {
	Center float64 // retention time
	Height float64
	Sigma  float64 // standard deviation in time units
}

// Area returns the analytic area of the bump.
func (b Bump) Area() float64 {
	return b.Height * b.Sigma * math.Sqrt(2*math.Pi)
}

// Axis returns n equally spaced times starting at t0 with step dt.
func Axis(t0, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = t0 + dt*float64(i)
	}
	return out
}

// Chromatogram evaluates the sum of bumps on top of a linear baseline
// offset + slope*t at every time in axis.
func Chromatogram(axis []float64, offset, slope float64, bumps ...Bump) []float64 {
	out := make([]float64, len(axis))
	for i, t := range axis {
		v := offset + slope*t
		for _, b := range bumps {
			z := (t - b.Center) / b.Sigma
			v += b.Height * math.Exp(-0.5*z*z)
		}
		out[i] = v
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// AddNoise adds deterministic noise to signal in place and returns it.
func AddNoise(signal []float64, seed int64, amplitude float64) []float64 {
	noise := DeterministicNoise(seed, amplitude, len(signal))
	for i := range signal {
		signal[i] += noise[i]
	}
	return signal
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
