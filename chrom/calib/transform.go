package calib

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-chrom/chrom/quantity"
)

// IdentityRtol is the relative uncertainty floor applied when no spec is given.
const IdentityRtol = 1e-3

type tolerances struct {
	atol, rtol       *float64
	defAtol, defRtol *float64
}

// Option adjusts the tolerances of the spec passed to Transform.
type Option func(*tolerances)

// WithAtol sets the absolute uncertainty floor. Negative values are ignored.
func WithAtol(atol float64) Option {
	return func(t *tolerances) {
		if atol >= 0 {
			t.atol = &atol
		}
	}
}

// WithRtol sets the relative uncertainty floor. Negative values are ignored.
func WithRtol(rtol float64) Option {
	return func(t *tolerances) {
		if rtol >= 0 {
			t.rtol = &rtol
		}
	}
}

// WithDefaultAtol sets the absolute uncertainty floor used when the spec
// sets none. Negative values are ignored.
func WithDefaultAtol(atol float64) Option {
	return func(t *tolerances) {
		if atol >= 0 {
			t.defAtol = &atol
		}
	}
}

// WithDefaultRtol sets the relative uncertainty floor used when the spec
// sets none. Negative values are ignored.
func WithDefaultRtol(rtol float64) Option {
	return func(t *tolerances) {
		if rtol >= 0 {
			t.defRtol = &rtol
		}
	}
}

// floors resolves atol and rtol. Overrides beat the spec, the spec beats
// defaults, and a nil spec without defaults keeps IdentityRtol.
func floors(spec *Spec, opts []Option) (atol, rtol float64) {
	var t tolerances
	for _, opt := range opts {
		if opt != nil {
			opt(&t)
		}
	}

	if spec == nil {
		rtol = IdentityRtol
	}
	if t.defAtol != nil {
		atol = *t.defAtol
	}
	if t.defRtol != nil {
		rtol = *t.defRtol
	}
	if spec != nil {
		if spec.Atol != nil {
			atol = *spec.Atol
		}
		if spec.Rtol != nil {
			rtol = *spec.Rtol
		}
	}

	if t.atol != nil {
		atol = *t.atol
	}
	if t.rtol != nil {
		rtol = *t.rtol
	}

	return atol, rtol
}

// Transform applies spec to x. A nil spec is the identity.
//
// A zero nominal with ForceZero set returns x unchanged, without uncertainty
// floor. Otherwise the result uncertainty is
// max(propagated, atol, |y|*rtol).
func Transform(x quantity.Quantity, spec *Spec, opts ...Option) (quantity.Quantity, error) {
	if err := spec.Validate(); err != nil {
		return quantity.Quantity{}, err
	}
	if x.Nominal == 0 && spec.forceZero() {
		return x, nil
	}

	var y, dydx float64
	switch {
	case spec == nil:
		y, dydx = x.Nominal, 1
	case spec.Linear != nil:
		y = spec.Linear.Slope*x.Nominal + spec.Linear.Intercept
		dydx = spec.Linear.Slope
	case spec.Inverse != nil:
		y = (x.Nominal - spec.Inverse.Intercept) / spec.Inverse.Slope
		dydx = 1 / spec.Inverse.Slope
	default:
		y, dydx = polyval(spec.Polynomial.Coeffs, x.Nominal)
	}

	unit := x.Unit
	if spec != nil && spec.Unit != "" {
		unit = spec.Unit
	}

	atol, rtol := floors(spec, opts)
	out := quantity.New(y, dydx*x.Uncertainty, unit).Floor(atol, rtol)
	if !out.IsFinite() {
		return quantity.Quantity{}, fmt.Errorf("calib: %s model gives non-finite result for %v", spec.Model(), x)
	}

	return out, nil
}

// Invert maps a calibrated value back to the raw scale. Only linear, inverse and
// identity specs have an algebraic inverse. No uncertainty floor is applied.
func Invert(y quantity.Quantity, spec *Spec, unit string) (quantity.Quantity, error) {
	if err := spec.Validate(); err != nil {
		return quantity.Quantity{}, err
	}

	switch {
	case spec == nil:
		return y.WithUnit(unit), nil
	case spec.Linear != nil:
		if spec.Linear.Slope == 0 {
			return quantity.Quantity{}, fmt.Errorf("linear model: %w", ErrZeroSlope)
		}
		x := (y.Nominal - spec.Linear.Intercept) / spec.Linear.Slope
		return quantity.New(x, y.Uncertainty/spec.Linear.Slope, unit), nil
	case spec.Inverse != nil:
		x := spec.Inverse.Slope*y.Nominal + spec.Inverse.Intercept
		return quantity.New(x, y.Uncertainty*spec.Inverse.Slope, unit), nil
	default:
		return quantity.Quantity{}, fmt.Errorf("%w: polynomial", ErrNotInvertible)
	}
}

// polyval evaluates the polynomial and its derivative at x.
func polyval(coeffs []float64, x float64) (y, dydx float64) {
	powers := make([]float64, len(coeffs))
	slopes := make([]float64, len(coeffs))
	p := 1.0
	for k := range powers {
		powers[k] = p
		if k+1 < len(slopes) {
			slopes[k+1] = float64(k+1) * p
		}
		p *= x
	}

	return floats.Dot(coeffs, powers), floats.Dot(coeffs, slopes)
}
