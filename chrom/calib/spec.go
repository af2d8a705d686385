package calib

import (
	"errors"
	"fmt"
)

// Errors reported by Spec.Validate and the transforms.
var (
	ErrNoModel           = errors.New("calib: no calibration model given")
	ErrMultipleModels    = errors.New("calib: more than one calibration model given")
	ErrNoCoefficients    = errors.New("calib: polynomial without coefficients")
	ErrZeroSlope         = errors.New("calib: zero slope")
	ErrNegativeTolerance = errors.New("calib: negative tolerance")
	ErrNotInvertible     = errors.New("calib: model has no algebraic inverse")
)

// LinearModel holds slope and intercept of a linear or inverse model.
type LinearModel struct {
	Slope     float64 `json:"slope" mapstructure:"slope"`
	Intercept float64 `json:"intercept" mapstructure:"intercept"`
}

// PolyModel holds polynomial coefficients in ascending order of power.
type PolyModel struct {
	Coeffs []float64 `json:"coeffs" mapstructure:"coeffs"`
}

// Spec is the calibration of one species. Exactly one of Linear, Inverse and
// Polynomial must be set.
type Spec struct {
	Linear     *LinearModel `json:"linear,omitempty" mapstructure:"linear"`
	Inverse    *LinearModel `json:"inverse,omitempty" mapstructure:"inverse"`
	Polynomial *PolyModel   `json:"polynomial,omitempty" mapstructure:"polynomial"`

	Atol *float64 `json:"atol,omitempty" mapstructure:"atol"`
	Rtol *float64 `json:"rtol,omitempty" mapstructure:"rtol"`

	// ForceZero passes zero readings through untransformed. Nil means true.
	ForceZero *bool `json:"forcezero,omitempty" mapstructure:"forcezero"`

	// Unit of the calibrated value. Empty keeps the unit of the input.
	Unit string `json:"unit,omitempty" mapstructure:"unit"`
}

// Validate checks that the spec names exactly one usable model.
func (s *Spec) Validate() error {
	if s == nil {
		return nil
	}

	models := 0
	for _, set := range []bool{s.Linear != nil, s.Inverse != nil, s.Polynomial != nil} {
		if set {
			models++
		}
	}
	switch {
	case models == 0:
		return ErrNoModel
	case models > 1:
		return fmt.Errorf("%w: %d models", ErrMultipleModels, models)
	}

	if s.Polynomial != nil && len(s.Polynomial.Coeffs) == 0 {
		return ErrNoCoefficients
	}
	if s.Inverse != nil && s.Inverse.Slope == 0 {
		return fmt.Errorf("inverse model: %w", ErrZeroSlope)
	}
	if s.Atol != nil && *s.Atol < 0 {
		return fmt.Errorf("%w: atol %g", ErrNegativeTolerance, *s.Atol)
	}
	if s.Rtol != nil && *s.Rtol < 0 {
		return fmt.Errorf("%w: rtol %g", ErrNegativeTolerance, *s.Rtol)
	}

	return nil
}

// Model names the configured model: "linear", "inverse", "polynomial" or
// "identity" for a nil spec.
func (s *Spec) Model() string {
	switch {
	case s == nil:
		return "identity"
	case s.Linear != nil:
		return "linear"
	case s.Inverse != nil:
		return "inverse"
	case s.Polynomial != nil:
		return "polynomial"
	default:
		return ""
	}
}

func (s *Spec) forceZero() bool {
	return s == nil || s.ForceZero == nil || *s.ForceZero
}
