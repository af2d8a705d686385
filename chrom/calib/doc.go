// Package calib converts raw peak measures into calibrated quantities and
// normalizes groups of quantities to fractions.
//
// A [Spec] selects exactly one model:
//
//   - linear: y = Slope*x + Intercept
//   - inverse: y = (x - Intercept) / Slope
//   - polynomial: y = c0 + c1*x + ... + cN*x^N
//
// Uncertainty is propagated to first order and then floored to
// max(atol, |y|*rtol). A zero reading is passed through untouched while
// ForceZero is set, which is the default.
//
// # Usage
//
//	spec := &calib.Spec{Linear: &calib.LinearModel{Slope: 2, Intercept: 1}}
//	if err := spec.Validate(); err != nil {
//		return err
//	}
//	y, err := calib.Transform(area, spec, calib.WithRtol(0.01))
//
// [Normalize] rescales a set of quantities so their nominal values sum to one.
package calib
