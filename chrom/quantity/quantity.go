// Package quantity provides the (nominal, uncertainty, unit) value type used for
// every measured or derived number leaving the integration engine.
package quantity

import (
	"fmt"
	"math"
)

// Quantity is a measured or derived value with a one-sigma absolute uncertainty.
type Quantity struct {
	Nominal     float64 `json:"n"`
	Uncertainty float64 `json:"s"`
	Unit        string  `json:"u,omitempty"`
}

// New returns a Quantity. Negative uncertainties are stored as their magnitude.
func New(nominal, uncertainty float64, unit string) Quantity {
	return Quantity{Nominal: nominal, Uncertainty: math.Abs(uncertainty), Unit: unit}
}

// Exact returns a Quantity without uncertainty.
func Exact(nominal float64, unit string) Quantity {
	return Quantity{Nominal: nominal, Unit: unit}
}

// Relative returns the relative uncertainty |s/n|.
// Returns +Inf for a zero nominal value with nonzero uncertainty and 0 if both are zero.
func (q Quantity) Relative() float64 {
	if q.Nominal == 0 {
		if q.Uncertainty == 0 {
			return 0
		}
		return math.Inf(1)
	}

	return math.Abs(q.Uncertainty / q.Nominal)
}

// Scale multiplies nominal value and uncertainty by k.
func (q Quantity) Scale(k float64) Quantity {
	return Quantity{Nominal: q.Nominal * k, Uncertainty: math.Abs(q.Uncertainty * k), Unit: q.Unit}
}

// WithUnit returns a copy of q carrying unit.
func (q Quantity) WithUnit(unit string) Quantity {
	q.Unit = unit
	return q
}

// Floor raises the uncertainty to at least max(atol, |nominal|*rtol).
func (q Quantity) Floor(atol, rtol float64) Quantity {
	q.Uncertainty = math.Max(q.Uncertainty, math.Max(atol, math.Abs(q.Nominal)*rtol))
	return q
}

// IsFinite reports whether both nominal value and uncertainty are finite.
func (q Quantity) IsFinite() bool {
	return !math.IsNaN(q.Nominal) && !math.IsInf(q.Nominal, 0) &&
		!math.IsNaN(q.Uncertainty) && !math.IsInf(q.Uncertainty, 0)
}

// String formats q as "nominal ± uncertainty unit".
func (q Quantity) String() string {
	if q.Unit == "" {
		return fmt.Sprintf("%g ± %g", q.Nominal, q.Uncertainty)
	}

	return fmt.Sprintf("%g ± %g %s", q.Nominal, q.Uncertainty, q.Unit)
}

// ProductUnit joins two unit strings for a product quantity, e.g. "mV" and "s" to "mV·s".
func ProductUnit(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "·" + b
	}
}
