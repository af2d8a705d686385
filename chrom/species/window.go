package species

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/cwbudde/algo-chrom/chrom/calib"
	"github.com/cwbudde/algo-chrom/chrom/quantity"
)

// ErrAmbiguousResponse is reported when a window sets both a calibration and a
// response factor.
var ErrAmbiguousResponse = errors.New("species: both calib and response factor given")

// ValidationError describes one invalid field of a detector configuration.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Window is the retention-time range of one species, in trace time units.
type Window struct {
	Name     string  `json:"name" mapstructure:"name"`
	TimeLow  float64 `json:"time_low" mapstructure:"time_low"`
	TimeHigh float64 `json:"time_high" mapstructure:"time_high"`

	// At most one of Calib and ResponseFactor may be set.
	Calib          *calib.Spec `json:"calib,omitempty" mapstructure:"calib"`
	ResponseFactor *float64    `json:"response_factor,omitempty" mapstructure:"response_factor"`
}

// Contains reports whether t lies in [TimeLow, TimeHigh].
func (w Window) Contains(t float64) bool {
	return t >= w.TimeLow && t <= w.TimeHigh
}

// Width returns TimeHigh - TimeLow.
func (w Window) Width() float64 {
	return w.TimeHigh - w.TimeLow
}

// Validate checks the window on its own.
func (w Window) Validate() error {
	field := "species." + w.Name

	switch {
	case w.Name == "":
		return &ValidationError{Field: "species", Message: "empty species name"}
	case math.IsNaN(w.TimeLow) || math.IsNaN(w.TimeHigh):
		return &ValidationError{Field: field, Message: "time window is NaN"}
	case w.TimeLow > w.TimeHigh:
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("time_low %g above time_high %g", w.TimeLow, w.TimeHigh),
		}
	case w.Calib != nil && w.ResponseFactor != nil:
		return &ValidationError{Field: field, Message: ErrAmbiguousResponse.Error(), Err: ErrAmbiguousResponse}
	}

	if err := w.Calib.Validate(); err != nil {
		return &ValidationError{Field: field + ".calib", Message: err.Error(), Err: err}
	}
	if w.ResponseFactor != nil && (math.IsNaN(*w.ResponseFactor) || math.IsInf(*w.ResponseFactor, 0)) {
		return &ValidationError{Field: field + ".response_factor", Message: "not finite"}
	}

	return nil
}

// Concentration converts a peak area into the species concentration.
//
// The calibration wins when set, otherwise the area is scaled by the response
// factor. ok is false when the window defines neither.
func (w Window) Concentration(area quantity.Quantity, opts ...calib.Option) (q quantity.Quantity, ok bool, err error) {
	switch {
	case w.Calib != nil:
		q, err = calib.Transform(area, w.Calib, opts...)
		if err != nil {
			return quantity.Quantity{}, false, fmt.Errorf("species %s: %w", w.Name, err)
		}
		return q, true, nil
	case w.ResponseFactor != nil:
		return area.Scale(*w.ResponseFactor), true, nil
	default:
		return quantity.Quantity{}, false, nil
	}
}

// Detector is the species configuration of one chromatograph detector.
type Detector struct {
	Name    string            `json:"name" mapstructure:"name"`
	Species map[string]Window `json:"species" mapstructure:"species"`
}

// Windows returns the windows sorted by species name. A window without a name
// takes its map key.
func (d Detector) Windows() []Window {
	out := make([]Window, 0, len(d.Species))
	for _, key := range slices.Sorted(maps.Keys(d.Species)) {
		w := d.Species[key]
		if w.Name == "" {
			w.Name = key
		}
		out = append(out, w)
	}
	return out
}

// Validate checks every window and reports all problems at once.
func (d Detector) Validate() error {
	var errs []error
	for _, key := range slices.Sorted(maps.Keys(d.Species)) {
		w := d.Species[key]
		if w.Name != "" && w.Name != key {
			errs = append(errs, &ValidationError{
				Field:   "species." + key,
				Message: fmt.Sprintf("name %q differs from key", w.Name),
			})
			continue
		}
		if w.Name == "" {
			w.Name = key
		}
		if err := w.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("detector %q: %w", d.Name, err)
	}
	return nil
}
