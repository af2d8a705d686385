package trace

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinLength is the shortest trace the engine accepts.
const MinLength = 3

// AxisTolerance is the largest deviation between replicate time axes that
// Average accepts, relative to the span of the first axis.
const AxisTolerance = 1e-6

// Errors returned by trace construction and validation.
var (
	ErrTooShort       = errors.New("trace: fewer than 3 samples")
	ErrLengthMismatch = errors.New("trace: time and signal lengths differ")
	ErrNotIncreasing  = errors.New("trace: time axis is not strictly increasing")
	ErrNonFinite      = errors.New("trace: non-finite sample")
	ErrShapeMismatch  = errors.New("trace: replicate traces differ in shape")
	ErrNoTraces       = errors.New("trace: no traces to combine")
)

// Trace is a time-ordered detector signal.
type Trace struct {
	Time     []float64
	Signal   []float64
	Unit     string // signal unit
	TimeUnit string

	// Device resolution of a single reading, used as one-sigma uncertainty.
	TimeSigma   float64
	SignalSigma float64
}

// New builds a validated Trace. The slices are used as-is, not copied.
func New(time, signal []float64, unit, timeUnit string) (Trace, error) {
	tr := Trace{Time: time, Signal: signal, Unit: unit, TimeUnit: timeUnit}
	if err := tr.Validate(); err != nil {
		return Trace{}, err
	}

	return tr, nil
}

// Len returns the number of samples.
func (tr Trace) Len() int {
	return len(tr.Signal)
}

// Validate checks the structural invariants of the trace.
func (tr Trace) Validate() error {
	if len(tr.Time) != len(tr.Signal) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(tr.Time), len(tr.Signal))
	}
	if len(tr.Signal) < MinLength {
		return fmt.Errorf("%w: %d", ErrTooShort, len(tr.Signal))
	}

	for i := range tr.Signal {
		if !finite(tr.Time[i]) || !finite(tr.Signal[i]) {
			return fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
		if i > 0 && tr.Time[i] <= tr.Time[i-1] {
			return fmt.Errorf("%w at index %d", ErrNotIncreasing, i)
		}
	}

	if tr.TimeSigma < 0 || tr.SignalSigma < 0 {
		return fmt.Errorf("trace: negative resolution (time %g, signal %g)", tr.TimeSigma, tr.SignalSigma)
	}

	return nil
}

// Step returns the forward time step of every sample: dt[i] = t[i+1] - t[i].
// The last sample reuses the previous step.
func (tr Trace) Step() []float64 {
	n := len(tr.Time)
	dt := make([]float64, n)
	if n < 2 {
		return dt
	}

	floats.SubTo(dt[:n-1], tr.Time[1:], tr.Time[:n-1])
	dt[n-1] = dt[n-2]

	return dt
}

// Clone returns a deep copy of the trace.
func (tr Trace) Clone() Trace {
	out := tr
	out.Time = append([]float64(nil), tr.Time...)
	out.Signal = append([]float64(nil), tr.Signal...)
	return out
}

// Average combines replicate traces sample by sample.
//
// All traces must share length, units and time axis (within AxisTolerance);
// the time axis of the first trace is used. The combined signal resolution is
// the largest input resolution.
func Average(traces ...Trace) (Trace, error) {
	if len(traces) == 0 {
		return Trace{}, ErrNoTraces
	}

	first := traces[0]
	if err := first.Validate(); err != nil {
		return Trace{}, fmt.Errorf("replicate 0: %w", err)
	}

	out := first.Clone()
	axisTol := AxisTolerance * (first.Time[len(first.Time)-1] - first.Time[0])
	for i, tr := range traces[1:] {
		if tr.Len() != first.Len() || len(tr.Time) != len(first.Time) {
			return Trace{}, fmt.Errorf("%w: replicate %d has %d samples, want %d",
				ErrShapeMismatch, i+1, tr.Len(), first.Len())
		}
		if tr.Unit != first.Unit || tr.TimeUnit != first.TimeUnit {
			return Trace{}, fmt.Errorf("%w: replicate %d units %q/%q, want %q/%q",
				ErrShapeMismatch, i+1, tr.Unit, tr.TimeUnit, first.Unit, first.TimeUnit)
		}
		if err := tr.Validate(); err != nil {
			return Trace{}, fmt.Errorf("replicate %d: %w", i+1, err)
		}
		if !floats.EqualApprox(tr.Time, first.Time, axisTol) {
			return Trace{}, fmt.Errorf("%w: replicate %d time axis differs from replicate 0",
				ErrShapeMismatch, i+1)
		}

		floats.Add(out.Signal, tr.Signal)
		out.SignalSigma = math.Max(out.SignalSigma, tr.SignalSigma)
		out.TimeSigma = math.Max(out.TimeSigma, tr.TimeSigma)
	}

	floats.Scale(1/float64(len(traces)), out.Signal)

	return out, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
