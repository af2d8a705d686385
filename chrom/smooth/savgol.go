package smooth

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Errors returned by smoothing configuration checks.
var (
	ErrEvenWindow   = errors.New("smooth: window length must be odd")
	ErrOrderTooHigh = errors.New("smooth: polynomial order must be below window length")
	ErrBadOrder     = errors.New("smooth: polynomial order must be >= 0")
	ErrEmptySignal  = errors.New("smooth: empty signal")
)

// Config holds Savitzky–Golay parameters.
type Config struct {
	Window int // odd window length in samples; <= 1 disables smoothing
	Order  int // polynomial order, < Window
}

// DefaultConfig returns the smoothing used when none is configured.
func DefaultConfig() Config {
	return Config{Window: 7, Order: 3}
}

// Enabled reports whether cfg actually smooths.
func (cfg Config) Enabled() bool {
	return cfg.Window > 1
}

// Validate checks cfg for configuration errors.
func (cfg Config) Validate() error {
	if !cfg.Enabled() {
		return nil
	}
	if cfg.Order < 0 {
		return fmt.Errorf("%w: %d", ErrBadOrder, cfg.Order)
	}
	if cfg.Window%2 == 0 {
		return fmt.Errorf("%w: %d", ErrEvenWindow, cfg.Window)
	}
	if cfg.Order >= cfg.Window {
		return fmt.Errorf("%w: order %d, window %d", ErrOrderTooHigh, cfg.Order, cfg.Window)
	}
	return nil
}

// design holds the least-squares projection for one window/order pair.
// Row k of fit maps a window of samples to the k-th polynomial coefficient,
// with sample offsets running from -half to +half.
type design struct {
	window int
	order  int
	half   int
	fit    *mat.Dense
}

func newDesign(window, order int) (*design, error) {
	half := window / 2

	vander := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		p := 1.0
		for k := 0; k <= order; k++ {
			vander.Set(i, k, p)
			p *= x
		}
	}

	eye := mat.NewDense(window, window, nil)
	for i := 0; i < window; i++ {
		eye.Set(i, i, 1)
	}

	var fit mat.Dense
	if err := fit.Solve(vander, eye); err != nil {
		return nil, fmt.Errorf("smooth: least-squares design failed: %w", err)
	}

	return &design{window: window, order: order, half: half, fit: &fit}, nil
}

// kernel returns the weights producing the fitted value at the window center.
func (d *design) kernel() []float64 {
	return mat.Row(nil, 0, d.fit)
}

// evalEdge fits a polynomial to win and evaluates it at offsets first..last
// (relative to the window center), writing the values to dst.
func (d *design) evalEdge(dst, win []float64, first int) {
	var coeffs mat.VecDense
	coeffs.MulVec(d.fit, mat.NewVecDense(len(win), win))

	for j := range dst {
		x := float64(first + j)
		v := 0.0
		for k := d.order; k >= 0; k-- {
			v = v*x + coeffs.AtVec(k)
		}
		dst[j] = v
	}
}

// Coefficients returns the Savitzky–Golay smoothing kernel for cfg.
func Coefficients(cfg Config) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return []float64{1}, nil
	}

	d, err := newDesign(cfg.Window, cfg.Order)
	if err != nil {
		return nil, err
	}

	return d.kernel(), nil
}

// Filter returns a smoothed copy of signal. The input is not modified.
func Filter(signal []float64, cfg Config) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	window := fitWindow(cfg.Window, len(signal))
	if window <= 1 || cfg.Order >= window {
		return append([]float64(nil), signal...), nil
	}

	d, err := newDesign(window, cfg.Order)
	if err != nil {
		return nil, err
	}

	out, err := convolveSame(signal, d.kernel())
	if err != nil {
		return nil, err
	}

	n := len(signal)
	h := d.half
	d.evalEdge(out[:h], signal[:window], -h)
	d.evalEdge(out[n-h:], signal[n-window:], 1)

	return out, nil
}

// fitWindow shrinks window to the longest odd length not exceeding n.
func fitWindow(window, n int) int {
	if window <= n {
		return window
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}
