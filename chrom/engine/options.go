package engine

import (
	"math"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-chrom/chrom/calib"
	"github.com/cwbudde/algo-chrom/chrom/smooth"
	"github.com/cwbudde/algo-chrom/chrom/species"
)

// DefaultProminenceRatio is the apex prominence threshold relative to the
// peak-to-peak range of the smoothed signal.
const DefaultProminenceRatio = 1e-3

// Config holds the analysis settings.
type Config struct {
	Smoothing smooth.Config

	// ProminenceRatio scales max(smoothed)-min(smoothed) into the prominence
	// threshold, so a detector offset does not move it.
	// Prominence, when positive, is used as an absolute threshold instead.
	ProminenceRatio float64
	Prominence      float64
	MinDistance     int

	// Boundary walk tolerances.
	Atol float64
	Rtol float64

	Overlap species.OverlapPolicy

	// Calibration floors applied to every species, beating per-species values.
	CalibAtol *float64
	CalibRtol *float64

	// Calibration floors for species whose spec sets none.
	DefaultCalibAtol *float64
	DefaultCalibRtol *float64

	Logger *zap.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the settings used when no option is given.
func DefaultConfig() Config {
	return Config{
		Smoothing:       smooth.DefaultConfig(),
		ProminenceRatio: DefaultProminenceRatio,
		MinDistance:     1,
		Atol:            math.Inf(1),
		Rtol:            1e-3,
		Overlap:         species.OverlapShared,
		Logger:          zap.NewNop(),
	}
}

// WithSmoothing sets the Savitzky-Golay window length and polynomial order.
// A window of 1 or less disables smoothing.
func WithSmoothing(window, order int) Option {
	return func(cfg *Config) {
		cfg.Smoothing = smooth.Config{Window: window, Order: order}
	}
}

// WithProminenceRatio sets the prominence threshold relative to the range of
// the smoothed signal.
func WithProminenceRatio(ratio float64) Option {
	return func(cfg *Config) {
		if ratio >= 0 {
			cfg.ProminenceRatio = ratio
		}
	}
}

// WithProminence sets an absolute prominence threshold.
func WithProminence(prominence float64) Option {
	return func(cfg *Config) {
		if prominence > 0 {
			cfg.Prominence = prominence
		}
	}
}

// WithMinDistance sets the minimum apex spacing in samples.
func WithMinDistance(samples int) Option {
	return func(cfg *Config) {
		if samples > 0 {
			cfg.MinDistance = samples
		}
	}
}

// WithBoundaryTolerance sets the absolute and relative tolerances of the
// tolerance-descent boundary walk.
func WithBoundaryTolerance(atol, rtol float64) Option {
	return func(cfg *Config) {
		if atol >= 0 {
			cfg.Atol = atol
		}
		if rtol >= 0 {
			cfg.Rtol = rtol
		}
	}
}

// WithOverlapPolicy sets how overlapping species windows share peaks.
func WithOverlapPolicy(p species.OverlapPolicy) Option {
	return func(cfg *Config) {
		cfg.Overlap = p
	}
}

// WithCalibAtol overrides the absolute uncertainty floor of every calibration.
func WithCalibAtol(atol float64) Option {
	return func(cfg *Config) {
		if atol >= 0 {
			cfg.CalibAtol = &atol
		}
	}
}

// WithCalibRtol overrides the relative uncertainty floor of every calibration.
func WithCalibRtol(rtol float64) Option {
	return func(cfg *Config) {
		if rtol >= 0 {
			cfg.CalibRtol = &rtol
		}
	}
}

// WithDefaultCalibAtol sets the absolute uncertainty floor of calibrations
// that do not set their own.
func WithDefaultCalibAtol(atol float64) Option {
	return func(cfg *Config) {
		if atol >= 0 {
			cfg.DefaultCalibAtol = &atol
		}
	}
}

// WithDefaultCalibRtol sets the relative uncertainty floor of calibrations
// that do not set their own.
func WithDefaultCalibRtol(rtol float64) Option {
	return func(cfg *Config) {
		if rtol >= 0 {
			cfg.DefaultCalibRtol = &rtol
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg Config) calibOptions() []calib.Option {
	var opts []calib.Option
	if cfg.DefaultCalibAtol != nil {
		opts = append(opts, calib.WithDefaultAtol(*cfg.DefaultCalibAtol))
	}
	if cfg.DefaultCalibRtol != nil {
		opts = append(opts, calib.WithDefaultRtol(*cfg.DefaultCalibRtol))
	}
	if cfg.CalibAtol != nil {
		opts = append(opts, calib.WithAtol(*cfg.CalibAtol))
	}
	if cfg.CalibRtol != nil {
		opts = append(opts, calib.WithRtol(*cfg.CalibRtol))
	}
	return opts
}
