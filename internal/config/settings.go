package config

import (
	"fmt"
	"math"

	"github.com/spf13/viper"

	"github.com/cwbudde/algo-chrom/chrom/engine"
	"github.com/cwbudde/algo-chrom/chrom/smooth"
	"github.com/cwbudde/algo-chrom/chrom/species"
)

// Settings are the analysis parameters resolved from defaults, config file,
// environment and flags. Keys use the flag names.
type Settings struct {
	Window          int     `mapstructure:"window"`
	Order           int     `mapstructure:"order"`
	ProminenceRatio float64 `mapstructure:"prominence-ratio"`
	Prominence      float64 `mapstructure:"prominence"`
	MinDistance     int     `mapstructure:"min-distance"`
	Atol            float64 `mapstructure:"atol"` // 0 means no absolute bound
	Rtol            float64 `mapstructure:"rtol"`
	Overlap         string  `mapstructure:"overlap"`
	Workers         int     `mapstructure:"workers"`
}

// SetDefaults registers the default of every Settings key on v.
func SetDefaults(v *viper.Viper) {
	def := smooth.DefaultConfig()
	v.SetDefault("window", def.Window)
	v.SetDefault("order", def.Order)
	v.SetDefault("prominence-ratio", engine.DefaultProminenceRatio)
	v.SetDefault("prominence", 0.0)
	v.SetDefault("min-distance", 1)
	v.SetDefault("atol", 0.0)
	v.SetDefault("rtol", 1e-3)
	v.SetDefault("overlap", species.OverlapShared.String())
	v.SetDefault("workers", 0)
}

// LoadSettings unmarshals the Settings keys of v.
func LoadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("config: decoding settings: %w", err)
	}
	return s, nil
}

// Options converts the settings into engine options.
func (s Settings) Options() ([]engine.Option, error) {
	policy, err := species.ParseOverlapPolicy(s.Overlap)
	if err != nil {
		return nil, err
	}
	if s.MinDistance < 1 {
		return nil, fmt.Errorf("%w: min-distance %d", ErrInvalidSettings, s.MinDistance)
	}
	if s.ProminenceRatio < 0 || s.Prominence < 0 || s.Atol < 0 || s.Rtol < 0 {
		return nil, fmt.Errorf("%w: negative threshold or tolerance", ErrInvalidSettings)
	}
	if err := (smooth.Config{Window: s.Window, Order: s.Order}).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	atol := s.Atol
	if atol == 0 {
		atol = math.Inf(1)
	}

	return []engine.Option{
		engine.WithSmoothing(s.Window, s.Order),
		engine.WithProminenceRatio(s.ProminenceRatio),
		engine.WithProminence(s.Prominence),
		engine.WithMinDistance(s.MinDistance),
		engine.WithBoundaryTolerance(atol, s.Rtol),
		engine.WithOverlapPolicy(policy),
	}, nil
}
