// Package config loads detector calibrations and analysis settings through viper.
package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/viper"

	"github.com/cwbudde/algo-chrom/chrom/engine"
	"github.com/cwbudde/algo-chrom/chrom/species"
)

// Errors returned while loading configuration.
var (
	ErrNoDetectors     = errors.New("config: no detectors defined")
	ErrDuplicate       = errors.New("config: duplicate name")
	ErrUnknownDetector = errors.New("config: unknown detector")
	ErrInvalidSettings = errors.New("config: invalid analysis settings")
)

// Calibration is the resolved content of a calibration file: the species
// windows of every detector plus global uncertainty floors.
type Calibration struct {
	Atol      *float64
	Rtol      *float64
	Detectors map[string]species.Detector
}

// calibrationFile mirrors the file layout. Detectors and species are lists so
// their names keep their case; viper folds map keys to lower case.
type calibrationFile struct {
	Atol      *float64       `mapstructure:"atol"`
	Rtol      *float64       `mapstructure:"rtol"`
	Detectors []detectorFile `mapstructure:"detectors"`
}

type detectorFile struct {
	Name    string           `mapstructure:"name"`
	Species []species.Window `mapstructure:"species"`
}

// LoadDetectors reads a YAML, JSON or TOML calibration file. The format follows
// the file extension. Every detector is validated before returning.
//
//	rtol: 0.001
//	detectors:
//	  - name: TCD
//	    species:
//	      - name: CO
//	        time_low: 1.2
//	        time_high: 1.6
//	        calib:
//	          linear: {slope: 2.0, intercept: 0.1}
func LoadDetectors(path string) (*Calibration, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var file calibrationFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}

	cal, err := file.resolve()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cal, nil
}

func (f calibrationFile) resolve() (*Calibration, error) {
	if len(f.Detectors) == 0 {
		return nil, ErrNoDetectors
	}
	if (f.Atol != nil && *f.Atol < 0) || (f.Rtol != nil && *f.Rtol < 0) {
		return nil, fmt.Errorf("%w: negative global tolerance", ErrInvalidSettings)
	}

	cal := &Calibration{
		Atol:      f.Atol,
		Rtol:      f.Rtol,
		Detectors: make(map[string]species.Detector, len(f.Detectors)),
	}
	for _, d := range f.Detectors {
		if d.Name == "" {
			return nil, &species.ValidationError{Field: "detectors", Message: "detector without name"}
		}
		if _, dup := cal.Detectors[d.Name]; dup {
			return nil, fmt.Errorf("%w: detector %q", ErrDuplicate, d.Name)
		}

		det := species.Detector{Name: d.Name, Species: make(map[string]species.Window, len(d.Species))}
		for _, w := range d.Species {
			if _, dup := det.Species[w.Name]; dup {
				return nil, fmt.Errorf("%w: species %q of detector %q", ErrDuplicate, w.Name, d.Name)
			}
			det.Species[w.Name] = w
		}
		if err := det.Validate(); err != nil {
			return nil, err
		}
		cal.Detectors[d.Name] = det
	}

	return cal, nil
}

// Detector returns the named detector.
func (c *Calibration) Detector(name string) (species.Detector, error) {
	det, ok := c.Detectors[name]
	if !ok {
		return species.Detector{}, fmt.Errorf("%w %q (have %v)", ErrUnknownDetector, name, c.Names())
	}
	return det, nil
}

// Names returns the detector names in ascending order.
func (c *Calibration) Names() []string {
	return slices.Sorted(maps.Keys(c.Detectors))
}

// Options returns engine options carrying the global uncertainty floors as
// defaults for species that set none.
func (c *Calibration) Options() []engine.Option {
	var opts []engine.Option
	if c.Atol != nil {
		opts = append(opts, engine.WithDefaultCalibAtol(*c.Atol))
	}
	if c.Rtol != nil {
		opts = append(opts, engine.WithDefaultCalibRtol(*c.Rtol))
	}
	return opts
}
