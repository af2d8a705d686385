package engine

import (
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-chrom/chrom/calib"
	"github.com/cwbudde/algo-chrom/chrom/peak"
	"github.com/cwbudde/algo-chrom/chrom/quantity"
	"github.com/cwbudde/algo-chrom/chrom/smooth"
	"github.com/cwbudde/algo-chrom/chrom/species"
	"github.com/cwbudde/algo-chrom/chrom/trace"
)

// SpeciesResult is the quantified peak assigned to one species.
type SpeciesResult struct {
	Name string `json:"name"`
	// Peak indexes Result.Peaks.
	Peak          int                `json:"peak"`
	Area          quantity.Quantity  `json:"area"`
	Height        quantity.Quantity  `json:"height"`
	RetentionTime quantity.Quantity  `json:"retention_time"`
	Concentration *quantity.Quantity `json:"concentration,omitempty"`
}

// Result is the outcome of analysing one trace.
type Result struct {
	Detector string                   `json:"detector"`
	Species  map[string]SpeciesResult `json:"species"`

	// Diagnostics.
	Peaks      []peak.Peak `json:"-"`
	Baseline   []float64   `json:"-"`
	Smoothed   []float64   `json:"-"`
	Unresolved []int       `json:"unresolved,omitempty"`
}

// Names returns the matched species in ascending order.
func (r *Result) Names() []string {
	return slices.Sorted(maps.Keys(r.Species))
}

// MoleFractions normalizes the concentrations of the named species so they sum
// to one. Without names every species with a concentration takes part. Named
// species that are absent or uncalibrated are skipped.
func (r *Result) MoleFractions(names ...string) (map[string]quantity.Quantity, error) {
	if len(names) == 0 {
		names = r.Names()
	}

	subset := make(map[string]quantity.Quantity, len(names))
	for _, name := range names {
		sr, ok := r.Species[name]
		if !ok || sr.Concentration == nil {
			continue
		}
		subset[name] = *sr.Concentration
	}

	fractions, err := calib.Normalize(subset)
	if err != nil {
		return nil, fmt.Errorf("detector %q: %w", r.Detector, err)
	}
	return fractions, nil
}

// Analyzer runs the integration pipeline with a fixed configuration.
type Analyzer struct {
	cfg      Config
	resolver *peak.Resolver
	log      *zap.Logger
}

// New creates an Analyzer. It fails on an invalid smoothing configuration.
func New(opts ...Option) (*Analyzer, error) {
	cfg := ApplyOptions(opts...)
	if err := cfg.Smoothing.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	return &Analyzer{
		cfg:      cfg,
		resolver: peak.NewResolver(cfg.Atol, cfg.Rtol),
		log:      cfg.Logger,
	}, nil
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze integrates tr and quantifies the species of det.
//
// Configuration and trace errors are reported before any numeric work.
// Unresolvable apexes and empty windows are not errors: they show up in
// Result.Unresolved and as missing species.
func (a *Analyzer) Analyze(tr trace.Trace, det species.Detector) (*Result, error) {
	if err := det.Validate(); err != nil {
		return nil, err
	}
	if err := tr.Validate(); err != nil {
		return nil, fmt.Errorf("detector %q: %w", det.Name, err)
	}

	log := a.log.With(zap.String("detector", det.Name))

	smoothed, err := smooth.Filter(tr.Signal, a.cfg.Smoothing)
	if err != nil {
		return nil, fmt.Errorf("detector %q: %w", det.Name, err)
	}

	threshold := a.cfg.Prominence
	if threshold <= 0 {
		threshold = a.cfg.ProminenceRatio * (floats.Max(smoothed) - floats.Min(smoothed))
	}
	apexes := peak.Detect(smoothed, threshold, a.cfg.MinDistance)

	peaks, unresolved := a.resolver.ResolveAll(smoothed, apexes)
	for _, apex := range unresolved {
		log.Debug("dropping unresolvable apex",
			zap.Int("apex", apex),
			zap.Float64("time", tr.Time[apex]))
	}

	peak.AssignClaims(peaks)
	bl := peak.NewBaseline(smoothed)
	bl.Construct(smoothed, peaks)
	peak.Integrate(tr, bl.Values, peaks)

	res := &Result{
		Detector:   det.Name,
		Species:    make(map[string]SpeciesResult),
		Peaks:      peaks,
		Baseline:   bl.Values,
		Smoothed:   smoothed,
		Unresolved: unresolved,
	}

	windows := det.Windows()
	matched := species.Match(peaks, windows, a.cfg.Overlap)
	calibOpts := a.cfg.calibOptions()

	for _, w := range windows {
		idx, ok := matched[w.Name]
		if !ok {
			log.Debug("no peak in window",
				zap.String("species", w.Name),
				zap.Float64("time_low", w.TimeLow),
				zap.Float64("time_high", w.TimeHigh))
			continue
		}

		p := peaks[idx]
		sr := SpeciesResult{
			Name:          w.Name,
			Peak:          idx,
			Area:          p.Area,
			Height:        p.Height,
			RetentionTime: p.RetentionTime,
		}

		conc, ok, err := w.Concentration(p.Area, calibOpts...)
		if err != nil {
			return nil, fmt.Errorf("detector %q: %w", det.Name, err)
		}
		if ok {
			sr.Concentration = &conc
		}
		res.Species[w.Name] = sr
	}

	log.Debug("trace analysed",
		zap.Int("samples", tr.Len()),
		zap.Int("apexes", len(apexes)),
		zap.Int("peaks", len(peaks)),
		zap.Int("species", len(res.Species)))

	return res, nil
}

// AnalyzeReplicates averages replicate traces sample by sample and analyses the
// mean trace.
func (a *Analyzer) AnalyzeReplicates(traces []trace.Trace, det species.Detector) (*Result, error) {
	if err := det.Validate(); err != nil {
		return nil, err
	}

	mean, err := trace.Average(traces...)
	if err != nil {
		return nil, fmt.Errorf("detector %q: %w", det.Name, err)
	}
	return a.Analyze(mean, det)
}
