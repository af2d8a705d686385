package engine

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cwbudde/algo-chrom/chrom/calib"
	"github.com/cwbudde/algo-chrom/chrom/quantity"
	"github.com/cwbudde/algo-chrom/chrom/smooth"
	"github.com/cwbudde/algo-chrom/chrom/species"
	"github.com/cwbudde/algo-chrom/chrom/trace"
	"github.com/cwbudde/algo-chrom/internal/testutil"
)

var (
	coBump  = testutil.Bump{Center: 30, Height: 10, Sigma: 2}
	co2Bump = testutil.Bump{Center: 80, Height: 5, Sigma: 3}
	ch4Bump = testutil.Bump{Center: 140, Height: 8, Sigma: 2.5}
)

func gasTrace(t *testing.T, scale float64) trace.Trace {
	t.Helper()

	ax := testutil.Axis(0, 0.5, 400)
	bumps := []testutil.Bump{coBump, co2Bump, ch4Bump}
	for i := range bumps {
		bumps[i].Height *= scale
	}

	tr, err := trace.New(ax, testutil.Chromatogram(ax, 1, 0, bumps...), "mV", "s")
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func gasDetector() species.Detector {
	rf := 0.5
	return species.Detector{
		Name: "TCD",
		Species: map[string]species.Window{
			"CO":  {TimeLow: 25, TimeHigh: 35, Calib: &calib.Spec{Linear: &calib.LinearModel{Slope: 2}}},
			"CO2": {TimeLow: 70, TimeHigh: 90, ResponseFactor: &rf},
			"CH4": {TimeLow: 130, TimeHigh: 150},
			"H2":  {TimeLow: 5, TimeHigh: 10},
		},
	}
}

func TestAnalyze(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatal(err)
	}
	tr := gasTrace(t, 1)

	res, err := a.Analyze(tr, gasDetector())
	if err != nil {
		t.Fatal(err)
	}

	if res.Detector != "TCD" {
		t.Fatalf("Detector = %q", res.Detector)
	}
	if len(res.Peaks) != 3 || len(res.Unresolved) != 0 {
		t.Fatalf("peaks = %v, unresolved = %v", res.Peaks, res.Unresolved)
	}
	if len(res.Baseline) != tr.Len() || len(res.Smoothed) != tr.Len() {
		t.Fatalf("diagnostic lengths %d/%d, want %d", len(res.Baseline), len(res.Smoothed), tr.Len())
	}
	if _, ok := res.Species["H2"]; ok {
		t.Fatal("H2 matched although its window holds no peak")
	}

	want := map[string]testutil.Bump{"CO": coBump, "CO2": co2Bump, "CH4": ch4Bump}
	for name, bump := range want {
		sr, ok := res.Species[name]
		if !ok {
			t.Fatalf("%s missing from %v", name, res.Names())
		}
		testutil.RequireBumpArea(t, name, sr.Area.Nominal, bump, 0.01)
		testutil.RequireRelative(t, name+" height", sr.Height.Nominal, bump.Height, 0.01)
		if sr.RetentionTime.Nominal != bump.Center {
			t.Fatalf("%s retention time = %v, want %v", name, sr.RetentionTime.Nominal, bump.Center)
		}
		if sr.Area.Unit != "mV·s" {
			t.Fatalf("%s area unit = %q", name, sr.Area.Unit)
		}
		if res.Peaks[sr.Peak].Apex != int(bump.Center*2) {
			t.Fatalf("%s peak index %d points at apex %d", name, sr.Peak, res.Peaks[sr.Peak].Apex)
		}
	}

	co := res.Species["CO"]
	if co.Concentration == nil || co.Concentration.Nominal != 2*co.Area.Nominal {
		t.Fatalf("CO concentration = %v, want 2 × area %v", co.Concentration, co.Area)
	}
	co2 := res.Species["CO2"]
	if co2.Concentration == nil || co2.Concentration.Nominal != 0.5*co2.Area.Nominal {
		t.Fatalf("CO2 concentration = %v, want 0.5 × area %v", co2.Concentration, co2.Area)
	}
	if res.Species["CH4"].Concentration != nil {
		t.Fatalf("CH4 concentration = %v, want none", res.Species["CH4"].Concentration)
	}

	for _, p := range res.Peaks {
		if !p.Valid() {
			t.Fatalf("invalid peak %v", p)
		}
	}
}

func TestAnalyzeMoleFractions(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatal(err)
	}
	res, err := a.Analyze(gasTrace(t, 1), gasDetector())
	if err != nil {
		t.Fatal(err)
	}

	fractions, err := res.MoleFractions()
	if err != nil {
		t.Fatal(err)
	}
	if len(fractions) != 2 {
		t.Fatalf("fractions = %v, want CO and CO2", fractions)
	}
	if sum := fractions["CO"].Nominal + fractions["CO2"].Nominal; math.Abs(sum-1) > 1e-9 {
		t.Fatalf("sum = %v, want 1", sum)
	}

	only, err := res.MoleFractions("CO", "H2", "CH4")
	if err != nil {
		t.Fatal(err)
	}
	if len(only) != 1 || only["CO"].Nominal != 1 {
		t.Fatalf("fractions = %v, want CO = 1", only)
	}
}

func TestMoleFractionsZeroSum(t *testing.T) {
	zero := quantity.Exact(0, "ppm")
	res := &Result{Detector: "FID", Species: map[string]SpeciesResult{
		"a": {Name: "a", Concentration: &zero},
		"b": {Name: "b", Concentration: &zero},
	}}

	if _, err := res.MoleFractions(); !errors.Is(err, calib.ErrZeroSum) {
		t.Fatalf("err = %v, want ErrZeroSum", err)
	}
}

func TestAnalyzeCalibTolerance(t *testing.T) {
	a, err := New(WithCalibAtol(1e3))
	if err != nil {
		t.Fatal(err)
	}
	res, err := a.Analyze(gasTrace(t, 1), gasDetector())
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Species["CO"].Concentration.Uncertainty; got != 1e3 {
		t.Fatalf("CO uncertainty = %v, want atol override 1000", got)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatal(err)
	}

	bad := gasDetector()
	bad.Species["CO"] = species.Window{TimeLow: 1, TimeHigh: 2, Calib: &calib.Spec{}}
	if _, err := a.Analyze(trace.Trace{}, bad); !errors.Is(err, calib.ErrNoModel) {
		t.Fatalf("invalid detector: err = %v, want ErrNoModel", err)
	}

	tr := gasTrace(t, 1)
	tr.Time[10] = tr.Time[9]
	if _, err := a.Analyze(tr, gasDetector()); !errors.Is(err, trace.ErrNotIncreasing) {
		t.Fatalf("bad trace: err = %v, want ErrNotIncreasing", err)
	}

	short := trace.Trace{Time: []float64{0, 1}, Signal: []float64{0, 1}}
	if _, err := a.Analyze(short, gasDetector()); !errors.Is(err, trace.ErrTooShort) {
		t.Fatalf("short trace: err = %v, want ErrTooShort", err)
	}
}

func TestNewRejectsBadSmoothing(t *testing.T) {
	if _, err := New(WithSmoothing(6, 2)); !errors.Is(err, smooth.ErrEvenWindow) {
		t.Fatalf("err = %v, want ErrEvenWindow", err)
	}
	if _, err := New(WithSmoothing(1, 0)); err != nil {
		t.Fatalf("disabled smoothing: %v", err)
	}
}

func TestOptions(t *testing.T) {
	cfg := ApplyOptions(
		WithSmoothing(9, 4),
		WithProminenceRatio(0.01),
		WithProminence(2),
		WithMinDistance(5),
		WithBoundaryTolerance(0.5, 0.01),
		WithOverlapPolicy(species.OverlapNarrowest),
		WithCalibRtol(0.02),
		WithLogger(nil),
	)

	if cfg.Smoothing != (smooth.Config{Window: 9, Order: 4}) {
		t.Fatalf("Smoothing = %+v", cfg.Smoothing)
	}
	if cfg.ProminenceRatio != 0.01 || cfg.Prominence != 2 || cfg.MinDistance != 5 {
		t.Fatalf("detection = %v/%v/%v", cfg.ProminenceRatio, cfg.Prominence, cfg.MinDistance)
	}
	if cfg.Atol != 0.5 || cfg.Rtol != 0.01 {
		t.Fatalf("boundary tolerance = %v/%v", cfg.Atol, cfg.Rtol)
	}
	if cfg.Overlap != species.OverlapNarrowest {
		t.Fatalf("Overlap = %v", cfg.Overlap)
	}
	if cfg.CalibAtol != nil || cfg.CalibRtol == nil || *cfg.CalibRtol != 0.02 {
		t.Fatalf("calib tolerances = %v/%v", cfg.CalibAtol, cfg.CalibRtol)
	}
	if cfg.Logger == nil {
		t.Fatal("nil logger accepted")
	}

	def := ApplyOptions(WithMinDistance(0), WithProminence(-1), WithBoundaryTolerance(-1, -1))
	if def.MinDistance != 1 || def.Prominence != 0 || !math.IsInf(def.Atol, 1) || def.Rtol != 1e-3 {
		t.Fatalf("invalid options changed defaults: %+v", def)
	}
}

func TestAnalyzeLogsDroppedApexAndEmptyWindow(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a, err := New(WithLogger(zap.New(core)))
	if err != nil {
		t.Fatal(err)
	}

	ax := testutil.Axis(0, 1, 100)
	signal := testutil.Chromatogram(ax, 0, 0,
		testutil.Bump{Center: 3, Height: 5, Sigma: 1},
		testutil.Bump{Center: 50, Height: 10, Sigma: 3},
	)
	tr, err := trace.New(ax, signal, "pA", "s")
	if err != nil {
		t.Fatal(err)
	}
	det := species.Detector{Name: "FID", Species: map[string]species.Window{
		"edge": {TimeLow: 0, TimeHigh: 10},
		"main": {TimeLow: 45, TimeHigh: 55},
	}}

	res, err := a.Analyze(tr, det)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Unresolved) != 1 || res.Unresolved[0] != 3 {
		t.Fatalf("Unresolved = %v, want [3]", res.Unresolved)
	}
	if len(res.Peaks) != 1 || res.Peaks[0].Apex != 50 {
		t.Fatalf("Peaks = %v", res.Peaks)
	}
	if _, ok := res.Species["edge"]; ok {
		t.Fatal("edge species matched an unresolved apex")
	}

	dropped := logs.FilterMessage("dropping unresolvable apex").All()
	if len(dropped) != 1 || dropped[0].ContextMap()["apex"] != int64(3) {
		t.Fatalf("dropped apex logs = %v", dropped)
	}
	empty := logs.FilterMessage("no peak in window").All()
	if len(empty) != 1 || empty[0].ContextMap()["species"] != "edge" {
		t.Fatalf("empty window logs = %v", empty)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatal(err)
	}
	tr := gasTrace(t, 1)
	testutil.AddNoise(tr.Signal, 7, 0.02)

	first, err := a.Analyze(tr, gasDetector())
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Analyze(tr, gasDetector())
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Peaks) != len(second.Peaks) {
		t.Fatalf("peak count %d vs %d", len(first.Peaks), len(second.Peaks))
	}
	for i := range first.Peaks {
		if first.Peaks[i] != second.Peaks[i] {
			t.Fatalf("peak %d: %v vs %v", i, first.Peaks[i], second.Peaks[i])
		}
	}
}

func TestAnalyzeNegativeOffset(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatal(err)
	}

	ax := testutil.Axis(0, 0.5, 400)
	signal := testutil.AddNoise(testutil.Chromatogram(ax, -50, 0, coBump), 11, 0.002)
	tr, err := trace.New(ax, signal, "mV", "s")
	if err != nil {
		t.Fatal(err)
	}

	res, err := a.Analyze(tr, species.Detector{Name: "TCD"})
	if err != nil {
		t.Fatal(err)
	}

	if n := len(res.Peaks) + len(res.Unresolved); n != 1 {
		t.Fatalf("found %d apexes below zero offset, want 1", n)
	}
	if len(res.Peaks) != 1 || res.Peaks[0].Apex != 60 {
		t.Fatalf("peaks = %v, want one apex at sample 60", res.Peaks)
	}
}

func TestAnalyzeReplicates(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatal(err)
	}

	r1 := gasTrace(t, 0.9)
	r2 := gasTrace(t, 1.1)
	res, err := a.AnalyzeReplicates([]trace.Trace{r1, r2}, gasDetector())
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireBumpArea(t, "CO", res.Species["CO"].Area.Nominal, coBump, 0.01)

	short := gasTrace(t, 1)
	short.Time = short.Time[:300]
	short.Signal = short.Signal[:300]
	if _, err := a.AnalyzeReplicates([]trace.Trace{r1, short}, gasDetector()); !errors.Is(err, trace.ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}
