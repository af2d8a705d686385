// Package engine runs the full integration pipeline on chromatographic traces.
//
// An [Analyzer] smooths a trace, detects and delimits peaks, builds the
// baseline, integrates, assigns peaks to the species of a detector and applies
// each species' calibration:
//
//	a, err := engine.New(engine.WithSmoothing(5, 2), engine.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	res, err := a.Analyze(tr, detector)
//
// An Analyzer is immutable after New and may be shared between goroutines.
// [Analyzer.AnalyzeAll] processes independent traces on a worker pool.
package engine
