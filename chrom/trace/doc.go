// Package trace defines the digitized detector signal consumed by the
// integration engine.
//
// A [Trace] pairs a strictly increasing time axis with detector readings of the
// same length. Traces are produced by instrument decoders outside this module and
// treated as immutable input:
//
//	tr, err := trace.New(times, signal, "mV", "s")
//	if err != nil {
//		return err
//	}
//	dt := tr.Step()
//
// Replicate measurements of the same sample can be combined with [Average], which
// rejects traces of different shape before any numeric work happens.
package trace
