// Package peak locates, delimits and integrates chromatographic peaks.
//
// The stages run in order on one smoothed trace:
//
//   - [Detect] finds apex candidates: strict local maxima with sufficient prominence.
//   - [Resolver] finds each apex's left and right limits with an ordered list of
//     [BoundaryStrategy] implementations; apexes no strategy can delimit are dropped.
//   - [AssignClaims] links neighbouring peaks that touch into groups sharing one
//     baseline segment.
//   - [Baseline] draws a straight baseline under every group, trimming the
//     segment with [TrimSegment] until the line no longer crosses the signal, and
//     marks the covered samples as claimed so later groups cannot reuse them.
//   - [Integrate] sums raw signal minus baseline over each peak.
//
// # Usage
//
//	apexes := peak.Detect(smoothed, threshold, 1)
//	peaks, dropped := peak.NewResolver(atol, rtol).ResolveAll(smoothed, apexes)
//	peak.AssignClaims(peaks)
//	bl := peak.NewBaseline(smoothed)
//	bl.Construct(smoothed, peaks)
//	peak.Integrate(tr, bl.Values, peaks)
//
// Every function is deterministic and keeps no package state; a Baseline belongs
// to exactly one analysis run.
package peak
