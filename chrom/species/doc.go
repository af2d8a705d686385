// Package species assigns integrated peaks to named species by retention-time
// window and computes their concentrations.
//
// A [Detector] owns one [Window] per species. [Match] picks, for every window,
// the largest-area peak whose retention time lies inside it; the lowest apex
// index wins exact ties. An [OverlapPolicy] decides whether one peak may serve
// several overlapping windows.
package species
