package peak

import (
	"math"
	"sort"
)

// BoundaryStrategy finds the left and right limits of the peak at apex.
// It reports ok=false when it cannot delimit the peak.
type BoundaryStrategy interface {
	Limits(signal []float64, apex int) (left, right int, ok bool)
	Name() string
}

// ToleranceDescent walks away from the apex while every step drops by more than
// dy = min(Atol, Rtol*signal[apex]) and the sample stays below signal[apex]-dy.
type ToleranceDescent struct {
	Atol float64
	Rtol float64
}

// Name implements BoundaryStrategy.
func (ToleranceDescent) Name() string { return "tolerance" }

// Limits implements BoundaryStrategy.
func (s ToleranceDescent) Limits(signal []float64, apex int) (int, int, bool) {
	top := signal[apex]
	dy := math.Max(0, math.Min(s.Atol, s.Rtol*top))
	descends := func(from, to int) bool {
		return signal[from]-signal[to] > dy && signal[to] < top-dy
	}

	return walk(signal, apex, descends)
}

// NaiveDescent walks away from the apex while the signal strictly decreases.
type NaiveDescent struct{}

// Name implements BoundaryStrategy.
func (NaiveDescent) Name() string { return "naive" }

// Limits implements BoundaryStrategy.
func (NaiveDescent) Limits(signal []float64, apex int) (int, int, bool) {
	return walk(signal, apex, func(from, to int) bool {
		return signal[to] < signal[from]
	})
}

// walk moves outward from apex on both sides while descends(current, next) holds.
// The walk fails when a side reaches the end of the signal or does not get
// beyond the sample next to the apex.
func walk(signal []float64, apex int, descends func(from, to int) bool) (int, int, bool) {
	n := len(signal)
	if apex <= 0 || apex >= n-1 {
		return 0, 0, false
	}

	left := apex
	for left > 0 && descends(left, left-1) {
		left--
	}
	right := apex
	for right < n-1 && descends(right, right+1) {
		right++
	}

	if left == 0 || right == n-1 || left >= apex-1 || right <= apex+1 {
		return 0, 0, false
	}
	return left, right, true
}

// Resolver applies boundary strategies in order; the first success wins.
type Resolver struct {
	Strategies []BoundaryStrategy
}

// NewResolver returns the standard two-stage resolver: tolerance descent with
// the given tolerances, then naive descent.
func NewResolver(atol, rtol float64) *Resolver {
	return &Resolver{Strategies: []BoundaryStrategy{
		ToleranceDescent{Atol: atol, Rtol: rtol},
		NaiveDescent{},
	}}
}

// Resolve delimits a single apex.
func (r *Resolver) Resolve(signal []float64, apex int) (Peak, bool) {
	for _, s := range r.Strategies {
		left, right, ok := s.Limits(signal, apex)
		if !ok {
			continue
		}
		return Peak{
			Apex:          apex,
			Left:          left,
			Right:         right,
			BaselineLeft:  left,
			BaselineRight: right,
			Strategy:      s.Name(),
		}, true
	}
	return Peak{}, false
}

// ResolveAll delimits every apex. Peaks are returned in ascending apex order;
// apexes no strategy could delimit are returned separately.
func (r *Resolver) ResolveAll(signal []float64, apexes []int) (peaks []Peak, unresolved []int) {
	sorted := append([]int(nil), apexes...)
	sort.Ints(sorted)

	for _, a := range sorted {
		p, ok := r.Resolve(signal, a)
		if !ok {
			unresolved = append(unresolved, a)
			continue
		}
		peaks = append(peaks, p)
	}
	return peaks, unresolved
}
