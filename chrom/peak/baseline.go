package peak

import "math"

// Segment is a candidate baseline segment for a group of peaks.
// Lo and Hi are the end points of the straight baseline; they may never move
// inside [Left, Right], the union of the group's peak limits. Apex is the
// tallest apex of the group and fixes which side of the line the signal must
// stay on.
type Segment struct {
	Lo, Hi      int
	Left, Right int
	Apex        int
}

// Baseline is the baseline of one analysis run: the baseline value of every
// sample plus a mask of samples already claimed by a resolved segment.
// Values start as a copy of the smoothed signal, so unclaimed samples carry a
// zero net signal.
type Baseline struct {
	Values   []float64
	Segments []Segment

	claimed []bool
}

// NewBaseline returns an unclaimed baseline initialised from signal.
func NewBaseline(signal []float64) *Baseline {
	return &Baseline{
		Values:  append([]float64(nil), signal...),
		claimed: make([]bool, len(signal)),
	}
}

// Claimed reports whether sample i belongs to a resolved segment.
func (b *Baseline) Claimed(i int) bool {
	return b.claimed[i]
}

// Construct resolves the baseline of every peak group in ascending order and
// updates each peak's BaselineLeft/BaselineRight to the accepted segment.
// peaks must be sorted by apex and have passed through AssignClaims.
func (b *Baseline) Construct(signal []float64, peaks []Peak) {
	groups := Groups(peaks)
	for gi, g := range groups {
		first, last := &peaks[g[0]], &peaks[g[1]]

		apex := first.Apex
		for i := g[0] + 1; i <= g[1]; i++ {
			if signal[peaks[i].Apex] > signal[apex] {
				apex = peaks[i].Apex
			}
		}

		limitHi := len(signal) - 1
		if gi+1 < len(groups) {
			limitHi = peaks[groups[gi+1][0]].BaselineLeft - 1
		}

		seg := b.Claim(signal, Segment{
			Lo:    first.BaselineLeft,
			Hi:    last.BaselineRight,
			Left:  first.Left,
			Right: last.Right,
			Apex:  apex,
		}, limitHi)

		for i := g[0]; i <= g[1]; i++ {
			peaks[i].BaselineLeft = seg.Lo
			peaks[i].BaselineRight = seg.Hi
		}
	}
}

// Claim expands seg over neighbouring unclaimed samples (never beyond limitHi,
// which belongs to the next group), trims it with TrimSegment, writes the
// straight baseline into Values and marks the covered samples as claimed.
func (b *Baseline) Claim(signal []float64, seg Segment, limitHi int) Segment {
	for seg.Lo > 0 && !b.claimed[seg.Lo-1] {
		seg.Lo--
	}
	for seg.Hi < limitHi && seg.Hi+1 < len(signal) && !b.claimed[seg.Hi+1] {
		seg.Hi++
	}

	seg = TrimSegment(signal, seg)

	y0, y1 := signal[seg.Lo], signal[seg.Hi]
	span := float64(seg.Hi - seg.Lo)
	for i := seg.Lo; i <= seg.Hi; i++ {
		b.Values[i] = y0 + (y1-y0)*float64(i-seg.Lo)/span
		b.claimed[i] = true
	}
	b.Segments = append(b.Segments, seg)

	return seg
}

// TrimSegment shrinks seg until the straight line between (Lo, signal[Lo]) and
// (Hi, signal[Hi]) stays on the apex's side of the signal over the whole
// segment.
//
// Each iteration finds the sample lying furthest on the wrong side of the line
// and moves the end point on that sample's side of the apex onto it, clamped to
// the group limits. The loop ends when no sample is on the wrong side or no end
// point can move; since every move is strictly inward and bounded by
// [Left, Right], it always terminates.
func TrimSegment(signal []float64, seg Segment) Segment {
	for {
		sign := 1.0
		if residual(signal, seg, seg.Apex) < 0 {
			sign = -1
		}

		tol := 1e-12 * scale(signal, seg)
		worstLeft, worstRight := -1, -1
		var depthLeft, depthRight float64
		for i := seg.Lo + 1; i < seg.Hi; i++ {
			d := -sign * residual(signal, seg, i)
			if d <= tol {
				continue
			}
			if i < seg.Apex && d > depthLeft {
				worstLeft, depthLeft = i, d
			}
			if i > seg.Apex && d > depthRight {
				worstRight, depthRight = i, d
			}
		}

		canLeft := worstLeft >= 0 && min(worstLeft, seg.Left) > seg.Lo
		canRight := worstRight >= 0 && max(worstRight, seg.Right) < seg.Hi

		switch {
		case canLeft && (!canRight || depthLeft >= depthRight):
			seg.Lo = min(worstLeft, seg.Left)
		case canRight:
			seg.Hi = max(worstRight, seg.Right)
		default:
			return seg
		}
	}
}

// residual is signal minus the segment line at sample i.
func residual(signal []float64, seg Segment, i int) float64 {
	y0, y1 := signal[seg.Lo], signal[seg.Hi]
	line := y0 + (y1-y0)*float64(i-seg.Lo)/float64(seg.Hi-seg.Lo)
	return signal[i] - line
}

func scale(signal []float64, seg Segment) float64 {
	s := 0.0
	for i := seg.Lo; i <= seg.Hi; i++ {
		s = math.Max(s, math.Abs(signal[i]))
	}
	return s
}
