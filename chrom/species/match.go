package species

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/cwbudde/algo-chrom/chrom/peak"
)

// OverlapPolicy decides how peaks are shared between overlapping windows.
type OverlapPolicy int

const (
	// OverlapShared matches every window independently; one peak may serve
	// several windows.
	OverlapShared OverlapPolicy = iota
	// OverlapFirst visits windows by ascending TimeLow, then name. A matched
	// peak is unavailable to later windows.
	OverlapFirst
	// OverlapNarrowest visits windows by ascending width, then TimeLow and
	// name. A matched peak is unavailable to later windows.
	OverlapNarrowest
)

var policyNames = map[OverlapPolicy]string{
	OverlapShared:    "shared",
	OverlapFirst:     "first",
	OverlapNarrowest: "narrowest",
}

func (p OverlapPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("OverlapPolicy(%d)", int(p))
}

// ParseOverlapPolicy parses "shared", "first" or "narrowest".
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	for p, name := range policyNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return 0, &ValidationError{Field: "overlap", Message: fmt.Sprintf("unknown overlap policy %q", s)}
}

// Match assigns peaks to windows. The result maps species name to an index
// into peaks; species without a candidate are absent.
//
// Peaks must be integrated: candidates are selected by RetentionTime and
// ranked by Area.
func Match(peaks []peak.Peak, windows []Window, policy OverlapPolicy) map[string]int {
	order := slices.Clone(windows)
	switch policy {
	case OverlapFirst:
		slices.SortStableFunc(order, func(a, b Window) int {
			return cmp.Or(cmp.Compare(a.TimeLow, b.TimeLow), strings.Compare(a.Name, b.Name))
		})
	case OverlapNarrowest:
		slices.SortStableFunc(order, func(a, b Window) int {
			return cmp.Or(
				cmp.Compare(a.Width(), b.Width()),
				cmp.Compare(a.TimeLow, b.TimeLow),
				strings.Compare(a.Name, b.Name),
			)
		})
	}

	exclusive := policy != OverlapShared
	taken := make([]bool, len(peaks))
	out := make(map[string]int, len(order))

	for _, w := range order {
		best := -1
		for i, p := range peaks {
			if taken[i] || !w.Contains(p.RetentionTime.Nominal) {
				continue
			}
			if best < 0 || better(p, peaks[best]) {
				best = i
			}
		}
		if best < 0 {
			continue
		}

		out[w.Name] = best
		if exclusive {
			taken[best] = true
		}
	}

	return out
}

// better reports whether a outranks b: larger area, then lower apex.
func better(a, b peak.Peak) bool {
	if a.Area.Nominal != b.Area.Nominal {
		return a.Area.Nominal > b.Area.Nominal
	}
	return a.Apex < b.Apex
}
