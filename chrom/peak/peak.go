package peak

import (
	"fmt"

	"github.com/cwbudde/algo-chrom/chrom/quantity"
)

// Peak is one resolved chromatographic peak. Index fields refer to trace samples.
//
// After baseline construction BaselineLeft <= Left < Apex < Right <= BaselineRight.
type Peak struct {
	Apex          int `json:"apex"`
	Left          int `json:"left"`
	Right         int `json:"right"`
	BaselineLeft  int `json:"baseline_left"`
	BaselineRight int `json:"baseline_right"`

	// Strategy names the boundary strategy that delimited the peak.
	Strategy string `json:"strategy"`

	// Filled by Integrate.
	Area          quantity.Quantity `json:"area"`
	Height        quantity.Quantity `json:"height"`
	RetentionTime quantity.Quantity `json:"retention_time"`
}

// Valid reports whether the index invariant holds.
func (p Peak) Valid() bool {
	return p.BaselineLeft <= p.Left && p.Left < p.Apex && p.Apex < p.Right && p.Right <= p.BaselineRight
}

func (p Peak) String() string {
	return fmt.Sprintf("peak{apex=%d [%d,%d] baseline=[%d,%d] area=%g}",
		p.Apex, p.Left, p.Right, p.BaselineLeft, p.BaselineRight, p.Area.Nominal)
}
