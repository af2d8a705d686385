// Package report renders analysis results as terminal tables or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/cwbudde/algo-chrom/chrom/engine"
	"github.com/cwbudde/algo-chrom/chrom/peak"
	"github.com/cwbudde/algo-chrom/chrom/quantity"
	"github.com/cwbudde/algo-chrom/chrom/species"
)

// DefaultPrecision is the number of decimals printed in tables.
const DefaultPrecision = 4

// Entry is one analysed trace.
type Entry struct {
	Source    string                       `json:"source"`
	Result    *engine.Result               `json:"result,omitempty"`
	Fractions map[string]quantity.Quantity `json:"fractions,omitempty"`
	Error     string                       `json:"error,omitempty"`
}

// WriteJSON writes entries as an indented JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// WritePeaksJSON writes resolved peaks as an indented JSON array.
func WritePeaksJSON(w io.Writer, peaks []peak.Peak) error {
	if peaks == nil {
		peaks = []peak.Peak{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(peaks)
}

func formatQuantity(q quantity.Quantity, precision int) string {
	s := fmt.Sprintf("%.*f ± %.*f", precision, q.Nominal, precision, q.Uncertainty)
	if q.Unit != "" {
		s += " " + q.Unit
	}
	return s
}

// SpeciesTable prints one row per matched species of res. Fractions may be nil.
func SpeciesTable(w io.Writer, res *engine.Result, fractions map[string]quantity.Quantity, precision int) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Species", "Retention", "Area", "Height", "Concentration"}
	if fractions != nil {
		headers = append(headers, "Fraction")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, name := range res.Names() {
		sr := res.Species[name]
		conc := "-"
		if sr.Concentration != nil {
			conc = formatQuantity(*sr.Concentration, precision)
		}

		row := []string{
			name,
			formatQuantity(sr.RetentionTime, precision),
			formatQuantity(sr.Area, precision),
			formatQuantity(sr.Height, precision),
			conc,
		}
		if fractions != nil {
			frac := "-"
			if q, ok := fractions[name]; ok {
				frac = strconv.FormatFloat(q.Nominal, 'f', precision, 64)
			}
			row = append(row, frac)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// PeakTable prints every resolved peak of res with the species it serves.
func PeakTable(w io.Writer, res *engine.Result, precision int) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Apex", "Time", "Left", "Right", "Baseline", "Strategy", "Area", "Species"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	served := make(map[int][]string)
	for _, name := range res.Names() {
		idx := res.Species[name].Peak
		served[idx] = append(served[idx], name)
	}

	var data [][]string
	for i, p := range res.Peaks {
		names := "-"
		if s := served[i]; len(s) > 0 {
			names = fmt.Sprint(s)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(p.Apex),
			strconv.FormatFloat(p.RetentionTime.Nominal, 'f', precision, 64),
			strconv.Itoa(p.Left),
			strconv.Itoa(p.Right),
			fmt.Sprintf("%d-%d", p.BaselineLeft, p.BaselineRight),
			p.Strategy,
			strconv.FormatFloat(p.Area.Nominal, 'f', precision, 64),
			names,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

var warnColor = color.New(color.FgYellow)

// Warnings prints a line for every unresolved apex and every species of det
// without a peak. It returns the number of lines written.
func Warnings(w io.Writer, res *engine.Result, det species.Detector) (int, error) {
	n := 0
	for _, apex := range res.Unresolved {
		if _, err := warnColor.Fprintf(w, "warning: %s: apex at sample %d could not be delimited\n", res.Detector, apex); err != nil {
			return n, err
		}
		n++
	}
	for _, win := range det.Windows() {
		if _, ok := res.Species[win.Name]; ok {
			continue
		}
		if _, err := warnColor.Fprintf(w, "warning: %s: no peak for %s in [%g, %g]\n",
			res.Detector, win.Name, win.TimeLow, win.TimeHigh); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
