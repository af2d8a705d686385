// Package csvtrace reads chromatographic traces from delimited text files.
//
// A file holds one sample per record with time and signal in two columns.
// Lines starting with '#' are comments. An optional header record names the
// columns; a unit in square brackets, as in "time [s]", becomes the unit of
// the trace unless Options overrides it.
package csvtrace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-chrom/chrom/trace"
)

// ErrColumn is returned when a record lacks the configured columns.
var ErrColumn = errors.New("csvtrace: missing column")

// Options control parsing.
type Options struct {
	Comma        rune // field delimiter, ',' when zero
	TimeColumn   int  // zero-based
	SignalColumn int  // zero-based; 0 with TimeColumn 0 means column 1

	// Units override the header units when non-empty.
	Unit     string
	TimeUnit string

	TimeSigma   float64
	SignalSigma float64
}

func (o Options) columns() (int, int) {
	if o.TimeColumn == 0 && o.SignalColumn == 0 {
		return 0, 1
	}
	return o.TimeColumn, o.SignalColumn
}

// ReadFile opens path and reads a trace from it.
func ReadFile(path string, opts Options) (trace.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return trace.Trace{}, err
	}
	defer func() { _ = f.Close() }()

	tr, err := Read(f, opts)
	if err != nil {
		return trace.Trace{}, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

// Read parses a trace from r and validates it.
func Read(r io.Reader, opts Options) (trace.Trace, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	tc, sc := opts.columns()
	var (
		times, signal  []float64
		unit, timeUnit string
	)

	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return trace.Trace{}, fmt.Errorf("csvtrace: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if max(tc, sc) >= len(rec) {
			return trace.Trace{}, fmt.Errorf("%w: line %d has %d fields", ErrColumn, line, len(rec))
		}

		t, terr := parseFloat(rec[tc])
		s, serr := parseFloat(rec[sc])
		if first && (terr != nil || serr != nil) {
			timeUnit, unit = headerUnit(rec[tc]), headerUnit(rec[sc])
			continue
		}
		if terr != nil {
			return trace.Trace{}, fmt.Errorf("csvtrace: line %d: time: %w", line, terr)
		}
		if serr != nil {
			return trace.Trace{}, fmt.Errorf("csvtrace: line %d: signal: %w", line, serr)
		}

		times = append(times, t)
		signal = append(signal, s)
	}

	if opts.Unit != "" {
		unit = opts.Unit
	}
	if opts.TimeUnit != "" {
		timeUnit = opts.TimeUnit
	}

	tr := trace.Trace{
		Time:        times,
		Signal:      signal,
		Unit:        unit,
		TimeUnit:    timeUnit,
		TimeSigma:   opts.TimeSigma,
		SignalSigma: opts.SignalSigma,
	}
	if err := tr.Validate(); err != nil {
		return trace.Trace{}, err
	}
	return tr, nil
}

func parseFloat(field string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(field), 64)
}

// headerUnit extracts "s" from "time [s]" or "time (s)".
func headerUnit(name string) string {
	for _, pair := range [][2]string{{"[", "]"}, {"(", ")"}} {
		open := strings.LastIndex(name, pair[0])
		end := strings.LastIndex(name, pair[1])
		if open >= 0 && end > open {
			return strings.TrimSpace(name[open+1 : end])
		}
	}
	return ""
}
