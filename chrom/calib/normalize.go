package calib

import (
	"errors"
	"maps"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-chrom/chrom/quantity"
)

// ErrZeroSum is returned by Normalize when the nominal values sum to zero.
var ErrZeroSum = errors.New("calib: normalization subset sums to zero")

// Normalize divides every nominal value by the sum of all nominal values.
// Uncertainties and units are kept as they are. An empty input gives an empty
// map.
func Normalize(values map[string]quantity.Quantity) (map[string]quantity.Quantity, error) {
	out := make(map[string]quantity.Quantity, len(values))
	if len(values) == 0 {
		return out, nil
	}

	names := slices.Sorted(maps.Keys(values))
	nominal := make([]float64, len(names))
	for i, name := range names {
		nominal[i] = values[name].Nominal
	}

	sum := floats.Sum(nominal)
	if sum == 0 {
		return nil, ErrZeroSum
	}

	for i, name := range names {
		q := values[name]
		q.Nominal = nominal[i] / sum
		out[name] = q
	}

	return out, nil
}
