package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/series"
	"github.com/montanaflynn/stats"
)

// ColumnStats summarizes the present values of one numeric column.
type ColumnStats struct {
	Column string
	Type   series.Type
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	P50    float64
	P75    float64
	Max    float64
}

// Describe computes ColumnStats for every int and float column, in header
// order. Missing cells are excluded. Std is the sample standard deviation
// and quartiles use linear interpolation between closest ranks.
func (t *Table) Describe() ([]ColumnStats, error) {
	var out []ColumnStats
	for j, name := range t.names {
		if t.types[j] != series.Int && t.types[j] != series.Float {
			continue
		}

		values := t.presentValues(j)
		cs, err := describeColumn(name, t.types[j], values)
		if err != nil {
			return nil, fmt.Errorf("describe column %s: %w", name, err)
		}
		out = append(out, cs)
	}
	return out, nil
}

func (t *Table) presentValues(j int) stats.Float64Data {
	values := make(stats.Float64Data, 0, len(t.rows))
	for i := range t.rows {
		elem := t.frame.Elem(i, j)
		if elem.IsNA() {
			continue
		}
		values = append(values, elem.Float())
	}
	return values
}

func describeColumn(name string, typ series.Type, values stats.Float64Data) (ColumnStats, error) {
	nan := math.NaN()
	cs := ColumnStats{
		Column: name,
		Type:   typ,
		Count:  len(values),
		Mean:   nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan,
	}
	if len(values) == 0 {
		return cs, nil
	}

	var err error
	if cs.Mean, err = stats.Mean(values); err != nil {
		return cs, err
	}
	if cs.Min, err = stats.Min(values); err != nil {
		return cs, err
	}
	if cs.Max, err = stats.Max(values); err != nil {
		return cs, err
	}
	if cs.P50, err = stats.Median(values); err != nil {
		return cs, err
	}
	if len(values) > 1 {
		if cs.Std, err = stats.StandardDeviationSample(values); err != nil {
			return cs, err
		}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	cs.P25 = quantile(sorted, 0.25)
	cs.P75 = quantile(sorted, 0.75)

	return cs, nil
}

// quantile interpolates linearly between the two closest ranks of a sorted
// sample.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
