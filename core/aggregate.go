package core

import (
	"sort"

	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/schema"
	"gonum.org/v1/gonum/floats"
)

// Unit divisors for presentation scaling.
const (
	NanosPerMicro = 1e3 // subset charts plot microseconds
	NanosPerMilli = 1e6 // stream charts plot milliseconds
)

// BuildSeries loads the given cells in order into a named series. An absent
// cell becomes a gap point and a diagnostic; partial series are valid and
// still render. A malformed record aborts the whole run.
func BuildSeries(src contract.EstimateSource, name string, cells []schema.Cell) (schema.Series, error) {
	series := schema.Series{Name: name, Points: make([]schema.SeriesPoint, 0, len(cells))}
	for _, cell := range cells {
		est, ok, err := src.Load(cell)
		if err != nil {
			return schema.Series{}, err
		}
		point := schema.SeriesPoint{Control: cell.Control}
		if ok {
			e := est
			point.Estimate = &e
		} else {
			contract.LogWarning("Missing data for %s", cell)
		}
		series.Points = append(series.Points, point)
	}
	return series, nil
}

// LoadGroup loads a set of cells sharing all axes into a slice aligned with
// the input order, with nil entries for absent cells.
func LoadGroup(src contract.EstimateSource, cells []schema.Cell) ([]*schema.Estimate, error) {
	out := make([]*schema.Estimate, len(cells))
	for i, cell := range cells {
		est, ok, err := src.Load(cell)
		if err != nil {
			return nil, err
		}
		if ok {
			e := est
			out[i] = &e
		} else {
			contract.LogWarning("Missing data for %s", cell)
		}
	}
	return out, nil
}

// Reduce collapses a group of estimates sharing all axes into a baseline:
// the median of the present point estimates plus a conservative half-width of
// (max ciUpper - min ciLower) / 2 over present entries. Missing entries are
// excluded from the reduction, never treated as zero; a group with no present
// entries yields ok=false.
func Reduce(name string, group []*schema.Estimate) (schema.Baseline, bool) {
	var means, lowers, uppers []float64
	for _, est := range group {
		if est == nil {
			continue
		}
		means = append(means, est.Mean)
		lowers = append(lowers, est.CILower)
		uppers = append(uppers, est.CIUpper)
	}
	if len(means) == 0 {
		return schema.Baseline{}, false
	}
	return schema.Baseline{
		Name:      name,
		Level:     median(means),
		HalfWidth: (floats.Max(uppers) - floats.Min(lowers)) / 2,
	}, true
}

// median returns the statistical median, averaging the two middle values for
// groups of even size.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
