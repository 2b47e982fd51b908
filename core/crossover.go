package core

import "github.com/benchvis/breakeven/schema"

// FindCrossover scans adjacent pairs (x1,y1), (x2,y2) of non-missing points in
// control order for the first pair whose values bracket the baseline, and
// returns the linearly interpolated control value at which the series meets
// the baseline. Both directions count: a series rising through the baseline
// (y1 < baseline <= y2) and one falling through it (y1 > baseline >= y2).
//
// Only the first qualifying pair is reported even if noisy data crosses more
// than once; the renderer assumes at most one annotated crossover per series.
// Returns ok=false when the series never brackets the baseline or has fewer
// than two non-missing points, a valid, reportable outcome rather than an
// error.
func FindCrossover(series schema.Series, baseline float64) (schema.CrossoverPoint, bool) {
	points := series.Present()
	for i := 0; i+1 < len(points); i++ {
		x1, y1 := points[i].Control, points[i].Estimate.Mean
		x2, y2 := points[i+1].Control, points[i+1].Estimate.Mean
		rising := y1 < baseline && baseline <= y2
		falling := y1 > baseline && baseline >= y2
		if !rising && !falling {
			continue
		}
		// Bracketing implies y1 != y2, but guard explicitly rather than divide
		// by zero on inconsistent input.
		if y2 == y1 {
			continue
		}
		return schema.CrossoverPoint{
			Control: x1 + (baseline-y1)*(x2-x1)/(y2-y1),
			Level:   baseline,
		}, true
	}
	return schema.CrossoverPoint{}, false
}
