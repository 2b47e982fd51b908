// Package schema has models, enums and shared helpers for all parts of breakeven.
package schema

// Estimate represents one loaded timing record for a configuration cell.
// All values are in the unit produced by the harness (nanoseconds) until a
// series is explicitly rescaled for presentation.
type Estimate struct {
	Mean    float64 // Point estimate of the mean verification time
	CILower float64 // Lower bound of the two-sided confidence interval
	CIUpper float64 // Upper bound of the two-sided confidence interval
}

// ErrorLower returns the distance from the point estimate down to the lower
// confidence bound. Non-negative for well-formed records.
func (e Estimate) ErrorLower() float64 {
	return e.Mean - e.CILower
}

// ErrorUpper returns the distance from the point estimate up to the upper
// confidence bound. Non-negative for well-formed records.
func (e Estimate) ErrorUpper() float64 {
	return e.CIUpper - e.Mean
}

// Scale returns a copy of the estimate with all values divided by div.
// Used to convert nanoseconds to presentation units.
func (e Estimate) Scale(div float64) Estimate {
	return Estimate{
		Mean:    e.Mean / div,
		CILower: e.CILower / div,
		CIUpper: e.CIUpper / div,
	}
}

// Cell identifies one experiment configuration inside the results tree.
// Group and Label mirror the harness's on-disk layout; Control is the value
// of the varying axis this cell contributes to a series.
type Cell struct {
	Group   string  // Benchmark group directory, e.g. "stream_verification"
	Label   string  // Benchmark label within the group
	Control float64 // Value of the control axis for this cell
}

// String renders the cell the way it appears in the results tree.
func (c Cell) String() string {
	return c.Group + "/" + c.Label
}

// SeriesPoint is one (control value, measurement) pair in a series.
// A nil Estimate marks a cell that was never measured; it must propagate as a
// gap, never as a numeric zero.
type SeriesPoint struct {
	Control  float64
	Estimate *Estimate
}

// Missing reports whether this point carries no measurement.
func (p SeriesPoint) Missing() bool {
	return p.Estimate == nil
}

// Series is an ordered sequence of points sharing all axes except the control
// axis. Ordering follows the enumerator's declared control-value order.
type Series struct {
	Name   string
	Points []SeriesPoint
}

// Present returns the points that carry a measurement, in control order.
func (s Series) Present() []SeriesPoint {
	out := make([]SeriesPoint, 0, len(s.Points))
	for _, p := range s.Points {
		if !p.Missing() {
			out = append(out, p)
		}
	}
	return out
}

// MissingCount returns the number of gap points in the series.
func (s Series) MissingCount() int {
	n := 0
	for _, p := range s.Points {
		if p.Missing() {
			n++
		}
	}
	return n
}

// Scale returns a copy of the series with every present estimate divided by
// div. Gap points stay gaps.
func (s Series) Scale(div float64) Series {
	out := Series{Name: s.Name, Points: make([]SeriesPoint, len(s.Points))}
	for i, p := range s.Points {
		out.Points[i] = SeriesPoint{Control: p.Control}
		if !p.Missing() {
			scaled := p.Estimate.Scale(div)
			out.Points[i].Estimate = &scaled
		}
	}
	return out
}

// Baseline is a single reference level derived from one or more estimates
// sharing all axes, paired with a conservative uncertainty half-width.
type Baseline struct {
	Name      string
	Level     float64 // Median of the group's point estimates
	HalfWidth float64 // (max ciUpper - min ciLower) / 2 over present entries
}

// CrossoverPoint is the interpolated location where a varying series equals a
// baseline level.
type CrossoverPoint struct {
	Control float64 // Interpolated control-axis value
	Level   float64 // Baseline level at the crossing
}
