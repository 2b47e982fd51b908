package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateErrorBounds(t *testing.T) {
	est := Estimate{Mean: 100, CILower: 90, CIUpper: 115}
	assert.Equal(t, 10.0, est.ErrorLower())
	assert.Equal(t, 15.0, est.ErrorUpper())

	scaled := est.Scale(10)
	assert.Equal(t, 10.0, scaled.Mean)
	assert.Equal(t, 9.0, scaled.CILower)
	assert.Equal(t, 11.5, scaled.CIUpper)
	assert.Equal(t, 100.0, est.Mean, "scaling returns a copy")
}

func TestCellString(t *testing.T) {
	cell := Cell{Group: "falcon-rust", Label: "verify 512", Control: 0}
	assert.Equal(t, "falcon-rust/verify 512", cell.String())
}

func TestSeriesPresentAndMissing(t *testing.T) {
	est := Estimate{Mean: 1, CILower: 1, CIUpper: 1}
	s := Series{Points: []SeriesPoint{
		{Control: 1, Estimate: &est},
		{Control: 2},
		{Control: 4, Estimate: &est},
	}}

	present := s.Present()
	assert.Len(t, present, 2)
	assert.Equal(t, 1.0, present[0].Control)
	assert.Equal(t, 4.0, present[1].Control)
	assert.Equal(t, 1, s.MissingCount())
}
