package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/schema"
)

// mapSource serves estimates from memory, keyed by cell string.
type mapSource struct {
	estimates map[string]schema.Estimate
	failures  map[string]error
}

func (m *mapSource) Load(cell schema.Cell) (schema.Estimate, bool, error) {
	if err, ok := m.failures[cell.String()]; ok {
		return schema.Estimate{}, false, err
	}
	est, ok := m.estimates[cell.String()]
	return est, ok, nil
}

func est(mean, lower, upper float64) *schema.Estimate {
	return &schema.Estimate{Mean: mean, CILower: lower, CIUpper: upper}
}

func TestReduceMissingTolerant(t *testing.T) {
	baseline, ok := Reduce("full verify", []*schema.Estimate{
		nil,
		est(10, 8, 12),
		est(12, 9, 15),
	})
	require.True(t, ok)
	assert.Equal(t, "full verify", baseline.Name)
	assert.InDelta(t, 11.0, baseline.Level, 1e-12, "median over present entries only")
	assert.InDelta(t, 3.5, baseline.HalfWidth, 1e-12, "(max upper - min lower) / 2 over present entries")
}

func TestReduceAllMissing(t *testing.T) {
	baseline, ok := Reduce("empty", []*schema.Estimate{nil, nil})
	assert.False(t, ok, "a group with no present entries must stay absent, never zero")
	assert.Zero(t, baseline.Level)
}

func TestReduceOddGroup(t *testing.T) {
	baseline, ok := Reduce("odd", []*schema.Estimate{
		est(30, 29, 31),
		est(10, 9, 11),
		est(20, 19, 21),
	})
	require.True(t, ok)
	assert.InDelta(t, 20.0, baseline.Level, 1e-12)
	assert.InDelta(t, 11.0, baseline.HalfWidth, 1e-12)
}

func TestReduceSingleEstimate(t *testing.T) {
	baseline, ok := Reduce("single", []*schema.Estimate{est(42, 40, 46)})
	require.True(t, ok)
	assert.InDelta(t, 42.0, baseline.Level, 1e-12)
	assert.InDelta(t, 3.0, baseline.HalfWidth, 1e-12)
}

func TestBuildSeriesKeepsGaps(t *testing.T) {
	cells := SubsetCells("512", []int{1, 2, 4})
	src := &mapSource{estimates: map[string]schema.Estimate{
		cells[0].String(): {Mean: 100, CILower: 90, CIUpper: 110},
		cells[2].String(): {Mean: 400, CILower: 380, CIUpper: 420},
	}}

	series, err := BuildSeries(src, "fast verify 512", cells)
	require.NoError(t, err)
	require.Len(t, series.Points, 3)
	assert.False(t, series.Points[0].Missing())
	assert.True(t, series.Points[1].Missing(), "the unmeasured cell must stay a gap")
	assert.False(t, series.Points[2].Missing())
	assert.Equal(t, 1, series.MissingCount())
	assert.Equal(t, 2.0, series.Points[1].Control)
}

func TestBuildSeriesPropagatesMalformed(t *testing.T) {
	cells := SubsetCells("512", []int{1, 2})
	src := &mapSource{
		estimates: map[string]schema.Estimate{cells[0].String(): {Mean: 1, CILower: 1, CIUpper: 1}},
		failures: map[string]error{
			cells[1].String(): &contract.MalformedRecordError{Cell: cells[1]},
		},
	}

	_, err := BuildSeries(src, "fast verify 512", cells)
	var malformed *contract.MalformedRecordError
	require.ErrorAs(t, err, &malformed)
}

func TestLoadGroupAlignment(t *testing.T) {
	cells := StreamBaselineCells("512", []float64{0.01, 0.5, 0.99})
	src := &mapSource{estimates: map[string]schema.Estimate{
		cells[1].String(): {Mean: 7, CILower: 6, CIUpper: 8},
	}}

	group, err := LoadGroup(src, cells)
	require.NoError(t, err)
	require.Len(t, group, 3)
	assert.Nil(t, group[0])
	require.NotNil(t, group[1])
	assert.Equal(t, 7.0, group[1].Mean)
	assert.Nil(t, group[2])
}

func TestSeriesScaleKeepsGaps(t *testing.T) {
	series := schema.Series{Name: "s", Points: []schema.SeriesPoint{
		{Control: 1, Estimate: est(2000, 1000, 3000)},
		{Control: 2},
	}}
	scaled := series.Scale(NanosPerMicro)
	require.Len(t, scaled.Points, 2)
	assert.InDelta(t, 2.0, scaled.Points[0].Estimate.Mean, 1e-12)
	assert.True(t, scaled.Points[1].Missing())
}
