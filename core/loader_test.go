package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/schema"
)

// writeRecord places an estimates.json under the given run variant.
func writeRecord(t *testing.T, root string, cell schema.Cell, variant, body string) {
	t.Helper()
	dir := filepath.Join(root, cell.Group, cell.Label, variant)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "estimates.json"), []byte(body), 0o644))
}

// recordBody renders a minimal well-formed leaf record.
func recordBody(mean, lower, upper float64) string {
	return fmt.Sprintf(`{"mean": {"point_estimate": %v, "confidence_interval": {"lower_bound": %v, "upper_bound": %v}}}`,
		mean, lower, upper)
}

func TestLoadPrefersNewOverBase(t *testing.T) {
	root := t.TempDir()
	cell := schema.Cell{Group: "falcon-rust", Label: "verify 512"}
	writeRecord(t, root, cell, "new", recordBody(100, 90, 110))
	writeRecord(t, root, cell, "base", recordBody(500, 450, 550))

	src := NewFSEstimateSource(root)
	est, ok, err := src.Load(cell)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.0, est.Mean)
}

func TestLoadFallsBackToBase(t *testing.T) {
	root := t.TempDir()
	cell := schema.Cell{Group: "falcon-rust", Label: "verify 512"}
	writeRecord(t, root, cell, "base", recordBody(500, 450, 550))

	src := NewFSEstimateSource(root)
	est, ok, err := src.Load(cell)
	require.NoError(t, err)
	require.True(t, ok, "a cell with only the base variant must not read as absent")
	assert.Equal(t, 500.0, est.Mean)
	assert.Equal(t, 450.0, est.CILower)
	assert.Equal(t, 550.0, est.CIUpper)
}

func TestLoadAbsentCell(t *testing.T) {
	src := NewFSEstimateSource(t.TempDir())
	_, ok, err := src.Load(schema.Cell{Group: "falcon-rust", Label: "verify 512"})
	require.NoError(t, err, "an unmeasured cell is expected, not an error")
	assert.False(t, ok)
}

func TestLoadMalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing point estimate", `{"mean": {"confidence_interval": {"lower_bound": 1, "upper_bound": 2}}}`},
		{"missing confidence interval", `{"mean": {"point_estimate": 100}}`},
		{"missing upper bound", `{"mean": {"point_estimate": 100, "confidence_interval": {"lower_bound": 90}}}`},
		{"interval does not bracket mean", recordBody(100, 110, 120)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			cell := schema.Cell{Group: "falcon-rust", Label: "verify 1024"}
			writeRecord(t, root, cell, "new", tt.body)

			src := NewFSEstimateSource(root)
			_, _, err := src.Load(cell)
			require.Error(t, err)

			var malformed *contract.MalformedRecordError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, cell, malformed.Cell)
			assert.Contains(t, err.Error(), "falcon-rust/verify 1024")
		})
	}
}

func TestLoadMalformedNewDoesNotFallBack(t *testing.T) {
	root := t.TempDir()
	cell := schema.Cell{Group: "falcon-rust", Label: "verify 512"}
	writeRecord(t, root, cell, "new", `{broken`)
	writeRecord(t, root, cell, "base", recordBody(500, 450, 550))

	src := NewFSEstimateSource(root)
	_, _, err := src.Load(cell)
	var malformed *contract.MalformedRecordError
	require.True(t, errors.As(err, &malformed), "a corrupt record is fatal, not a fallback trigger")
}
