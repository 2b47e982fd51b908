package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchvis/breakeven/internal/contract"
)

func TestSubsetCellLabels(t *testing.T) {
	cells := SubsetCells("512", []int{1, 8, 64})
	require.Len(t, cells, 3)
	assert.Equal(t, "falcon-rust", cells[0].Group)
	assert.Equal(t, "fast verify 512 - 1 indices", cells[0].Label)
	assert.Equal(t, "fast verify 512 - 8 indices", cells[1].Label)
	assert.Equal(t, "fast verify 512 - 64 indices", cells[2].Label)
	assert.Equal(t, 64.0, cells[2].Control)
}

func TestBaselineCellLabels(t *testing.T) {
	verify := VerifyCell("1024")
	assert.Equal(t, "falcon-rust", verify.Group)
	assert.Equal(t, "verify 1024", verify.Label)

	ref := ReferenceCell("1024")
	assert.Equal(t, "c ffi", ref.Group)
	assert.Equal(t, "verify 1024", ref.Label)
}

func TestStreamCellLabels(t *testing.T) {
	base := StreamBaselineCells("512", []float64{0.01, 0.5})
	require.Len(t, base, 2)
	assert.Equal(t, "stream_verification", base[0].Group)
	assert.Equal(t, "falcon512_baseline_invalid_0.01", base[0].Label)
	assert.Equal(t, "falcon512_baseline_invalid_0.50", base[1].Label)
	assert.Equal(t, 0.5, base[1].Control)

	cells := StreamCells("1024", 8, []float64{0.99})
	require.Len(t, cells, 1)
	assert.Equal(t, "falcon1024_indices_8_invalid_0.99", cells[0].Label)
}

func TestEnumerateAllOrderAndStability(t *testing.T) {
	cfg := &contract.Config{
		Variants:      []string{"512", "1024"},
		IndexCounts:   []int{1, 2, 4},
		StreamIndices: []int{1, 8},
		Fractions:     []float64{0.01, 0.5},
	}

	first := EnumerateAll(cfg)
	second := EnumerateAll(cfg)
	assert.Equal(t, first, second, "enumeration must be deterministic")

	// Subset cells and their baseline per variant come first, then stream cells.
	// 2 variants * (3 subset + 1 baseline) + 2 variants * (2 baseline fractions + 2 indices * 2 fractions)
	require.Len(t, first, 8+12)
	assert.Equal(t, "fast verify 512 - 1 indices", first[0].Label)
	assert.Equal(t, "verify 512", first[3].Label)
	assert.Equal(t, "fast verify 1024 - 1 indices", first[4].Label)
	assert.Equal(t, "falcon512_baseline_invalid_0.01", first[8].Label)
	assert.Equal(t, "falcon1024_indices_8_invalid_0.50", first[19].Label)
}

func TestEnumerateAllIncludesReference(t *testing.T) {
	cfg := &contract.Config{
		Variants:    []string{"512"},
		IndexCounts: []int{1},
		Reference:   true,
	}
	cells := EnumerateAll(cfg)
	require.Len(t, cells, 3)
	assert.Equal(t, "c ffi", cells[2].Group)
}
