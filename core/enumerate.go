package core

import (
	"fmt"

	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/schema"
)

// Benchmark group directories used by the harness.
const (
	subsetGroup    = "falcon-rust"
	referenceGroup = "c ffi"
	streamGroup    = "stream_verification"
)

// SubsetCells enumerates the subset-verification cells for one variant, in
// ascending index-count order. The returned order is the plotted order and is
// stable across runs.
func SubsetCells(variant string, indexCounts []int) []schema.Cell {
	cells := make([]schema.Cell, 0, len(indexCounts))
	for _, n := range indexCounts {
		cells = append(cells, schema.Cell{
			Group:   subsetGroup,
			Label:   fmt.Sprintf("fast verify %s - %d indices", variant, n),
			Control: float64(n),
		})
	}
	return cells
}

// VerifyCell returns the full-verification baseline cell for one variant.
func VerifyCell(variant string) schema.Cell {
	return schema.Cell{
		Group: subsetGroup,
		Label: fmt.Sprintf("verify %s", variant),
	}
}

// ReferenceCell returns the C reference implementation baseline cell.
func ReferenceCell(variant string) schema.Cell {
	return schema.Cell{
		Group: referenceGroup,
		Label: fmt.Sprintf("verify %s", variant),
	}
}

// StreamBaselineCells enumerates the full-verification stream cells for one
// variant across the invalid-signature fractions, in ascending fraction order.
func StreamBaselineCells(variant string, fractions []float64) []schema.Cell {
	cells := make([]schema.Cell, 0, len(fractions))
	for _, frac := range fractions {
		cells = append(cells, schema.Cell{
			Group:   streamGroup,
			Label:   fmt.Sprintf("falcon%s_baseline_invalid_%.2f", variant, frac),
			Control: frac,
		})
	}
	return cells
}

// StreamCells enumerates the optimized stream cells for one (variant, index
// count) pair across the invalid-signature fractions, ascending.
func StreamCells(variant string, indices int, fractions []float64) []schema.Cell {
	cells := make([]schema.Cell, 0, len(fractions))
	for _, frac := range fractions {
		cells = append(cells, schema.Cell{
			Group:   streamGroup,
			Label:   fmt.Sprintf("falcon%s_indices_%d_invalid_%.2f", variant, indices, frac),
			Control: frac,
		})
	}
	return cells
}

// EnumerateAll produces every cell the configured analyses would request, in a
// fixed order: subset cells and their baselines first, then stream cells. Used
// by the report command so its output order matches the charts.
func EnumerateAll(cfg *contract.Config) []schema.Cell {
	var cells []schema.Cell
	for _, variant := range cfg.Variants {
		cells = append(cells, SubsetCells(variant, cfg.IndexCounts)...)
		cells = append(cells, VerifyCell(variant))
		if cfg.Reference {
			cells = append(cells, ReferenceCell(variant))
		}
	}
	for _, variant := range cfg.Variants {
		cells = append(cells, StreamBaselineCells(variant, cfg.Fractions)...)
		for _, idx := range cfg.StreamIndices {
			cells = append(cells, StreamCells(variant, idx, cfg.Fractions)...)
		}
	}
	return cells
}
