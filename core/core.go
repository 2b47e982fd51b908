// Package core has the benchmark analysis pipeline: loading, enumeration,
// aggregation and crossover detection.
package core

import (
	"fmt"
	"time"

	"github.com/benchvis/breakeven/internal/chart"
	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/schema"
)

// ExecuteSubset runs the index-subset breakeven analysis: one series per
// variant over the index-count axis, compared against the full-verification
// baseline, with the interpolated breakeven annotated. It serves as the main
// entry point for the 'subset' command.
func ExecuteSubset(cfg *contract.Config, src contract.EstimateSource, store contract.RunStore) error {
	start := time.Now()
	runID, err := store.BeginRun(start, contract.ConfigParams(cfg))
	if err != nil {
		return fmt.Errorf("failed to begin run tracking: %w", err)
	}

	input := chart.Input{
		Name:   "subset_breakeven",
		Title:  "Subset Verification Breakeven",
		XLabel: "Number of Indices Verified",
		YLabel: "Time (µs)",
		Log2X:  true,
	}
	for _, n := range cfg.IndexCounts {
		input.XTicks = append(input.XTicks, float64(n))
	}

	loaded, missing := 0, 0
	for _, variant := range cfg.Variants {
		cells := SubsetCells(variant, cfg.IndexCounts)
		series, err := BuildSeries(src, fmt.Sprintf("fast verify %s", variant), cells)
		if err != nil {
			return err
		}
		missing += series.MissingCount()
		loaded += len(series.Points) - series.MissingCount()
		recordSeries(store, runID, cells, series)

		scaled := series.Scale(NanosPerMicro)
		line := chart.Line{Series: scaled, ErrorBars: true}

		baseline, ok, err := LoadBaseline(src, VerifyCell(variant), fmt.Sprintf("verify %s", variant), NanosPerMicro)
		if err != nil {
			return err
		}
		if ok {
			loaded++
			input.Baselines = append(input.Baselines, baseline)
			if cp, found := FindCrossover(scaled, baseline.Level); found {
				line.Crossover = &cp
				if err := store.RecordCrossover(runID, scaled.Name, cp); err != nil {
					contract.LogWarning("Failed to record crossover for %s: %v", scaled.Name, err)
				}
				contract.LogInfo("Breakeven for %s ≈ %.1f indices", scaled.Name, cp.Control)
			} else {
				contract.LogInfo("No breakeven for %s within the measured range", scaled.Name)
			}
		} else {
			missing++
		}

		if cfg.Reference {
			refBaseline, ok, err := LoadBaseline(src, ReferenceCell(variant), fmt.Sprintf("verify %s (reference)", variant), NanosPerMicro)
			if err != nil {
				return err
			}
			if ok {
				loaded++
				input.Baselines = append(input.Baselines, refBaseline)
			} else {
				missing++
			}
		}

		input.Lines = append(input.Lines, line)
	}

	if err := chart.Render(input, cfg.OutDir); err != nil {
		return err
	}
	contract.LogInfo("Wrote %s.png and %s.pdf to %s", input.Name, input.Name, cfg.OutDir)

	if err := store.EndRun(runID, time.Now(), loaded, missing); err != nil {
		return fmt.Errorf("failed to end run tracking: %w", err)
	}
	return nil
}

// ExecuteStream runs the stream-verification analysis: per (variant, index
// count) series over the invalid-signature fraction axis, compared against the
// median full-verification baseline per variant. It serves as the main entry
// point for the 'stream' command.
func ExecuteStream(cfg *contract.Config, src contract.EstimateSource, store contract.RunStore) error {
	start := time.Now()
	runID, err := store.BeginRun(start, contract.ConfigParams(cfg))
	if err != nil {
		return fmt.Errorf("failed to begin run tracking: %w", err)
	}

	input := chart.Input{
		Name:   "stream_breakeven",
		Title:  "Stream Verification: Fast-Then-Full vs Full Only",
		XLabel: "Fraction of Invalid Signatures",
		YLabel: "Time per Batch (ms)",
		XTicks: cfg.Fractions,
		XMin:   0,
		XMax:   1,
	}

	loaded, missing := 0, 0
	for _, variant := range cfg.Variants {
		baseCells := StreamBaselineCells(variant, cfg.Fractions)
		group, err := LoadGroup(src, baseCells)
		if err != nil {
			return err
		}
		for i, est := range group {
			if est == nil {
				missing++
				continue
			}
			loaded++
			if err := store.RecordEstimate(runID, baseCells[i], *est); err != nil {
				contract.LogWarning("Failed to record estimate for %s: %v", baseCells[i], err)
			}
		}
		baseline, ok := Reduce(fmt.Sprintf("falcon%s baseline", variant), scaleGroup(group, NanosPerMilli))
		if ok {
			input.Baselines = append(input.Baselines, baseline)
		} else {
			contract.LogWarning("No baseline measurements for falcon%s; skipping reference line", variant)
		}

		for _, idx := range cfg.StreamIndices {
			cells := StreamCells(variant, idx, cfg.Fractions)
			series, err := BuildSeries(src, fmt.Sprintf("falcon%s fast verify (%d indices)", variant, idx), cells)
			if err != nil {
				return err
			}
			missing += series.MissingCount()
			loaded += len(series.Points) - series.MissingCount()
			recordSeries(store, runID, cells, series)
			input.Lines = append(input.Lines, chart.Line{Series: series.Scale(NanosPerMilli)})
		}
	}

	if err := chart.Render(input, cfg.OutDir); err != nil {
		return err
	}
	contract.LogInfo("Wrote %s.png and %s.pdf to %s", input.Name, input.Name, cfg.OutDir)

	if err := store.EndRun(runID, time.Now(), loaded, missing); err != nil {
		return fmt.Errorf("failed to end run tracking: %w", err)
	}
	return nil
}

// LoadReport loads every configured cell in enumeration order for the report
// command. Absent cells stay in the result with a nil estimate so downstream
// writers can render an explicit gap.
func LoadReport(cfg *contract.Config, src contract.EstimateSource) ([]schema.Cell, []*schema.Estimate, error) {
	cells := EnumerateAll(cfg)
	group, err := LoadGroup(src, cells)
	if err != nil {
		return nil, nil, err
	}
	return cells, group, nil
}

// LoadBaseline loads a single baseline cell and reduces it, scaling into the
// chart's presentation unit. An absent cell is reported, not fatal.
func LoadBaseline(src contract.EstimateSource, cell schema.Cell, name string, div float64) (schema.Baseline, bool, error) {
	est, ok, err := src.Load(cell)
	if err != nil {
		return schema.Baseline{}, false, err
	}
	if !ok {
		contract.LogWarning("Missing data for %s", cell)
		return schema.Baseline{}, false, nil
	}
	scaled := est.Scale(div)
	baseline, _ := Reduce(name, []*schema.Estimate{&scaled})
	return baseline, true, nil
}

// recordSeries stores the present points of a series. Tracking failures are
// surfaced as warnings; the analysis itself still completes.
func recordSeries(store contract.RunStore, runID int64, cells []schema.Cell, series schema.Series) {
	for i, point := range series.Points {
		if point.Missing() {
			continue
		}
		if err := store.RecordEstimate(runID, cells[i], *point.Estimate); err != nil {
			contract.LogWarning("Failed to record estimate for %s: %v", cells[i], err)
		}
	}
}

// scaleGroup scales present group entries into a presentation unit, keeping
// absent entries absent.
func scaleGroup(group []*schema.Estimate, div float64) []*schema.Estimate {
	out := make([]*schema.Estimate, len(group))
	for i, est := range group {
		if est == nil {
			continue
		}
		scaled := est.Scale(div)
		out[i] = &scaled
	}
	return out
}
