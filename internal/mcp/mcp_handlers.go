package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/benchvis/breakeven/core"
	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/internal/outwriter"
	"github.com/benchvis/breakeven/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// requestConfig clones the base config with per-call overrides applied.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) *contract.Config {
	cfg := h.baseCfg.Clone()
	if root := request.GetString("results_root", ""); root != "" {
		cfg.ResultsRoot = root
	}
	if variants := request.GetString("variants", ""); variants != "" {
		cfg.Variants = nil
		for _, v := range strings.Split(variants, ",") {
			if v = strings.TrimSpace(v); v != "" {
				cfg.Variants = append(cfg.Variants, v)
			}
		}
	}
	return cfg
}

// pointJSON is one series point. Mean is null for an unmeasured cell.
type pointJSON struct {
	Control float64  `json:"control"`
	Mean    *float64 `json:"mean"`
}

type seriesJSON struct {
	Name   string      `json:"name"`
	Points []pointJSON `json:"points"`
}

type subsetResult struct {
	Variant          string     `json:"variant"`
	Series           seriesJSON `json:"series"`
	BaselineMicros   *float64   `json:"baseline_micros"`
	ReferenceMicros  *float64   `json:"reference_micros,omitempty"`
	BreakevenIndices *float64   `json:"breakeven_indices"`
}

type streamResult struct {
	Variant        string       `json:"variant"`
	BaselineMillis *float64     `json:"baseline_millis"`
	Series         []seriesJSON `json:"series"`
}

func toSeriesJSON(s schema.Series) seriesJSON {
	out := seriesJSON{Name: s.Name, Points: make([]pointJSON, len(s.Points))}
	for i, p := range s.Points {
		out.Points[i] = pointJSON{Control: p.Control}
		if !p.Missing() {
			mean := p.Estimate.Mean
			out.Points[i].Mean = &mean
		}
	}
	return out
}

func (h *toolHandler) handleAnalyzeSubset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	if request.GetBool("reference", false) {
		cfg.Reference = true
	}
	src := core.NewFSEstimateSource(cfg.ResultsRoot)

	var results []subsetResult
	for _, variant := range cfg.Variants {
		cells := core.SubsetCells(variant, cfg.IndexCounts)
		series, err := core.BuildSeries(src, fmt.Sprintf("fast verify %s", variant), cells)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		scaled := series.Scale(core.NanosPerMicro)
		result := subsetResult{Variant: variant, Series: toSeriesJSON(scaled)}

		baseline, ok, err := core.LoadBaseline(src, core.VerifyCell(variant), fmt.Sprintf("verify %s", variant), core.NanosPerMicro)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		if ok {
			level := baseline.Level
			result.BaselineMicros = &level
			if cp, found := core.FindCrossover(scaled, baseline.Level); found {
				control := cp.Control
				result.BreakevenIndices = &control
			}
		}

		if cfg.Reference {
			ref, ok, err := core.LoadBaseline(src, core.ReferenceCell(variant), fmt.Sprintf("verify %s (reference)", variant), core.NanosPerMicro)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
			}
			if ok {
				level := ref.Level
				result.ReferenceMicros = &level
			}
		}
		results = append(results, result)
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeStream(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	src := core.NewFSEstimateSource(cfg.ResultsRoot)

	var results []streamResult
	for _, variant := range cfg.Variants {
		result := streamResult{Variant: variant}

		group, err := core.LoadGroup(src, core.StreamBaselineCells(variant, cfg.Fractions))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		if baseline, ok := core.Reduce(fmt.Sprintf("falcon%s baseline", variant), group); ok {
			level := baseline.Level / core.NanosPerMilli
			result.BaselineMillis = &level
		}

		for _, idx := range cfg.StreamIndices {
			cells := core.StreamCells(variant, idx, cfg.Fractions)
			series, err := core.BuildSeries(src, fmt.Sprintf("falcon%s fast verify (%d indices)", variant, idx), cells)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
			}
			result.Series = append(result.Series, toSeriesJSON(series.Scale(core.NanosPerMilli)))
		}
		results = append(results, result)
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetEstimates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.requestConfig(request)
	src := core.NewFSEstimateSource(cfg.ResultsRoot)

	cells, estimates, err := core.LoadReport(cfg, src)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading estimates failed: %v", err)), nil
	}

	rows := outwriter.BuildReportRows(cells, estimates)
	jsonData, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
