package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchvis/breakeven/internal/contract"
	mcp_internal "github.com/benchvis/breakeven/internal/mcp"
)

func testConfig(root string) *contract.Config {
	return &contract.Config{
		ResultsRoot:   root,
		Variants:      []string{"512"},
		IndexCounts:   []int{1, 2},
		StreamIndices: []int{1},
		Fractions:     []float64{0.01, 0.5},
	}
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func writeEstimate(t *testing.T, root, group, label string, mean float64) {
	t.Helper()
	dir := filepath.Join(root, group, label, "new")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := []byte(`{"mean": {"point_estimate": ` +
		mcpFloat(mean) + `, "confidence_interval": {"lower_bound": ` +
		mcpFloat(mean-10) + `, "upper_bound": ` + mcpFloat(mean+10) + `}}}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "estimates.json"), body, 0o644))
}

func mcpFloat(v float64) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func TestMCPServerTools(t *testing.T) {
	root := t.TempDir()
	writeEstimate(t, root, "falcon-rust", "fast verify 512 - 1 indices", 100000)
	writeEstimate(t, root, "falcon-rust", "fast verify 512 - 2 indices", 300000)
	writeEstimate(t, root, "falcon-rust", "verify 512", 200000)

	s := mcp_internal.NewMCPServer(testConfig(root))

	t.Run("analyze_subset reports interpolated breakeven", func(t *testing.T) {
		res := callTool(t, s, "analyze_subset", map[string]any{})
		require.False(t, res.IsError)

		var results []struct {
			Variant          string   `json:"variant"`
			BaselineMicros   *float64 `json:"baseline_micros"`
			BreakevenIndices *float64 `json:"breakeven_indices"`
		}
		text := res.Content[0].(mcp.TextContent).Text
		require.NoError(t, json.Unmarshal([]byte(text), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "512", results[0].Variant)
		require.NotNil(t, results[0].BaselineMicros)
		assert.InDelta(t, 200.0, *results[0].BaselineMicros, 1e-9)
		require.NotNil(t, results[0].BreakevenIndices)
		assert.InDelta(t, 1.5, *results[0].BreakevenIndices, 1e-9)
	})

	t.Run("analyze_subset with no data keeps nulls", func(t *testing.T) {
		res := callTool(t, s, "analyze_subset", map[string]any{
			"results_root": t.TempDir(),
		})
		require.False(t, res.IsError)

		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, `"baseline_micros": null`)
		assert.Contains(t, text, `"breakeven_indices": null`)
	})

	t.Run("analyze_stream returns per-variant series", func(t *testing.T) {
		res := callTool(t, s, "analyze_stream", map[string]any{})
		require.False(t, res.IsError)

		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, `"variant": "512"`)
		assert.Contains(t, text, "falcon512 fast verify (1 indices)")
	})

	t.Run("get_estimates includes unmeasured cells", func(t *testing.T) {
		res := callTool(t, s, "get_estimates", map[string]any{})
		require.False(t, res.IsError)

		var rows []map[string]any
		text := res.Content[0].(mcp.TextContent).Text
		require.NoError(t, json.Unmarshal([]byte(text), &rows))
		// 2 subset + 1 verify baseline + 2 stream baseline + 2 stream cells
		require.Len(t, rows, 7)
		assert.Equal(t, "fast verify 512 - 1 indices", rows[0]["label"])
		assert.Nil(t, rows[3]["mean_ns"], "unmeasured cells carry null, not zero")
	})

	t.Run("variants override narrows the analysis", func(t *testing.T) {
		res := callTool(t, s, "analyze_subset", map[string]any{
			"variants": "1024",
		})
		require.False(t, res.IsError)

		text := res.Content[0].(mcp.TextContent).Text
		assert.Contains(t, text, `"variant": "1024"`)
		assert.NotContains(t, text, `"variant": "512"`)
	})
}

func TestMCPServerMalformedRecordIsToolError(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "falcon-rust", "fast verify 512 - 1 indices", "new")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "estimates.json"), []byte(`{broken`), 0o644))

	s := mcp_internal.NewMCPServer(testConfig(root))
	res := callTool(t, s, "analyze_subset", map[string]any{})

	assert.True(t, res.IsError, "The response should indicate an error state")
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "malformed record")
}
