package core

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/schema"
)

// memStore records run tracking calls in memory for assertions.
type memStore struct {
	runID      int64
	began      bool
	ended      bool
	loaded     int
	missing    int
	estimates  []schema.Cell
	crossovers []schema.CrossoverPoint
}

func (m *memStore) BeginRun(_ time.Time, _ map[string]any) (int64, error) {
	m.began = true
	m.runID++
	return m.runID, nil
}

func (m *memStore) EndRun(_ int64, _ time.Time, loadedCells, missingCells int) error {
	m.ended = true
	m.loaded = loadedCells
	m.missing = missingCells
	return nil
}

func (m *memStore) RecordEstimate(_ int64, cell schema.Cell, _ schema.Estimate) error {
	m.estimates = append(m.estimates, cell)
	return nil
}

func (m *memStore) RecordCrossover(_ int64, _ string, cp schema.CrossoverPoint) error {
	m.crossovers = append(m.crossovers, cp)
	return nil
}

func (m *memStore) GetStatus() (schema.StoreStatus, error) { return schema.StoreStatus{}, nil }
func (m *memStore) Clear() error                           { return nil }
func (m *memStore) Migrate(int) error                      { return nil }
func (m *memStore) ExportParquet(string) error             { return nil }
func (m *memStore) Close() error                           { return nil }

func subsetTestConfig(root, outDir string) *contract.Config {
	return &contract.Config{
		ResultsRoot:   root,
		OutDir:        outDir,
		Variants:      []string{"512"},
		IndexCounts:   []int{1, 2, 4},
		StreamIndices: []int{1},
		Fractions:     []float64{0.01, 0.5},
	}
}

func TestExecuteSubset(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "plots")

	// Fast verify rises through the flat baseline between 2 and 4 indices.
	writeRecord(t, root, schema.Cell{Group: "falcon-rust", Label: "fast verify 512 - 1 indices"}, "new", recordBody(100000, 95000, 105000))
	writeRecord(t, root, schema.Cell{Group: "falcon-rust", Label: "fast verify 512 - 2 indices"}, "new", recordBody(150000, 140000, 160000))
	writeRecord(t, root, schema.Cell{Group: "falcon-rust", Label: "fast verify 512 - 4 indices"}, "base", recordBody(300000, 290000, 310000))
	writeRecord(t, root, schema.Cell{Group: "falcon-rust", Label: "verify 512"}, "new", recordBody(200000, 195000, 205000))

	cfg := subsetTestConfig(root, outDir)
	store := &memStore{}
	src := NewFSEstimateSource(root)

	require.NoError(t, ExecuteSubset(cfg, src, store))

	assert.FileExists(t, filepath.Join(outDir, "subset_breakeven.png"))
	assert.FileExists(t, filepath.Join(outDir, "subset_breakeven.pdf"))

	assert.True(t, store.began)
	assert.True(t, store.ended)
	assert.Equal(t, 4, store.loaded)
	assert.Equal(t, 0, store.missing)

	require.Len(t, store.crossovers, 1)
	// Scaled to µs: 150 -> 300 crossing 200 at x = 2 + 50*2/150
	assert.InDelta(t, 2.0+2.0/3.0, store.crossovers[0].Control, 1e-9)
	assert.InDelta(t, 200.0, store.crossovers[0].Level, 1e-9)
}

func TestExecuteSubsetMissingBaseline(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "plots")

	writeRecord(t, root, schema.Cell{Group: "falcon-rust", Label: "fast verify 512 - 1 indices"}, "new", recordBody(100000, 95000, 105000))

	cfg := subsetTestConfig(root, outDir)
	store := &memStore{}

	// Missing cells, including the baseline, are gaps; the run still renders.
	require.NoError(t, ExecuteSubset(cfg, NewFSEstimateSource(root), store))
	assert.FileExists(t, filepath.Join(outDir, "subset_breakeven.png"))
	assert.Empty(t, store.crossovers)
	assert.Equal(t, 1, store.loaded)
	assert.Equal(t, 3, store.missing)
}

func TestExecuteSubsetMalformedRecordAborts(t *testing.T) {
	root := t.TempDir()
	writeRecord(t, root, schema.Cell{Group: "falcon-rust", Label: "fast verify 512 - 1 indices"}, "new", `{broken`)

	cfg := subsetTestConfig(root, filepath.Join(t.TempDir(), "plots"))
	err := ExecuteSubset(cfg, NewFSEstimateSource(root), &memStore{})

	var malformed *contract.MalformedRecordError
	require.ErrorAs(t, err, &malformed)
}

func TestExecuteStream(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "plots")

	// Baseline group across fractions, medians flatten to one level.
	writeRecord(t, root, schema.Cell{Group: "stream_verification", Label: "falcon512_baseline_invalid_0.01"}, "new", recordBody(4e6, 3.8e6, 4.2e6))
	writeRecord(t, root, schema.Cell{Group: "stream_verification", Label: "falcon512_baseline_invalid_0.50"}, "new", recordBody(4.4e6, 4.2e6, 4.6e6))
	writeRecord(t, root, schema.Cell{Group: "stream_verification", Label: "falcon512_indices_1_invalid_0.01"}, "new", recordBody(1e6, 0.9e6, 1.1e6))
	writeRecord(t, root, schema.Cell{Group: "stream_verification", Label: "falcon512_indices_1_invalid_0.50"}, "new", recordBody(6e6, 5.8e6, 6.2e6))

	cfg := subsetTestConfig(root, outDir)
	store := &memStore{}

	require.NoError(t, ExecuteStream(cfg, NewFSEstimateSource(root), store))

	assert.FileExists(t, filepath.Join(outDir, "stream_breakeven.png"))
	assert.FileExists(t, filepath.Join(outDir, "stream_breakeven.pdf"))
	assert.Equal(t, 4, store.loaded)
	assert.Equal(t, 0, store.missing)
	assert.Len(t, store.estimates, 4)
}

func TestLoadReportKeepsEnumerationOrder(t *testing.T) {
	root := t.TempDir()
	cfg := subsetTestConfig(root, t.TempDir())
	writeRecord(t, root, schema.Cell{Group: "falcon-rust", Label: "verify 512"}, "new", recordBody(200000, 195000, 205000))

	cells, estimates, err := LoadReport(cfg, NewFSEstimateSource(root))
	require.NoError(t, err)
	require.Equal(t, len(cells), len(estimates))
	assert.Equal(t, EnumerateAll(cfg), cells)

	// Only the baseline cell was measured; everything else stays nil.
	measured := 0
	for i, est := range estimates {
		if est != nil {
			measured++
			assert.Equal(t, "verify 512", cells[i].Label)
		}
	}
	assert.Equal(t, 1, measured)
}
