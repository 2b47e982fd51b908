package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/schema"
)

// runVariants is the ordered candidate list of per-cell storage variants. The
// harness writes the latest measurement under "new" and keeps the previous one
// under "base"; lookup tries them in that order. Adding a third variant here is
// all it takes to extend the fallback chain.
var runVariants = []string{"new", "base"}

// estimatesFileName is the leaf record inside each run-variant directory.
const estimatesFileName = "estimates.json"

// estimateRecord mirrors the harness's on-disk JSON. Pointer fields let the
// loader distinguish a missing field from a zero value.
type estimateRecord struct {
	Mean *struct {
		PointEstimate      *float64 `json:"point_estimate"`
		ConfidenceInterval *struct {
			LowerBound *float64 `json:"lower_bound"`
			UpperBound *float64 `json:"upper_bound"`
		} `json:"confidence_interval"`
	} `json:"mean"`
}

// fsEstimateSource loads estimates from a results tree on the local filesystem.
// It is read-only and has no side effects.
type fsEstimateSource struct {
	root string
}

var _ contract.EstimateSource = (*fsEstimateSource)(nil) // Compile-time check

// NewFSEstimateSource returns an EstimateSource reading from the given results
// root, laid out as <root>/<group>/<label>/<run-variant>/estimates.json.
func NewFSEstimateSource(root string) contract.EstimateSource {
	return &fsEstimateSource{root: root}
}

// Load tries each run-variant candidate in order. A cell with no record under
// any candidate is an expected, unmeasured configuration and yields ok=false.
// A record that exists but cannot be parsed is fatal for the whole run.
func (s *fsEstimateSource) Load(cell schema.Cell) (schema.Estimate, bool, error) {
	for _, variant := range runVariants {
		path := filepath.Join(s.root, cell.Group, cell.Label, variant, estimatesFileName)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return schema.Estimate{}, false, &contract.MalformedRecordError{Cell: cell, Err: err}
		}
		est, err := parseEstimate(data)
		if err != nil {
			return schema.Estimate{}, false, &contract.MalformedRecordError{Cell: cell, Err: err}
		}
		return est, true, nil
	}
	return schema.Estimate{}, false, nil
}

// parseEstimate decodes a leaf record and checks its required fields and
// ordering invariant.
func parseEstimate(data []byte) (schema.Estimate, error) {
	var rec estimateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return schema.Estimate{}, fmt.Errorf("decoding estimates: %w", err)
	}
	if rec.Mean == nil || rec.Mean.PointEstimate == nil {
		return schema.Estimate{}, errors.New("missing mean.point_estimate")
	}
	ci := rec.Mean.ConfidenceInterval
	if ci == nil || ci.LowerBound == nil || ci.UpperBound == nil {
		return schema.Estimate{}, errors.New("missing mean.confidence_interval bounds")
	}
	est := schema.Estimate{
		Mean:    *rec.Mean.PointEstimate,
		CILower: *ci.LowerBound,
		CIUpper: *ci.UpperBound,
	}
	if est.CILower > est.Mean || est.Mean > est.CIUpper {
		return schema.Estimate{}, fmt.Errorf("confidence interval [%v, %v] does not bracket point estimate %v",
			est.CILower, est.CIUpper, est.Mean)
	}
	return est, nil
}
