package contract

import (
	"fmt"
	"os"
)

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ConfigParams flattens a validated Config into a map for run tracking.
func ConfigParams(cfg *Config) map[string]any {
	return map[string]any{
		"results_root":   cfg.ResultsRoot,
		"out_dir":        cfg.OutDir,
		"variants":       fmt.Sprintf("%v", cfg.Variants),
		"indices":        fmt.Sprintf("%v", cfg.IndexCounts),
		"stream_indices": fmt.Sprintf("%v", cfg.StreamIndices),
		"fractions":      fmt.Sprintf("%v", cfg.Fractions),
		"reference":      cfg.Reference,
	}
}
