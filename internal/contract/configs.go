package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/benchvis/breakeven/schema"
)

// Default values for configuration.
const (
	DefaultResultsRoot = "target/criterion"
	DefaultOutDir      = "plots"
	DefaultPrecision   = 1
	MaxPrecision       = 4
)

// Default axis domains, matching the domains the harness publishes. All of
// them are overridable from flags, env or the config file; nothing downstream
// reads these directly.
var (
	DefaultVariants      = []string{"512", "1024"}
	DefaultIndexCounts   = []int{1, 2, 4, 8, 16, 32, 48, 64}
	DefaultStreamIndices = []int{1, 8}
	DefaultFractions     = []float64{0.01, 0.1, 0.5, 0.9, 0.99}
)

// Config holds the runtime configuration for an analysis.
// This struct remains the "final, validated" config; axis domains live here so
// multiple analyses can run with different domains without shared global state.
type Config struct {
	ResultsRoot string // Root of the harness results tree
	OutDir      string // Directory for chart artifacts

	Variants      []string  // Signature scheme variants, ascending declaration order
	IndexCounts   []int     // Control axis for the subset analysis, ascending
	StreamIndices []int     // Index counts plotted in the stream analysis, ascending
	Fractions     []float64 // Invalid-signature fractions, ascending

	Reference bool // Include the C reference baseline when present

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	UseColors  bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	TargetVersion int // Migration target for the runs migrate command
}

// Clone returns a deep copy of the config so per-request overrides never
// mutate the shared base configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Variants = append([]string(nil), c.Variants...)
	clone.IndexCounts = append([]int(nil), c.IndexCounts...)
	clone.StreamIndices = append([]int(nil), c.StreamIndices...)
	clone.Fractions = append([]float64(nil), c.Fractions...)
	return &clone
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ResultsRootStr string

	OutDir         string `mapstructure:"out-dir"`
	Variants       string `mapstructure:"variants"`
	Indices        string `mapstructure:"indices"`
	StreamIndices  string `mapstructure:"stream-indices"`
	Fractions      string `mapstructure:"fractions"`
	Reference      bool   `mapstructure:"reference"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Color          string `mapstructure:"color"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	TargetVersion  int    `mapstructure:"target-version"`
}

// ProcessAndValidate turns raw input into a validated Config.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validatePaths(cfg, input); err != nil {
		return err
	}
	if err := validateAxisDomains(cfg, input); err != nil {
		return err
	}
	if err := validateOutputs(cfg, input); err != nil {
		return err
	}
	if err := validateStoreBackend(cfg, input); err != nil {
		return err
	}
	cfg.Reference = input.Reference
	cfg.TargetVersion = input.TargetVersion
	return nil
}

// validatePaths resolves the results root and output directory.
func validatePaths(cfg *Config, input *ConfigRawInput) error {
	root := input.ResultsRootStr
	if root == "" {
		root = DefaultResultsRoot
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid results root %q: %w", root, err)
	}
	cfg.ResultsRoot = absRoot

	outDir := input.OutDir
	if outDir == "" {
		outDir = DefaultOutDir
	}
	cfg.OutDir = outDir
	return nil
}

// validateAxisDomains parses the comma-separated axis domains. Each axis must
// be non-empty and strictly ascending, since declaration order becomes the
// plotted order and the crossover scan assumes ascending control values.
func validateAxisDomains(cfg *Config, input *ConfigRawInput) error {
	variants, err := parseStringList(input.Variants, DefaultVariants)
	if err != nil {
		return fmt.Errorf("invalid --variants: %w", err)
	}
	cfg.Variants = variants

	indices, err := parseIntList(input.Indices, DefaultIndexCounts)
	if err != nil {
		return fmt.Errorf("invalid --indices: %w", err)
	}
	if !sort.IntsAreSorted(indices) {
		return fmt.Errorf("--indices must be ascending (received %v)", indices)
	}
	cfg.IndexCounts = indices

	streamIndices, err := parseIntList(input.StreamIndices, DefaultStreamIndices)
	if err != nil {
		return fmt.Errorf("invalid --stream-indices: %w", err)
	}
	if !sort.IntsAreSorted(streamIndices) {
		return fmt.Errorf("--stream-indices must be ascending (received %v)", streamIndices)
	}
	cfg.StreamIndices = streamIndices

	fractions, err := parseFloatList(input.Fractions, DefaultFractions)
	if err != nil {
		return fmt.Errorf("invalid --fractions: %w", err)
	}
	if !sort.Float64sAreSorted(fractions) {
		return fmt.Errorf("--fractions must be ascending (received %v)", fractions)
	}
	for _, f := range fractions {
		if f <= 0 || f >= 1 {
			return fmt.Errorf("fractions must be in (0, 1) (received %v)", f)
		}
	}
	cfg.Fractions = fractions
	return nil
}

// validateOutputs processes output format, precision and color settings.
func validateOutputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors
	return nil
}

// validateStoreBackend validates the run store backend configuration.
func validateStoreBackend(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// GetRunDBFilePath returns the default SQLite file for the run store, under
// the user cache directory when available.
func GetRunDBFilePath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return ".breakeven-runs.db"
	}
	return filepath.Join(cacheDir, "breakeven", "runs.db")
}

// ParseBoolString parses permissive boolean strings (yes/no/true/false/1/0).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected yes/no/true/false/1/0, received %q", s)
	}
}

// parseStringList splits a comma-separated list, falling back to defaults when
// the input is empty.
func parseStringList(s string, defaults []string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return append([]string(nil), defaults...), nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("list is empty")
	}
	return out, nil
}

// parseIntList splits a comma-separated list of integers.
func parseIntList(s string, defaults []int) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return append([]int(nil), defaults...), nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", part)
		}
		if n <= 0 {
			return nil, fmt.Errorf("must be positive: %d", n)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("list is empty")
	}
	return out, nil
}

// parseFloatList splits a comma-separated list of floats.
func parseFloatList(s string, defaults []float64) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return append([]float64(nil), defaults...), nil
	}
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", part)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("list is empty")
	}
	return out, nil
}
