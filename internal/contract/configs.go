// Package contract holds the validated runtime configuration and the shared
// helpers every command and tool handler depends on.
package contract

import (
	"fmt"
	"maps"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/grantops/grantscope/schema"
	"gopkg.in/yaml.v3"
)

// Default values for configuration.
const (
	DefaultResultLimit  = 20
	MaxResultLimit      = 1000
	DefaultPrecision    = 1
	DefaultCacheSize    = 1024
	DefaultCacheTTL     = 15 * time.Minute
	DefaultBatchTimeout = 2 * time.Minute
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// WeightsRawInput holds custom metric weight overrides from the config file
// or flags. Float pointers distinguish "absent" from zero.
type WeightsRawInput struct {
	Competition *float64 `mapstructure:"competition"`
	Success     *float64 `mapstructure:"success"`
	ROI         *float64 `mapstructure:"roi"`
	Timing      *float64 `mapstructure:"timing"`
	Hidden      *float64 `mapstructure:"hidden"`
}

// Config holds the runtime configuration for scoring.
// This struct remains the "final, validated" config.
type Config struct {
	Keyword  string
	Agency   string
	Category string

	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	Detail      bool

	CacheSize    int
	CacheTTL     time.Duration
	BatchTimeout time.Duration

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	SessionID     string
	RiskTolerance schema.RiskTolerance

	Weights    map[schema.MetricName]float64
	Benchmarks *schema.Benchmarks
	Profile    *schema.Profile

	CatalogBaseURL string
	CatalogFile    string // Offline JSON dump; overrides the HTTP catalog
}

// Clone creates a deep copy of the Config so per-request overrides never
// mutate the shared base configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Weights != nil {
		clone.Weights = make(map[schema.MetricName]float64, len(c.Weights))
		maps.Copy(clone.Weights, c.Weights)
	}
	return &clone
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Keyword        string `mapstructure:"keyword"`
	Agency         string `mapstructure:"agency"`
	Category       string `mapstructure:"category"`
	Limit          int    `mapstructure:"limit"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	Detail         bool   `mapstructure:"detail"`
	CacheSize      int    `mapstructure:"cache-size"`
	CacheTTL       string `mapstructure:"cache-ttl"`
	Timeout        string `mapstructure:"timeout"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	BenchmarksFile string `mapstructure:"benchmarks-file"`
	ProfileFile    string `mapstructure:"profile-file"`
	CatalogURL     string `mapstructure:"catalog-url"`
	CatalogFile    string `mapstructure:"catalog-file"`

	// --- Fields from portfolioCmd.Flags() ---
	Session       string `mapstructure:"session"`
	RiskTolerance string `mapstructure:"risk-tolerance"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processCacheSettings(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := processBenchmarksAndProfile(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates the scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Keyword = strings.TrimSpace(input.Keyword)
	cfg.Agency = strings.TrimSpace(input.Agency)
	cfg.Category = strings.TrimSpace(input.Category)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Detail = input.Detail
	cfg.SessionID = strings.TrimSpace(input.Session)
	cfg.CatalogBaseURL = input.CatalogURL
	cfg.CatalogFile = input.CatalogFile

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	// --- 4. Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, memory", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- 5. Risk Tolerance Validation ---
	cfg.RiskTolerance = schema.RiskTolerance(strings.ToLower(input.RiskTolerance))
	if cfg.RiskTolerance == "" {
		cfg.RiskTolerance = schema.MediumTolerance
	}
	if _, ok := schema.ValidRiskTolerances[cfg.RiskTolerance]; !ok {
		return fmt.Errorf("invalid risk tolerance '%s'. must be low, medium, high", input.RiskTolerance)
	}

	return nil
}

// processCacheSettings validates the cache and timeout knobs.
func processCacheSettings(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Cache Size Validation ---
	if input.CacheSize <= 0 {
		return fmt.Errorf("cache-size must be greater than 0 (received %d)", input.CacheSize)
	}
	cfg.CacheSize = input.CacheSize

	// --- 2. Cache TTL Validation ---
	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl '%s': %w", input.CacheTTL, err)
		}
		if ttl <= 0 {
			return fmt.Errorf("cache-ttl must be positive (received %s)", input.CacheTTL)
		}
		cfg.CacheTTL = ttl
	}

	// --- 3. Batch Timeout Validation ---
	cfg.BatchTimeout = DefaultBatchTimeout
	if input.Timeout != "" {
		timeout, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive (received %s)", input.Timeout)
		}
		cfg.BatchTimeout = timeout
	}

	return nil
}

// processWeights layers the caller's overrides onto the default weights and
// validates the result.
func processWeights(cfg *Config, input *ConfigRawInput) error {
	weights := schema.DefaultWeights()

	overrides := map[schema.MetricName]*float64{
		schema.CompetitionMetric: input.Weights.Competition,
		schema.SuccessMetric:     input.Weights.Success,
		schema.ROIMetric:         input.Weights.ROI,
		schema.TimingMetric:      input.Weights.Timing,
		schema.HiddenMetric:      input.Weights.Hidden,
	}
	for name, override := range overrides {
		if override != nil {
			weights[name] = *override
		}
	}

	if err := schema.ValidateWeights(weights); err != nil {
		return err
	}
	cfg.Weights = weights
	return nil
}

// processBenchmarksAndProfile loads the tunable tables and the optional
// applicant profile.
func processBenchmarksAndProfile(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Benchmarks ---
	if input.BenchmarksFile != "" {
		bench, err := schema.LoadBenchmarks(input.BenchmarksFile)
		if err != nil {
			return fmt.Errorf("failed to load benchmarks file: %w", err)
		}
		cfg.Benchmarks = bench
	} else {
		cfg.Benchmarks = schema.DefaultBenchmarks()
	}

	// --- 2. Applicant Profile ---
	if input.ProfileFile != "" {
		profile, err := LoadProfile(input.ProfileFile)
		if err != nil {
			return fmt.Errorf("failed to load profile file: %w", err)
		}
		cfg.Profile = profile
	}

	return nil
}

// LoadProfile reads an applicant profile from a YAML file.
func LoadProfile(path string) (*schema.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profile schema.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.MemoryBackend:
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
