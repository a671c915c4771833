package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grantops/grantscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		Limit:        DefaultResultLimit,
		Workers:      4,
		Precision:    1,
		Output:       "text",
		Color:        "yes",
		CacheSize:    DefaultCacheSize,
		StoreBackend: "sqlite",
	}
}

// TestProcessAndValidateDefaults covers the happy path with defaults.
func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validRawInput()))

	assert.Equal(t, DefaultResultLimit, cfg.ResultLimit)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
	assert.Equal(t, schema.MediumTolerance, cfg.RiskTolerance)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultBatchTimeout, cfg.BatchTimeout)
	assert.True(t, cfg.UseColors)
	require.NotNil(t, cfg.Benchmarks)
	require.NoError(t, schema.ValidateWeights(cfg.Weights))
}

// TestProcessAndValidateRejections covers the validation failures.
func TestProcessAndValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"zero limit", func(in *ConfigRawInput) { in.Limit = 0 }},
		{"limit over max", func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }},
		{"bad precision", func(in *ConfigRawInput) { in.Precision = 3 }},
		{"bad output", func(in *ConfigRawInput) { in.Output = "xml" }},
		{"bad backend", func(in *ConfigRawInput) { in.StoreBackend = "oracle" }},
		{"bad tolerance", func(in *ConfigRawInput) { in.RiskTolerance = "extreme" }},
		{"bad color", func(in *ConfigRawInput) { in.Color = "maybe" }},
		{"zero cache size", func(in *ConfigRawInput) { in.CacheSize = 0 }},
		{"bad cache ttl", func(in *ConfigRawInput) { in.CacheTTL = "fortnight" }},
		{"negative timeout", func(in *ConfigRawInput) { in.Timeout = "-5s" }},
		{"mysql without dsn", func(in *ConfigRawInput) { in.StoreBackend = "mysql" }},
		{"weights not summing", func(in *ConfigRawInput) {
			half := 0.5
			in.Weights.ROI = &half
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)
			assert.Error(t, ProcessAndValidate(&Config{}, input))
		})
	}
}

// TestProcessWeightsOverride verifies overrides layer onto the defaults.
func TestProcessWeightsOverride(t *testing.T) {
	input := validRawInput()
	thirty, twenty, fifteen := 0.30, 0.20, 0.15
	input.Weights = WeightsRawInput{Competition: &thirty, Success: &twenty, ROI: &twenty, Timing: &fifteen, Hidden: &fifteen}

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, 0.30, cfg.Weights[schema.CompetitionMetric])
	assert.Equal(t, 0.20, cfg.Weights[schema.SuccessMetric])
}

// TestProcessCacheSettings verifies duration parsing.
func TestProcessCacheSettings(t *testing.T) {
	input := validRawInput()
	input.CacheTTL = "30m"
	input.Timeout = "90s"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 90*time.Second, cfg.BatchTimeout)
}

// TestLoadProfile verifies YAML profile loading.
func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := `applicant_type: university
keywords:
  - materials
  - energy
hourly_rate: 95
max_concurrent: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "university", profile.ApplicantType)
	assert.Equal(t, []string{"materials", "energy"}, profile.Keywords)
	assert.Equal(t, 95.0, profile.HourlyRate)
	assert.Equal(t, 2, profile.MaxConcurrent)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// TestValidateDatabaseConnectionString verifies DSN shape checks per backend.
func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty is fine", schema.SQLiteBackend, "", false},
		{"memory empty is fine", schema.MemoryBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/grants?multiStatements=true", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass/grants", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=grants", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestGetPlainLabel verifies the score label thresholds.
func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{90, ExcellentValue},
		{75, ExcellentValue},
		{74.9, StrongValue},
		{60, StrongValue},
		{59.9, FairValue},
		{40, FairValue},
		{39.9, WeakValue},
		{0, WeakValue},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetPlainLabel(tt.score), "score %.1f", tt.score)
	}
}

// TestTruncateText verifies the ellipsis behavior.
func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "long te...", TruncateText("long text that overflows", 10))
	assert.Equal(t, "abc", TruncateText("abc", 3))
}

// TestParseBoolString verifies accepted spellings and rejections.
func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "YES", "true", "1"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, got)
	}
	for _, s := range []string{"no", "False", "0"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, got)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
