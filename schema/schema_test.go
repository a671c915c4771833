package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateWeights checks weight validation across edge cases.
func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights map[MetricName]float64
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			weights: DefaultWeights(),
			wantErr: false,
		},
		{
			name:    "empty map rejected",
			weights: map[MetricName]float64{},
			wantErr: true,
		},
		{
			name: "partial weights summing to one",
			weights: map[MetricName]float64{
				SuccessMetric: 0.5,
				ROIMetric:     0.5,
			},
			wantErr: false,
		},
		{
			name: "sum off by more than tolerance",
			weights: map[MetricName]float64{
				CompetitionMetric: 0.5,
				SuccessMetric:     0.49,
			},
			wantErr: true,
		},
		{
			name: "sum off within tolerance",
			weights: map[MetricName]float64{
				CompetitionMetric: 0.5,
				SuccessMetric:     0.5 + 1e-9,
			},
			wantErr: false,
		},
		{
			name: "unknown metric rejected",
			weights: map[MetricName]float64{
				MetricName("popularity"): 1.0,
			},
			wantErr: true,
		},
		{
			name: "negative weight rejected",
			weights: map[MetricName]float64{
				CompetitionMetric: -0.2,
				SuccessMetric:     1.2,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeights(tt.weights)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWeights)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestDefaultWeightsCoverAllMetrics ensures the preset assigns a weight to every metric.
func TestDefaultWeightsCoverAllMetrics(t *testing.T) {
	weights := DefaultWeights()
	assert.Len(t, weights, len(AllMetrics))
	for _, m := range AllMetrics {
		assert.Contains(t, weights, m)
	}
}

// TestMainAgency checks sub-agency code reduction.
func TestMainAgency(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"NSF", "NSF"},
		{"NIH-NCI", "NIH"},
		{"nih-nci", "NIH"},
		{" DOE ", "DOE"},
		{"", ""},
		{"-ODD", "-ODD"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, MainAgency(tt.code))
		})
	}
}

// TestDefaultBenchmarks validates the embedded tables parse and carry sane values.
func TestDefaultBenchmarks(t *testing.T) {
	b := DefaultBenchmarks()
	require.NotNil(t, b)

	assert.NotEmpty(t, b.Applicants.Tiers)
	assert.Equal(t, 1.0, FactorFor(b.Applicants.AgencyFactors, "NSF", b.Applicants.DefaultAgencyFactor))
	assert.Equal(t, 1.1, FactorFor(b.Competition.AgencyWeights, "NSF", b.Competition.DefaultWeight))
	assert.Equal(t, 0.25, b.Success.AgencyRates["NSF"])
	assert.Equal(t, 75.0, b.ROI.HourlyRate)
	assert.Equal(t, 90.0, b.Timing.DefaultPrepDays)
	assert.NotEmpty(t, b.Hidden.NovelPairs)
	for _, pair := range b.Hidden.NovelPairs {
		assert.Len(t, pair, 2)
	}
}

// TestTierLookup checks tier boundary behavior.
func TestTierLookup(t *testing.T) {
	b := DefaultBenchmarks()

	tests := []struct {
		name     string
		amount   float64
		expected float64
	}{
		{"below first bound", 10000, 20},
		{"exactly at a bound moves to next tier", 50000, 35},
		{"mid tier", 250000, 60},
		{"beyond all bounds", 5000000, b.Applicants.Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TierLookup(b.Applicants.Tiers, tt.amount, b.Applicants.Default))
		})
	}
}

// TestFactorFor checks agency factor lookup with sub-agency codes.
func TestFactorFor(t *testing.T) {
	b := DefaultBenchmarks()

	assert.Equal(t, 1.2, FactorFor(b.Competition.AgencyWeights, "NIH-NCI", b.Competition.DefaultWeight))
	assert.Equal(t, b.Competition.DefaultWeight, FactorFor(b.Competition.AgencyWeights, "UNKNOWN", b.Competition.DefaultWeight))
}

// TestComponentScoreTerm checks explanation term lookup.
func TestComponentScoreTerm(t *testing.T) {
	cs := ComponentScore{
		Metric: ROIMetric,
		Terms: []ExplanationTerm{
			{Label: "award_amount", Value: 300000},
			{Label: "risk_adjusted_roi", Value: -12.5},
		},
	}

	assert.Equal(t, -12.5, cs.Term("risk_adjusted_roi"))
	assert.Equal(t, 0.0, cs.Term("absent"))
}
