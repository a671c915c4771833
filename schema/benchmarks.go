package schema

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed benchmarks.yaml
var defaultBenchmarksYAML []byte

// TierValue is one step in an amount-keyed lookup table. Amounts below UpTo
// resolve to Value; amounts beyond every bound resolve to the table default.
type TierValue struct {
	UpTo  float64 `yaml:"up_to"`
	Value float64 `yaml:"value"`
}

// ApplicantBench holds the tables used to estimate applicant counts.
type ApplicantBench struct {
	Tiers                 []TierValue        `yaml:"tiers"`
	Default               float64            `yaml:"default"`
	Min                   float64            `yaml:"min"`
	AgencyFactors         map[string]float64 `yaml:"agency_factors"`
	DefaultAgencyFactor   float64            `yaml:"default_agency_factor"`
	CategoryFactors       map[string]float64 `yaml:"category_factors"`
	DefaultCategoryFactor float64            `yaml:"default_category_factor"`
}

// CompetitionBench holds the competition index tables.
type CompetitionBench struct {
	AgencyWeights  map[string]float64 `yaml:"agency_weights"`
	DefaultWeight  float64            `yaml:"default_weight"`
	CeilingPivot   float64            `yaml:"ceiling_pivot"` // award ceiling that leaves the size adjustment neutral
	MinAdjust      float64            `yaml:"min_adjust"`
	MaxAdjust      float64            `yaml:"max_adjust"`
	UnboundedIndex float64            `yaml:"unbounded_index"` // raw index reported when expected awards is zero
}

// SuccessBench holds the success probability tables.
type SuccessBench struct {
	AgencyRates       map[string]float64  `yaml:"agency_rates"`
	DefaultRate       float64             `yaml:"default_rate"`
	BaselineRate      float64             `yaml:"baseline_rate"` // pivot for the agency modifier
	MismatchPenalty   float64             `yaml:"mismatch_penalty"`
	ApplicantSynonyms map[string][]string `yaml:"applicant_synonyms"`
}

// ROIBench holds the application cost and risk tables.
type ROIBench struct {
	EffortTiers       []TierValue        `yaml:"effort_tiers"`
	DefaultEffort     float64            `yaml:"default_effort"`
	AgencyComplexity  map[string]float64 `yaml:"agency_complexity"`
	DefaultComplexity float64            `yaml:"default_complexity"`
	HourlyRate        float64            `yaml:"hourly_rate"`
	DefaultAward      float64            `yaml:"default_award"`
	BaseRisk          float64            `yaml:"base_risk"`
	ComplexityRisk    float64            `yaml:"complexity_risk"`
	RiskCap           float64            `yaml:"risk_cap"`
	HighComplexity    []string           `yaml:"high_complexity_agencies"`
	NormalizePivot    float64            `yaml:"normalize_pivot"` // raw ROI percent that maps to a score of 100
}

// TimingBench holds the preparation window tables.
type TimingBench struct {
	PrepTiers            []TierValue        `yaml:"prep_tiers"`
	DefaultPrepDays      float64            `yaml:"default_prep_days"`
	AgencyAdjustments    map[string]float64 `yaml:"agency_adjustments"`
	DefaultAdjustment    float64            `yaml:"default_adjustment"`
	Resubmission         map[string]float64 `yaml:"resubmission_factors"`
	DefaultResubmission  float64            `yaml:"default_resubmission"`
	QuarterBoost         float64            `yaml:"quarter_boost"`
	CycleBoost           float64            `yaml:"cycle_boost"`
	DensityWindowDays    int                `yaml:"density_window_days"`
	DefaultMaxConcurrent int                `yaml:"default_max_concurrent"`
}

// HiddenBench holds the taxonomies for the hidden opportunity metric.
type HiddenBench struct {
	AgencyCompetition      map[string]float64 `yaml:"agency_competition"`
	DefaultCompetition     float64            `yaml:"default_competition"`
	VagueTitleWords        []string           `yaml:"vague_title_words"`
	TechnicalTitleWords    []string           `yaml:"technical_title_words"`
	CommonKeywords         []string           `yaml:"common_keywords"`
	CategoryKeywords       []string           `yaml:"category_keywords"`
	InterdisciplinaryTerms []string           `yaml:"interdisciplinary_terms"`
	NovelPairs             [][]string         `yaml:"novel_pairs"`
}

// Benchmarks bundles every tunable numeric table used by the calculators.
// The values ship as embedded defaults and can be overridden with a YAML file.
type Benchmarks struct {
	Applicants  ApplicantBench   `yaml:"applicants"`
	Competition CompetitionBench `yaml:"competition"`
	Success     SuccessBench     `yaml:"success"`
	ROI         ROIBench         `yaml:"roi"`
	Timing      TimingBench      `yaml:"timing"`
	Hidden      HiddenBench      `yaml:"hidden"`
}

// DefaultBenchmarks parses the embedded benchmark tables.
func DefaultBenchmarks() *Benchmarks {
	var b Benchmarks
	// The embedded file is validated by tests; a parse failure here is a build defect.
	if err := yaml.Unmarshal(defaultBenchmarksYAML, &b); err != nil {
		panic(fmt.Sprintf("embedded benchmarks are malformed: %v", err))
	}
	return &b
}

// LoadBenchmarks reads benchmark tables from a YAML file. Fields absent from
// the file keep their embedded defaults.
func LoadBenchmarks(path string) (*Benchmarks, error) {
	b := DefaultBenchmarks()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmarks file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("failed to parse benchmarks file %q: %w", path, err)
	}
	return b, nil
}
