// Package schema has configs, models and shared constants for all parts of grantscope.
package schema

import "time"

// OpportunityRecord represents a single funding opportunity from the grants catalog.
// The record is read-only to the scoring engine; missing optional fields are
// substituted with documented defaults during scoring.
type OpportunityRecord struct {
	ID             string    `json:"id" yaml:"id"`                           // Stable opportunity identifier
	Title          string    `json:"title" yaml:"title"`                     // Opportunity title
	AgencyCode     string    `json:"agency_code" yaml:"agency_code"`         // Agency code, e.g. "NSF" or "NIH-NCI"
	Category       string    `json:"category" yaml:"category"`               // Funding category, e.g. "Science and Technology"
	AwardFloor     float64   `json:"award_floor" yaml:"award_floor"`         // Minimum award amount in dollars
	AwardCeiling   float64   `json:"award_ceiling" yaml:"award_ceiling"`     // Maximum award amount in dollars
	TotalFunding   float64   `json:"total_funding" yaml:"total_funding"`     // Estimated total program funding
	ExpectedAwards int       `json:"expected_awards" yaml:"expected_awards"` // Expected number of awards
	PostDate       time.Time `json:"post_date" yaml:"post_date"`             // When the opportunity was posted
	CloseDate      time.Time `json:"close_date" yaml:"close_date"`           // Application deadline (zero if unknown)
	Eligibility    string    `json:"eligibility" yaml:"eligibility"`         // Free-text eligibility description
	Description    string    `json:"description" yaml:"description"`         // Free-text opportunity description
}

// ExplanationTerm is one (label, value) pair in a component score explanation.
// Terms are ordered so callers can reconstruct the arithmetic top to bottom.
type ExplanationTerm struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ComponentScore is the output of one metric calculator for one opportunity.
// Immutable once produced.
type ComponentScore struct {
	Metric         MetricName        `json:"metric"`
	Value          float64           `json:"value"` // Normalized score in [0,100]
	Terms          []ExplanationTerm `json:"terms"`
	Interpretation string            `json:"interpretation,omitempty"`
	Degraded       bool              `json:"degraded"`          // Set when defaults were substituted for missing inputs
	Missing        []string          `json:"missing,omitempty"` // Names of the fields that were substituted
}

// Term returns the value of the named explanation term, or 0 if absent.
func (cs *ComponentScore) Term(label string) float64 {
	for _, t := range cs.Terms {
		if t.Label == label {
			return t.Value
		}
	}
	return 0
}

// GrantScore holds the full scoring result for one opportunity.
// Either every requested component is present or Incomplete is set with a reason;
// partially scored records are never persisted.
type GrantScore struct {
	OpportunityID    string                        `json:"opportunity_id"`
	Title            string                        `json:"title,omitempty"`
	Overall          float64                       `json:"overall"`
	Components       map[MetricName]ComponentScore `json:"components,omitempty"`
	Recommendation   string                        `json:"recommendation,omitempty"`
	Incomplete       bool                          `json:"incomplete"`
	IncompleteReason string                        `json:"incomplete_reason,omitempty"`
	ComputedAt       time.Time                     `json:"computed_at"`
	SessionID        string                        `json:"session_id,omitempty"`
}

// ScoringSession is an append-only log of scores produced by one scoring call.
type ScoringSession struct {
	ID         string       `json:"id"`
	CreatedAt  time.Time    `json:"created_at"`
	Query      string       `json:"query,omitempty"` // The query/context that produced the opportunity set
	Scores     []GrantScore `json:"scores,omitempty"`
	ScoreCount int          `json:"score_count"`
}

// StrategicRecommendation assigns one scored opportunity to a portfolio tier.
// Derived data, recomputed on demand from a session.
type StrategicRecommendation struct {
	SessionID          string        `json:"session_id"`
	OpportunityID      string        `json:"opportunity_id"`
	Tier               PortfolioTier `json:"tier"`
	Rank               int           `json:"rank"`
	Rationale          string        `json:"rationale"`
	Overall            float64       `json:"overall"`
	ROI                float64       `json:"roi"` // Raw risk-adjusted ROI, negative is meaningful
	SuccessProbability float64       `json:"success_probability"`
}

// PortfolioReport is the full output of portfolio synthesis for a session.
type PortfolioReport struct {
	SessionID           string                    `json:"session_id"`
	RiskTolerance       RiskTolerance             `json:"risk_tolerance"`
	Recommendations     []StrategicRecommendation `json:"recommendations"`
	DiversityScore      float64                   `json:"diversity_score"`       // How close the tier mix is to the ideal allocation
	ExpectedSuccessRate float64                   `json:"expected_success_rate"` // Mean success probability across the portfolio
	Skipped             int                       `json:"skipped"`               // Incomplete scores excluded from synthesis
}

// Profile describes the applicant, used to personalize eligibility and fit factors.
// All fields are optional; a nil profile yields neutral factors.
type Profile struct {
	ApplicantType     string   `json:"applicant_type,omitempty" yaml:"applicant_type"`
	Keywords          []string `json:"keywords,omitempty" yaml:"keywords"`
	Categories        []string `json:"categories,omitempty" yaml:"categories"`
	PreferredAgencies []string `json:"preferred_agencies,omitempty" yaml:"preferred_agencies"`
	HourlyRate        float64  `json:"hourly_rate,omitempty" yaml:"hourly_rate"`
	MaxConcurrent     int      `json:"max_concurrent,omitempty" yaml:"max_concurrent"`
}

// StoreStatus reports session store health and volume.
type StoreStatus struct {
	Backend       string    `json:"backend"`
	Connected     bool      `json:"connected"`
	SessionCount  int64     `json:"session_count"`
	ScoreCount    int64     `json:"score_count"`
	LastEntryTime time.Time `json:"last_entry_time,omitzero"`
}
