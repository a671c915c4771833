// Package metrics implements the five independent metric calculators.
// Each calculator is a pure function over an opportunity record plus optional
// caller profile, and records every intermediate value as an explanation term
// so the arithmetic can be reconstructed without re-invoking it.
package metrics

import (
	"math"
	"strings"
	"time"

	"github.com/grantops/grantscope/schema"
)

// Input carries everything a calculator may read. Record and Bench are
// required; Profile and ConcurrentCloses are optional.
type Input struct {
	Record  *schema.OpportunityRecord
	Profile *schema.Profile
	Bench   *schema.Benchmarks
	Now     time.Time

	// ConcurrentCloses holds the close dates of the other opportunities in
	// the same batch, used by the timing metric for deadline density.
	ConcurrentCloses []time.Time
}

// Calculator computes one metric for one opportunity.
type Calculator interface {
	Name() schema.MetricName

	// Compute never fails for missing optional fields; it substitutes a
	// documented default and sets the Degraded flag instead.
	Compute(in Input) schema.ComponentScore

	// Fingerprint hashes only the input fields this metric actually reads,
	// so unrelated record changes leave unrelated cache entries valid.
	Fingerprint(in Input) string
}

// All returns every calculator in computation order.
func All() []Calculator {
	return []Calculator{
		&CompetitionCalculator{},
		&SuccessCalculator{},
		&ROICalculator{},
		&TimingCalculator{},
		&HiddenCalculator{},
	}
}

// ByName returns calculators keyed by metric name.
func ByName() map[schema.MetricName]Calculator {
	out := make(map[schema.MetricName]Calculator)
	for _, c := range All() {
		out[c.Name()] = c
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// estimateApplications derives an applicant count from the award size tier,
// agency popularity and category popularity. The floor keeps ratios sane for
// tiny programs.
func estimateApplications(rec *schema.OpportunityRecord, b *schema.Benchmarks) float64 {
	base := schema.TierLookup(b.Applicants.Tiers, rec.AwardCeiling, b.Applicants.Default)
	agency := schema.FactorFor(b.Applicants.AgencyFactors, rec.AgencyCode, b.Applicants.DefaultAgencyFactor)
	category := categoryFactor(b.Applicants.CategoryFactors, rec.Category, b.Applicants.DefaultCategoryFactor)

	apps := base * agency * category
	return math.Max(apps, b.Applicants.Min)
}

// categoryFactor matches the record category against a factor table,
// case-insensitively.
func categoryFactor(factors map[string]float64, category string, fallback float64) float64 {
	for k, v := range factors {
		if strings.EqualFold(k, strings.TrimSpace(category)) {
			return v
		}
	}
	return fallback
}

// containsWord reports whether text contains the term, both lowercased.
func containsWord(text, term string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(term))
}

// countMatches counts how many terms appear in text.
func countMatches(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if containsWord(text, term) {
			n++
		}
	}
	return n
}
