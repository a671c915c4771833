package metrics

import (
	"math"
	"strings"

	"github.com/grantops/grantscope/schema"
)

// SuccessCalculator estimates the probability of winning an award, expressed
// as a percentage. The base award rate is adjusted by eligibility alignment,
// technical fit against the caller profile, and the agency's historical
// funding rate.
type SuccessCalculator struct{}

// successParts holds the intermediate values of the success derivation.
// ROI reuses the same derivation for its success fraction.
type successParts struct {
	apps        float64
	base        float64
	eligibility float64
	fit         float64
	agencyRate  float64
	modifier    float64
	value       float64
	missing     []string
}

// Name returns the metric identifier.
func (c *SuccessCalculator) Name() schema.MetricName {
	return schema.SuccessMetric
}

// Compute derives the success probability for one opportunity.
func (c *SuccessCalculator) Compute(in Input) schema.ComponentScore {
	p := deriveSuccess(in)

	return schema.ComponentScore{
		Metric: schema.SuccessMetric,
		Value:  p.value,
		Terms: []schema.ExplanationTerm{
			{Label: "estimated_applications", Value: p.apps},
			{Label: "base_rate", Value: p.base},
			{Label: "eligibility_factor", Value: p.eligibility},
			{Label: "technical_fit", Value: p.fit},
			{Label: "agency_rate", Value: p.agencyRate},
			{Label: "agency_modifier", Value: p.modifier},
		},
		Interpretation: interpretSuccess(p.value),
		Degraded:       len(p.missing) > 0,
		Missing:        p.missing,
	}
}

// Fingerprint hashes the fields the success probability reads, including the
// profile fields that shape eligibility and fit.
func (c *SuccessCalculator) Fingerprint(in Input) string {
	rec := in.Record
	return digest(
		string(schema.SuccessMetric),
		rec.AgencyCode,
		rec.Category,
		formatAmount(rec.AwardCeiling),
		formatCount(rec.ExpectedAwards),
		rec.Title,
		rec.Eligibility,
		rec.Description,
		profileDigest(in.Profile),
	)
}

// deriveSuccess computes the success probability and all of its factors.
func deriveSuccess(in Input) successParts {
	rec, b := in.Record, in.Bench
	p := successParts{}

	p.apps = estimateApplications(rec, b)

	// Base rate: awards available per estimated applicant.
	if rec.ExpectedAwards > 0 {
		p.base = math.Min(100, float64(rec.ExpectedAwards)/p.apps*100)
	} else {
		p.base = b.Success.DefaultRate * 100
		p.missing = append(p.missing, "expected_awards")
	}

	p.eligibility = eligibilityFactor(rec, in.Profile, b)
	p.fit = technicalFit(rec, in.Profile)

	p.agencyRate = schema.FactorFor(b.Success.AgencyRates, rec.AgencyCode, b.Success.DefaultRate)
	p.modifier = clamp(math.Sqrt(p.agencyRate/b.Success.BaselineRate), 0.5, 2.0)

	p.value = clamp(p.base*p.eligibility*p.fit*p.modifier, 0, 100)
	return p
}

// eligibilityFactor penalizes opportunities whose eligibility text does not
// mention the applicant type or any of its synonyms. With no profile or no
// eligibility text the factor is neutral.
func eligibilityFactor(rec *schema.OpportunityRecord, profile *schema.Profile, b *schema.Benchmarks) float64 {
	if profile == nil || profile.ApplicantType == "" || rec.Eligibility == "" {
		return 1.0
	}

	applicantType := strings.ToLower(strings.TrimSpace(profile.ApplicantType))
	synonyms := b.Success.ApplicantSynonyms[applicantType]
	if len(synonyms) == 0 {
		synonyms = []string{applicantType}
	}

	for _, syn := range synonyms {
		if containsWord(rec.Eligibility, syn) {
			return 1.0
		}
	}
	return b.Success.MismatchPenalty
}

// technicalFit blends keyword, category and agency alignment with the caller
// profile. With no profile the fit is 1.0: the caller asked for an
// unpersonalized score, not a penalized one.
func technicalFit(rec *schema.OpportunityRecord, profile *schema.Profile) float64 {
	if profile == nil {
		return 1.0
	}

	text := rec.Title + " " + rec.Description

	keyword := 0.5 // neutral when the profile lists no keywords
	if len(profile.Keywords) > 0 {
		keyword = float64(countMatches(text, profile.Keywords)) / float64(len(profile.Keywords))
	}

	category := 0.5
	if len(profile.Categories) > 0 {
		category = 0.2
		for _, cat := range profile.Categories {
			if strings.EqualFold(strings.TrimSpace(cat), strings.TrimSpace(rec.Category)) {
				category = 1.0
				break
			}
		}
	}

	agency := 0.5
	if len(profile.PreferredAgencies) > 0 {
		agency = 0.3
		main := schema.MainAgency(rec.AgencyCode)
		for _, a := range profile.PreferredAgencies {
			if schema.MainAgency(a) == main {
				agency = 1.0
				break
			}
		}
	}

	return 0.5*keyword + 0.3*category + 0.2*agency
}

func interpretSuccess(value float64) string {
	switch {
	case value >= 40:
		return "Strong odds relative to the field"
	case value >= 15:
		return "Typical odds for a federal program"
	default:
		return "Long shot: low award rate for this pool"
	}
}
