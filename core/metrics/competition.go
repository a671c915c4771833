package metrics

import (
	"math"

	"github.com/grantops/grantscope/schema"
)

// CompetitionCalculator estimates how contested an opportunity is.
// The raw index is applicants per award times 100, weighted by award size and
// agency popularity; the score inverts it so that higher means less contested.
type CompetitionCalculator struct{}

// Name returns the metric identifier.
func (c *CompetitionCalculator) Name() schema.MetricName {
	return schema.CompetitionMetric
}

// Compute derives the competition index for one opportunity.
func (c *CompetitionCalculator) Compute(in Input) schema.ComponentScore {
	rec, b := in.Record, in.Bench

	var missing []string
	apps := estimateApplications(rec, b)

	// Zero or missing expected awards makes the index unbounded. Report the
	// configured ceiling value instead of infinity so aggregation stays finite.
	if rec.ExpectedAwards <= 0 {
		return schema.ComponentScore{
			Metric: schema.CompetitionMetric,
			Value:  0,
			Terms: []schema.ExplanationTerm{
				{Label: "estimated_applications", Value: apps},
				{Label: "expected_awards", Value: 0},
				{Label: "raw_index", Value: b.Competition.UnboundedIndex},
				{Label: "weighted_index", Value: b.Competition.UnboundedIndex},
			},
			Interpretation: "Unbounded competition: expected award count is unknown",
			Degraded:       true,
			Missing:        append(missing, "expected_awards"),
		}
	}

	rawIndex := apps / float64(rec.ExpectedAwards) * 100

	// Larger awards draw more applicants per slot; the inverse square root
	// dampens the effect non-linearly.
	sizeAdjust := 1.0
	if rec.AwardCeiling > 0 {
		sizeAdjust = clamp(1.0/math.Sqrt(rec.AwardCeiling/b.Competition.CeilingPivot),
			b.Competition.MinAdjust, b.Competition.MaxAdjust)
	} else {
		missing = append(missing, "award_ceiling")
	}

	agencyWeight := schema.FactorFor(b.Competition.AgencyWeights, rec.AgencyCode, b.Competition.DefaultWeight)
	weighted := rawIndex * sizeAdjust * agencyWeight
	score := math.Max(0, 100-weighted)

	return schema.ComponentScore{
		Metric: schema.CompetitionMetric,
		Value:  score,
		Terms: []schema.ExplanationTerm{
			{Label: "estimated_applications", Value: apps},
			{Label: "expected_awards", Value: float64(rec.ExpectedAwards)},
			{Label: "raw_index", Value: rawIndex},
			{Label: "size_adjustment", Value: sizeAdjust},
			{Label: "agency_weight", Value: agencyWeight},
			{Label: "weighted_index", Value: weighted},
		},
		Interpretation: interpretCompetition(score),
		Degraded:       len(missing) > 0,
		Missing:        missing,
	}
}

// Fingerprint hashes the fields the competition index reads.
func (c *CompetitionCalculator) Fingerprint(in Input) string {
	rec := in.Record
	return digest(
		string(schema.CompetitionMetric),
		rec.AgencyCode,
		rec.Category,
		formatAmount(rec.AwardCeiling),
		formatCount(rec.ExpectedAwards),
	)
}

func interpretCompetition(score float64) string {
	switch {
	case score >= 70:
		return "Favorable field: few applicants per award"
	case score >= 40:
		return "Moderately contested"
	default:
		return "Highly contested: many applicants per award"
	}
}
