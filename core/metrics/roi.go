package metrics

import (
	"slices"

	"github.com/grantops/grantscope/schema"
)

// ROICalculator weighs the expected award against the cost of applying.
// The raw risk-adjusted ROI may be negative, which is meaningful: the
// opportunity is not worth pursuing. The component value normalizes the raw
// figure into [0,100] for weighting; the raw figure rides along as the
// "risk_adjusted_roi" explanation term.
type ROICalculator struct{}

// Name returns the metric identifier.
func (c *ROICalculator) Name() schema.MetricName {
	return schema.ROIMetric
}

// Compute derives the risk-adjusted return for one opportunity.
func (c *ROICalculator) Compute(in Input) schema.ComponentScore {
	rec, b := in.Record, in.Bench

	var missing []string

	// Expected award: midpoint when both bounds exist, otherwise the ceiling,
	// otherwise a configured default.
	var award float64
	switch {
	case rec.AwardFloor > 0 && rec.AwardCeiling > 0:
		award = (rec.AwardFloor + rec.AwardCeiling) / 2
	case rec.AwardCeiling > 0:
		award = rec.AwardCeiling
	default:
		award = b.ROI.DefaultAward
		missing = append(missing, "award_ceiling")
	}

	// Application cost from the effort-hours tier for the award size.
	sizingAmount := rec.AwardCeiling
	if sizingAmount <= 0 {
		sizingAmount = award
	}
	hours := schema.TierLookup(b.ROI.EffortTiers, sizingAmount, b.ROI.DefaultEffort)
	complexity := schema.FactorFor(b.ROI.AgencyComplexity, rec.AgencyCode, b.ROI.DefaultComplexity)

	rate := b.ROI.HourlyRate
	if in.Profile != nil && in.Profile.HourlyRate > 0 {
		rate = in.Profile.HourlyRate
	}

	cost := hours * complexity * rate
	basic := (award - cost) / cost * 100

	success := deriveSuccess(in)
	missing = append(missing, success.missing...)

	risk := b.ROI.BaseRisk
	if slices.Contains(b.ROI.HighComplexity, schema.MainAgency(rec.AgencyCode)) {
		risk += b.ROI.ComplexityRisk
	}
	risk = clamp(risk, 0, b.ROI.RiskCap)

	riskAdjusted := basic * (success.value / 100) * (1 - risk)
	value := clamp(riskAdjusted/b.ROI.NormalizePivot*100, 0, 100)

	return schema.ComponentScore{
		Metric: schema.ROIMetric,
		Value:  value,
		Terms: []schema.ExplanationTerm{
			{Label: "award_amount", Value: award},
			{Label: "effort_hours", Value: hours},
			{Label: "complexity_factor", Value: complexity},
			{Label: "hourly_rate", Value: rate},
			{Label: "application_cost", Value: cost},
			{Label: "basic_roi", Value: basic},
			{Label: "success_fraction", Value: success.value / 100},
			{Label: "risk_factor", Value: risk},
			{Label: "risk_adjusted_roi", Value: riskAdjusted},
		},
		Interpretation: interpretROI(riskAdjusted),
		Degraded:       len(missing) > 0,
		Missing:        missing,
	}
}

// Fingerprint hashes the award bounds plus the fields the embedded success
// derivation reads.
func (c *ROICalculator) Fingerprint(in Input) string {
	rec := in.Record
	return digest(
		string(schema.ROIMetric),
		rec.AgencyCode,
		rec.Category,
		formatAmount(rec.AwardFloor),
		formatAmount(rec.AwardCeiling),
		formatCount(rec.ExpectedAwards),
		rec.Title,
		rec.Eligibility,
		rec.Description,
		profileDigest(in.Profile),
	)
}

func interpretROI(riskAdjusted float64) string {
	switch {
	case riskAdjusted < 0:
		return "Negative expected return: application cost outweighs the award"
	case riskAdjusted >= 500:
		return "High expected return relative to effort"
	default:
		return "Positive but modest expected return"
	}
}
