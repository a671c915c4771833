package metrics

import (
	"math"
	"time"

	"github.com/grantops/grantscope/schema"
)

// TimingCalculator compares the time remaining before the deadline against
// the preparation window an application of this size needs, then discounts
// for competing deadlines in the same window and the agency's resubmission
// policy.
type TimingCalculator struct{}

// Name returns the metric identifier.
func (c *TimingCalculator) Name() schema.MetricName {
	return schema.TimingMetric
}

// Compute derives the timing adequacy for one opportunity.
func (c *TimingCalculator) Compute(in Input) schema.ComponentScore {
	rec, b := in.Record, in.Bench

	// An unknown close date yields a neutral score rather than a penalty.
	if rec.CloseDate.IsZero() {
		return schema.ComponentScore{
			Metric: schema.TimingMetric,
			Value:  50,
			Terms: []schema.ExplanationTerm{
				{Label: "days_to_close", Value: 0},
			},
			Interpretation: "No close date published",
			Degraded:       true,
			Missing:        []string{"close_date"},
		}
	}

	daysToClose := rec.CloseDate.Sub(in.Now).Hours() / 24
	if daysToClose <= 0 {
		return schema.ComponentScore{
			Metric: schema.TimingMetric,
			Value:  0,
			Terms: []schema.ExplanationTerm{
				{Label: "days_to_close", Value: daysToClose},
			},
			Interpretation: "Deadline has passed",
		}
	}

	prepDays := schema.TierLookup(b.Timing.PrepTiers, rec.AwardCeiling, b.Timing.DefaultPrepDays)
	agencyAdjust := schema.FactorFor(b.Timing.AgencyAdjustments, rec.AgencyCode, b.Timing.DefaultAdjustment)
	neededDays := prepDays * agencyAdjust

	ratio := daysToClose / neededDays
	var base float64
	if ratio >= 1 {
		// Diminishing bonus past the needed window; never quite reaches 100.
		base = 100 - 10/ratio
	} else {
		base = ratio * 100
	}

	density := concurrentDeadlines(rec.CloseDate, in.ConcurrentCloses, b.Timing.DensityWindowDays)
	densityFactor := densityFactor(density, maxConcurrent(in.Profile, b))

	resubmission := resubmissionFactor(rec, b)

	value := clamp(base*densityFactor*resubmission, 0, 100)

	return schema.ComponentScore{
		Metric: schema.TimingMetric,
		Value:  value,
		Terms: []schema.ExplanationTerm{
			{Label: "days_to_close", Value: daysToClose},
			{Label: "prep_days", Value: neededDays},
			{Label: "readiness_ratio", Value: ratio},
			{Label: "base_score", Value: base},
			{Label: "concurrent_deadlines", Value: float64(density)},
			{Label: "density_factor", Value: densityFactor},
			{Label: "resubmission_factor", Value: resubmission},
		},
		Interpretation: interpretTiming(value),
	}
}

// Fingerprint hashes the deadline inputs. The current day is part of the key
// so a cached timing score never outlives the day it was computed for.
func (c *TimingCalculator) Fingerprint(in Input) string {
	rec := in.Record
	parts := []string{
		string(schema.TimingMetric),
		rec.AgencyCode,
		formatAmount(rec.AwardCeiling),
		formatDate(rec.CloseDate),
		formatDate(in.Now),
		formatCount(maxConcurrent(in.Profile, in.Bench)),
	}
	parts = append(parts, sortedDates(in.ConcurrentCloses)...)
	return digest(parts...)
}

// concurrentDeadlines counts the batch deadlines that fall within the density
// window of this opportunity's close date, excluding the date itself once.
func concurrentDeadlines(close time.Time, others []time.Time, windowDays int) int {
	window := time.Duration(windowDays) * 24 * time.Hour
	n := 0
	selfSeen := false
	for _, other := range others {
		if other.IsZero() {
			continue
		}
		if other.Equal(close) && !selfSeen {
			selfSeen = true
			continue
		}
		diff := other.Sub(close)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			n++
		}
	}
	return n
}

// densityFactor discounts the score as competing deadlines pile up. Past the
// caller's concurrency capacity the discount steepens, floored at 0.3.
func densityFactor(n, capacity int) float64 {
	if n <= 0 {
		return 1.0
	}
	if n < capacity {
		return 1.0 - 0.1*float64(n)
	}
	return math.Max(0.3, 1.0-0.2*float64(n))
}

// resubmissionFactor relaxes the timing penalty for agencies that allow
// resubmission, with small boosts at quarter ends and cycle starts.
func resubmissionFactor(rec *schema.OpportunityRecord, b *schema.Benchmarks) float64 {
	factor := schema.FactorFor(b.Timing.Resubmission, rec.AgencyCode, b.Timing.DefaultResubmission)

	switch rec.CloseDate.Month() {
	case time.March, time.June, time.September, time.December:
		factor *= b.Timing.QuarterBoost
	case time.January, time.July:
		factor *= b.Timing.CycleBoost
	}
	return factor
}

func maxConcurrent(profile *schema.Profile, b *schema.Benchmarks) int {
	if profile != nil && profile.MaxConcurrent > 0 {
		return profile.MaxConcurrent
	}
	return b.Timing.DefaultMaxConcurrent
}

func interpretTiming(value float64) string {
	switch {
	case value >= 70:
		return "Comfortable preparation window"
	case value >= 40:
		return "Tight but workable window"
	default:
		return "Insufficient time to prepare a competitive application"
	}
}
