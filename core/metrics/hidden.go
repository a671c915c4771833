package metrics

import (
	"math"
	"strings"

	"github.com/grantops/grantscope/schema"
)

// HiddenCalculator surfaces overlooked opportunities: low visibility,
// undersubscribed programs, and cross-category potential that keyword
// searches tend to miss.
type HiddenCalculator struct{}

// Weights for the three hidden-opportunity pillars.
const (
	hiddenUndersubWeight   = 0.4
	hiddenVisibilityWeight = 0.3
	hiddenCrossWeight      = 0.3
)

// Name returns the metric identifier.
func (c *HiddenCalculator) Name() schema.MetricName {
	return schema.HiddenMetric
}

// Compute derives the hidden opportunity score for one opportunity.
func (c *HiddenCalculator) Compute(in Input) schema.ComponentScore {
	rec, b := in.Record, in.Bench

	visibility := visibilityIndex(rec, b)
	undersub, missing := undersubscription(in)
	cross := crossCategory(rec, in.Profile, b)

	value := clamp(hiddenUndersubWeight*undersub+
		hiddenVisibilityWeight*(100-visibility)+
		hiddenCrossWeight*cross, 0, 100)

	return schema.ComponentScore{
		Metric: schema.HiddenMetric,
		Value:  value,
		Terms: []schema.ExplanationTerm{
			{Label: "visibility_index", Value: visibility},
			{Label: "undersubscription", Value: undersub},
			{Label: "cross_category", Value: cross},
		},
		Interpretation: interpretHidden(value),
		Degraded:       len(missing) > 0,
		Missing:        missing,
	}
}

// Fingerprint hashes the text and funding fields the hidden score reads.
// The current day is included because deadline advantage shifts with time.
func (c *HiddenCalculator) Fingerprint(in Input) string {
	rec := in.Record
	return digest(
		string(schema.HiddenMetric),
		rec.AgencyCode,
		rec.Category,
		rec.Title,
		rec.Description,
		formatAmount(rec.AwardCeiling),
		formatAmount(rec.TotalFunding),
		formatCount(rec.ExpectedAwards),
		formatDate(rec.CloseDate),
		formatDate(in.Now),
		profileDigest(in.Profile),
	)
}

// visibilityIndex estimates how discoverable the opportunity is. High
// visibility means heavy competition from searchers; the hidden score
// rewards the inverse.
func visibilityIndex(rec *schema.OpportunityRecord, b *schema.Benchmarks) float64 {
	// Search ranking is opaque; hold it neutral.
	const searchScore = 50.0

	titleScore := 70.0
	switch {
	case countMatches(rec.Title, b.Hidden.VagueTitleWords) > 0:
		titleScore = 30
	case countMatches(rec.Title, b.Hidden.TechnicalTitleWords) > 0:
		titleScore = 60
	}

	category := strings.TrimSpace(rec.Category)
	catScore := 70.0
	switch {
	case category == "" || strings.EqualFold(category, "general"):
		catScore = 20
	case len(strings.Fields(category)) > 3:
		catScore = 40
	}

	kwDensity := math.Min(100, float64(countMatches(rec.Description, b.Hidden.CommonKeywords))*20)

	return 0.3*searchScore + 0.3*titleScore + 0.2*catScore + 0.2*kwDensity
}

// undersubscription estimates how thin the applicant pool is likely to be
// relative to the available funding.
func undersubscription(in Input) (float64, []string) {
	rec, b := in.Record, in.Bench
	var missing []string

	// Funding ratio: implied award slots versus announced award count.
	fundingRatio := 30.0
	if rec.TotalFunding > 0 && rec.AwardCeiling > 0 && rec.ExpectedAwards > 0 {
		implied := rec.TotalFunding / rec.AwardCeiling
		if implied > float64(rec.ExpectedAwards) {
			fundingRatio = math.Min(100, implied/float64(rec.ExpectedAwards)*50)
		}
	} else {
		missing = append(missing, "total_funding")
	}

	agencyCompetition := schema.FactorFor(b.Hidden.AgencyCompetition, rec.AgencyCode, b.Hidden.DefaultCompetition)

	awardAppeal := 40.0
	switch {
	case rec.AwardCeiling > 0 && rec.AwardCeiling < 50000:
		awardAppeal = 70 // too small for big shops to chase
	case rec.AwardCeiling > 2000000:
		awardAppeal = 60 // too big for most applicants to manage
	case rec.AwardCeiling >= 100000 && rec.AwardCeiling <= 500000:
		awardAppeal = 20 // the sweet spot everyone targets
	}

	deadlineAdvantage := 50.0
	if !rec.CloseDate.IsZero() {
		days := rec.CloseDate.Sub(in.Now).Hours() / 24
		switch {
		case days < 30:
			deadlineAdvantage = 80 // short fuse filters out most applicants
		case days > 180:
			deadlineAdvantage = 30
		}
	}

	score := 0.3*fundingRatio + 0.3*(100-agencyCompetition) + 0.2*awardAppeal + 0.2*deadlineAdvantage
	return clamp(score, 0, 100), missing
}

// crossCategory estimates interdisciplinary potential that siloed searches miss.
func crossCategory(rec *schema.OpportunityRecord, profile *schema.Profile, b *schema.Benchmarks) float64 {
	text := strings.ToLower(rec.Title + " " + rec.Description + " " + rec.Category)

	breadth := 30.0
	switch n := countMatches(text, b.Hidden.CategoryKeywords); {
	case n >= 3:
		breadth = 80
	case n == 2:
		breadth = 60
	}

	interdisciplinary := math.Min(100, float64(countMatches(text, b.Hidden.InterdisciplinaryTerms))*30)

	profileMatch := 50.0
	if profile != nil && len(profile.Categories) > 0 {
		matched := countMatches(text, profile.Categories)
		switch {
		case matched >= 2:
			profileMatch = 80
		case matched == 1:
			profileMatch = 40
		default:
			profileMatch = 20
		}
	}

	novel := 0.0
	for _, pair := range b.Hidden.NovelPairs {
		if len(pair) != 2 {
			continue
		}
		if containsWord(text, pair[0]) && containsWord(text, pair[1]) {
			novel += 20
		}
	}
	novel = math.Min(80, novel)

	return clamp(0.3*breadth+0.3*interdisciplinary+0.2*profileMatch+0.2*novel, 0, 100)
}

func interpretHidden(value float64) string {
	switch {
	case value >= 60:
		return "Likely overlooked: low visibility and a thin field"
	case value >= 40:
		return "Some hidden upside"
	default:
		return "Well known opportunity, no discovery edge"
	}
}
