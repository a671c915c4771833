package core

import (
	"sort"

	"github.com/grantops/grantscope/schema"
)

// sortScores orders a batch for presentation: complete scores first by
// overall descending, incomplete scores last, identifiers breaking ties so
// the order is stable across runs.
func sortScores(scores []schema.GrantScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.Incomplete != b.Incomplete {
			return !a.Incomplete
		}
		if a.Overall != b.Overall {
			return a.Overall > b.Overall
		}
		return a.OpportunityID < b.OpportunityID
	})
}

// rawROI extracts the raw risk-adjusted ROI term, which may be negative.
func rawROI(score *schema.GrantScore) float64 {
	if component, ok := score.Components[schema.ROIMetric]; ok {
		return component.Term("risk_adjusted_roi")
	}
	return 0
}

// sortRecommendations orders portfolio entries by overall descending, then
// raw ROI descending, then identifier ascending.
func sortRecommendations(recs []schema.StrategicRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Overall != b.Overall {
			return a.Overall > b.Overall
		}
		if a.ROI != b.ROI {
			return a.ROI > b.ROI
		}
		return a.OpportunityID < b.OpportunityID
	})
}
