package core

import (
	"context"
	"fmt"
	"math"

	"github.com/grantops/grantscope/schema"
)

// tierBands holds the thresholds that partition scored opportunities into
// reach, match and safety. Every threshold shifts together with the caller's
// risk tolerance.
type tierBands struct {
	reachOverall      float64 // reach needs at least this overall
	reachSuccess      float64 // ...and success below this or
	reachCompetition  float64 // ...competition score below this
	safetySuccess     float64 // safety needs at least this success
	safetyCompetition float64 // ...and at least this competition score
	safetyOverall     float64 // ...and at least this overall
}

func bandsFor(tolerance schema.RiskTolerance) tierBands {
	switch tolerance {
	case schema.LowTolerance:
		return tierBands{75, 20, 35, 35, 55, 45}
	case schema.HighTolerance:
		return tierBands{65, 30, 45, 45, 65, 55}
	default:
		return tierBands{70, 25, 40, 40, 60, 50}
	}
}

// idealTierShares is the target portfolio mix used for the diversity score.
var idealTierShares = map[schema.PortfolioTier]float64{
	schema.ReachTier:  0.30,
	schema.MatchTier:  0.50,
	schema.SafetyTier: 0.20,
}

// BuildPortfolio partitions a persisted session's scores into portfolio tiers
// under the given risk tolerance. Every complete score lands in exactly one
// tier; incomplete scores are counted as skipped.
func (e *Engine) BuildPortfolio(ctx context.Context, sessionID string, tolerance schema.RiskTolerance) (*schema.PortfolioReport, error) {
	if e.store == nil {
		return nil, fmt.Errorf("portfolio synthesis requires a session store")
	}
	if _, ok := schema.ValidRiskTolerances[tolerance]; !ok {
		tolerance = schema.MediumTolerance
	}

	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	bands := bandsFor(tolerance)
	report := &schema.PortfolioReport{
		SessionID:     sessionID,
		RiskTolerance: tolerance,
	}

	var successSum float64
	for i := range session.Scores {
		score := &session.Scores[i]
		if score.Incomplete {
			report.Skipped++
			continue
		}

		tier := classifyTier(score, bands)
		success := componentValue(score, schema.SuccessMetric)
		successSum += success

		report.Recommendations = append(report.Recommendations, schema.StrategicRecommendation{
			SessionID:          sessionID,
			OpportunityID:      score.OpportunityID,
			Tier:               tier,
			Rationale:          tierRationale(tier, score),
			Overall:            score.Overall,
			ROI:                rawROI(score),
			SuccessProbability: success,
		})
	}

	sortRecommendations(report.Recommendations)
	for i := range report.Recommendations {
		report.Recommendations[i].Rank = i + 1
	}

	if n := len(report.Recommendations); n > 0 {
		report.ExpectedSuccessRate = successSum / float64(n)
		report.DiversityScore = diversityScore(report.Recommendations)
	}
	return report, nil
}

// classifyTier assigns exactly one tier. Reach is checked first so a
// high-overall long shot never masquerades as safe.
func classifyTier(score *schema.GrantScore, bands tierBands) schema.PortfolioTier {
	success := componentValue(score, schema.SuccessMetric)
	competition := componentValue(score, schema.CompetitionMetric)

	if score.Overall >= bands.reachOverall && (success < bands.reachSuccess || competition < bands.reachCompetition) {
		return schema.ReachTier
	}
	if success >= bands.safetySuccess && competition >= bands.safetyCompetition && score.Overall >= bands.safetyOverall {
		return schema.SafetyTier
	}
	return schema.MatchTier
}

func componentValue(score *schema.GrantScore, name schema.MetricName) float64 {
	if component, ok := score.Components[name]; ok {
		return component.Value
	}
	return 0
}

// diversityScore measures how close the tier mix is to the ideal allocation,
// 100 meaning an exact match and 0 a fully concentrated portfolio.
func diversityScore(recs []schema.StrategicRecommendation) float64 {
	counts := make(map[schema.PortfolioTier]float64)
	for _, rec := range recs {
		counts[rec.Tier]++
	}

	total := float64(len(recs))
	var deviation float64
	for _, tier := range schema.AllTiers {
		share := counts[tier] / total
		deviation += math.Abs(share - idealTierShares[tier])
	}

	// deviation/2 is the total variation distance in [0,1].
	return clampScore((1 - deviation/2) * 100)
}

func tierRationale(tier schema.PortfolioTier, score *schema.GrantScore) string {
	switch tier {
	case schema.ReachTier:
		return fmt.Sprintf("High upside (overall %.1f) with long odds; worth one strong attempt", score.Overall)
	case schema.SafetyTier:
		return fmt.Sprintf("Favorable odds (success %.1f) with manageable competition", componentValue(score, schema.SuccessMetric))
	default:
		return fmt.Sprintf("Balanced fit at overall %.1f; core of the application plan", score.Overall)
	}
}
