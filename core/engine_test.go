package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/grantops/grantscope/internal/memcache"
	"github.com/grantops/grantscope/internal/store"
	"github.com/grantops/grantscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var engineTestNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(memcache.New(256, time.Minute), store.NewMemoryStore(), schema.DefaultBenchmarks(), 4, time.Minute)
	e.now = func() time.Time { return engineTestNow }
	return e
}

func nsfRecord(id string) schema.OpportunityRecord {
	return schema.OpportunityRecord{
		ID:             id,
		Title:          "Advanced Materials Research Program",
		AgencyCode:     "NSF",
		Category:       "Science and Technology",
		AwardFloor:     100000,
		AwardCeiling:   500000,
		TotalFunding:   10000000,
		ExpectedAwards: 20,
		PostDate:       engineTestNow.AddDate(0, -1, 0),
		CloseDate:      engineTestNow.AddDate(0, 0, 60),
		Eligibility:    "Accredited universities and nonprofit research institutions",
		Description:    "Research into novel materials for energy storage applications",
	}
}

// TestScoreSingleOpportunity covers the reference scenario end to end.
func TestScoreSingleOpportunity(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Score(context.Background(), ScoreRequest{
		Opportunities: []schema.OpportunityRecord{nsfRecord("GRANT-1001")},
		Query:         "keyword=materials",
	})
	require.NoError(t, err)
	require.NoError(t, result.PersistErr)
	require.Len(t, result.Scores, 1)
	assert.False(t, result.Partial)
	assert.NotEmpty(t, result.SessionID)

	score := result.Scores[0]
	assert.False(t, score.Incomplete)
	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.LessOrEqual(t, score.Overall, 100.0)
	assert.NotEmpty(t, score.Recommendation)
	assert.Equal(t, result.SessionID, score.SessionID)

	// Every default-weighted metric contributes a component.
	require.Len(t, score.Components, len(schema.AllMetrics))
	for _, name := range schema.AllMetrics {
		component, ok := score.Components[name]
		require.True(t, ok, "missing component %s", name)
		assert.GreaterOrEqual(t, component.Value, 0.0)
		assert.LessOrEqual(t, component.Value, 100.0)
		assert.NotEmpty(t, component.Terms)
	}
}

// TestOverallIsWeightedDotProduct verifies the aggregation arithmetic.
func TestOverallIsWeightedDotProduct(t *testing.T) {
	e := newTestEngine(t)

	weights := schema.DefaultWeights()
	result, err := e.Score(context.Background(), ScoreRequest{
		Opportunities: []schema.OpportunityRecord{nsfRecord("GRANT-1001")},
		Weights:       weights,
	})
	require.NoError(t, err)
	require.Len(t, result.Scores, 1)

	score := result.Scores[0]
	var expected float64
	for name, w := range weights {
		expected += w * clampScore(score.Components[name].Value)
	}
	assert.InDelta(t, expected, score.Overall, 1e-9)
}

// TestWarmCacheDeterminism verifies a rescore of unchanged inputs reproduces
// the identical breakdown from cache.
func TestWarmCacheDeterminism(t *testing.T) {
	e := newTestEngine(t)
	req := ScoreRequest{Opportunities: []schema.OpportunityRecord{nsfRecord("GRANT-1001")}}

	first, err := e.Score(context.Background(), req)
	require.NoError(t, err)
	second, err := e.Score(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Scores[0].Overall, second.Scores[0].Overall)
	assert.Equal(t, first.Scores[0].Components, second.Scores[0].Components)
	assert.Greater(t, e.CacheStats().Hits, int64(0))
}

// TestInvalidWeightsRejected verifies malformed weights fail before scoring.
func TestInvalidWeightsRejected(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Score(context.Background(), ScoreRequest{
		Opportunities: []schema.OpportunityRecord{nsfRecord("GRANT-1001")},
		Weights:       map[schema.MetricName]float64{schema.ROIMetric: 0.5},
	})
	assert.ErrorIs(t, err, schema.ErrInvalidWeights)
}

// TestMissingIDRejected verifies a record without an identifier fails the call.
func TestMissingIDRejected(t *testing.T) {
	e := newTestEngine(t)

	rec := nsfRecord("")
	_, err := e.Score(context.Background(), ScoreRequest{
		Opportunities: []schema.OpportunityRecord{rec},
	})
	assert.ErrorIs(t, err, schema.ErrMissingID)
}

// TestBatchWithMissingRecords verifies requested IDs without catalog records
// are reported incomplete while the rest of the batch scores normally.
func TestBatchWithMissingRecords(t *testing.T) {
	e := newTestEngine(t)

	var records []schema.OpportunityRecord
	var requested []string
	for i := range 47 {
		id := fmt.Sprintf("GRANT-%04d", i)
		records = append(records, nsfRecord(id))
		requested = append(requested, id)
	}
	requested = append(requested, "GRANT-GONE-1", "GRANT-GONE-2", "GRANT-GONE-3")

	result, err := e.Score(context.Background(), ScoreRequest{
		Opportunities: records,
		RequestedIDs:  requested,
	})
	require.NoError(t, err)
	require.Len(t, result.Scores, 50)

	complete, incomplete := 0, 0
	for _, score := range result.Scores {
		if score.Incomplete {
			incomplete++
			assert.Equal(t, "no catalog record", score.IncompleteReason)
		} else {
			complete++
		}
	}
	assert.Equal(t, 47, complete)
	assert.Equal(t, 3, incomplete)

	// Incomplete scores sort after every complete score.
	for _, score := range result.Scores[:47] {
		assert.False(t, score.Incomplete)
	}
	for _, score := range result.Scores[47:] {
		assert.True(t, score.Incomplete)
	}
}

// TestCancelledBatchIsPartial verifies a pre-cancelled context marks every
// opportunity incomplete and flags the batch partial.
func TestCancelledBatchIsPartial(t *testing.T) {
	e := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.Score(ctx, ScoreRequest{
		Opportunities: []schema.OpportunityRecord{nsfRecord("GRANT-1"), nsfRecord("GRANT-2")},
	})
	require.NoError(t, err)
	assert.True(t, result.Partial)
	for _, score := range result.Scores {
		assert.True(t, score.Incomplete)
		assert.Equal(t, "batch cancelled before scoring", score.IncompleteReason)
	}
}

// TestScoresSortedByOverall verifies complete results are ranked descending
// with identifiers as the tie-break.
func TestScoresSortedByOverall(t *testing.T) {
	e := newTestEngine(t)

	weak := nsfRecord("GRANT-WEAK")
	weak.AgencyCode = "NIH"
	weak.AwardFloor = 1000
	weak.AwardCeiling = 3000
	weak.CloseDate = engineTestNow.AddDate(0, 0, 5)

	result, err := e.Score(context.Background(), ScoreRequest{
		Opportunities: []schema.OpportunityRecord{weak, nsfRecord("GRANT-STRONG")},
	})
	require.NoError(t, err)
	require.Len(t, result.Scores, 2)
	assert.GreaterOrEqual(t, result.Scores[0].Overall, result.Scores[1].Overall)
}

// TestExplainReturnsLatestBreakdown verifies the explain path reads back the
// persisted component breakdown.
func TestExplainReturnsLatestBreakdown(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Score(context.Background(), ScoreRequest{
		Opportunities: []schema.OpportunityRecord{nsfRecord("GRANT-1001")},
	})
	require.NoError(t, err)

	score, err := e.Explain(context.Background(), "GRANT-1001")
	require.NoError(t, err)
	assert.Equal(t, "GRANT-1001", score.OpportunityID)
	assert.Len(t, score.Components, len(schema.AllMetrics))

	_, err = e.Explain(context.Background(), "GRANT-NEVER-SCORED")
	assert.ErrorIs(t, err, ErrNoScoreHistory)
}

// TestPersistFailureKeepsScores verifies scores survive a store failure.
func TestPersistFailureKeepsScores(t *testing.T) {
	e := newTestEngine(t)

	// Appending to a session the store does not know forces a persist error.
	result, err := e.Score(context.Background(), ScoreRequest{
		Opportunities: []schema.OpportunityRecord{nsfRecord("GRANT-1001")},
		SessionID:     "no-such-session",
	})
	require.NoError(t, err)
	assert.Error(t, result.PersistErr)
	require.Len(t, result.Scores, 1)
	assert.False(t, result.Scores[0].Incomplete)
}
