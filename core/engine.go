// Package core orchestrates metric computation, caching, aggregation and
// persistence for batches of funding opportunities.
package core

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grantops/grantscope/core/metrics"
	"github.com/grantops/grantscope/internal/memcache"
	"github.com/grantops/grantscope/internal/store"
	"github.com/grantops/grantscope/schema"
)

// DefaultBatchTimeout bounds a single scoring batch.
const DefaultBatchTimeout = 2 * time.Minute

// Engine coordinates the metric calculators, the component cache and the
// session store for batch scoring.
type Engine struct {
	cache   *memcache.Cache
	store   store.SessionStore
	bench   *schema.Benchmarks
	calcs   map[schema.MetricName]metrics.Calculator
	workers int
	timeout time.Duration
	now     func() time.Time
}

// NewEngine wires an engine. Non-positive workers fall back to GOMAXPROCS;
// a non-positive timeout falls back to DefaultBatchTimeout. The store may be
// nil for score-only runs without persistence.
func NewEngine(cache *memcache.Cache, st store.SessionStore, bench *schema.Benchmarks, workers int, timeout time.Duration) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if timeout <= 0 {
		timeout = DefaultBatchTimeout
	}
	return &Engine{
		cache:   cache,
		store:   st,
		bench:   bench,
		calcs:   metrics.ByName(),
		workers: workers,
		timeout: timeout,
		now:     time.Now,
	}
}

// ScoreRequest describes one scoring batch.
type ScoreRequest struct {
	// Opportunities are the catalog records to score.
	Opportunities []schema.OpportunityRecord

	// RequestedIDs optionally names the IDs the caller asked for. IDs with
	// no matching record are reported incomplete rather than dropped.
	RequestedIDs []string

	// Weights for the overall aggregation. Nil selects the default preset.
	// Metrics absent from the map are not computed.
	Weights map[schema.MetricName]float64

	// Profile optionally personalizes eligibility and fit factors.
	Profile *schema.Profile

	// Query is free-text context recorded on the session.
	Query string

	// SessionID appends to an existing session instead of opening a new one.
	SessionID string
}

// BatchResult is the outcome of one scoring batch.
type BatchResult struct {
	SessionID  string              `json:"session_id,omitempty"`
	Scores     []schema.GrantScore `json:"scores"`
	Partial    bool                `json:"partial"`               // Set when cancellation left opportunities unscored
	PersistErr error               `json:"-"`                     // Persistence failure; scores are still valid
	Elapsed    time.Duration       `json:"elapsed_ms,omitzero"`
}

// Score computes the weighted score for every opportunity in the request,
// persists the batch as a session, and returns the ranked results.
//
// Weight and identifier problems fail the whole call before any work starts.
// Cancellation mid-batch lets claimed computations finish and marks the
// unstarted remainder incomplete. Persistence failure never discards scores.
func (e *Engine) Score(ctx context.Context, req ScoreRequest) (*BatchResult, error) {
	start := e.now()

	weights := req.Weights
	if len(weights) == 0 {
		weights = schema.DefaultWeights()
	}
	if err := schema.ValidateWeights(weights); err != nil {
		return nil, err
	}

	for i := range req.Opportunities {
		if strings.TrimSpace(req.Opportunities[i].ID) == "" {
			return nil, fmt.Errorf("record %d (%q): %w", i, req.Opportunities[i].Title, schema.ErrMissingID)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// Every close date in the batch feeds the timing metric's density window.
	closes := make([]time.Time, 0, len(req.Opportunities))
	for i := range req.Opportunities {
		closes = append(closes, req.Opportunities[i].CloseDate)
	}

	recCh := make(chan *schema.OpportunityRecord, len(req.Opportunities))
	scoreCh := make(chan schema.GrantScore, len(req.Opportunities)+len(req.RequestedIDs))
	var wg sync.WaitGroup
	var partial atomic.Bool

	for range e.workers {
		wg.Go(func() {
			for rec := range recCh {
				if ctx.Err() != nil {
					partial.Store(true)
					scoreCh <- schema.GrantScore{
						OpportunityID:    rec.ID,
						Title:            rec.Title,
						Incomplete:       true,
						IncompleteReason: "batch cancelled before scoring",
						ComputedAt:       e.now().UTC(),
					}
					continue
				}
				scoreCh <- e.scoreOne(rec, req.Profile, weights, closes)
			}
		})
	}

	for i := range req.Opportunities {
		recCh <- &req.Opportunities[i]
	}
	close(recCh)
	wg.Wait()

	// Requested IDs with no catalog record are reported, not silently dropped.
	known := make(map[string]struct{}, len(req.Opportunities))
	for i := range req.Opportunities {
		known[req.Opportunities[i].ID] = struct{}{}
	}
	for _, id := range req.RequestedIDs {
		if _, ok := known[id]; !ok {
			scoreCh <- schema.GrantScore{
				OpportunityID:    id,
				Incomplete:       true,
				IncompleteReason: "no catalog record",
				ComputedAt:       e.now().UTC(),
			}
		}
	}
	close(scoreCh)

	scores := make([]schema.GrantScore, 0, cap(scoreCh))
	for s := range scoreCh {
		scores = append(scores, s)
	}
	sortScores(scores)

	result := &BatchResult{
		Scores:  scores,
		Partial: partial.Load(),
	}
	e.persist(context.WithoutCancel(ctx), req, result)
	result.Elapsed = e.now().Sub(start)
	return result, nil
}

// scoreOne computes every weighted metric for a single opportunity through
// the component cache.
func (e *Engine) scoreOne(rec *schema.OpportunityRecord, profile *schema.Profile, weights map[schema.MetricName]float64, closes []time.Time) schema.GrantScore {
	in := metrics.Input{
		Record:           rec,
		Profile:          profile,
		Bench:            e.bench,
		Now:              e.now(),
		ConcurrentCloses: closes,
	}

	components := make(map[schema.MetricName]schema.ComponentScore, len(weights))
	var overall float64

	for _, name := range schema.AllMetrics {
		weight, ok := weights[name]
		if !ok {
			continue
		}

		calc := e.calcs[name]
		key := fmt.Sprintf("%s:%s:%s", rec.ID, name, calc.Fingerprint(in))
		component, err := e.cache.GetOrCompute(key, func() (schema.ComponentScore, error) {
			return calc.Compute(in), nil
		})
		if err != nil {
			return schema.GrantScore{
				OpportunityID:    rec.ID,
				Title:            rec.Title,
				Incomplete:       true,
				IncompleteReason: fmt.Sprintf("%s computation failed: %v", name, err),
				ComputedAt:       e.now().UTC(),
			}
		}

		components[name] = component
		overall += weight * clampScore(component.Value)
	}

	return schema.GrantScore{
		OpportunityID:  rec.ID,
		Title:          rec.Title,
		Overall:        overall,
		Components:     components,
		Recommendation: recommendationFor(overall, components),
		ComputedAt:     e.now().UTC(),
	}
}

// persist records the batch on the session store. Failures are carried on the
// result so callers can retry persistence without rescoring.
func (e *Engine) persist(ctx context.Context, req ScoreRequest, result *BatchResult) {
	if e.store == nil {
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := e.store.CreateSession(ctx, req.Query)
		if err != nil {
			result.PersistErr = err
			return
		}
		sessionID = id
	}
	result.SessionID = sessionID

	for i := range result.Scores {
		result.Scores[i].SessionID = sessionID
	}
	if err := e.store.AppendScores(ctx, sessionID, result.Scores); err != nil {
		result.PersistErr = err
	}
}

// CacheStats exposes the component cache counters.
func (e *Engine) CacheStats() memcache.Stats {
	return e.cache.Stats()
}

// ClearCache drops every cached component score.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// recommendationFor summarizes the overall score with the most load-bearing
// caveat from the component breakdown.
func recommendationFor(overall float64, components map[schema.MetricName]schema.ComponentScore) string {
	var base string
	switch {
	case overall >= 75:
		base = "Strong candidate; prioritize this application"
	case overall >= 60:
		base = "Competitive fit; apply if capacity allows"
	case overall >= 40:
		base = "Marginal fit; consider only with a differentiator"
	default:
		base = "Weak fit; effort is better spent elsewhere"
	}

	if timing, ok := components[schema.TimingMetric]; ok && timing.Value < 40 {
		return base + " (deadline pressure is the main constraint)"
	}
	if competition, ok := components[schema.CompetitionMetric]; ok && competition.Value < 20 {
		return base + " (expect a crowded applicant pool)"
	}
	return base
}
