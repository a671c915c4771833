package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grantops/grantscope/schema"
)

// MemoryStore keeps sessions in process memory. Useful for tests and for
// one-shot runs where persistence is not wanted.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*schema.ScoringSession
	order    []string // session IDs in creation order
}

var _ SessionStore = (*MemoryStore)(nil) // Compile-time check

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*schema.ScoringSession)}
}

// CreateSession opens a new session and returns its identifier.
func (m *MemoryStore) CreateSession(_ context.Context, query string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.sessions[id] = &schema.ScoringSession{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Query:     query,
	}
	m.order = append(m.order, id)
	return id, nil
}

// AppendScores appends scores to an existing session.
func (m *MemoryStore) AppendScores(_ context.Context, sessionID string, scores []schema.GrantScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return &StorageError{Op: "append scores", Err: ErrSessionNotFound}
	}
	session.Scores = append(session.Scores, scores...)
	session.ScoreCount = len(session.Scores)
	return nil
}

// GetSession returns a session with its full score log.
func (m *MemoryStore) GetSession(_ context.Context, sessionID string) (*schema.ScoringSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	// Copy so callers cannot mutate stored history.
	out := *session
	out.Scores = append([]schema.GrantScore(nil), session.Scores...)
	return &out, nil
}

// ListRecent returns up to limit sessions, newest first, without score logs.
func (m *MemoryStore) ListRecent(_ context.Context, limit int) ([]schema.ScoringSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	var sessions []schema.ScoringSession
	for i := len(m.order) - 1; i >= 0 && len(sessions) < limit; i-- {
		s := m.sessions[m.order[i]]
		sessions = append(sessions, schema.ScoringSession{
			ID:         s.ID,
			CreatedAt:  s.CreatedAt,
			Query:      s.Query,
			ScoreCount: len(s.Scores),
		})
	}
	return sessions, nil
}

// ScoreHistory returns every persisted score for one opportunity across all
// sessions, newest first.
func (m *MemoryStore) ScoreHistory(_ context.Context, opportunityID string) ([]schema.GrantScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var scores []schema.GrantScore
	for _, id := range m.order {
		for _, score := range m.sessions[id].Scores {
			if score.OpportunityID == opportunityID {
				scores = append(scores, score)
			}
		}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].ComputedAt.After(scores[j].ComputedAt)
	})
	return scores, nil
}

// Status reports backend health and volume.
func (m *MemoryStore) Status(_ context.Context) (schema.StoreStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := schema.StoreStatus{
		Backend:      string(schema.MemoryBackend),
		Connected:    true,
		SessionCount: int64(len(m.sessions)),
	}
	for _, s := range m.sessions {
		status.ScoreCount += int64(len(s.Scores))
		for _, score := range s.Scores {
			if score.ComputedAt.After(status.LastEntryTime) {
				status.LastEntryTime = score.ComputedAt
			}
		}
	}
	return status, nil
}

// Close is a no-op for the memory backend.
func (m *MemoryStore) Close() error {
	return nil
}
