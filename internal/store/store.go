// Package store persists scoring sessions and their append-only score logs.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/grantops/grantscope/schema"
)

// ErrSessionNotFound indicates a lookup for an unknown session identifier.
var ErrSessionNotFound = errors.New("session not found")

// StorageError wraps a persistence failure with the operation that failed.
// Scores are still returned to the caller when persistence fails; the batch
// response carries the error so persistence can be retried separately.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SessionStore is the only component permitted to write scoring results to
// stable storage. Score writes are append-only; no update or delete is
// exposed so history stays intact for auditability.
type SessionStore interface {
	// CreateSession opens a new session and returns its identifier.
	CreateSession(ctx context.Context, query string) (string, error)

	// AppendScores appends scores to an existing session.
	AppendScores(ctx context.Context, sessionID string, scores []schema.GrantScore) error

	// GetSession returns a session with its full score log.
	GetSession(ctx context.Context, sessionID string) (*schema.ScoringSession, error)

	// ListRecent returns up to limit sessions, newest first, without score logs.
	ListRecent(ctx context.Context, limit int) ([]schema.ScoringSession, error)

	// ScoreHistory returns every persisted score for one opportunity across
	// all sessions, newest first, to surface score drift over time.
	ScoreHistory(ctx context.Context, opportunityID string) ([]schema.GrantScore, error)

	// Status reports backend health and volume.
	Status(ctx context.Context) (schema.StoreStatus, error)

	Close() error
}

// NewSessionStore initializes a store for the configured backend.
func NewSessionStore(backend schema.DatabaseBackend, connStr string) (SessionStore, error) {
	if backend == schema.MemoryBackend {
		return NewMemoryStore(), nil
	}
	return NewSQLStore(backend, connStr)
}
