package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/grantops/grantscope/schema"
)

// ErrNoScoreHistory indicates an opportunity that has never been scored.
var ErrNoScoreHistory = errors.New("no persisted score for opportunity")

// Explain returns the most recent persisted score for an opportunity with its
// full component breakdown. Incomplete entries are skipped so the explanation
// always has arithmetic behind it.
func (e *Engine) Explain(ctx context.Context, opportunityID string) (*schema.GrantScore, error) {
	if e.store == nil {
		return nil, fmt.Errorf("explain requires a session store")
	}

	history, err := e.store.ScoreHistory(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	for i := range history {
		if !history[i].Incomplete {
			return &history[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoScoreHistory, opportunityID)
}

// History returns every persisted score for an opportunity, newest first,
// so callers can inspect score drift across sessions.
func (e *Engine) History(ctx context.Context, opportunityID string) ([]schema.GrantScore, error) {
	if e.store == nil {
		return nil, fmt.Errorf("history requires a session store")
	}
	return e.store.ScoreHistory(ctx, opportunityID)
}
