package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/google/uuid"
	"github.com/grantops/grantscope/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// SQLStore implements SessionStore over sqlite, mysql or postgresql.
type SQLStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ SessionStore = (*SQLStore)(nil) // Compile-time check

// NewSQLStore opens the configured backend, applies migrations, and returns
// a ready store.
func NewSQLStore(backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	db, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s session store. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if err := applyMigrations(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate %s session store: %w", backend, err)
	}

	return &SQLStore{db: db, backend: backend, connStr: connStr}, nil
}

// openDatabase opens a database handle for the backend.
func openDatabase(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = DefaultSQLitePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite session store at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname?multiStatements=true
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL session store: %w. Check connection format: user:password@tcp(host:port)/dbname?multiStatements=true", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=secret dbname=grantscope
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL session store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported session store backend: %s. Must be sqlite, mysql, postgresql, or memory", backend)
	}
}

// rebind converts ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CreateSession opens a new session and returns its identifier.
func (s *SQLStore) CreateSession(ctx context.Context, query string) (string, error) {
	id := uuid.NewString()
	insert := s.rebind(`INSERT INTO grant_sessions (id, created_at, query) VALUES (?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, insert, id, time.Now().Unix(), query); err != nil {
		return "", &StorageError{Op: "create session", Err: err}
	}
	return id, nil
}

// AppendScores appends scores to an existing session. Sequence numbers extend
// the current log; nothing is ever updated in place.
func (s *SQLStore) AppendScores(ctx context.Context, sessionID string, scores []schema.GrantScore) error {
	if len(scores) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "append scores", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	row := tx.QueryRowContext(ctx, s.rebind(`SELECT COALESCE(MAX(seq), 0) FROM grant_scores WHERE session_id = ?`), sessionID)
	if err := row.Scan(&next); err != nil {
		return &StorageError{Op: "append scores", Err: err}
	}

	insert := s.rebind(`INSERT INTO grant_scores
		(session_id, seq, opportunity_id, title, overall, incomplete, incomplete_reason, recommendation, computed_at, components)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	for i, score := range scores {
		components, err := json.Marshal(score.Components)
		if err != nil {
			return &StorageError{Op: "append scores", Err: err}
		}
		incomplete := 0
		if score.Incomplete {
			incomplete = 1
		}
		if _, err := tx.ExecContext(ctx, insert,
			sessionID, next+i+1, score.OpportunityID, score.Title, score.Overall,
			incomplete, score.IncompleteReason, score.Recommendation,
			score.ComputedAt.Unix(), string(components),
		); err != nil {
			return &StorageError{Op: "append scores", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "append scores", Err: err}
	}
	return nil
}

// GetSession returns a session with its full score log.
func (s *SQLStore) GetSession(ctx context.Context, sessionID string) (*schema.ScoringSession, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, created_at, query FROM grant_sessions WHERE id = ?`), sessionID)

	var session schema.ScoringSession
	var createdAt int64
	if err := row.Scan(&session.ID, &createdAt, &session.Query); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, &StorageError{Op: "get session", Err: err}
	}
	session.CreatedAt = time.Unix(createdAt, 0).UTC()

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT session_id, opportunity_id, title, overall, incomplete, incomplete_reason, recommendation, computed_at, components
		FROM grant_scores WHERE session_id = ? ORDER BY seq`), sessionID)
	if err != nil {
		return nil, &StorageError{Op: "get session", Err: err}
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, &StorageError{Op: "get session", Err: err}
		}
		session.Scores = append(session.Scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "get session", Err: err}
	}

	session.ScoreCount = len(session.Scores)
	return &session, nil
}

// ListRecent returns up to limit sessions, newest first, without score logs.
func (s *SQLStore) ListRecent(ctx context.Context, limit int) ([]schema.ScoringSession, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT s.id, s.created_at, s.query, COUNT(g.opportunity_id)
		FROM grant_sessions s LEFT JOIN grant_scores g ON g.session_id = s.id
		GROUP BY s.id, s.created_at, s.query
		ORDER BY s.created_at DESC, s.id LIMIT ?`), limit)
	if err != nil {
		return nil, &StorageError{Op: "list sessions", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var sessions []schema.ScoringSession
	for rows.Next() {
		var session schema.ScoringSession
		var createdAt int64
		if err := rows.Scan(&session.ID, &createdAt, &session.Query, &session.ScoreCount); err != nil {
			return nil, &StorageError{Op: "list sessions", Err: err}
		}
		session.CreatedAt = time.Unix(createdAt, 0).UTC()
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list sessions", Err: err}
	}
	return sessions, nil
}

// ScoreHistory returns every persisted score for one opportunity across all
// sessions, newest first.
func (s *SQLStore) ScoreHistory(ctx context.Context, opportunityID string) ([]schema.GrantScore, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT session_id, opportunity_id, title, overall, incomplete, incomplete_reason, recommendation, computed_at, components
		FROM grant_scores WHERE opportunity_id = ? ORDER BY computed_at DESC, seq DESC`), opportunityID)
	if err != nil {
		return nil, &StorageError{Op: "score history", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var scores []schema.GrantScore
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, &StorageError{Op: "score history", Err: err}
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "score history", Err: err}
	}
	return scores, nil
}

// Status reports backend health and volume.
func (s *SQLStore) Status(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM grant_sessions`)
	if err := row.Scan(&status.SessionCount); err != nil {
		return status, &StorageError{Op: "status", Err: err}
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(MAX(computed_at), 0) FROM grant_scores`)
	var lastTs int64
	if err := row.Scan(&status.ScoreCount, &lastTs); err != nil {
		return status, &StorageError{Op: "status", Err: err}
	}
	if lastTs > 0 {
		status.LastEntryTime = time.Unix(lastTs, 0).UTC()
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanScore reads one grant_scores row.
func scanScore(rows *sql.Rows) (schema.GrantScore, error) {
	var score schema.GrantScore
	var incomplete int
	var computedAt int64
	var components string

	if err := rows.Scan(&score.SessionID, &score.OpportunityID, &score.Title, &score.Overall,
		&incomplete, &score.IncompleteReason, &score.Recommendation, &computedAt, &components); err != nil {
		return schema.GrantScore{}, err
	}

	score.Incomplete = incomplete != 0
	score.ComputedAt = time.Unix(computedAt, 0).UTC()
	if components != "" && components != "null" {
		if err := json.Unmarshal([]byte(components), &score.Components); err != nil {
			return schema.GrantScore{}, err
		}
	}
	return score, nil
}
