package journal

import (
	"context"
	"database/sql"
	"time"
)

// Outcome values stored per attempt.
const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeRejected   = "rejected"
	OutcomeSuperseded = "superseded"
)

// Entry is one recorded action attempt.
type Entry struct {
	ID        string
	SessionID string
	Action    string
	Outcome   string
	Message   string
	TraceID   string
	StartedAt time.Time
	Duration  time.Duration
}

// Repo reads and writes attempts.
type Repo struct {
	db *sql.DB
}

// NewRepo wraps an opened journal database.
func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// Insert stores one attempt.
func (r *Repo) Insert(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO attempts(id, session_id, action, outcome, message, trace_id, started_at, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`, e.ID, e.SessionID, e.Action, e.Outcome, e.Message, e.TraceID, e.StartedAt.UTC(), e.Duration.Milliseconds())
	return err
}

// Recent returns up to limit attempts, newest first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, session_id, action, outcome, message, trace_id, started_at, duration_ms
	FROM attempts
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Action, &e.Outcome, &e.Message, &e.TraceID, &e.StartedAt, &ms); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}
