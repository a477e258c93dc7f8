package db

import (
	"context"
	"database/sql"
)

// EventKind labels one ledger entry.
type EventKind string

const (
	EventSessionStarted   EventKind = "session_started"
	EventDocumentAdopted  EventKind = "document_adopted"
	EventSummaryGenerated EventKind = "summary_generated"
	EventQuestionAnswered EventKind = "question_answered"
	EventGenerationFailed EventKind = "generation_failed"
)

// Ledger records coarse usage events.  Implementations must never store
// document text or model output.
type Ledger interface {
	Record(ctx context.Context, sessionID string, kind EventKind) error
}

// Repository is the Postgres-backed ledger.
type Repository struct {
	DB *sql.DB
}

// Verify interface compliance.
var _ Ledger = (*Repository)(nil)

// NewRepository wraps an existing connection.  The caller owns the
// connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// Record inserts one event row.
func (r *Repository) Record(ctx context.Context, sessionID string, kind EventKind) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO events (session_id, kind) VALUES ($1, $2)`,
		sessionID, string(kind),
	)
	return err
}

// NopLedger discards events.  Used when no Postgres URL is configured.
type NopLedger struct{}

var _ Ledger = NopLedger{}

func (NopLedger) Record(context.Context, string, EventKind) error { return nil }
