package postgres

import (
	"context"
	"database/sql"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// AuditPostgres appends to the audit_log table. Rows are never updated.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

func (r *AuditPostgres) Append(ctx context.Context, e *model.AuditEntry) error {
	const q = `
		INSERT INTO audit_log (id, letter_id, actor, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.LetterID, e.Actor, e.Action, e.Detail, e.CreatedAt)
	return err
}

func (r *AuditPostgres) ListByLetter(ctx context.Context, letterID string) ([]model.AuditEntry, error) {
	const q = `
		SELECT id, letter_id, actor, action, detail, created_at
		FROM audit_log
		WHERE letter_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, q, letterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.LetterID, &e.Actor, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
