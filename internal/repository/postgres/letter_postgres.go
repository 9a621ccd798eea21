package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// LetterPostgres is a PostgreSQL implementation of repository.LetterRepository.
// The approval chain, revision history, dispositions and attachments are
// stored as JSONB columns of the letter row, so every write is a single-row
// update guarded by lock_version.
type LetterPostgres struct {
	db  *sql.DB
	loc *time.Location
}

// NewLetterPostgres creates a LetterPostgres. loc decides which calendar year
// a letter is filed under.
func NewLetterPostgres(db *sql.DB, loc *time.Location) *LetterPostgres {
	if loc == nil {
		loc = time.UTC
	}
	return &LetterPostgres{db: db, loc: loc}
}

var _ repository.LetterRepository = (*LetterPostgres)(nil)

const letterColumns = `id, kind, agenda_number, number, subject, body, main_issue_code, classification_code,
		unit_id, created_by, created_at, updated_at, status, version, approval_chain, history,
		signature, sender, received_at, dispositions, attachments, lock_version`

// Create inserts a letter and draws its agenda number (and document number,
// if requested) in one transaction.
func (r *LetterPostgres) Create(ctx context.Context, l *model.Letter, numbering *repository.NumberingRequest) (*model.Letter, error) {
	out := l.Clone()
	out.LockVersion = 1

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		agenda, err := nextSequence(ctx, tx, repository.AgendaKey(out.UnitID))
		if err != nil {
			return err
		}
		out.AgendaNumber = agenda
		if err := assignNumber(ctx, tx, out, numbering); err != nil {
			return err
		}

		cols, err := letterValues(out)
		if err != nil {
			return err
		}
		const q = `
		INSERT INTO letters (id, kind, agenda_number, number, subject, body, main_issue_code, classification_code,
			unit_id, created_by, created_at, updated_at, status, version, approval_chain, history,
			signature, sender, received_at, dispositions, attachments, lock_version, year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		`
		args := append([]any{out.ID, out.Kind, out.AgendaNumber}, cols...)
		args = append(args, out.LockVersion, out.Year(r.loc))
		_, err = tx.ExecContext(ctx, q, args...)
		return mapWriteError(err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single letter by its ID.
func (r *LetterPostgres) FindByID(ctx context.Context, id string) (*model.Letter, error) {
	q := `SELECT ` + letterColumns + ` FROM letters WHERE id = $1`
	return scanLetter(r.db.QueryRowContext(ctx, q, id))
}

// List returns letters matching f, newest first, with a total count.
func (r *LetterPostgres) List(ctx context.Context, f repository.LetterFilter, pq repository.PageQuery) (*repository.PageResult[model.Letter], error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.UnitID != "" {
		add("unit_id = $%d", f.UnitID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.IssueCode != "" {
		add("main_issue_code = $%d", f.IssueCode)
	}
	if f.Year != 0 {
		add("year = $%d", f.Year)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM letters`+clause, args...).Scan(&total); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT %s FROM letters%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		letterColumns, clause, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, q, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Letter, 0)
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Letter]{Items: items, Total: total}, nil
}

// Update writes l when its lock version still matches the stored one.
func (r *LetterPostgres) Update(ctx context.Context, l *model.Letter, numbering *repository.NumberingRequest) (*model.Letter, error) {
	out := l.Clone()

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := assignNumber(ctx, tx, out, numbering); err != nil {
			return err
		}
		cols, err := letterValues(out)
		if err != nil {
			return err
		}
		const q = `
		UPDATE letters SET number = $3, subject = $4, body = $5, main_issue_code = $6, classification_code = $7,
			unit_id = $8, created_by = $9, created_at = $10, updated_at = $11, status = $12, version = $13,
			approval_chain = $14, history = $15, signature = $16, sender = $17, received_at = $18,
			dispositions = $19, attachments = $20, lock_version = lock_version + 1
		WHERE id = $1 AND lock_version = $2
		RETURNING lock_version
		`
		args := append([]any{out.ID, l.LockVersion}, cols...)
		if err := tx.QueryRowContext(ctx, q, args...).Scan(&out.LockVersion); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return staleOrMissing(ctx, tx, out.ID)
			}
			return mapWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a letter if lockVersion still matches.
func (r *LetterPostgres) Delete(ctx context.Context, id string, lockVersion int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM letters WHERE id = $1 AND lock_version = $2`, id, lockVersion)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return staleOrMissing(ctx, tx, id)
		}
		return nil
	})
}

func (r *LetterPostgres) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// nextSequence atomically increments and returns the counter for key.
func nextSequence(ctx context.Context, tx *sql.Tx, key repository.SequenceKey) (int64, error) {
	const q = `
		INSERT INTO sequence_counters (scope, unit_id, issue_code, year, value)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (scope, unit_id, issue_code, year)
		DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value
	`
	var v int64
	if err := tx.QueryRowContext(ctx, q, key.Scope, key.UnitID, key.IssueCode, key.Year).Scan(&v); err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", key.Scope, err)
	}
	return v, nil
}

func assignNumber(ctx context.Context, tx *sql.Tx, l *model.Letter, numbering *repository.NumberingRequest) error {
	if numbering == nil {
		return nil
	}
	seq, err := nextSequence(ctx, tx, numbering.Key)
	if err != nil {
		return err
	}
	num, err := numbering.Render(seq)
	if err != nil {
		return err
	}
	l.Number = &num
	return nil
}

func staleOrMissing(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM letters WHERE id = $1`, id).Scan(&one)
	if err != nil {
		return err
	}
	return repository.ErrStaleVersion
}

// letterValues returns the columns from number through attachments, in letterColumns order.
func letterValues(l *model.Letter) ([]any, error) {
	chain, err := marshalList(l.ApprovalChain)
	if err != nil {
		return nil, err
	}
	history, err := marshalList(l.History)
	if err != nil {
		return nil, err
	}
	dispositions, err := marshalList(l.Dispositions)
	if err != nil {
		return nil, err
	}
	attachments, err := marshalList(l.Attachments)
	if err != nil {
		return nil, err
	}
	var signature any
	if l.Signature != nil {
		b, err := json.Marshal(l.Signature)
		if err != nil {
			return nil, err
		}
		signature = b
	}
	var number sql.NullString
	if l.Number != nil {
		number = sql.NullString{String: *l.Number, Valid: true}
	}
	var received sql.NullTime
	if l.ReceivedAt != nil {
		received = sql.NullTime{Time: *l.ReceivedAt, Valid: true}
	}
	return []any{
		number, l.Subject, l.Body, l.Classification.MainIssueCode, l.Classification.Code,
		l.UnitID, l.CreatedBy, l.CreatedAt, l.UpdatedAt, string(l.Status), l.Version,
		chain, history, signature, l.Sender, received, dispositions, attachments,
	}, nil
}

func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLetter(row scanner) (*model.Letter, error) {
	var (
		l                                          model.Letter
		number                                     sql.NullString
		received                                   sql.NullTime
		status                                     string
		chain, history, signature, disp, attached []byte
	)
	if err := row.Scan(
		&l.ID, &l.Kind, &l.AgendaNumber, &number, &l.Subject, &l.Body,
		&l.Classification.MainIssueCode, &l.Classification.Code,
		&l.UnitID, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt, &status, &l.Version,
		&chain, &history, &signature, &l.Sender, &received, &disp, &attached, &l.LockVersion,
	); err != nil {
		return nil, err
	}
	l.Status = model.LetterStatus(status)
	if number.Valid {
		n := number.String
		l.Number = &n
	}
	if received.Valid {
		t := received.Time
		l.ReceivedAt = &t
	}
	if err := unmarshalList(chain, &l.ApprovalChain); err != nil {
		return nil, fmt.Errorf("approval_chain: %w", err)
	}
	if err := unmarshalList(history, &l.History); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if err := unmarshalList(disp, &l.Dispositions); err != nil {
		return nil, fmt.Errorf("dispositions: %w", err)
	}
	if err := unmarshalList(attached, &l.Attachments); err != nil {
		return nil, fmt.Errorf("attachments: %w", err)
	}
	if len(signature) > 0 && string(signature) != "null" {
		var s model.Signature
		if err := json.Unmarshal(signature, &s); err != nil {
			return nil, fmt.Errorf("signature: %w", err)
		}
		l.Signature = &s
	}
	return &l, nil
}

// unmarshalList leaves dst nil for an empty JSON array.
func unmarshalList[T any](data []byte, dst *[]T) error {
	if len(data) == 0 {
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if len(items) > 0 {
		*dst = items
	}
	return nil
}
