package postgres

import (
	"context"
	"database/sql"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// ClassificationPostgres stores archive classifications keyed by code.
type ClassificationPostgres struct {
	db *sql.DB
}

// NewClassificationPostgres creates a new ClassificationPostgres.
func NewClassificationPostgres(db *sql.DB) *ClassificationPostgres {
	return &ClassificationPostgres{db: db}
}

var _ repository.ClassificationRepository = (*ClassificationPostgres)(nil)

const classificationColumns = `code, main_issue_code, description, retention_active_years, retention_inactive_years`

func (r *ClassificationPostgres) Create(ctx context.Context, c *model.Classification) (*model.Classification, error) {
	const q = `
		INSERT INTO classifications (code, main_issue_code, description, retention_active_years, retention_inactive_years)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + classificationColumns
	out, err := scanClassification(r.db.QueryRowContext(ctx, q,
		c.Code, c.MainIssueCode, c.Description, c.RetentionActiveYears, c.RetentionInactiveYears))
	return out, mapWriteError(err)
}

func (r *ClassificationPostgres) Update(ctx context.Context, c *model.Classification) (*model.Classification, error) {
	const q = `
		UPDATE classifications
		SET main_issue_code = $2, description = $3, retention_active_years = $4, retention_inactive_years = $5
		WHERE code = $1
		RETURNING ` + classificationColumns
	out, err := scanClassification(r.db.QueryRowContext(ctx, q,
		c.Code, c.MainIssueCode, c.Description, c.RetentionActiveYears, c.RetentionInactiveYears))
	return out, mapWriteError(err)
}

func (r *ClassificationPostgres) Delete(ctx context.Context, code string) error {
	return execOne(ctx, r.db, `DELETE FROM classifications WHERE code = $1`, code)
}

func (r *ClassificationPostgres) FindByID(ctx context.Context, code string) (*model.Classification, error) {
	return scanClassification(r.db.QueryRowContext(ctx,
		`SELECT `+classificationColumns+` FROM classifications WHERE code = $1`, code))
}

func (r *ClassificationPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Classification], error) {
	return listPage(ctx, r.db, "classifications", classificationColumns, "code", pq, scanClassification)
}

func (r *ClassificationPostgres) Codes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code FROM classifications ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func scanClassification(row scanner) (*model.Classification, error) {
	var c model.Classification
	if err := row.Scan(&c.Code, &c.MainIssueCode, &c.Description, &c.RetentionActiveYears, &c.RetentionInactiveYears); err != nil {
		return nil, err
	}
	return &c, nil
}
