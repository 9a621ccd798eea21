package postgres

import (
	"context"
	"database/sql"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// UnitPostgres is a PostgreSQL implementation of repository.UnitRepository.
type UnitPostgres struct {
	db *sql.DB
}

// NewUnitPostgres creates a new UnitPostgres.
func NewUnitPostgres(db *sql.DB) *UnitPostgres {
	return &UnitPostgres{db: db}
}

var _ repository.UnitRepository = (*UnitPostgres)(nil)

const unitColumns = `id, code, name, parent_id, number_template`

func (r *UnitPostgres) Create(ctx context.Context, u *model.Unit) (*model.Unit, error) {
	const q = `
		INSERT INTO units (id, code, name, parent_id, number_template)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + unitColumns
	out, err := scanUnit(r.db.QueryRowContext(ctx, q, u.ID, u.Code, u.Name, nullable(u.ParentID), u.NumberTemplate))
	return out, mapWriteError(err)
}

func (r *UnitPostgres) Update(ctx context.Context, u *model.Unit) (*model.Unit, error) {
	const q = `
		UPDATE units SET code = $2, name = $3, parent_id = $4, number_template = $5
		WHERE id = $1
		RETURNING ` + unitColumns
	out, err := scanUnit(r.db.QueryRowContext(ctx, q, u.ID, u.Code, u.Name, nullable(u.ParentID), u.NumberTemplate))
	return out, mapWriteError(err)
}

func (r *UnitPostgres) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM units WHERE id = $1`, id)
}

func (r *UnitPostgres) FindByID(ctx context.Context, id string) (*model.Unit, error) {
	return scanUnit(r.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE id = $1`, id))
}

func (r *UnitPostgres) FindByCode(ctx context.Context, code string) (*model.Unit, error) {
	return scanUnit(r.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE code = $1`, code))
}

func (r *UnitPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Unit], error) {
	return listPage(ctx, r.db, "units", unitColumns, "code", pq, scanUnit)
}

func scanUnit(row scanner) (*model.Unit, error) {
	var (
		u      model.Unit
		parent sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Code, &u.Name, &parent, &u.NumberTemplate); err != nil {
		return nil, err
	}
	if parent.Valid {
		p := parent.String
		u.ParentID = &p
	}
	return &u, nil
}
