package postgres

import (
	"context"
	"database/sql"
	"strings"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// Emails are stored lower-cased.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, name, unit_id, role`

func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, name, unit_id, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	out, err := scanUser(r.db.QueryRowContext(ctx, q, u.ID, strings.ToLower(u.Email), u.Name, u.UnitID, u.Role))
	return out, mapWriteError(err)
}

func (r *UserPostgres) Update(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		UPDATE users SET email = $2, name = $3, unit_id = $4, role = $5
		WHERE id = $1
		RETURNING ` + userColumns
	out, err := scanUser(r.db.QueryRowContext(ctx, q, u.ID, strings.ToLower(u.Email), u.Name, u.UnitID, u.Role))
	return out, mapWriteError(err)
}

func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	return listPage(ctx, r.db, "users", userColumns, "email", pq, scanUser)
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.UnitID, &u.Role); err != nil {
		return nil, err
	}
	return &u, nil
}
