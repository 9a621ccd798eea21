package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"suratapi/internal/repository"
)

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// execOne runs a statement that must touch exactly one row; sql.ErrNoRows otherwise.
func execOne(ctx context.Context, db *sql.DB, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// listPage is the COUNT + LIMIT/OFFSET listing shared by the reference tables.
func listPage[T any](ctx context.Context, db *sql.DB, table, columns, orderBy string, pq repository.PageQuery, scan func(scanner) (*T, error)) (*repository.PageResult[T], error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&total); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s LIMIT $1 OFFSET $2`, columns, table, orderBy)
	rows, err := db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[T]{Items: items, Total: total}, nil
}
