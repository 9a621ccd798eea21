package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// table is a generic keyed store backing the reference-data repositories.
type table[T any] struct {
	mu    sync.RWMutex
	key   func(*T) string
	rows  map[string]T
	order func(a, b *T) bool
}

func newTable[T any](key func(*T) string, order func(a, b *T) bool) *table[T] {
	return &table[T]{key: key, rows: make(map[string]T), order: order}
}

func (t *table[T]) Create(_ context.Context, item *T) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := t.key(item)
	if _, ok := t.rows[k]; ok {
		return nil, repository.ErrDuplicate
	}
	t.rows[k] = *item
	out := *item
	return &out, nil
}

func (t *table[T]) Update(_ context.Context, item *T) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := t.key(item)
	if _, ok := t.rows[k]; !ok {
		return nil, sql.ErrNoRows
	}
	t.rows[k] = *item
	out := *item
	return &out, nil
}

func (t *table[T]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) FindByID(_ context.Context, id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &v, nil
}

func (t *table[T]) List(_ context.Context, pq repository.PageQuery) (*repository.PageResult[T], error) {
	all := t.all()
	items := append(make([]T, 0), page(all, pq)...)
	return &repository.PageResult[T]{Items: items, Total: len(all)}, nil
}

func (t *table[T]) all() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.rows))
	for _, v := range t.rows {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return t.order(&out[i], &out[j]) })
	return out
}

func (t *table[T]) find(match func(*T) bool) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, v := range t.rows {
		if match(&v) {
			return &v, nil
		}
	}
	return nil, sql.ErrNoRows
}

// UnitStore is an in-memory repository.UnitRepository.
type UnitStore struct{ *table[model.Unit] }

// NewUnitStore creates a new UnitStore.
func NewUnitStore() *UnitStore {
	return &UnitStore{newTable(
		func(u *model.Unit) string { return u.ID },
		func(a, b *model.Unit) bool { return a.Code < b.Code },
	)}
}

func (s *UnitStore) FindByCode(_ context.Context, code string) (*model.Unit, error) {
	return s.find(func(u *model.Unit) bool { return u.Code == code })
}

// ClassificationStore is an in-memory repository.ClassificationRepository.
type ClassificationStore struct{ *table[model.Classification] }

// NewClassificationStore creates a new ClassificationStore.
func NewClassificationStore() *ClassificationStore {
	return &ClassificationStore{newTable(
		func(c *model.Classification) string { return c.Code },
		func(a, b *model.Classification) bool { return a.Code < b.Code },
	)}
}

func (s *ClassificationStore) Codes(_ context.Context) ([]string, error) {
	all := s.all()
	codes := make([]string, len(all))
	for i, c := range all {
		codes[i] = c.Code
	}
	return codes, nil
}

// UserStore is an in-memory repository.UserRepository.
type UserStore struct{ *table[model.User] }

// NewUserStore creates a new UserStore.
func NewUserStore() *UserStore {
	return &UserStore{newTable(
		func(u *model.User) string { return u.ID },
		func(a, b *model.User) bool { return a.Email < b.Email },
	)}
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) })
}

var (
	_ repository.UnitRepository           = (*UnitStore)(nil)
	_ repository.ClassificationRepository = (*ClassificationStore)(nil)
	_ repository.UserRepository           = (*UserStore)(nil)
)
