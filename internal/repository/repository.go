package repository

import (
	"context"
	"errors"
)

// ErrDuplicate is returned when a write would violate a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate key")

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory) inside this directory.

// CRUD is the generic capability exposed for each manageable reference entity.
// Implementations contain no business logic; validation lives in the service layer.
type CRUD[T any] interface {
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, item *T) (*T, error)
	// Delete removes the row; it returns sql.ErrNoRows if nothing matched.
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[T], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
