package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
	"suratapi/internal/numbering"
	"suratapi/internal/repository"
)

// Catalog is the CRUD use case for one kind of reference data.
type Catalog[T any] interface {
	Create(ctx context.Context, item *T) (*T, error)
	// Update replaces the entity stored under id.
	Update(ctx context.Context, id string, item *T) (*T, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, limit, offset int) (*ListResult[T], error)
}

// Entity describes how a catalog identifies and validates its items.
type Entity[T any] struct {
	Resource string
	// Key points at the identifying field of an item.
	Key func(*T) *string
	// GenerateKey assigns a uuid when an item is created without a key.
	GenerateKey bool
	// Prepare validates and normalises an item before it is written.
	Prepare func(ctx context.Context, item *T) error
}

type catalog[T any] struct {
	repo   repository.CRUD[T]
	entity Entity[T]
}

// NewCatalog constructs a Catalog over repo.
func NewCatalog[T any](repo repository.CRUD[T], e Entity[T]) Catalog[T] {
	return &catalog[T]{repo: repo, entity: e}
}

func (c *catalog[T]) Create(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, apperror.Validation(c.entity.Resource, "is required")
	}
	key := c.entity.Key(item)
	*key = strings.TrimSpace(*key)
	if *key == "" && c.entity.GenerateKey {
		*key = uuid.NewString()
	}
	if err := c.prepare(ctx, item); err != nil {
		return nil, err
	}
	out, err := c.repo.Create(ctx, item)
	return out, translate(c.entity.Resource, *key, err)
}

func (c *catalog[T]) Update(ctx context.Context, id string, item *T) (*T, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.Validation(c.entity.Resource, "is required")
	}
	*c.entity.Key(item) = id
	if err := c.prepare(ctx, item); err != nil {
		return nil, err
	}
	out, err := c.repo.Update(ctx, item)
	return out, translate(c.entity.Resource, id, err)
}

func (c *catalog[T]) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	return translate(c.entity.Resource, id, c.repo.Delete(ctx, id))
}

func (c *catalog[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	out, err := c.repo.FindByID(ctx, id)
	return out, translate(c.entity.Resource, id, err)
}

func (c *catalog[T]) List(ctx context.Context, limit, offset int) (*ListResult[T], error) {
	res, err := c.repo.List(ctx, pageQuery(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[T]{Items: res.Items, Total: res.Total}, nil
}

func (c *catalog[T]) prepare(ctx context.Context, item *T) error {
	if *c.entity.Key(item) == "" {
		return apperror.Validation("id", "is required")
	}
	if c.entity.Prepare == nil {
		return nil
	}
	return c.entity.Prepare(ctx, item)
}

// NewUnitCatalog manages organizational units. A parent must exist and a
// number template, when set, must contain every placeholder.
func NewUnitCatalog(units repository.UnitRepository) Catalog[model.Unit] {
	return NewCatalog[model.Unit](units, Entity[model.Unit]{
		Resource:    "unit",
		Key:         func(u *model.Unit) *string { return &u.ID },
		GenerateKey: true,
		Prepare: func(ctx context.Context, u *model.Unit) error {
			u.Code = strings.TrimSpace(u.Code)
			u.Name = strings.TrimSpace(u.Name)
			u.NumberTemplate = strings.TrimSpace(u.NumberTemplate)
			if u.Code == "" {
				return apperror.Validation("code", "is required")
			}
			if u.Name == "" {
				return apperror.Validation("name", "is required")
			}
			if u.NumberTemplate != "" {
				if err := numbering.ValidateTemplate(u.NumberTemplate); err != nil {
					return err
				}
			}
			if u.ParentID != nil && *u.ParentID == "" {
				u.ParentID = nil
			}
			if u.ParentID == nil {
				return nil
			}
			if *u.ParentID == u.ID {
				return apperror.Validation("parent_id", "a unit cannot be its own parent")
			}
			return exists[model.Unit](ctx, units, "parent_id", "unit", *u.ParentID)
		},
	})
}

// NewClassificationCatalog manages archive classifications, keyed by code.
// The main issue code defaults to the code's first segment.
func NewClassificationCatalog(classes repository.ClassificationRepository) Catalog[model.Classification] {
	return NewCatalog[model.Classification](classes, Entity[model.Classification]{
		Resource: "classification",
		Key:      func(c *model.Classification) *string { return &c.Code },
		Prepare: func(_ context.Context, c *model.Classification) error {
			c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
			c.MainIssueCode = strings.ToUpper(strings.TrimSpace(c.MainIssueCode))
			if c.MainIssueCode == "" {
				c.MainIssueCode, _, _ = strings.Cut(c.Code, ".")
			}
			if c.MainIssueCode != c.Code && !strings.HasPrefix(c.Code, c.MainIssueCode+".") {
				return apperror.Validation("main_issue_code", "%q is not a prefix of %q", c.MainIssueCode, c.Code)
			}
			if c.RetentionActiveYears < 0 || c.RetentionInactiveYears < 0 {
				return apperror.Validation("retention", "must not be negative")
			}
			return nil
		},
	})
}

// NewUserCatalog manages users. Emails are stored lower-cased.
func NewUserCatalog(users repository.UserRepository, units repository.UnitRepository) Catalog[model.User] {
	return NewCatalog[model.User](users, Entity[model.User]{
		Resource:    "user",
		Key:         func(u *model.User) *string { return &u.ID },
		GenerateKey: true,
		Prepare: func(ctx context.Context, u *model.User) error {
			u.Email = strings.ToLower(strings.TrimSpace(u.Email))
			u.Name = strings.TrimSpace(u.Name)
			if _, err := mail.ParseAddress(u.Email); err != nil {
				return apperror.Validation("email", "%q is not a valid address", u.Email)
			}
			if u.Name == "" {
				return apperror.Validation("name", "is required")
			}
			if u.UnitID == "" {
				return nil
			}
			return exists[model.Unit](ctx, units, "unit_id", "unit", u.UnitID)
		},
	})
}

func exists[T any](ctx context.Context, repo repository.CRUD[T], field, resource, id string) error {
	if _, err := repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.Validation(field, "%s %q does not exist", resource, id)
		}
		return fmt.Errorf("find %s: %w", resource, err)
	}
	return nil
}
