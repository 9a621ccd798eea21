// Package seed loads reference data (units, classifications, users) from a
// YAML file into the catalogs.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
	"suratapi/internal/service"
)

// File is the seed document. Units are applied in order, so parents must be
// listed before their branches.
type File struct {
	Units           []model.Unit           `yaml:"units"`
	Classifications []model.Classification `yaml:"classifications"`
	Users           []model.User           `yaml:"users"`
}

// Catalogs receive the seeded items.
type Catalogs struct {
	Units           service.Catalog[model.Unit]
	Classifications service.Catalog[model.Classification]
	Users           service.Catalog[model.User]
}

// Result counts what Apply did per entity kind.
type Result struct {
	Created map[string]int
	Updated map[string]int
}

// Decode parses a seed document. Unknown keys are rejected, and every unit and
// user needs an id so that seeding twice updates instead of duplicating.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i, u := range f.Units {
		if u.ID == "" {
			return nil, fmt.Errorf("units[%d] (%s): id is required", i, u.Code)
		}
	}
	for i, u := range f.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("users[%d] (%s): id is required", i, u.Email)
		}
	}
	return &f, nil
}

// LoadFile opens and decodes path.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh)
}

// Apply upserts every item: create, and update when the key already exists.
// It stops at the first item the catalog rejects.
func Apply(ctx context.Context, f *File, c Catalogs) (Result, error) {
	res := Result{Created: map[string]int{}, Updated: map[string]int{}}

	for i := range f.Units {
		u := f.Units[i]
		if err := upsert(ctx, c.Units, &u, u.ID, "unit", &res); err != nil {
			return res, err
		}
	}
	for i := range f.Classifications {
		cl := f.Classifications[i]
		if err := upsert(ctx, c.Classifications, &cl, cl.Code, "classification", &res); err != nil {
			return res, err
		}
	}
	for i := range f.Users {
		u := f.Users[i]
		if err := upsert(ctx, c.Users, &u, u.ID, "user", &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func upsert[T any](ctx context.Context, cat service.Catalog[T], item *T, key, kind string, res *Result) error {
	orig := *item
	_, err := cat.Create(ctx, item)
	switch {
	case err == nil:
		res.Created[kind]++
		return nil
	case !errors.Is(err, apperror.ErrConflict):
		return fmt.Errorf("seed %s %q: %w", kind, key, err)
	}

	if _, err := cat.Update(ctx, key, &orig); err != nil {
		return fmt.Errorf("seed %s %q: %w", kind, key, err)
	}
	res.Updated[kind]++
	return nil
}
