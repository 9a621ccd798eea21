package numbering

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// maxSuggestDistance bounds how different a code may be and still be suggested.
const maxSuggestDistance = 3

// Resolver turns a letter's unit and classification into a numbering request
// backed by the repository's atomic counter.
type Resolver struct {
	units           repository.UnitRepository
	classifications repository.ClassificationRepository
	defaultTemplate string
	loc             *time.Location
}

// NewResolver constructs a Resolver. An empty template falls back to DefaultTemplate.
func NewResolver(units repository.UnitRepository, classifications repository.ClassificationRepository, template string, loc *time.Location) *Resolver {
	if template == "" {
		template = DefaultTemplate
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{units: units, classifications: classifications, defaultTemplate: template, loc: loc}
}

// Location is the organisation timezone used to derive calendar years.
func (r *Resolver) Location() *time.Location { return r.loc }

// Classification resolves a classification code.
func (r *Resolver) Classification(ctx context.Context, code string) (*model.Classification, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperror.Validation("classification_code", "is required")
	}
	c, err := r.classifications.FindByID(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.unknownClassification(ctx, code)
		}
		return nil, fmt.Errorf("find classification: %w", err)
	}
	return c, nil
}

// Unit resolves a unit and, for branch offices, its parent.
func (r *Resolver) Unit(ctx context.Context, unitID string) (*model.Unit, *model.Unit, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, nil, apperror.Validation("unit_id", "is required")
	}
	u, err := r.units.FindByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperror.Validation("unit_id", "unit %q cannot be resolved", unitID)
		}
		return nil, nil, fmt.Errorf("find unit: %w", err)
	}
	if u.ParentID == nil || *u.ParentID == "" {
		return u, nil, nil
	}
	parent, err := r.units.FindByID(ctx, *u.ParentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperror.Validation("unit_id", "parent unit %q of %q cannot be resolved", *u.ParentID, unitID)
		}
		return nil, nil, fmt.Errorf("find parent unit: %w", err)
	}
	return u, parent, nil
}

// Request builds the numbering request for l, numbered at time at.
// The sequence itself is drawn by the repository when it persists l.
func (r *Resolver) Request(ctx context.Context, l *model.Letter, at time.Time) (*repository.NumberingRequest, error) {
	unit, parent, err := r.Unit(ctx, l.UnitID)
	if err != nil {
		return nil, err
	}
	class, err := r.Classification(ctx, l.Classification.Code)
	if err != nil {
		return nil, err
	}

	year := at.In(r.loc).Year()
	in := Input{
		UnitCode:           unit.Code,
		ClassificationCode: class.Code,
		Year:               year,
	}
	if parent != nil {
		in.ParentUnitCode = parent.Code
	}
	tmpl := r.templateFor(unit)

	return &repository.NumberingRequest{
		Key: repository.SequenceKey{
			Scope:     repository.ScopeDocument,
			UnitID:    unit.ID,
			IssueCode: class.MainIssueCode,
			Year:      year,
		},
		Render: func(seq int64) (string, error) {
			in := in
			in.Sequence = seq
			return Generate(in, tmpl)
		},
	}, nil
}

// Preview renders a number for the given unit and classification without
// drawing from any counter. An empty template uses the unit's template.
func (r *Resolver) Preview(ctx context.Context, unitID, classificationCode string, seq int64, year int, template string) (string, error) {
	unit, parent, err := r.Unit(ctx, unitID)
	if err != nil {
		return "", err
	}
	class, err := r.Classification(ctx, classificationCode)
	if err != nil {
		return "", err
	}
	if template == "" {
		template = r.templateFor(unit)
	}
	in := Input{UnitCode: unit.Code, ClassificationCode: class.Code, Sequence: seq, Year: year}
	if parent != nil {
		in.ParentUnitCode = parent.Code
	}
	return Generate(in, template)
}

func (r *Resolver) templateFor(u *model.Unit) string {
	if u.NumberTemplate != "" {
		return u.NumberTemplate
	}
	return r.defaultTemplate
}

func (r *Resolver) unknownClassification(ctx context.Context, code string) error {
	codes, err := r.classifications.Codes(ctx)
	if err == nil {
		if s := Suggest(code, codes); s != "" {
			return apperror.Validation("classification_code", "classification %q cannot be resolved (did you mean %q?)", code, s)
		}
	}
	return apperror.Validation("classification_code", "classification %q cannot be resolved", code)
}

// Suggest returns the candidate closest to code, or "" if none is close enough.
func Suggest(code string, candidates []string) string {
	best, bestDist := "", maxSuggestDistance+1
	needle := strings.ToUpper(code)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(needle, strings.ToUpper(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
