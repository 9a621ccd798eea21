package service

import (
	"context"
	"time"

	"suratapi/internal/apperror"
	"suratapi/internal/numbering"
)

// PreviewInput selects what to render. Zero Sequence and Year mean 1 and the
// current year; an empty Template uses the unit's template.
type PreviewInput struct {
	UnitID             string `json:"unit_id"`
	ClassificationCode string `json:"classification_code"`
	Sequence           int64  `json:"sequence"`
	Year               int    `json:"year"`
	Template           string `json:"template"`
}

// NumberService renders document numbers without drawing from any counter.
type NumberService interface {
	Preview(ctx context.Context, in PreviewInput) (string, error)
}

type numberService struct {
	resolver *numbering.Resolver
	now      func() time.Time
}

// NewNumberService constructs a new NumberService.
func NewNumberService(r *numbering.Resolver) NumberService {
	return &numberService{resolver: r, now: time.Now}
}

func (s *numberService) Preview(ctx context.Context, in PreviewInput) (string, error) {
	if in.Sequence < 0 {
		return "", apperror.Validation("sequence", "must be positive")
	}
	if in.Sequence == 0 {
		in.Sequence = 1
	}
	if in.Year == 0 {
		in.Year = s.now().In(s.resolver.Location()).Year()
	}
	return s.resolver.Preview(ctx, in.UnitID, in.ClassificationCode, in.Sequence, in.Year, in.Template)
}
