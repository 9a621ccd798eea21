// Package service implements the correspondence use cases. Each operation
// loads a letter, lets the workflow package transition it, stores the result
// under the lock version it read and only then hands the outcome to the
// notification dispatcher.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
	"suratapi/internal/notify"
	"suratapi/internal/numbering"
	"suratapi/internal/repository"
	"suratapi/internal/storage"
	"suratapi/internal/workflow"
)

var tracer = otel.Tracer("suratapi/internal/service")

// Audit actions emitted by the service layer itself.
const (
	ActionCreated         = "letter.created"
	ActionDeleted         = "letter.deleted"
	ActionNumbered        = "letter.numbered"
	ActionAttachmentAdded = "attachment.added"
)

const (
	defaultLimit            = 10
	maxLimit                = 100
	defaultAttachmentExpiry = 15 * time.Minute
)

// ListResult is the service-level DTO for paginated lists.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

// Deps are the collaborators shared by the letter use cases.
type Deps struct {
	Letters   repository.LetterRepository
	Audit     repository.AuditRepository
	Users     repository.UserRepository
	Resolver  *numbering.Resolver
	Storage   storage.Storage
	Publisher notify.Publisher
	Metrics   *Metrics
	Logger    zerolog.Logger

	// Now and NewID default to time.Now in UTC and uuid.NewString.
	Now   func() time.Time
	NewID func() string
	// AttachmentURLExpiry defaults to 15 minutes.
	AttachmentURLExpiry time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.AttachmentURLExpiry <= 0 {
		d.AttachmentURLExpiry = defaultAttachmentExpiry
	}
	d.Logger = d.Logger.With().Str("component", "service").Logger()
	return d
}

func (d Deps) workflowOptions() []workflow.Option {
	return []workflow.Option{workflow.WithClock(d.Now), workflow.WithIDs(d.NewID)}
}

// Metrics counts letter operations by name and result.
type Metrics struct {
	transitions *prometheus.CounterVec
}

// NewMetrics registers the service counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suratapi_letter_operations_total",
				Help: "Letter operations by name and result (ok or error kind).",
			},
			[]string{"operation", "result"},
		),
	}
	if err := reg.Register(m.transitions); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = string(apperror.KindOf(err))
	}
	m.transitions.WithLabelValues(op, result).Inc()
}

// translate maps repository errors onto the apperror taxonomy.
func translate(resource, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperror.NotFound(resource, id)
	case errors.Is(err, repository.ErrStaleVersion):
		return apperror.Conflict(resource, id, err)
	case errors.Is(err, repository.ErrDuplicate):
		return &apperror.Error{Kind: apperror.KindConflict, Message: fmt.Sprintf("%s %q already exists", resource, id), Err: err}
	}
	return err
}

func pageQuery(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

func requireID(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return apperror.Validation(field, "is required")
	}
	return nil
}

// transitionFunc mutates l in place and may ask for a document number to be
// drawn in the same write.
type transitionFunc func(ctx context.Context, l *model.Letter) (workflow.Outcome, *repository.NumberingRequest, error)

// letters is the load/transition/store/publish cycle shared by the services.
type letters struct {
	Deps
}

func (s *letters) load(ctx context.Context, id string) (*model.Letter, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	l, err := s.Letters.FindByID(ctx, id)
	if err != nil {
		return nil, translate("letter", id, err)
	}
	return l, nil
}

// mutate runs fn against the stored letter and persists the result with a
// compare-and-set on the lock version that was read. Nothing is published
// unless the write committed.
func (s *letters) mutate(ctx context.Context, op, id, actor string, fn transitionFunc) (l *model.Letter, err error) {
	ctx, span := tracer.Start(ctx, "letter."+op, trace.WithAttributes(
		attribute.String("letter.id", id),
		attribute.String("actor", actor),
	))
	defer func() {
		s.Metrics.observe(op, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	cur, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	hadNumber := cur.Number != nil
	out, req, err := fn(ctx, cur)
	if err != nil {
		return nil, err
	}
	cur.UpdatedAt = s.Now()

	stored, err := s.Letters.Update(ctx, cur, req)
	if err != nil {
		return nil, translate("letter", id, err)
	}
	if !hadNumber && stored.Number != nil {
		out.Audit = append(out.Audit, workflow.AuditRecord{
			LetterID: stored.ID, Actor: actor, Action: ActionNumbered, Detail: *stored.Number,
		})
	}
	span.SetAttributes(attribute.String("letter.status", string(stored.Status)))
	s.publish(ctx, out)
	return stored, nil
}

// publish hands a committed outcome to the dispatcher. A failure here is
// logged and never undoes the transition.
func (s *letters) publish(ctx context.Context, out workflow.Outcome) {
	if s.Publisher == nil || (len(out.Notices) == 0 && len(out.Audit) == 0) {
		return
	}
	if err := s.Publisher.Publish(ctx, out); err != nil {
		s.Logger.Warn().Err(err).Str("transition", out.Transition).Msg("publish outcome failed")
	}
}

// checkUsers verifies that every id names a known user, when a user
// repository is configured.
func (s *letters) checkUsers(ctx context.Context, field string, ids ...string) error {
	if s.Users == nil {
		return nil
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, err := s.Users.FindByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.Validation(field, "user %q does not exist", id)
			}
			return fmt.Errorf("find user: %w", err)
		}
	}
	return nil
}
