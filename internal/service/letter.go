package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
	"suratapi/internal/repository"
	"suratapi/internal/storage"
	"suratapi/internal/workflow"
)

// CreateLetterInput describes a new letter of any kind.
type CreateLetterInput struct {
	Kind               model.LetterKind `json:"kind"`
	Subject            string           `json:"subject"`
	Body               string           `json:"body"`
	ClassificationCode string           `json:"classification_code"`
	UnitID             string           `json:"unit_id"`

	// Incoming letters only: the sender, the sender's own number and when it arrived.
	Sender     string     `json:"sender,omitempty"`
	Number     *string    `json:"number,omitempty"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`

	// Outgoing letters and memos only.
	Approvers    []string `json:"approvers,omitempty"`
	AssignNumber bool     `json:"assign_number,omitempty"`
}

// LetterQuery filters and paginates List.
type LetterQuery struct {
	Kind      model.LetterKind
	UnitID    string
	Status    model.LetterStatus
	IssueCode string
	Year      int
	Limit     int
	Offset    int
}

// AttachmentUpload is a file to attach to a letter.
type AttachmentUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// LetterService defines the letter lifecycle use cases outside the approval chain.
type LetterService interface {
	// Create validates and stores a new letter, drawing its agenda number and,
	// when asked, its document number in the same write.
	Create(ctx context.Context, in CreateLetterInput, actor string) (*model.Letter, error)
	Get(ctx context.Context, id string) (*model.Letter, error)
	List(ctx context.Context, q LetterQuery) (*ListResult[model.Letter], error)
	// Delete removes a draft outgoing letter or memo, or an incoming letter
	// nobody has been dispositioned yet, together with its attachments.
	Delete(ctx context.Context, id, actor string) error

	// AddAttachment uploads the file and records it on the letter. The object is
	// removed again if the letter cannot be updated.
	AddAttachment(ctx context.Context, id string, up AttachmentUpload, actor string) (*model.Attachment, error)
	// AttachmentURL returns a presigned download URL.
	AttachmentURL(ctx context.Context, id, attachmentID string) (string, error)
	// AuditTrail lists a letter's audit entries. An id that has no entries and
	// no letter is NotFound.
	AuditTrail(ctx context.Context, id string) ([]model.AuditEntry, error)
}

type letterService struct {
	letters
	approval *workflow.ApprovalWorkflow
}

// NewLetterService constructs a new LetterService.
func NewLetterService(d Deps) LetterService {
	d = d.withDefaults()
	return &letterService{letters: letters{d}, approval: workflow.NewApprovalWorkflow(d.workflowOptions()...)}
}

func (s *letterService) Create(ctx context.Context, in CreateLetterInput, actor string) (l *model.Letter, err error) {
	ctx, span := tracer.Start(ctx, "letter.create")
	defer func() {
		s.Metrics.observe("create", err)
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	draft, out, err := s.build(ctx, in, actor)
	if err != nil {
		return nil, err
	}
	var req *repository.NumberingRequest
	if in.AssignNumber {
		if req, err = s.Resolver.Request(ctx, draft, draft.CreatedAt); err != nil {
			return nil, err
		}
	}

	stored, err := s.Letters.Create(ctx, draft, req)
	if err != nil {
		return nil, translate("letter", draft.ID, err)
	}

	created := workflow.Outcome{Transition: "create"}
	created.Audit = append(created.Audit, workflow.AuditRecord{
		LetterID: stored.ID, Actor: actor, Action: ActionCreated,
		Detail: fmt.Sprintf("%s, agenda %d", stored.Kind, stored.AgendaNumber),
	})
	if stored.Number != nil && stored.HasApprovalChain() {
		created.Audit = append(created.Audit, workflow.AuditRecord{
			LetterID: stored.ID, Actor: actor, Action: ActionNumbered, Detail: *stored.Number,
		})
	}
	created.Merge(out)
	s.publish(ctx, created)
	return stored, nil
}

// build validates in and returns the letter to insert together with the
// outcome of configuring its approval chain, if one was given.
func (s *letterService) build(ctx context.Context, in CreateLetterInput, actor string) (*model.Letter, workflow.Outcome, error) {
	var none workflow.Outcome
	if !in.Kind.Valid() {
		return nil, none, apperror.Validation("kind", "must be one of %q, %q or %q", model.KindIncoming, model.KindOutgoing, model.KindMemo)
	}
	if strings.TrimSpace(in.Subject) == "" {
		return nil, none, apperror.Validation("subject", "is required")
	}
	if err := requireID("actor", actor); err != nil {
		return nil, none, err
	}
	if _, _, err := s.Resolver.Unit(ctx, in.UnitID); err != nil {
		return nil, none, err
	}
	class, err := s.Resolver.Classification(ctx, in.ClassificationCode)
	if err != nil {
		return nil, none, err
	}

	now := s.Now()
	l := &model.Letter{
		ID:             s.NewID(),
		Kind:           in.Kind,
		Subject:        strings.TrimSpace(in.Subject),
		Body:           in.Body,
		Classification: class.Ref(),
		UnitID:         in.UnitID,
		CreatedBy:      actor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if l.HasDispositions() {
		if strings.TrimSpace(in.Sender) == "" {
			return nil, none, apperror.Validation("sender", "is required for incoming letters")
		}
		if in.AssignNumber || len(in.Approvers) > 0 {
			return nil, none, apperror.Validation("kind", "incoming letters are neither numbered nor approved here")
		}
		received := now
		if in.ReceivedAt != nil {
			received = in.ReceivedAt.UTC()
		}
		l.Sender = strings.TrimSpace(in.Sender)
		l.ReceivedAt = &received
		if in.Number != nil && strings.TrimSpace(*in.Number) != "" {
			n := strings.TrimSpace(*in.Number)
			l.Number = &n
		}
		return l, none, nil
	}

	if in.Number != nil {
		return nil, none, apperror.Validation("number", "is generated for %s letters", in.Kind)
	}
	l.Status = model.StatusDraft
	l.Version = 1
	if len(in.Approvers) == 0 {
		return l, none, nil
	}
	if err := s.checkUsers(ctx, "approvers", in.Approvers...); err != nil {
		return nil, none, err
	}
	out, err := s.approval.ConfigureChain(l, in.Approvers, actor)
	if err != nil {
		return nil, none, err
	}
	return l, out, nil
}

func (s *letterService) Get(ctx context.Context, id string) (*model.Letter, error) {
	return s.load(ctx, id)
}

func (s *letterService) List(ctx context.Context, q LetterQuery) (*ListResult[model.Letter], error) {
	if q.Kind != "" && !q.Kind.Valid() {
		return nil, apperror.Validation("kind", "unknown letter kind %q", q.Kind)
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperror.Validation("status", "unknown letter status %q", q.Status)
	}
	if q.Year < 0 {
		return nil, apperror.Validation("year", "must be positive")
	}
	res, err := s.Letters.List(ctx, repository.LetterFilter{
		Kind:      q.Kind,
		UnitID:    q.UnitID,
		Status:    q.Status,
		IssueCode: q.IssueCode,
		Year:      q.Year,
	}, pageQuery(q.Limit, q.Offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Letter]{Items: res.Items, Total: res.Total}, nil
}

func (s *letterService) Delete(ctx context.Context, id, actor string) (err error) {
	defer func() { s.Metrics.observe("delete", err) }()

	l, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case l.HasApprovalChain() && l.Status != model.StatusDraft:
		return apperror.InvalidTransition("only a Draft letter can be deleted, letter is %s", l.Status)
	case l.HasDispositions() && len(l.Dispositions) > 0:
		return apperror.InvalidTransition("letter has %d dispositions and cannot be deleted", len(l.Dispositions))
	}
	if err := s.Letters.Delete(ctx, id, l.LockVersion); err != nil {
		return translate("letter", id, err)
	}

	// The row is gone; a leftover object is only wasted space.
	for _, a := range l.Attachments {
		if err := s.Storage.Delete(ctx, a.StorageKey); err != nil {
			s.Logger.Warn().Err(err).Str("letter_id", id).Str("key", a.StorageKey).Msg("delete attachment object failed")
		}
	}
	s.publish(ctx, workflow.Outcome{
		Transition: "delete",
		Audit:      []workflow.AuditRecord{{LetterID: id, Actor: actor, Action: ActionDeleted, Detail: l.Subject}},
	})
	return nil
}

func (s *letterService) AddAttachment(ctx context.Context, id string, up AttachmentUpload, actor string) (*model.Attachment, error) {
	if up.Reader == nil {
		return nil, apperror.Validation("file", "is required")
	}
	if strings.TrimSpace(up.Filename) == "" {
		return nil, apperror.Validation("filename", "is required")
	}
	l, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == model.StatusSent {
		return nil, apperror.InvalidTransition("a sent letter cannot take new attachments")
	}

	attID := s.NewID()
	key := storage.AttachmentKey(l.ID, attID, up.Filename)
	info, err := s.Storage.Put(ctx, key, up.Reader, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: up.ContentType,
		Metadata:    map[string]string{"original-filename": up.Filename, "letter-id": l.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	att := model.Attachment{
		ID:          attID,
		Filename:    up.Filename,
		StorageKey:  info.Key,
		Size:        info.Size,
		ContentType: info.ContentType,
		UploadedBy:  actor,
		UploadedAt:  s.Now(),
	}
	l.Attachments = append(l.Attachments, att)
	l.UpdatedAt = att.UploadedAt
	if _, err := s.Letters.Update(ctx, l, nil); err != nil {
		// Rollback: delete the object from storage
		if delErr := s.Storage.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, translate("letter", id, err)
	}

	s.publish(ctx, workflow.Outcome{
		Transition: "attach",
		Audit:      []workflow.AuditRecord{{LetterID: l.ID, Actor: actor, Action: ActionAttachmentAdded, Detail: up.Filename}},
	})
	return &att, nil
}

func (s *letterService) AttachmentURL(ctx context.Context, id, attachmentID string) (string, error) {
	l, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	for _, a := range l.Attachments {
		if a.ID != attachmentID {
			continue
		}
		url, err := s.Storage.PresignGet(ctx, a.StorageKey, s.AttachmentURLExpiry)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return "", apperror.NotFound("attachment object", a.StorageKey)
			}
			return "", fmt.Errorf("presign: %w", err)
		}
		return url, nil
	}
	return "", apperror.NotFound("attachment", attachmentID)
}

func (s *letterService) AuditTrail(ctx context.Context, id string) ([]model.AuditEntry, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	entries, err := s.Audit.ListByLetter(ctx, id)
	if err != nil {
		return nil, err
	}
	// a deleted letter keeps its trail; only an id with neither is unknown
	if len(entries) == 0 {
		if _, err := s.load(ctx, id); err != nil {
			return nil, err
		}
	}
	return entries, nil
}
