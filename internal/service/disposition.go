package service

import (
	"context"

	"suratapi/internal/model"
	"suratapi/internal/repository"
	"suratapi/internal/workflow"
)

// DispositionInput is a routing instruction for an incoming letter.
type DispositionInput struct {
	Target      string        `json:"target"`
	Instruction string        `json:"instruction"`
	Urgency     model.Urgency `json:"urgency"`
}

// DispositionService routes incoming letters to the people who act on them.
type DispositionService interface {
	// Add creates a disposition and returns it with the updated letter.
	Add(ctx context.Context, letterID string, in DispositionInput, actor string) (*model.Disposition, *model.Letter, error)
	UpdateStatus(ctx context.Context, letterID, dispositionID string, status model.DispositionStatus, actor string) (*model.Letter, error)
}

type dispositionService struct {
	letters
	router *workflow.DispositionRouter
}

// NewDispositionService constructs a new DispositionService.
func NewDispositionService(d Deps) DispositionService {
	d = d.withDefaults()
	return &dispositionService{letters: letters{d}, router: workflow.NewDispositionRouter(d.workflowOptions()...)}
}

func (s *dispositionService) Add(ctx context.Context, letterID string, in DispositionInput, actor string) (*model.Disposition, *model.Letter, error) {
	if err := s.checkUsers(ctx, "target", in.Target); err != nil {
		return nil, nil, err
	}
	var created model.Disposition
	l, err := s.mutate(ctx, "dispose", letterID, actor, func(_ context.Context, l *model.Letter) (workflow.Outcome, *repository.NumberingRequest, error) {
		d, out, err := s.router.Add(l, actor, in.Target, in.Instruction, in.Urgency)
		created = d
		return out, nil, err
	})
	if err != nil {
		return nil, nil, err
	}
	return &created, l, nil
}

func (s *dispositionService) UpdateStatus(ctx context.Context, letterID, dispositionID string, status model.DispositionStatus, actor string) (*model.Letter, error) {
	return s.mutate(ctx, "disposition_status", letterID, actor, func(_ context.Context, l *model.Letter) (workflow.Outcome, *repository.NumberingRequest, error) {
		out, err := s.router.UpdateStatus(l, dispositionID, status, actor)
		return out, nil, err
	})
}
