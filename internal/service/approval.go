package service

import (
	"context"
	"strings"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
	"suratapi/internal/repository"
	"suratapi/internal/workflow"
)

// ResubmitInput carries the revised content. Nil fields are left as they were;
// a non-nil Approvers replaces the chain.
type ResubmitInput struct {
	Subject            *string  `json:"subject,omitempty"`
	Body               *string  `json:"body,omitempty"`
	ClassificationCode *string  `json:"classification_code,omitempty"`
	Approvers          []string `json:"approvers,omitempty"`
}

// ApprovalService runs outgoing letters and memos through their approval chain.
type ApprovalService interface {
	ConfigureChain(ctx context.Context, id string, approvers []string, actor string) (*model.Letter, error)
	Submit(ctx context.Context, id, actor string) (*model.Letter, error)
	Decide(ctx context.Context, id, stepID string, d model.Decision, notes, actor string) (*model.Letter, error)
	// Sign sends an approved letter. A letter without a number is numbered in the same write.
	Sign(ctx context.Context, id, signatureRef, actor string) (*model.Letter, error)
	Resubmit(ctx context.Context, id string, in ResubmitInput, actor string) (*model.Letter, error)
}

type approvalService struct {
	letters
	wf *workflow.ApprovalWorkflow
}

// NewApprovalService constructs a new ApprovalService.
func NewApprovalService(d Deps) ApprovalService {
	d = d.withDefaults()
	return &approvalService{letters: letters{d}, wf: workflow.NewApprovalWorkflow(d.workflowOptions()...)}
}

func (s *approvalService) ConfigureChain(ctx context.Context, id string, approvers []string, actor string) (*model.Letter, error) {
	if err := s.checkUsers(ctx, "approvers", approvers...); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "configure", id, actor, func(_ context.Context, l *model.Letter) (workflow.Outcome, *repository.NumberingRequest, error) {
		out, err := s.wf.ConfigureChain(l, approvers, actor)
		return out, nil, err
	})
}

func (s *approvalService) Submit(ctx context.Context, id, actor string) (*model.Letter, error) {
	return s.mutate(ctx, "submit", id, actor, func(_ context.Context, l *model.Letter) (workflow.Outcome, *repository.NumberingRequest, error) {
		out, err := s.wf.Submit(l, actor)
		return out, nil, err
	})
}

func (s *approvalService) Decide(ctx context.Context, id, stepID string, d model.Decision, notes, actor string) (*model.Letter, error) {
	if err := requireID("step_id", stepID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "decide", id, actor, func(_ context.Context, l *model.Letter) (workflow.Outcome, *repository.NumberingRequest, error) {
		out, err := s.wf.Decide(l, stepID, d, strings.TrimSpace(notes), actor)
		return out, nil, err
	})
}

func (s *approvalService) Sign(ctx context.Context, id, signatureRef, actor string) (*model.Letter, error) {
	return s.mutate(ctx, "sign", id, actor, func(ctx context.Context, l *model.Letter) (workflow.Outcome, *repository.NumberingRequest, error) {
		out, err := s.wf.Sign(l, signatureRef, actor)
		if err != nil || l.Number != nil {
			return out, nil, err
		}
		req, err := s.Resolver.Request(ctx, l, l.Signature.SignedAt)
		if err != nil {
			return workflow.Outcome{}, nil, err
		}
		return out, req, nil
	})
}

func (s *approvalService) Resubmit(ctx context.Context, id string, in ResubmitInput, actor string) (*model.Letter, error) {
	edits := workflow.Edits{Subject: in.Subject, Body: in.Body, Approvers: in.Approvers}
	if in.ClassificationCode != nil {
		class, err := s.Resolver.Classification(ctx, *in.ClassificationCode)
		if err != nil {
			return nil, err
		}
		ref := class.Ref()
		edits.Classification = &ref
	}
	if in.Approvers != nil {
		if len(in.Approvers) == 0 {
			return nil, apperror.Validation("approvers", "must not be empty when given")
		}
		if err := s.checkUsers(ctx, "approvers", in.Approvers...); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, "resubmit", id, actor, func(_ context.Context, l *model.Letter) (workflow.Outcome, *repository.NumberingRequest, error) {
		out, err := s.wf.Resubmit(l, edits, actor)
		return out, nil, err
	})
}
