package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
	notifyMocks "suratapi/internal/notify/mocks"
	"suratapi/internal/repository"
	repoMocks "suratapi/internal/repository/mocks"
)

func TestApprovalService_FullChainThenSign(t *testing.T) {
	f := newFixture(t)
	svc := NewApprovalService(f.deps)
	ctx := context.Background()
	l := f.outgoing(t)

	l, err := svc.Submit(ctx, l.ID, "creator")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingApproval, l.Status)
	assert.Equal(t, "M", f.pub.last().Notices[0].UserID)

	l, err = svc.Decide(ctx, l.ID, l.ApprovalChain[0].ID, model.DecisionApprove, "", "M")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingApproval, l.Status)
	assert.Equal(t, "P", f.pub.last().Notices[0].UserID)

	l, err = svc.Decide(ctx, l.ID, l.ApprovalChain[1].ID, model.DecisionApprove, "ok", "P")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, l.Status)
	assert.Equal(t, "creator", f.pub.last().Notices[0].UserID)
	assert.Nil(t, l.Number)

	l, err = svc.Sign(ctx, l.ID, "ttd-001", "P")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, l.Status)
	require.NotNil(t, l.Signature)
	assert.Equal(t, "ttd-001", l.Signature.Ref)
	require.NotNil(t, l.Number, "numbered when sent")
	assert.Equal(t, "WIM.27.PR.01.01-1/2026", *l.Number)

	sign := f.pub.last()
	assert.Equal(t, "sign", sign.Transition)
	actions := make([]string, len(sign.Audit))
	for i, a := range sign.Audit {
		actions[i] = a.Action
	}
	assert.Contains(t, actions, ActionNumbered)

	assert.Equal(t, []string{"create", "submit", "approve", "approve_final", "sign"}, f.pub.transitions())
	assert.Equal(t, fixedNow, l.UpdatedAt)
}

func TestApprovalService_RejectThenResubmit(t *testing.T) {
	f := newFixture(t)
	svc := NewApprovalService(f.deps)
	ctx := context.Background()
	l := f.outgoing(t)
	l, err := svc.Submit(ctx, l.ID, "creator")
	require.NoError(t, err)
	l, err = svc.Decide(ctx, l.ID, l.ApprovalChain[0].ID, model.DecisionApprove, "", "M")
	require.NoError(t, err)

	l, err = svc.Decide(ctx, l.ID, l.ApprovalChain[1].ID, model.DecisionReject, "perbaiki lampiran", "P")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRevision, l.Status)
	assert.Equal(t, model.StepRejected, l.ApprovalChain[1].Status)
	assert.Equal(t, "perbaiki lampiran", l.ApprovalChain[1].Notes)

	subject := "Undangan rapat (revisi)"
	code := "UM.01"
	l, err = svc.Resubmit(ctx, l.ID, ResubmitInput{Subject: &subject, ClassificationCode: &code}, "creator")
	require.NoError(t, err)

	assert.Equal(t, model.StatusPendingApproval, l.Status)
	assert.Equal(t, 2, l.Version)
	require.Len(t, l.History, 1)
	assert.Equal(t, "Undangan rapat", l.History[0].Subject)
	assert.Equal(t, subject, l.Subject)
	assert.Equal(t, model.ClassificationRef{MainIssueCode: "UM", Code: "UM.01"}, l.Classification)
	for _, s := range l.ApprovalChain {
		assert.Equal(t, model.StepPending, s.Status)
	}
	assert.Equal(t, "M", f.pub.last().Notices[0].UserID)
}

func TestApprovalService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong approver", func(t *testing.T) {
		f := newFixture(t)
		svc := NewApprovalService(f.deps)
		l := f.outgoing(t)
		l, err := svc.Submit(ctx, l.ID, "creator")
		require.NoError(t, err)
		published := len(f.pub.transitions())

		_, err = svc.Decide(ctx, l.ID, l.ApprovalChain[0].ID, model.DecisionApprove, "", "P")

		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.Len(t, f.pub.transitions(), published, "failed transitions publish nothing")
	})

	t.Run("sign before approval", func(t *testing.T) {
		f := newFixture(t)
		l := f.outgoing(t)
		_, err := NewApprovalService(f.deps).Sign(ctx, l.ID, "ttd", "creator")
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	})

	t.Run("unknown step", func(t *testing.T) {
		f := newFixture(t)
		l := f.outgoing(t)
		_, err := NewApprovalService(f.deps).Decide(ctx, l.ID, "nope", model.DecisionApprove, "", "")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("unknown letter", func(t *testing.T) {
		f := newFixture(t)
		_, err := NewApprovalService(f.deps).Submit(ctx, "nope", "creator")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("configure with unknown user", func(t *testing.T) {
		f := newFixture(t)
		l := f.outgoing(t)
		_, err := NewApprovalService(f.deps).ConfigureChain(ctx, l.ID, []string{"ghost"}, "creator")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("resubmit with empty approvers", func(t *testing.T) {
		f := newFixture(t)
		l := f.outgoing(t)
		_, err := NewApprovalService(f.deps).Resubmit(ctx, l.ID, ResubmitInput{Approvers: []string{}}, "creator")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("incoming letter has no chain", func(t *testing.T) {
		f := newFixture(t)
		l := f.incoming(t)
		_, err := NewApprovalService(f.deps).Submit(ctx, l.ID, "clerk")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestApprovalService_ConfigureChain(t *testing.T) {
	f := newFixture(t)
	svc := NewApprovalService(f.deps)
	ctx := context.Background()
	l := f.outgoing(t)

	l, err := svc.ConfigureChain(ctx, l.ID, []string{"P", "M", "head"}, "creator")
	require.NoError(t, err)

	require.Len(t, l.ApprovalChain, 3)
	for i, s := range l.ApprovalChain {
		assert.Equal(t, i+1, s.Order)
	}
	assert.Equal(t, "P", l.ApprovalChain[0].Approver)
	assert.Equal(t, int64(2), l.LockVersion)
}

func TestApprovalService_ConcurrentDecideHasOneWinner(t *testing.T) {
	f := newFixture(t)
	svc := NewApprovalService(f.deps)
	ctx := context.Background()
	l := f.outgoing(t)
	l, err := svc.Submit(ctx, l.ID, "creator")
	require.NoError(t, err)
	step := l.ApprovalChain[0].ID

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Decide(ctx, l.ID, step, model.DecisionApprove, "", "M")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		kind := apperror.KindOf(err)
		assert.Contains(t, []apperror.Kind{apperror.KindConflict, apperror.KindInvalidTransition}, kind)
	}
	assert.Equal(t, 1, wins)

	got, err := NewLetterService(f.deps).Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StepApproved, got.ApprovalChain[0].Status)
	assert.Equal(t, model.StepPending, got.ApprovalChain[1].Status)
}

func TestApprovalService_StaleWriteIsConflictAndNotPublished(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockLetterRepository)
	mPub := new(notifyMocks.MockPublisher)

	pending := &model.Letter{
		ID: "L1", Kind: model.KindOutgoing, Status: model.StatusPendingApproval, Version: 1, CreatedBy: "creator", LockVersion: 4,
		ApprovalChain: []model.ApprovalStep{{ID: "s1", Approver: "M", Order: 1, Status: model.StepPending}},
	}
	mRepo.On("FindByID", ctx, "L1").Return(pending, nil)
	mRepo.On("Update", ctx, mock.MatchedBy(func(l *model.Letter) bool {
		return l.LockVersion == 4 && l.Status == model.StatusApproved
	}), (*repository.NumberingRequest)(nil)).Return(nil, repository.ErrStaleVersion)

	svc := NewApprovalService(Deps{Letters: mRepo, Publisher: mPub, Logger: zerolog.Nop()})
	_, err := svc.Decide(ctx, "L1", "s1", model.DecisionApprove, "", "M")

	assert.ErrorIs(t, err, apperror.ErrConflict)
	mRepo.AssertExpectations(t)
	mPub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
