package mocks

import (
	"context"

	"suratapi/internal/model"
	"suratapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockApprovalService struct {
	mock.Mock
}

func letterResult(args mock.Arguments) (*model.Letter, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Letter), args.Error(1)
}

func (m *MockApprovalService) ConfigureChain(ctx context.Context, id string, approvers []string, actor string) (*model.Letter, error) {
	return letterResult(m.Called(ctx, id, approvers, actor))
}

func (m *MockApprovalService) Submit(ctx context.Context, id, actor string) (*model.Letter, error) {
	return letterResult(m.Called(ctx, id, actor))
}

func (m *MockApprovalService) Decide(ctx context.Context, id, stepID string, d model.Decision, notes, actor string) (*model.Letter, error) {
	return letterResult(m.Called(ctx, id, stepID, d, notes, actor))
}

func (m *MockApprovalService) Sign(ctx context.Context, id, signatureRef, actor string) (*model.Letter, error) {
	return letterResult(m.Called(ctx, id, signatureRef, actor))
}

func (m *MockApprovalService) Resubmit(ctx context.Context, id string, in service.ResubmitInput, actor string) (*model.Letter, error) {
	return letterResult(m.Called(ctx, id, in, actor))
}

type MockDispositionService struct {
	mock.Mock
}

func (m *MockDispositionService) Add(ctx context.Context, letterID string, in service.DispositionInput, actor string) (*model.Disposition, *model.Letter, error) {
	args := m.Called(ctx, letterID, in, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Disposition), args.Get(1).(*model.Letter), args.Error(2)
}

func (m *MockDispositionService) UpdateStatus(ctx context.Context, letterID, dispositionID string, status model.DispositionStatus, actor string) (*model.Letter, error) {
	return letterResult(m.Called(ctx, letterID, dispositionID, status, actor))
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*service.ListResult[model.Notification], error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Notification]), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockNumberService struct {
	mock.Mock
}

func (m *MockNumberService) Preview(ctx context.Context, in service.PreviewInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

// MockCatalog mocks service.Catalog for any reference type.
type MockCatalog[T any] struct {
	mock.Mock
}

func (m *MockCatalog[T]) Create(ctx context.Context, item *T) (*T, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCatalog[T]) Update(ctx context.Context, id string, item *T) (*T, error) {
	args := m.Called(ctx, id, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCatalog[T]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalog[T]) Get(ctx context.Context, id string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCatalog[T]) List(ctx context.Context, limit, offset int) (*service.ListResult[T], error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[T]), args.Error(1)
}
