package mocks

import (
	"context"

	"suratapi/internal/model"
	"suratapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockLetterService struct {
	mock.Mock
}

func (m *MockLetterService) Create(ctx context.Context, in service.CreateLetterInput, actor string) (*model.Letter, error) {
	args := m.Called(ctx, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Letter), args.Error(1)
}

func (m *MockLetterService) Get(ctx context.Context, id string) (*model.Letter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Letter), args.Error(1)
}

func (m *MockLetterService) List(ctx context.Context, q service.LetterQuery) (*service.ListResult[model.Letter], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Letter]), args.Error(1)
}

func (m *MockLetterService) Delete(ctx context.Context, id, actor string) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockLetterService) AddAttachment(ctx context.Context, id string, up service.AttachmentUpload, actor string) (*model.Attachment, error) {
	args := m.Called(ctx, id, up, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockLetterService) AttachmentURL(ctx context.Context, id, attachmentID string) (string, error) {
	args := m.Called(ctx, id, attachmentID)
	return args.String(0), args.Error(1)
}

func (m *MockLetterService) AuditTrail(ctx context.Context, id string) ([]model.AuditEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEntry), args.Error(1)
}
