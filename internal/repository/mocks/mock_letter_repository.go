package mocks

import (
	"context"

	"suratapi/internal/model"
	"suratapi/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockLetterRepository struct {
	mock.Mock
}

func (m *MockLetterRepository) Create(ctx context.Context, l *model.Letter, numbering *repository.NumberingRequest) (*model.Letter, error) {
	args := m.Called(ctx, l, numbering)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Letter), args.Error(1)
}

func (m *MockLetterRepository) FindByID(ctx context.Context, id string) (*model.Letter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Letter), args.Error(1)
}

func (m *MockLetterRepository) List(ctx context.Context, f repository.LetterFilter, pq repository.PageQuery) (*repository.PageResult[model.Letter], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Letter]), args.Error(1)
}

func (m *MockLetterRepository) Update(ctx context.Context, l *model.Letter, numbering *repository.NumberingRequest) (*model.Letter, error) {
	args := m.Called(ctx, l, numbering)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Letter), args.Error(1)
}

func (m *MockLetterRepository) Delete(ctx context.Context, id string, lockVersion int64) error {
	args := m.Called(ctx, id, lockVersion)
	return args.Error(0)
}
