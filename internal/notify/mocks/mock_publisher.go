package mocks

import (
	"context"

	"suratapi/internal/workflow"

	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, out workflow.Outcome) error {
	args := m.Called(ctx, out)
	return args.Error(0)
}
