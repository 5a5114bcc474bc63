package mocks

import (
	"context"

	"docetl/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) Forward(ctx context.Context, p model.ForwardingPayload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
