package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
)

// MockProvider implements provider.Provider
type MockProvider struct {
	mock.Mock
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

// Send records the message and returns the configured id and error
func (m *MockProvider) Send(ctx context.Context, msg *models.NotificationMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}
