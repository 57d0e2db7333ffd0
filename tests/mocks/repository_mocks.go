package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
	"github.com/welldanyogia/webrana-contact-relay/internal/repository"
)

// MockDeliveryRepository implements repository.DeliveryRepository
type MockDeliveryRepository struct {
	mock.Mock
}

// Create records a delivery outcome
func (m *MockDeliveryRepository) Create(ctx context.Context, delivery *models.Delivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

// GetByID retrieves a delivery by its ID
func (m *MockDeliveryRepository) GetByID(ctx context.Context, id uint) (*models.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Delivery), args.Error(1)
}

// List returns deliveries matching the filter
func (m *MockDeliveryRepository) List(ctx context.Context, filter repository.DeliveryFilter) ([]models.Delivery, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Delivery), args.Get(1).(int64), args.Error(2)
}

// CountByStatus returns the number of deliveries per status
func (m *MockDeliveryRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}
