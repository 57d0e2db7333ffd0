package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/welldanyogia/webrana-contact-relay/internal/models"
	"gorm.io/gorm"
)

// DeliveryFilter narrows a ledger listing. Empty Status lists everything.
type DeliveryFilter struct {
	Status string
	Limit  int
	Offset int
}

// DeliveryRepository defines the interface for delivery ledger access
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *models.Delivery) error
	GetByID(ctx context.Context, id uint) (*models.Delivery, error)
	List(ctx context.Context, filter DeliveryFilter) ([]models.Delivery, int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type deliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository creates a new DeliveryRepository instance
func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

var validStatuses = map[string]bool{
	models.DeliveryStatusSent:     true,
	models.DeliveryStatusFailed:   true,
	models.DeliveryStatusTrapped:  true,
	models.DeliveryStatusRejected: true,
}

// Create records a delivery outcome
func (r *deliveryRepository) Create(ctx context.Context, delivery *models.Delivery) error {
	if !validStatuses[delivery.Status] {
		return fmt.Errorf("unknown delivery status %q: %w", delivery.Status, ErrInvalidInput)
	}
	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	return nil
}

// GetByID retrieves a delivery by its ID
func (r *deliveryRepository) GetByID(ctx context.Context, id uint) (*models.Delivery, error) {
	var delivery models.Delivery
	result := r.db.WithContext(ctx).First(&delivery, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get delivery by ID: %w", result.Error)
	}
	return &delivery, nil
}

// List returns deliveries newest first together with the total count
// matching the filter. A zero Limit returns every row.
func (r *deliveryRepository) List(ctx context.Context, filter DeliveryFilter) ([]models.Delivery, int64, error) {
	if filter.Status != "" && !validStatuses[filter.Status] {
		return nil, 0, fmt.Errorf("unknown delivery status %q: %w", filter.Status, ErrInvalidInput)
	}

	query := r.db.WithContext(ctx).Model(&models.Delivery{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count deliveries: %w", err)
	}

	// gorm treats -1 as no limit
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}

	var deliveries []models.Delivery
	result := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&deliveries)
	if result.Error != nil {
		return nil, 0, fmt.Errorf("failed to list deliveries: %w", result.Error)
	}

	return deliveries, total, nil
}

// CountByStatus returns the number of deliveries per status
func (r *deliveryRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	result := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to count deliveries by status: %w", result.Error)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
