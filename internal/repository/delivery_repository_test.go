package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DeliveryRepositoryTestSuite is the test suite for DeliveryRepository
type DeliveryRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo DeliveryRepository
}

// SetupSuite runs once before all tests
func (s *DeliveryRepositoryTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	// Every pooled connection to :memory: would be a separate database
	sqlDB, err := db.DB()
	require.NoError(s.T(), err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(s.T(), db.AutoMigrate(&models.Delivery{}))

	s.db = db
	s.repo = NewDeliveryRepository(db)
}

// TearDownSuite runs once after all tests
func (s *DeliveryRepositoryTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test - clean up data
func (s *DeliveryRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM deliveries")
}

func TestDeliveryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(DeliveryRepositoryTestSuite))
}

func (s *DeliveryRepositoryTestSuite) seed(status string, createdAt time.Time) *models.Delivery {
	d := &models.Delivery{Status: status, Provider: "resend", Subject: "Hi", CreatedAt: createdAt}
	require.NoError(s.T(), s.repo.Create(context.Background(), d))
	return d
}

// ==================== Create Tests ====================

func (s *DeliveryRepositoryTestSuite) TestCreate_Success() {
	delivery := &models.Delivery{
		Status:      models.DeliveryStatusSent,
		Provider:    "resend",
		ProviderID:  "re_123",
		SenderName:  "Jane",
		SenderEmail: "jane@example.com",
		Subject:     "Hiring",
		RemoteIP:    "203.0.113.7",
	}

	err := s.repo.Create(context.Background(), delivery)

	assert.NoError(s.T(), err)
	assert.NotZero(s.T(), delivery.ID)
	assert.NotZero(s.T(), delivery.CreatedAt)
}

func (s *DeliveryRepositoryTestSuite) TestCreate_UnknownStatus() {
	err := s.repo.Create(context.Background(), &models.Delivery{Status: "lost"})

	assert.ErrorIs(s.T(), err, ErrInvalidInput)
}

// ==================== GetByID Tests ====================

func (s *DeliveryRepositoryTestSuite) TestGetByID_Found() {
	created := s.seed(models.DeliveryStatusFailed, time.Now())

	found, err := s.repo.GetByID(context.Background(), created.ID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.DeliveryStatusFailed, found.Status)
}

func (s *DeliveryRepositoryTestSuite) TestGetByID_NotFound() {
	_, err := s.repo.GetByID(context.Background(), 9999)

	assert.ErrorIs(s.T(), err, ErrNotFound)
}

// ==================== List Tests ====================

func (s *DeliveryRepositoryTestSuite) TestList_NewestFirstWithTotal() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.seed(models.DeliveryStatusSent, base)
	s.seed(models.DeliveryStatusTrapped, base.Add(time.Minute))
	newest := s.seed(models.DeliveryStatusSent, base.Add(2*time.Minute))

	deliveries, total, err := s.repo.List(context.Background(), DeliveryFilter{Limit: 2})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(3), total)
	require.Len(s.T(), deliveries, 2)
	assert.Equal(s.T(), newest.ID, deliveries[0].ID)
}

func (s *DeliveryRepositoryTestSuite) TestList_FilterByStatusAndOffset() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.seed(models.DeliveryStatusSent, base)
	s.seed(models.DeliveryStatusSent, base.Add(time.Minute))
	s.seed(models.DeliveryStatusFailed, base.Add(2*time.Minute))

	deliveries, total, err := s.repo.List(context.Background(), DeliveryFilter{
		Status: models.DeliveryStatusSent,
		Limit:  10,
		Offset: 1,
	})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), total)
	require.Len(s.T(), deliveries, 1)
	assert.Equal(s.T(), models.DeliveryStatusSent, deliveries[0].Status)
}

func (s *DeliveryRepositoryTestSuite) TestList_UnknownStatus() {
	_, _, err := s.repo.List(context.Background(), DeliveryFilter{Status: "lost", Limit: 10})

	assert.ErrorIs(s.T(), err, ErrInvalidInput)
}

// ==================== CountByStatus Tests ====================

func (s *DeliveryRepositoryTestSuite) TestCountByStatus() {
	now := time.Now()
	s.seed(models.DeliveryStatusSent, now)
	s.seed(models.DeliveryStatusSent, now)
	s.seed(models.DeliveryStatusRejected, now)

	counts, err := s.repo.CountByStatus(context.Background())

	require.NoError(s.T(), err)
	assert.Equal(s.T(), map[string]int64{
		models.DeliveryStatusSent:     2,
		models.DeliveryStatusRejected: 1,
	}, counts)
}
