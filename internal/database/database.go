// Package database opens the optional delivery ledger database.
package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-contact-relay/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connection pool configuration. The ledger writes one row per
// submission, so the pool stays small.
const (
	DefaultMaxIdleConns    = 2
	DefaultMaxOpenConns    = 10
	DefaultConnMaxLifetime = time.Hour
	DefaultConnMaxIdleTime = 10 * time.Minute
)

// sqlitePrefix selects the embedded SQLite driver, e.g. sqlite://ledger.db
const sqlitePrefix = "sqlite://"

// Options tune Connect
type Options struct {
	// Production rejects sslmode=disable for PostgreSQL URLs
	Production bool
	// LogLevel of the gorm logger (default: Warn)
	LogLevel logger.LogLevel
}

// Connect opens the ledger database. URLs starting with sqlite:// use
// SQLite, anything else is handed to the PostgreSQL driver.
func Connect(databaseURL string, opts Options) (*gorm.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	logLevel := opts.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var dialector gorm.Dialector
	if path, ok := strings.CutPrefix(databaseURL, sqlitePrefix); ok {
		dialector = sqlite.Open(path)
	} else {
		if opts.Production {
			if err := validateSSLMode(databaseURL); err != nil {
				return nil, err
			}
		}
		dialector = postgres.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	slog.Info("connected to ledger database", slog.String("driver", dialector.Name()))
	return db, nil
}

// validateSSLMode ensures SSL is enabled in production
func validateSSLMode(databaseURL string) error {
	if strings.Contains(databaseURL, "sslmode=disable") {
		return fmt.Errorf("SSL mode cannot be disabled in production")
	}
	return nil
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(DefaultMaxIdleConns)
	sqlDB.SetMaxOpenConns(DefaultMaxOpenConns)
	sqlDB.SetConnMaxLifetime(DefaultConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(DefaultConnMaxIdleTime)

	return nil
}

// Migrate creates or updates the ledger schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Delivery{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("ledger migrations completed")
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
