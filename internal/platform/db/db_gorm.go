// Package db opens the gorm connection used by every feature repository.
package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/feature/auth/adapters"
	"storefront/internal/feature/auth/domain/entity"
	cartadapters "storefront/internal/feature/cart/adapters"
	catalogadapters "storefront/internal/feature/catalog/adapters"
	orderadapters "storefront/internal/feature/order/adapters"
	"storefront/internal/platform/config"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN returns the Postgres DSN for cfg. An explicit URL wins over the discrete fields.
func BuildDSN(cfg config.DBConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		zap.S().Warnw("db connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// Open connects to the configured driver and runs migrations when enabled.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var open Opener
	dsn := BuildDSN(cfg)
	switch cfg.Driver {
	case "sqlite":
		dsn = cfg.SQLitePath
		open = func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), gormConfig())
		}
	default:
		open = func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormConfig())
		}
	}

	db, err := ConnectWithRetry(dsn, cfg.ConnectTimeout, open)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}

// Migrate creates or updates every table the storefront owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&adapters.SessionRow{},
		&catalogadapters.ProductModel{},
		&cartadapters.CartItemModel{},
		&orderadapters.OrderModel{},
		&orderadapters.OrderItemModel{},
	)
}
