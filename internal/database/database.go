package database

import (
	"fmt"

	"paper-trading-go/internal/config"
	"paper-trading-go/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate the schema
	if err := AutoMigrate(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates missing tables and ensures the trading account row
// exists. Existing holdings and orders are kept across restarts so that
// orders stuck in Pending after a crash remain visible.
func AutoMigrate(db *gorm.DB, cfg *config.Config) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.Holding{},
		&models.Order{},
		&models.PricePoint{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// Seed the account with its starting balance on first run.
	account := models.Account{
		ID:      cfg.Trading.AccountID,
		Balance: decimal.NewFromFloat(cfg.Trading.StartingBalance),
	}
	if err := db.FirstOrCreate(&account, models.Account{ID: cfg.Trading.AccountID}).Error; err != nil {
		return fmt.Errorf("failed to seed account '%s': %w", cfg.Trading.AccountID, err)
	}

	return nil
}
