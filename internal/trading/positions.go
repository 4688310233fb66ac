package trading

import (
	"context"
	"errors"
	"fmt"

	"paper-trading-go/internal/models"

	"gorm.io/gorm"
)

// PositionStore reads and mutates holdings. A holding with quantity zero is
// deleted, never saved; Save rejects writes that would break that or the
// non-negativity invariants. Per-symbol serialization is the caller's job.
type PositionStore struct{}

// NewPositionStore creates a position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{}
}

// Get returns the holding for (account, symbol), or ErrNotFound.
func (s *PositionStore) Get(ctx context.Context, db *gorm.DB, accountID, symbol string) (*models.Holding, error) {
	var holding models.Holding
	err := db.WithContext(ctx).
		First(&holding, "account_id = ? AND symbol = ?", accountID, symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no position in %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load holding %s: %w", symbol, ErrInternal)
	}
	return &holding, nil
}

// List returns all holdings for an account, ordered by symbol.
func (s *PositionStore) List(ctx context.Context, db *gorm.DB, accountID string) ([]models.Holding, error) {
	var holdings []models.Holding
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("symbol ASC").
		Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", ErrInternal)
	}
	return holdings, nil
}

// Save inserts or updates a holding.
func (s *PositionStore) Save(ctx context.Context, db *gorm.DB, holding *models.Holding) error {
	if holding.Quantity <= 0 {
		return fmt.Errorf("holding quantity must be positive: %w", ErrFailedPrecondition)
	}
	if holding.AverageCost.IsNegative() {
		return fmt.Errorf("average cost must not be negative: %w", ErrFailedPrecondition)
	}
	if err := db.WithContext(ctx).Save(holding).Error; err != nil {
		return fmt.Errorf("failed to save holding %s: %w", holding.Symbol, ErrInternal)
	}
	return nil
}

// Delete removes a fully liquidated holding.
func (s *PositionStore) Delete(ctx context.Context, db *gorm.DB, holding *models.Holding) error {
	if err := db.WithContext(ctx).Unscoped().Delete(holding).Error; err != nil {
		return fmt.Errorf("failed to delete holding %s: %w", holding.Symbol, ErrInternal)
	}
	return nil
}
