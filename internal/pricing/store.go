package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paper-trading-go/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the database-backed price oracle.
type Store struct {
	db *gorm.DB
}

// ensure Store implements the interface
var _ Oracle = (*Store)(nil)

// NewStore creates a price store on top of an existing database connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// PriceAsOf returns the newest price point for symbol dated on or before asOf.
func (s *Store) PriceAsOf(ctx context.Context, symbol string, asOf time.Time) (*models.PricePoint, error) {
	var point models.PricePoint
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND date <= ?", symbol, asOf).
		Order("date DESC").
		First(&point).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("symbol %s as of %s: %w", symbol, asOf.Format("2006-01-02"), ErrNoPrice)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up price for %s: %w", symbol, err)
	}
	return &point, nil
}

// SaveBatch inserts or refreshes a batch of price points, keyed by
// (symbol, date). Used by the seeder and the remote feed importer.
func (s *Store) SaveBatch(ctx context.Context, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"closing_price", "volume", "updated_at"}),
		}).
		CreateInBatches(points, 200).Error
	if err != nil {
		return fmt.Errorf("failed to save price points: %w", err)
	}
	return nil
}

// LatestPrice returns the most recent price point for symbol regardless of
// date, or ErrNoPrice if the series is empty.
func (s *Store) LatestPrice(ctx context.Context, symbol string) (*models.PricePoint, error) {
	var point models.PricePoint
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date DESC").
		First(&point).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("symbol %s: %w", symbol, ErrNoPrice)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up latest price for %s: %w", symbol, err)
	}
	return &point, nil
}
