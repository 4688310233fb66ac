package trading

import (
	"context"
	"errors"
	"fmt"

	"paper-trading-go/internal/models"
	"paper-trading-go/internal/pricing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reports answers read-only aggregation queries over the position ledger.
// It never mutates state.
type Reports struct {
	logger *zap.Logger
	db     *gorm.DB
	prices *pricing.Store
}

// NewReports creates the reporting facade.
func NewReports(logger *zap.Logger, db *gorm.DB, prices *pricing.Store) *Reports {
	return &Reports{logger: logger, db: db, prices: prices}
}

// SectorSlice is one sector's share of the invested portfolio, valued at
// cost basis.
type SectorSlice struct {
	Sector string          `json:"sector"`
	Value  decimal.Decimal `json:"value"`
}

// SectorAllocation sums quantity x average cost per sector.
func (r *Reports) SectorAllocation(ctx context.Context, accountID string) ([]SectorSlice, error) {
	var rows []struct {
		Sector string
		Value  decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Holding{}).
		Select("sector, SUM(quantity * average_cost) AS value").
		Where("account_id = ?", accountID).
		Group("sector").
		Order("sector ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sector allocation: %w", ErrInternal)
	}

	slices := make([]SectorSlice, 0, len(rows))
	for _, row := range rows {
		if row.Value.IsZero() {
			continue
		}
		slices = append(slices, SectorSlice{Sector: row.Sector, Value: row.Value})
	}
	return slices, nil
}

// PositionValue is one holding marked to its latest close.
type PositionValue struct {
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
}

// PortfolioValuation is the whole portfolio marked to market.
type PortfolioValuation struct {
	Positions  []PositionValue `json:"positions"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// PortfolioValue marks every holding to its latest close. Symbols whose
// price series is empty fall back to their cost basis.
func (r *Reports) PortfolioValue(ctx context.Context, accountID string) (*PortfolioValuation, error) {
	var holdings []models.Holding
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("symbol ASC").
		Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings for valuation: %w", ErrInternal)
	}

	valuation := &PortfolioValuation{Positions: make([]PositionValue, 0, len(holdings))}
	for _, h := range holdings {
		price := h.AverageCost
		point, err := r.prices.LatestPrice(ctx, h.Symbol)
		if err == nil {
			price = point.ClosingPrice
		} else if !errors.Is(err, pricing.ErrNoPrice) {
			return nil, fmt.Errorf("failed to price %s: %w", h.Symbol, ErrInternal)
		} else {
			r.logger.Warn("No price series for held symbol, valuing at cost",
				zap.String("symbol", h.Symbol))
		}

		marketValue := price.Mul(decimal.NewFromInt(h.Quantity))
		valuation.Positions = append(valuation.Positions, PositionValue{
			Symbol:       h.Symbol,
			Quantity:     h.Quantity,
			AverageCost:  h.AverageCost,
			CurrentPrice: price,
			MarketValue:  marketValue,
		})
		valuation.TotalValue = valuation.TotalValue.Add(marketValue)
	}

	return valuation, nil
}
