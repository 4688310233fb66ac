package trading

import (
	"context"
	"testing"
	"time"

	"paper-trading-go/internal/models"
	"paper-trading-go/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReportsTest(t *testing.T) (*Reports, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Holding{}, &models.PricePoint{}))
	return NewReports(zap.NewNop(), db, pricing.NewStore(db)), db
}

func TestSectorAllocation(t *testing.T) {
	reports, db := setupReportsTest(t)
	require.NoError(t, db.Create(&models.Holding{
		AccountID: "primary", Symbol: "AAPL", Sector: "Technology",
		Quantity: 10, AverageCost: decimal.NewFromInt(100),
	}).Error)
	require.NoError(t, db.Create(&models.Holding{
		AccountID: "primary", Symbol: "MSFT", Sector: "Technology",
		Quantity: 2, AverageCost: decimal.NewFromInt(300),
	}).Error)
	require.NoError(t, db.Create(&models.Holding{
		AccountID: "primary", Symbol: "ONGC", Sector: "Energy",
		Quantity: 5, AverageCost: decimal.NewFromInt(150),
	}).Error)

	slices, err := reports.SectorAllocation(context.Background(), "primary")
	require.NoError(t, err)
	require.Len(t, slices, 2)

	assert.Equal(t, "Energy", slices[0].Sector)
	assert.True(t, slices[0].Value.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, "Technology", slices[1].Sector)
	assert.True(t, slices[1].Value.Equal(decimal.NewFromInt(1600)), "10x100 + 2x300")
}

func TestPortfolioValue_MarksToLatestClose(t *testing.T) {
	reports, db := setupReportsTest(t)
	require.NoError(t, db.Create(&models.Holding{
		AccountID: "primary", Symbol: "AAPL", Sector: "Technology",
		Quantity: 10, AverageCost: decimal.NewFromInt(100),
	}).Error)
	require.NoError(t, db.Create(&models.PricePoint{
		Symbol: "AAPL", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		ClosingPrice: decimal.NewFromInt(110),
	}).Error)
	require.NoError(t, db.Create(&models.PricePoint{
		Symbol: "AAPL", Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		ClosingPrice: decimal.NewFromInt(120),
	}).Error)

	valuation, err := reports.PortfolioValue(context.Background(), "primary")
	require.NoError(t, err)
	require.Len(t, valuation.Positions, 1)

	assert.True(t, valuation.Positions[0].CurrentPrice.Equal(decimal.NewFromInt(120)))
	assert.True(t, valuation.Positions[0].MarketValue.Equal(decimal.NewFromInt(1200)))
	assert.True(t, valuation.TotalValue.Equal(decimal.NewFromInt(1200)))
}

func TestPortfolioValue_FallsBackToCostBasis(t *testing.T) {
	reports, db := setupReportsTest(t)
	require.NoError(t, db.Create(&models.Holding{
		AccountID: "primary", Symbol: "UNPRICED", Sector: "Technology",
		Quantity: 4, AverageCost: decimal.NewFromInt(25),
	}).Error)

	valuation, err := reports.PortfolioValue(context.Background(), "primary")
	require.NoError(t, err)
	require.Len(t, valuation.Positions, 1)
	assert.True(t, valuation.TotalValue.Equal(decimal.NewFromInt(100)))
}
