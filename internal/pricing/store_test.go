package pricing

import (
	"context"
	"testing"
	"time"

	"paper-trading-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func setupStoreTest(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.PricePoint{}))

	store := NewStore(db)
	require.NoError(t, store.SaveBatch(context.Background(), []models.PricePoint{
		{Symbol: "AAPL", Date: day(1), ClosingPrice: decimal.NewFromInt(100)},
		{Symbol: "AAPL", Date: day(3), ClosingPrice: decimal.NewFromInt(105)},
		{Symbol: "AAPL", Date: day(8), ClosingPrice: decimal.NewFromInt(110)},
		{Symbol: "MSFT", Date: day(3), ClosingPrice: decimal.NewFromInt(300)},
	}))
	return store
}

func TestPriceAsOf_UsesLatestOnOrBeforeDate(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	// Exact match.
	point, err := store.PriceAsOf(ctx, "AAPL", day(3))
	require.NoError(t, err)
	assert.True(t, point.ClosingPrice.Equal(decimal.NewFromInt(105)))

	// Weekend/holiday gap: falls back to the previous close.
	point, err = store.PriceAsOf(ctx, "AAPL", day(6))
	require.NoError(t, err)
	assert.True(t, point.ClosingPrice.Equal(decimal.NewFromInt(105)))

	// Later dates see the newest close.
	point, err = store.PriceAsOf(ctx, "AAPL", day(30))
	require.NoError(t, err)
	assert.True(t, point.ClosingPrice.Equal(decimal.NewFromInt(110)))
}

func TestPriceAsOf_NoDataBeforeDate(t *testing.T) {
	store := setupStoreTest(t)

	_, err := store.PriceAsOf(context.Background(), "AAPL", day(1).AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrNoPrice)

	_, err = store.PriceAsOf(context.Background(), "UNKNOWN", day(30))
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestSaveBatch_UpsertsOnSymbolAndDate(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	require.NoError(t, store.SaveBatch(ctx, []models.PricePoint{
		{Symbol: "AAPL", Date: day(8), ClosingPrice: decimal.NewFromInt(111)},
	}))

	point, err := store.PriceAsOf(ctx, "AAPL", day(8))
	require.NoError(t, err)
	assert.True(t, point.ClosingPrice.Equal(decimal.NewFromInt(111)), "re-import refreshes the close")

	var count int64
	require.NoError(t, store.db.Model(&models.PricePoint{}).Where("symbol = ?", "AAPL").Count(&count).Error)
	assert.Equal(t, int64(3), count, "upsert must not duplicate the day")
}

func TestLatestPrice(t *testing.T) {
	store := setupStoreTest(t)

	point, err := store.LatestPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, point.ClosingPrice.Equal(decimal.NewFromInt(110)))

	_, err = store.LatestPrice(context.Background(), "UNKNOWN")
	assert.ErrorIs(t, err, ErrNoPrice)
}
