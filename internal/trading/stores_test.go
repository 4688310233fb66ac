package trading

import (
	"context"
	"testing"

	"paper-trading-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStoreTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.Holding{}, &models.Order{}))
	return db
}

func TestCashStore_DebitAndCredit(t *testing.T) {
	db := setupStoreTest(t)
	cash := NewCashStore()
	ctx := context.Background()
	require.NoError(t, db.Create(&models.Account{ID: "primary", Balance: decimal.NewFromInt(100)}).Error)

	assert.NoError(t, cash.Debit(ctx, db, "primary", decimal.NewFromInt(40)))
	assert.NoError(t, cash.Credit(ctx, db, "primary", decimal.NewFromInt(15)))

	account, err := cash.Get(ctx, db, "primary")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(75)))
}

func TestCashStore_DebitBelowZeroRejected(t *testing.T) {
	db := setupStoreTest(t)
	cash := NewCashStore()
	ctx := context.Background()
	require.NoError(t, db.Create(&models.Account{ID: "primary", Balance: decimal.NewFromInt(100)}).Error)

	err := cash.Debit(ctx, db, "primary", decimal.NewFromInt(101))
	assert.ErrorIs(t, err, ErrFailedPrecondition)

	account, err := cash.Get(ctx, db, "primary")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)), "failed debit must not change the balance")
}

func TestCashStore_NegativeAmountsRejected(t *testing.T) {
	db := setupStoreTest(t)
	cash := NewCashStore()
	ctx := context.Background()
	require.NoError(t, db.Create(&models.Account{ID: "primary", Balance: decimal.NewFromInt(100)}).Error)

	assert.ErrorIs(t, cash.Debit(ctx, db, "primary", decimal.NewFromInt(-1)), ErrInvalidArgument)
	assert.ErrorIs(t, cash.Credit(ctx, db, "primary", decimal.NewFromInt(-1)), ErrInvalidArgument)
}

func TestCashStore_UnknownAccount(t *testing.T) {
	db := setupStoreTest(t)
	cash := NewCashStore()

	_, err := cash.Get(context.Background(), db, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPositionStore_SaveRejectsInvalidHoldings(t *testing.T) {
	db := setupStoreTest(t)
	positions := NewPositionStore()
	ctx := context.Background()

	err := positions.Save(ctx, db, &models.Holding{
		AccountID: "primary", Symbol: "AAPL", Quantity: 0,
		AverageCost: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, ErrFailedPrecondition, "zero-quantity holdings are deleted, never stored")

	err = positions.Save(ctx, db, &models.Holding{
		AccountID: "primary", Symbol: "AAPL", Quantity: 1,
		AverageCost: decimal.NewFromInt(-5),
	})
	assert.ErrorIs(t, err, ErrFailedPrecondition)
}

func TestPositionStore_DeleteRemovesRow(t *testing.T) {
	db := setupStoreTest(t)
	positions := NewPositionStore()
	ctx := context.Background()

	holding := &models.Holding{
		AccountID: "primary", Symbol: "AAPL", Quantity: 3,
		AverageCost: decimal.NewFromInt(100),
	}
	require.NoError(t, positions.Save(ctx, db, holding))
	require.NoError(t, positions.Delete(ctx, db, holding))

	_, err := positions.Get(ctx, db, "primary", "AAPL")
	assert.ErrorIs(t, err, ErrNotFound)

	// Gone for real, not soft-deleted.
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Holding{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestJournal_MarkCompletedIsSingleShot(t *testing.T) {
	db := setupStoreTest(t)
	journal := NewJournal()
	ctx := context.Background()

	order := &models.Order{
		ID: "order-1", AccountID: "primary", Symbol: "AAPL",
		Side: models.OrderSideBuy, Status: models.OrderStatusPending,
		Quantity: 1, UnitPrice: decimal.NewFromInt(100), TotalAmount: decimal.NewFromInt(100),
	}
	require.NoError(t, journal.Insert(ctx, db, order))

	assert.NoError(t, journal.MarkCompleted(ctx, db, "order-1"))
	assert.ErrorIs(t, journal.MarkCompleted(ctx, db, "order-1"), ErrFailedPrecondition)

	got, err := journal.Get(ctx, db, "order-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
}
