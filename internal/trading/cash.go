package trading

import (
	"context"
	"errors"
	"fmt"

	"paper-trading-go/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashStore reads and mutates account balances. Methods take the database
// handle so callers can run them inside a transaction. Serialization per
// account is the caller's job; the store only enforces the non-negative
// balance invariant.
type CashStore struct{}

// NewCashStore creates a cash store.
func NewCashStore() *CashStore {
	return &CashStore{}
}

// Get returns the account, or ErrNotFound for an unknown id.
func (s *CashStore) Get(ctx context.Context, db *gorm.DB, accountID string) (*models.Account, error) {
	var account models.Account
	err := db.WithContext(ctx).First(&account, "id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, ErrInternal)
	}
	return &account, nil
}

// Debit subtracts amount from the account balance. Fails with
// ErrFailedPrecondition if the balance would go negative.
func (s *CashStore) Debit(ctx context.Context, db *gorm.DB, accountID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit amount must not be negative: %w", ErrInvalidArgument)
	}
	account, err := s.Get(ctx, db, accountID)
	if err != nil {
		return err
	}
	if amount.GreaterThan(account.Balance) {
		return fmt.Errorf("insufficient funds: %w", ErrFailedPrecondition)
	}
	account.Balance = account.Balance.Sub(amount)
	if err := db.WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("failed to debit account %s: %w", accountID, ErrInternal)
	}
	return nil
}

// Credit adds amount to the account balance.
func (s *CashStore) Credit(ctx context.Context, db *gorm.DB, accountID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("credit amount must not be negative: %w", ErrInvalidArgument)
	}
	account, err := s.Get(ctx, db, accountID)
	if err != nil {
		return err
	}
	account.Balance = account.Balance.Add(amount)
	if err := db.WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("failed to credit account %s: %w", accountID, ErrInternal)
	}
	return nil
}
