package trading

import (
	"context"
	"errors"
	"fmt"

	"paper-trading-go/internal/models"

	"gorm.io/gorm"
)

// Journal is the append-and-update order log. Orders are inserted Pending,
// updated exactly once to Completed, and never deleted.
type Journal struct{}

// NewJournal creates a journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Insert appends a new order record.
func (j *Journal) Insert(ctx context.Context, db *gorm.DB, order *models.Order) error {
	if err := db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.ID, ErrInternal)
	}
	return nil
}

// Get returns the order with the given id, or ErrNotFound.
func (j *Journal) Get(ctx context.Context, db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", id, ErrInternal)
	}
	return &order, nil
}

// List returns the account's orders, newest first. A limit of zero or less
// means no limit.
func (j *Journal) List(ctx context.Context, db *gorm.DB, accountID string, limit int) ([]models.Order, error) {
	q := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", ErrInternal)
	}
	return orders, nil
}

// MarkCompleted transitions an order from Pending to Completed.
func (j *Journal) MarkCompleted(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Update("status", models.OrderStatusCompleted)
	if res.Error != nil {
		return fmt.Errorf("failed to complete order %s: %w", id, ErrInternal)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s is not pending: %w", id, ErrFailedPrecondition)
	}
	return nil
}

// CountPending returns how many of the account's orders are still Pending.
// A non-zero count right after startup means settlements were lost to a
// restart.
func (j *Journal) CountPending(ctx context.Context, db *gorm.DB, accountID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Order{}).
		Where("account_id = ? AND status = ?", accountID, models.OrderStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending orders: %w", ErrInternal)
	}
	return count, nil
}
