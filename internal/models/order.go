package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of an order.
type OrderSide string

// OrderStatus is the lifecycle state of an order. An order is created
// Pending and transitions exactly once to Completed when it settles.
type OrderStatus string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"

	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
)

// Order is a journal entry for a placed buy or sell. Records are never
// deleted; the only mutation after insert is the Pending -> Completed
// status change applied by settlement.
type Order struct {
	ID                 string          `gorm:"primaryKey" json:"id"`
	AccountID          string          `gorm:"index;not null" json:"account_id"`
	Symbol             string          `gorm:"index;not null" json:"symbol"`
	DisplayName        string          `json:"display_name"`
	Sector             string          `json:"sector"`
	Side               OrderSide       `gorm:"not null" json:"side"`
	Status             OrderStatus     `gorm:"not null" json:"status"`
	Quantity           int64           `gorm:"not null" json:"quantity"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(20,8)" json:"unit_price"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(20,8)" json:"total_amount"`
	RealizedPnL        decimal.Decimal `gorm:"type:decimal(20,8)" json:"realized_pnl"`
	RealizedPnLPercent decimal.Decimal `gorm:"type:decimal(20,8)" json:"realized_pnl_percent"`
	TradeDate          time.Time       `gorm:"not null" json:"trade_date"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
