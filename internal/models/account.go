package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the cash balance for one trading account. The balance is
// never allowed to go negative.
type Account struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,8)" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
