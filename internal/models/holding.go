package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is a position in a single symbol. A holding exists only while
// its quantity is positive; selling down to zero deletes the row rather
// than leaving a zero-quantity residue.
type Holding struct {
	gorm.Model
	AccountID   string          `gorm:"uniqueIndex:idx_account_symbol;not null" json:"account_id"`
	Symbol      string          `gorm:"uniqueIndex:idx_account_symbol;not null" json:"symbol"`
	DisplayName string          `json:"display_name"`
	Sector      string          `json:"sector"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	AverageCost decimal.Decimal `gorm:"type:decimal(20,8)" json:"average_cost"`
}
