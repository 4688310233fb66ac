package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricePoint is one day of the synthetic daily close series for a symbol.
// The trading core only ever reads these rows.
type PricePoint struct {
	gorm.Model
	Symbol       string          `gorm:"uniqueIndex:idx_symbol_date;not null" json:"symbol"`
	CompanyName  string          `json:"company_name"`
	Sector       string          `json:"sector"`
	Date         time.Time       `gorm:"uniqueIndex:idx_symbol_date;not null" json:"date"`
	ClosingPrice decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"closing_price"`
	Volume       int64           `json:"volume"`
}
