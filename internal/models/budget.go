package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Budget is a user's allocation plan for one calendar month.
//
// TotalBudgeted is the amount allocated for the period and TotalAvailable the
// part not yet assigned to categories. TotalAvailable <= TotalBudgeted is
// expected but not enforced.
type Budget struct {
	Base
	Envelope
	UserID         string          `gorm:"type:uuid;not null;index" json:"userId"`
	Month          int             `gorm:"not null" json:"month"`
	Year           int             `gorm:"not null" json:"year"`
	TotalBudgeted  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"totalBudgeted"`
	TotalAvailable decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"totalAvailable"`
}

// Period renders the budget period as YYYY-MM.
func (b Budget) Period() string {
	return fmt.Sprintf("%04d-%02d", b.Year, b.Month)
}

// Overcommitted reports whether more is available than was budgeted.
func (b Budget) Overcommitted() bool {
	return b.TotalAvailable.GreaterThan(b.TotalBudgeted)
}
