package models

import "github.com/shopspring/decimal"

// Category is a spending bucket inside a budget.
type Category struct {
	Base
	Envelope
	UserID      string          `gorm:"type:uuid;not null;index" json:"userId"`
	BudgetID    string          `gorm:"type:uuid;not null;index" json:"budgetId"`
	Name        string          `gorm:"not null" json:"name"`
	SectionName string          `json:"sectionName,omitempty"`
	Budgeted    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"budgeted"`
	Spent       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"spent"`
}

// Remaining is the budgeted amount minus what was spent.
func (c Category) Remaining() decimal.Decimal {
	return c.Budgeted.Sub(c.Spent)
}
