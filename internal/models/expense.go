package models

import "github.com/shopspring/decimal"

// ExpenseType distinguishes money going out from money coming in.
type ExpenseType string

const (
	ExpenseTypeExpense ExpenseType = "expense"
	ExpenseTypeIncome  ExpenseType = "income"
)

// DateLayout is the wire and storage format of Expense.Date.
const DateLayout = "2006-01-02"

// Expense is a single transaction recorded against a budget and category.
type Expense struct {
	Base
	Envelope
	UserID      string          `gorm:"type:uuid;not null;index" json:"userId"`
	BudgetID    string          `gorm:"type:uuid;not null;index" json:"budgetId"`
	CategoryID  string          `gorm:"type:uuid;not null;index" json:"categoryId"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Description string          `json:"description"`
	Date        string          `gorm:"size:10;not null;index" json:"date"`
	Type        ExpenseType     `gorm:"not null;default:'expense'" json:"type"`
}

// Signed returns the expense's contribution to spend: positive for
// expenses, negative for income.
func (e Expense) Signed() decimal.Decimal {
	if e.Type == ExpenseTypeIncome {
		return e.Amount.Neg()
	}
	return e.Amount
}
