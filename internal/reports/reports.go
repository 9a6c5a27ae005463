// Package reports aggregates budgets, categories and expenses for display.
package reports

import (
	"github.com/shopspring/decimal"

	"pennywise/internal/models"
)

// AvailableToSpend is the budget's TotalAvailable as stored. It is never
// derived from expenses.
func AvailableToSpend(b models.Budget) decimal.Decimal {
	return b.TotalAvailable
}

// TotalSpent sums the signed amounts of the budget's expenses: expenses add,
// income subtracts.
func TotalSpent(expenses []models.Expense, budgetID string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.BudgetID == budgetID {
			total = total.Add(e.Signed())
		}
	}
	return total
}

// SpentByCategory returns signed spend per category id for one budget.
func SpentByCategory(expenses []models.Expense, budgetID string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if e.BudgetID != budgetID {
			continue
		}
		out[e.CategoryID] = out[e.CategoryID].Add(e.Signed())
	}
	return out
}

// Summary is the headline figures of one budget.
type Summary struct {
	Budgeted  decimal.Decimal
	Available decimal.Decimal
	Spent     decimal.Decimal
	Income    decimal.Decimal
	Allocated decimal.Decimal
	// OverAllocated is advisory: categories budget more than the budget
	// total plus what is still available.
	OverAllocated bool
}

// Summarize computes the Summary for b.
func Summarize(b models.Budget, categories []models.Category, expenses []models.Expense) Summary {
	s := Summary{
		Budgeted:  b.TotalBudgeted,
		Available: AvailableToSpend(b),
		Spent:     TotalSpent(expenses, b.ID),
		Income:    decimal.Zero,
		Allocated: decimal.Zero,
	}
	for _, e := range expenses {
		if e.BudgetID == b.ID && e.Type == models.ExpenseTypeIncome {
			s.Income = s.Income.Add(e.Amount)
		}
	}
	for _, c := range categories {
		if c.BudgetID == b.ID {
			s.Allocated = s.Allocated.Add(c.Budgeted)
		}
	}
	s.OverAllocated = s.Allocated.GreaterThan(b.TotalBudgeted.Add(b.TotalAvailable))
	return s
}
