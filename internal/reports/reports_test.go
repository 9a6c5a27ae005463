package reports

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pennywise/internal/models"
)

func expense(budgetID, categoryID, amount string, typ models.ExpenseType) models.Expense {
	return models.Expense{BudgetID: budgetID, CategoryID: categoryID, Amount: decimal.RequireFromString(amount), Type: typ}
}

func TestAggregationScenario(t *testing.T) {
	b := models.Budget{TotalBudgeted: decimal.NewFromInt(3000), TotalAvailable: decimal.NewFromInt(2500)}
	b.ID = "b1"
	expenses := []models.Expense{
		expense("b1", "c1", "85.50", models.ExpenseTypeExpense),
		expense("b1", "c1", "120.00", models.ExpenseTypeIncome),
		expense("b2", "c9", "999", models.ExpenseTypeExpense),
	}

	assert.True(t, AvailableToSpend(b).Equal(decimal.NewFromInt(2500)))
	assert.True(t, TotalSpent(expenses, "b1").Equal(decimal.RequireFromString("-34.50")))

	byCategory := SpentByCategory(expenses, "b1")
	assert.Len(t, byCategory, 1)
	assert.True(t, byCategory["c1"].Equal(decimal.RequireFromString("-34.50")))
}

func TestSummarize(t *testing.T) {
	b := models.Budget{TotalBudgeted: decimal.NewFromInt(1000), TotalAvailable: decimal.NewFromInt(200)}
	b.ID = "b1"
	categories := []models.Category{
		{BudgetID: "b1", Budgeted: decimal.NewFromInt(700)},
		{BudgetID: "b1", Budgeted: decimal.NewFromInt(400)},
		{BudgetID: "b2", Budgeted: decimal.NewFromInt(5000)},
	}
	expenses := []models.Expense{
		expense("b1", "c1", "50", models.ExpenseTypeExpense),
		expense("b1", "c1", "20", models.ExpenseTypeIncome),
	}

	s := Summarize(b, categories, expenses)
	assert.True(t, s.Allocated.Equal(decimal.NewFromInt(1100)))
	assert.True(t, s.Spent.Equal(decimal.NewFromInt(30)))
	assert.True(t, s.Income.Equal(decimal.NewFromInt(20)))
	assert.False(t, s.OverAllocated)

	categories = append(categories, models.Category{BudgetID: "b1", Budgeted: decimal.NewFromInt(101)})
	assert.True(t, Summarize(b, categories, expenses).OverAllocated)
}

func TestTotalSpentEmpty(t *testing.T) {
	assert.True(t, TotalSpent(nil, "b1").IsZero())
}
