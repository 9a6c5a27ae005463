package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/testutil"
)

func expenseInput(category *models.Category, amount string, typ models.ExpenseType, date string) models.ExpenseInput {
	return models.ExpenseInput{
		BudgetID:    category.BudgetID,
		CategoryID:  category.ID,
		Amount:      decimal.RequireFromString(amount),
		Description: "coffee",
		Date:        date,
		Type:        typ,
	}
}

func reloadCategory(t *testing.T, svc CategoryServicer, userID, id string) *models.Category {
	t.Helper()
	c, err := svc.GetCategoryByID(userID, id)
	testutil.AssertNoError(t, err)
	return c
}

func TestCreateExpense(t *testing.T) {
	t.Run("updates_spent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		categories := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, 2500)
		category := testutil.CreateTestCategory(t, db, user.ID, budget.ID, 500)

		_, err := svc.CreateExpense(user.ID, expenseInput(category, "85.50", models.ExpenseTypeExpense, "2025-03-01"))
		testutil.AssertNoError(t, err)
		_, err = svc.CreateExpense(user.ID, expenseInput(category, "120.00", models.ExpenseTypeIncome, "2025-03-02"))
		testutil.AssertNoError(t, err)

		got := reloadCategory(t, categories, user.ID, category.ID)
		if !got.Spent.Equal(decimal.RequireFromString("-34.50")) {
			t.Errorf("expected spent -34.50, got %s", got.Spent)
		}
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, 100)
		category := testutil.CreateTestCategory(t, db, user.ID, budget.ID, 50)

		_, err := svc.CreateExpense(user.ID, expenseInput(category, "0", models.ExpenseTypeExpense, "2025-03-01"))
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})

	t.Run("category_outside_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, 100)
		otherBudget := testutil.CreateTestBudget(t, db, user.ID, 100)
		category := testutil.CreateTestCategory(t, db, user.ID, budget.ID, 50)

		in := expenseInput(category, "5", models.ExpenseTypeExpense, "2025-03-01")
		in.BudgetID = otherBudget.ID
		_, err := svc.CreateExpense(user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateExpense(user.ID, expenseInput(&models.Category{BudgetID: "b"}, "5", models.ExpenseTypeExpense, "2025-03-01"))
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGetUserExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID, 1000)
	category := testutil.CreateTestCategory(t, db, user.ID, budget.ID, 500)

	for _, date := range []string{"2025-03-01", "2025-03-03", "2025-03-02"} {
		_, err := svc.CreateExpense(user.ID, expenseInput(category, "10", models.ExpenseTypeExpense, date))
		testutil.AssertNoError(t, err)
	}
	_, err := svc.CreateExpense(user.ID, expenseInput(category, "50", models.ExpenseTypeIncome, "2025-03-04"))
	testutil.AssertNoError(t, err)

	t.Run("all_newest_first", func(t *testing.T) {
		result, err := svc.GetUserExpenses(user.ID, ExpenseFilter{}, nil)
		testutil.AssertNoError(t, err)
		if len(result.Items) != 4 {
			t.Fatalf("expected 4 expenses, got %d", len(result.Items))
		}
		if result.Items[0].Date != "2025-03-04" {
			t.Errorf("expected newest first, got %s", result.Items[0].Date)
		}
	})

	t.Run("filter_type", func(t *testing.T) {
		income := models.ExpenseTypeIncome
		result, err := svc.GetUserExpenses(user.ID, ExpenseFilter{Type: &income}, nil)
		testutil.AssertNoError(t, err)
		if result.Total != 1 {
			t.Errorf("expected 1 income, got %d", result.Total)
		}
	})

	t.Run("filter_dates", func(t *testing.T) {
		result, err := svc.GetUserExpenses(user.ID, ExpenseFilter{FromDate: "2025-03-02", ToDate: "2025-03-03"}, nil)
		testutil.AssertNoError(t, err)
		if result.Total != 2 {
			t.Errorf("expected 2 expenses in range, got %d", result.Total)
		}
	})

	t.Run("paginated", func(t *testing.T) {
		result, err := svc.GetUserExpenses(user.ID, ExpenseFilter{}, &pagination.PageRequest{Page: 2, PageSize: 3})
		testutil.AssertNoError(t, err)
		if len(result.Items) != 1 {
			t.Errorf("expected 1 expense on page 2, got %d", len(result.Items))
		}
		if result.TotalPages() != 2 {
			t.Errorf("expected 2 pages, got %d", result.TotalPages())
		}
	})

	t.Run("empty", func(t *testing.T) {
		fresh := testutil.CreateTestUser(t, db)
		result, err := svc.GetUserExpenses(fresh.ID, ExpenseFilter{}, nil)
		testutil.AssertNoError(t, err)
		if result.Items == nil || len(result.Items) != 0 {
			t.Errorf("expected empty list, got %v", result.Items)
		}
	})
}

func TestUpdateExpense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db)
	categories := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID, 1000)
	food := testutil.CreateTestCategory(t, db, user.ID, budget.ID, 500)
	fun := testutil.CreateTestCategory(t, db, user.ID, budget.ID, 200)

	expense, err := svc.CreateExpense(user.ID, expenseInput(food, "40", models.ExpenseTypeExpense, "2025-03-01"))
	testutil.AssertNoError(t, err)

	amount := decimal.NewFromInt(60)
	updated, err := svc.UpdateExpense(user.ID, expense.ID, models.ExpensePatch{Amount: &amount, CategoryID: &fun.ID})
	testutil.AssertNoError(t, err)
	if updated.CategoryID != fun.ID {
		t.Errorf("expected category %s, got %s", fun.ID, updated.CategoryID)
	}

	if got := reloadCategory(t, categories, user.ID, food.ID); !got.Spent.IsZero() {
		t.Errorf("expected food spent 0 after move, got %s", got.Spent)
	}
	if got := reloadCategory(t, categories, user.ID, fun.ID); !got.Spent.Equal(amount) {
		t.Errorf("expected fun spent 60, got %s", got.Spent)
	}

	zero := decimal.Zero
	_, err = svc.UpdateExpense(user.ID, expense.ID, models.ExpensePatch{Amount: &zero})
	testutil.AssertAppError(t, err, "INVALID_AMOUNT")
}

func TestDeleteExpense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db)
	categories := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID, 1000)
	category := testutil.CreateTestCategory(t, db, user.ID, budget.ID, 500)

	expense, err := svc.CreateExpense(user.ID, expenseInput(category, "25", models.ExpenseTypeExpense, "2025-03-01"))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteExpense(user.ID, expense.ID))
	if got := reloadCategory(t, categories, user.ID, category.ID); !got.Spent.IsZero() {
		t.Errorf("expected spent 0 after delete, got %s", got.Spent)
	}

	err = svc.DeleteExpense(user.ID, expense.ID)
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
}
