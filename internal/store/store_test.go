package store

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennywise/internal/cache"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/uuid"
)

const userID = "u1"

var serverDown = &apperrors.RequestError{Method: "POST", Path: "/api", StatusCode: http.StatusInternalServerError}

type fixture struct {
	api        *fakeAPI
	cache      *cache.Cache
	budgets    *Budgets
	categories *Categories
	expenses   *Expenses
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := newFakeAPI()
	c := cache.New(cache.WithRetryInterval(time.Millisecond))
	t.Cleanup(c.Close)
	return &fixture{
		api:        api,
		cache:      c,
		budgets:    NewBudgets(c, api, nil),
		categories: NewCategories(c, api, nil),
		expenses:   NewExpenses(c, api, nil),
	}
}

func budgetInput(total int64) models.BudgetInput {
	return models.BudgetInput{Month: 3, Year: 2025, TotalBudgeted: decimal.NewFromInt(total)}
}

func noOptimistic[T record](t *testing.T, list []T) {
	t.Helper()
	for _, it := range list {
		assert.False(t, it.Optimistic(), "record %s still optimistic", it.RecordID())
		assert.False(t, uuid.IsTemp(it.RecordID()), "temp id %s left behind", it.RecordID())
	}
}

func TestBudgetCreateCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.budgets.List(ctx, userID)
	require.NoError(t, err)

	var during []models.Budget
	f.api.onWrite = func() { during, _ = cache.Peek[[]models.Budget](f.cache, BudgetsKey(userID)) }

	created, err := f.budgets.Create(ctx, userID, budgetInput(2500))
	require.NoError(t, err)

	require.Len(t, during, 1)
	assert.True(t, during[0].IsOptimistic)
	assert.True(t, uuid.IsTemp(during[0].ID))

	list, _ := cache.Peek[[]models.Budget](f.cache, BudgetsKey(userID))
	require.Len(t, list, 1)
	assert.Equal(t, *created, list[0])
	noOptimistic(t, list)
}

func TestBudgetCreateCommitWithoutEcho(t *testing.T) {
	f := newFixture(t)
	f.api.echoRef = false
	ctx := context.Background()
	_, err := f.budgets.List(ctx, userID)
	require.NoError(t, err)

	_, err = f.budgets.Create(ctx, userID, budgetInput(100))
	require.NoError(t, err)
	_, err = f.budgets.Create(ctx, userID, budgetInput(200))
	require.NoError(t, err)

	list, _ := cache.Peek[[]models.Budget](f.cache, BudgetsKey(userID))
	require.Len(t, list, 2)
	noOptimistic(t, list)
}

func TestBudgetMutationsRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing, err := f.budgets.Create(ctx, userID, budgetInput(1000))
	require.NoError(t, err)
	_, err = f.budgets.List(ctx, userID)
	require.NoError(t, err)

	before := f.cache.Snapshot()
	f.api.fail = serverDown

	_, err = f.budgets.Create(ctx, userID, budgetInput(50))
	assert.ErrorIs(t, err, serverDown)
	assert.Equal(t, before, f.cache.Snapshot())

	total := decimal.NewFromInt(9)
	_, err = f.budgets.Update(ctx, userID, existing.ID, models.BudgetPatch{TotalBudgeted: &total})
	assert.ErrorIs(t, err, serverDown)
	assert.Equal(t, before, f.cache.Snapshot())

	assert.ErrorIs(t, f.budgets.Delete(ctx, userID, existing.ID), serverDown)
	assert.Equal(t, before, f.cache.Snapshot())

	list, _ := cache.Peek[[]models.Budget](f.cache, BudgetsKey(userID))
	require.Len(t, list, 1)
	assert.Equal(t, existing.ID, list[0].ID)
	noOptimistic(t, list)
}

func TestBudgetUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.budgets.Create(ctx, userID, budgetInput(1000))
	require.NoError(t, err)
	_, err = f.budgets.List(ctx, userID)
	require.NoError(t, err)

	available := decimal.NewFromInt(400)
	var during []models.Budget
	f.api.onWrite = func() { during, _ = cache.Peek[[]models.Budget](f.cache, BudgetsKey(userID)) }

	updated, err := f.budgets.Update(ctx, userID, b.ID, models.BudgetPatch{TotalAvailable: &available})
	require.NoError(t, err)
	require.Len(t, during, 1)
	assert.True(t, during[0].IsOptimistic)
	assert.True(t, during[0].TotalAvailable.Equal(available))

	list, _ := cache.Peek[[]models.Budget](f.cache, BudgetsKey(userID))
	assert.Equal(t, []models.Budget{*updated}, list)

	require.NoError(t, f.budgets.Delete(ctx, userID, b.ID))
	list, _ = cache.Peek[[]models.Budget](f.cache, BudgetsKey(userID))
	assert.Empty(t, list)

	_, err = f.budgets.Update(ctx, userID, uuid.TempID(time.Now()), models.BudgetPatch{})
	assert.ErrorIs(t, err, ErrUnsaved)
}

func TestCurrentIsNewestByCreation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := models.Budget{UserID: userID, Month: 1}
	older.ID, older.CreatedAt = "old", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := models.Budget{UserID: userID, Month: 2}
	newer.ID, newer.CreatedAt = "new", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	f.api.budgets = []models.Budget{older, newer}

	current, err := f.budgets.Current(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "new", current.ID)

	none, err := f.budgets.Current(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestExpenseWritesInvalidateTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.budgets.List(ctx, userID)
	require.NoError(t, err)
	_, err = f.categories.ListByUser(ctx, userID)
	require.NoError(t, err)
	_, err = f.expenses.List(ctx, userID)
	require.NoError(t, err)

	e, err := f.expenses.Create(ctx, userID, models.ExpenseInput{
		BudgetID: "b1", CategoryID: "c1", Amount: decimal.RequireFromString("85.50"),
		Date: "2025-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseTypeExpense, e.Type)
	f.cache.Wait()

	assert.Equal(t, 2, f.api.listed("budgets"))
	assert.Equal(t, 2, f.api.listed("categories"))
	assert.Equal(t, 1, f.api.listed("expenses"))

	list, _ := cache.Peek[[]models.Expense](f.cache, ExpensesKey(userID))
	assert.Equal(t, []models.Expense{*e}, list)
}

func TestExpenseFailureLeavesOtherCollections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.budgets.List(ctx, userID)
	require.NoError(t, err)
	_, err = f.expenses.List(ctx, userID)
	require.NoError(t, err)
	before := f.cache.Snapshot()

	f.api.fail = serverDown
	_, err = f.expenses.Create(ctx, userID, models.ExpenseInput{BudgetID: "b1", CategoryID: "c1", Amount: decimal.NewFromInt(1), Date: "2025-03-02"})
	assert.ErrorIs(t, err, serverDown)
	f.cache.Wait()

	assert.Equal(t, before, f.cache.Snapshot())
	assert.Equal(t, 1, f.api.listed("budgets"))
	assert.Equal(t, apperrors.CategoryServer, apperrors.Categorize(err))
}

func TestCategoryListsStayInStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.categories.ListByUser(ctx, userID)
	require.NoError(t, err)
	_, err = f.categories.ListByBudget(ctx, "b1")
	require.NoError(t, err)

	c, err := f.categories.Create(ctx, userID, models.CategoryInput{BudgetID: "b1", Name: "Rent", Budgeted: decimal.NewFromInt(1500)})
	require.NoError(t, err)

	byUser, _ := cache.Peek[[]models.Category](f.cache, CategoriesByUserKey(userID))
	byBudget, _ := cache.Peek[[]models.Category](f.cache, CategoriesByBudgetKey("b1"))
	assert.Equal(t, []models.Category{*c}, byUser)
	assert.Equal(t, []models.Category{*c}, byBudget)

	name := "Housing"
	_, err = f.categories.Update(ctx, userID, c.ID, models.CategoryPatch{Name: &name})
	require.NoError(t, err)
	byBudget, _ = cache.Peek[[]models.Category](f.cache, CategoriesByBudgetKey("b1"))
	assert.Equal(t, "Housing", byBudget[0].Name)

	f.api.fail = serverDown
	before := f.cache.Snapshot()
	assert.ErrorIs(t, f.categories.Delete(ctx, userID, c.ID), serverDown)
	assert.Equal(t, before, f.cache.Snapshot())

	f.api.fail = nil
	require.NoError(t, f.categories.Delete(ctx, userID, c.ID))
	byUser, _ = cache.Peek[[]models.Category](f.cache, CategoriesByUserKey(userID))
	assert.Empty(t, byUser)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.budgets.Create(ctx, userID, budgetInput(10))
	require.NoError(t, err)
	_, err = f.budgets.List(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, f.budgets.Reset(ctx, userID))
	f.cache.Wait()

	list, err := f.budgets.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExpenseUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.expenses.Create(ctx, userID, models.ExpenseInput{
		BudgetID: "b1", CategoryID: "c1", Amount: decimal.NewFromInt(1), Date: "2025-03-02",
	})
	require.NoError(t, err)
	_, err = f.expenses.List(ctx, userID)
	require.NoError(t, err)

	amount := decimal.NewFromInt(3)
	var during []models.Expense
	f.api.onWrite = func() { during, _ = cache.Peek[[]models.Expense](f.cache, ExpensesKey(userID)) }

	updated, err := f.expenses.Update(ctx, userID, e.ID, models.ExpensePatch{Amount: &amount})
	require.NoError(t, err)
	require.Len(t, during, 1)
	assert.True(t, during[0].IsOptimistic)
	assert.True(t, during[0].Amount.Equal(amount))
	f.cache.Wait()

	list, _ := cache.Peek[[]models.Expense](f.cache, ExpensesKey(userID))
	require.Len(t, list, 1)
	assert.Equal(t, *updated, list[0])
	assert.True(t, list[0].Amount.Equal(amount))
	noOptimistic(t, list)

	f.api.onWrite = nil
	require.NoError(t, f.expenses.Delete(ctx, userID, e.ID))
	list, _ = cache.Peek[[]models.Expense](f.cache, ExpensesKey(userID))
	assert.Empty(t, list)
}

func TestExpenseMutationsRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.expenses.Create(ctx, userID, models.ExpenseInput{
		BudgetID: "b1", CategoryID: "c1", Amount: decimal.NewFromInt(1), Date: "2025-03-02",
	})
	require.NoError(t, err)
	_, err = f.expenses.List(ctx, userID)
	require.NoError(t, err)
	f.cache.Wait()

	before := f.cache.Snapshot()
	f.api.fail = serverDown

	amount := decimal.NewFromInt(3)
	_, err = f.expenses.Update(ctx, userID, e.ID, models.ExpensePatch{Amount: &amount})
	assert.ErrorIs(t, err, serverDown)
	assert.Equal(t, before, f.cache.Snapshot())

	assert.ErrorIs(t, f.expenses.Delete(ctx, userID, e.ID), serverDown)
	assert.Equal(t, before, f.cache.Snapshot())

	list, _ := cache.Peek[[]models.Expense](f.cache, ExpensesKey(userID))
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(decimal.NewFromInt(1)))
	noOptimistic(t, list)
}

func TestCategoryMutationsRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.categories.Create(ctx, userID, models.CategoryInput{BudgetID: "b1", Name: "Rent", Budgeted: decimal.NewFromInt(1500)})
	require.NoError(t, err)
	_, err = f.categories.ListByUser(ctx, userID)
	require.NoError(t, err)
	_, err = f.categories.ListByBudget(ctx, "b1")
	require.NoError(t, err)
	f.cache.Wait()

	before := f.cache.Snapshot()
	f.api.fail = serverDown

	_, err = f.categories.Create(ctx, userID, models.CategoryInput{BudgetID: "b1", Name: "Food"})
	assert.ErrorIs(t, err, serverDown)
	assert.Equal(t, before, f.cache.Snapshot())

	name := "Housing"
	_, err = f.categories.Update(ctx, userID, c.ID, models.CategoryPatch{Name: &name})
	assert.ErrorIs(t, err, serverDown)
	assert.Equal(t, before, f.cache.Snapshot())

	byBudget, _ := cache.Peek[[]models.Category](f.cache, CategoriesByBudgetKey("b1"))
	require.Len(t, byBudget, 1)
	assert.Equal(t, "Rent", byBudget[0].Name)
	noOptimistic(t, byBudget)
}
