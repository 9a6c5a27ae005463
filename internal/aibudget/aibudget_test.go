package aibudget

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennywise/internal/models"
)

type fakePlanner struct {
	resp *models.AIBudgetResponse
	err  error
	got  []models.AIBudgetRequest
}

func (f *fakePlanner) AICreateBudget(_ context.Context, in models.AIBudgetRequest) (*models.AIBudgetResponse, error) {
	f.got = append(f.got, in)
	return f.resp, f.err
}

type fakeBudgets struct {
	got []models.BudgetInput
	err error
}

func (f *fakeBudgets) Create(_ context.Context, userID string, in models.BudgetInput) (*models.Budget, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = append(f.got, in)
	b := models.Budget{UserID: userID, Month: in.Month, Year: in.Year, TotalBudgeted: in.TotalBudgeted, TotalAvailable: in.Available()}
	b.ID = "budget-1"
	return &b, nil
}

type fakeCategories struct {
	got    []models.CategoryInput
	failOn string
}

func (f *fakeCategories) Create(_ context.Context, _ string, in models.CategoryInput) (*models.Category, error) {
	if in.Name == f.failOn {
		return nil, errors.New("server error")
	}
	f.got = append(f.got, in)
	c := models.Category{BudgetID: in.BudgetID, Name: in.Name, Budgeted: in.Budgeted}
	c.ID = fmt.Sprintf("cat-%d", len(f.got))
	return &c, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func suggestion() *models.AIBudgetResponse {
	return &models.AIBudgetResponse{
		Income: dec("4000"),
		Categories: []models.AICategory{
			{Name: "Rent", Amount: dec("1500")},
			{Name: "Food", Amount: dec("600")},
			{Name: "Savings", Amount: dec("1900")},
		},
	}
}

func newCreator(p Planner, b BudgetCreator, c CategoryCreator) *Creator {
	cr := New(p, b, c, nil)
	cr.now = func() time.Time { return time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC) }
	return cr
}

func TestCreate(t *testing.T) {
	planner := &fakePlanner{resp: suggestion()}
	budgets := &fakeBudgets{}
	cats := &fakeCategories{}

	res, err := newCreator(planner, budgets, cats).Create(context.Background(), "u1", "  I earn 4000 a month  ")
	require.NoError(t, err)

	require.Len(t, planner.got, 1)
	assert.Equal(t, "I earn 4000 a month", planner.got[0].Prompt)

	require.Len(t, budgets.got, 1)
	in := budgets.got[0]
	assert.Equal(t, 3, in.Month)
	assert.Equal(t, 2025, in.Year)
	assert.True(t, in.TotalBudgeted.Equal(dec("4000")))
	assert.True(t, in.Available().Equal(dec("4000")))

	require.Len(t, res.Categories, 3)
	for i, name := range []string{"Rent", "Food", "Savings"} {
		assert.Equal(t, name, cats.got[i].Name)
		assert.Equal(t, "budget-1", cats.got[i].BudgetID)
	}
	assert.True(t, cats.got[2].Budgeted.Equal(dec("1900")))
	assert.Equal(t, "budget-1", res.Budget.ID)
}

func TestCreatePartialFailure(t *testing.T) {
	cats := &fakeCategories{failOn: "Food"}
	res, err := newCreator(&fakePlanner{resp: suggestion()}, &fakeBudgets{}, cats).Create(context.Background(), "u1", "split 4000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Food"`)
	require.NotNil(t, res)
	require.Len(t, res.Categories, 1)
	assert.Equal(t, "Rent", res.Categories[0].Name)
	assert.NotNil(t, res.Budget)
}

func TestCreateErrors(t *testing.T) {
	_, err := newCreator(&fakePlanner{}, &fakeBudgets{}, &fakeCategories{}).Create(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	boom := errors.New("assistant down")
	_, err = newCreator(&fakePlanner{err: boom}, &fakeBudgets{}, &fakeCategories{}).Create(context.Background(), "u1", "hi")
	assert.ErrorIs(t, err, boom)

	cats := &fakeCategories{}
	res, err := newCreator(&fakePlanner{resp: suggestion()}, &fakeBudgets{err: boom}, cats).Create(context.Background(), "u1", "hi")
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res.Budget)
	assert.Empty(t, cats.got)
}
