package store

import (
	"context"

	"go.uber.org/zap"

	"pennywise/internal/cache"
	"pennywise/internal/models"
)

// Expenses reads and writes the user's transactions.
type Expenses struct {
	base
	api ExpenseAPI
}

// NewExpenses creates an expense store.
func NewExpenses(c *cache.Cache, api ExpenseAPI, log *zap.SugaredLogger) *Expenses {
	return &Expenses{base: newBase(c, log), api: api}
}

// List returns the user's expenses.
func (s *Expenses) List(ctx context.Context, userID string) ([]models.Expense, error) {
	return cache.Query(ctx, s.cache, ExpensesKey(userID), func(ctx context.Context) ([]models.Expense, error) {
		return nonNil(s.api.ListExpenses(ctx, userID))
	})
}

// Create records an expense or income.
func (s *Expenses) Create(ctx context.Context, userID string, in models.ExpenseInput) (*models.Expense, error) {
	tempID, ref, at := s.placeholder(in.ClientRef)
	in.ClientRef = ref
	if in.Type == "" {
		in.Type = models.ExpenseTypeExpense
	}

	optimistic := models.Expense{
		UserID:      userID,
		BudgetID:    in.BudgetID,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
		Type:        in.Type,
	}
	optimistic.ID = tempID
	optimistic.CreatedAt = at
	optimistic.UpdatedAt = at
	optimistic.ClientRef = ref
	optimistic.IsOptimistic = true

	return cache.Mutate(ctx, s.cache, cache.Mutation[[]models.Expense, *models.Expense]{
		Keys: []string{ExpensesKey(userID)},
		Apply: func(_ string, v []models.Expense) []models.Expense {
			return prepend(v, optimistic)
		},
		Run: func(ctx context.Context) (*models.Expense, error) {
			return s.api.CreateExpense(ctx, in)
		},
		Commit: func(_ string, v []models.Expense, r *models.Expense) []models.Expense {
			return settle(v, ref, *r, prepend[models.Expense])
		},
		Invalidate: s.related(userID),
	})
}

// Update patches an expense.
func (s *Expenses) Update(ctx context.Context, userID, id string, patch models.ExpensePatch) (*models.Expense, error) {
	if err := checkSaved(id); err != nil {
		return nil, err
	}
	return cache.Mutate(ctx, s.cache, cache.Mutation[[]models.Expense, *models.Expense]{
		Keys: []string{ExpensesKey(userID)},
		Apply: func(_ string, v []models.Expense) []models.Expense {
			return mapID(v, id, func(e models.Expense) models.Expense {
				patch.Apply(&e)
				e.IsOptimistic = true
				return e
			})
		},
		Run: func(ctx context.Context) (*models.Expense, error) {
			return s.api.UpdateExpense(ctx, id, patch)
		},
		Commit: func(_ string, v []models.Expense, r *models.Expense) []models.Expense {
			return replaceID(v, id, *r)
		},
		Invalidate: s.related(userID),
	})
}

// Delete removes an expense.
func (s *Expenses) Delete(ctx context.Context, userID, id string) error {
	if err := checkSaved(id); err != nil {
		return err
	}
	_, err := cache.Mutate(ctx, s.cache, cache.Mutation[[]models.Expense, struct{}]{
		Keys: []string{ExpensesKey(userID)},
		Apply: func(_ string, v []models.Expense) []models.Expense {
			return removeID(v, id)
		},
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.DeleteExpense(ctx, id)
		},
		Invalidate: s.related(userID),
	})
	return err
}

// related lists the collections whose server-side totals an expense write
// can change.
func (s *Expenses) related(userID string) []string {
	return []string{BudgetsKey(userID), CategoriesByUserKey(userID), categoriesByBudgetPrefix}
}
