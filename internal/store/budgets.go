package store

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"pennywise/internal/cache"
	"pennywise/internal/models"
)

// Budgets reads and writes the signed-in user's budgets.
type Budgets struct {
	base
	api BudgetAPI
}

// NewBudgets creates a budget store.
func NewBudgets(c *cache.Cache, api BudgetAPI, log *zap.SugaredLogger) *Budgets {
	return &Budgets{base: newBase(c, log), api: api}
}

// List returns the user's budgets, newest first.
func (s *Budgets) List(ctx context.Context, userID string) ([]models.Budget, error) {
	return cache.Query(ctx, s.cache, BudgetsKey(userID), func(ctx context.Context) ([]models.Budget, error) {
		budgets, err := s.api.ListBudgets(ctx, userID)
		if err != nil {
			return nil, err
		}
		if budgets == nil {
			budgets = []models.Budget{}
		}
		sortNewestFirst(budgets)
		return budgets, nil
	})
}

// Current returns the most recently created budget, or nil when the user has
// none. The list is sorted locally whatever order the server used.
func (s *Budgets) Current(ctx context.Context, userID string) (*models.Budget, error) {
	budgets, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, nil
	}
	sorted := append([]models.Budget(nil), budgets...)
	sortNewestFirst(sorted)
	current := sorted[0]
	return &current, nil
}

// Create adds a budget. The placeholder is visible in List until the server
// answers.
func (s *Budgets) Create(ctx context.Context, userID string, in models.BudgetInput) (*models.Budget, error) {
	tempID, ref, at := s.placeholder(in.ClientRef)
	in.ClientRef = ref

	optimistic := models.Budget{
		UserID:         userID,
		Month:          in.Month,
		Year:           in.Year,
		TotalBudgeted:  in.TotalBudgeted,
		TotalAvailable: in.Available(),
	}
	optimistic.ID = tempID
	optimistic.CreatedAt = at
	optimistic.UpdatedAt = at
	optimistic.ClientRef = ref
	optimistic.IsOptimistic = true

	return cache.Mutate(ctx, s.cache, cache.Mutation[[]models.Budget, *models.Budget]{
		Keys: []string{BudgetsKey(userID)},
		Apply: func(_ string, v []models.Budget) []models.Budget {
			return prepend(v, optimistic)
		},
		Run: func(ctx context.Context) (*models.Budget, error) {
			return s.api.CreateBudget(ctx, in)
		},
		Commit: func(_ string, v []models.Budget, r *models.Budget) []models.Budget {
			return settle(v, ref, *r, prepend[models.Budget])
		},
		Invalidate: []string{CategoriesByUserKey(userID)},
	})
}

// Update patches a budget.
func (s *Budgets) Update(ctx context.Context, userID, id string, patch models.BudgetPatch) (*models.Budget, error) {
	if err := checkSaved(id); err != nil {
		return nil, err
	}
	return cache.Mutate(ctx, s.cache, cache.Mutation[[]models.Budget, *models.Budget]{
		Keys: []string{BudgetsKey(userID)},
		Apply: func(_ string, v []models.Budget) []models.Budget {
			return mapID(v, id, func(b models.Budget) models.Budget {
				patch.Apply(&b)
				b.IsOptimistic = true
				return b
			})
		},
		Run: func(ctx context.Context) (*models.Budget, error) {
			return s.api.UpdateBudget(ctx, id, patch)
		},
		Commit: func(_ string, v []models.Budget, r *models.Budget) []models.Budget {
			return replaceID(v, id, *r)
		},
		Invalidate: []string{CategoriesByUserKey(userID), CategoriesByBudgetKey(id)},
	})
}

// Delete removes a budget and, on the server, its categories and expenses.
func (s *Budgets) Delete(ctx context.Context, userID, id string) error {
	if err := checkSaved(id); err != nil {
		return err
	}
	_, err := cache.Mutate(ctx, s.cache, cache.Mutation[[]models.Budget, struct{}]{
		Keys: []string{BudgetsKey(userID)},
		Apply: func(_ string, v []models.Budget) []models.Budget {
			return removeID(v, id)
		},
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.DeleteBudget(ctx, id)
		},
		Invalidate: []string{CategoriesByUserKey(userID), CategoriesByBudgetKey(id), ExpensesKey(userID)},
	})
	return err
}

// Reset deletes all of the user's budgets, categories and expenses. It is not
// applied optimistically.
func (s *Budgets) Reset(ctx context.Context, userID string) error {
	if err := s.api.ResetBudgets(ctx); err != nil {
		return err
	}
	s.log.Infow("budgets reset", "user_id", userID)
	for _, prefix := range []string{
		BudgetsKey(userID),
		CategoriesByUserKey(userID),
		categoriesByBudgetPrefix,
		ExpensesKey(userID),
	} {
		s.cache.Invalidate(prefix)
	}
	return nil
}

func sortNewestFirst(budgets []models.Budget) {
	sort.SliceStable(budgets, func(i, j int) bool {
		return budgets[i].CreatedAt.After(budgets[j].CreatedAt)
	})
}
