package store

import (
	"context"

	"go.uber.org/zap"

	"pennywise/internal/cache"
	"pennywise/internal/models"
)

// Categories reads and writes categories, listed per user and per budget.
type Categories struct {
	base
	api CategoryAPI
}

// NewCategories creates a category store.
func NewCategories(c *cache.Cache, api CategoryAPI, log *zap.SugaredLogger) *Categories {
	return &Categories{base: newBase(c, log), api: api}
}

// ListByUser returns every category of the user.
func (s *Categories) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	return cache.Query(ctx, s.cache, CategoriesByUserKey(userID), func(ctx context.Context) ([]models.Category, error) {
		return nonNil(s.api.ListCategoriesByUser(ctx, userID))
	})
}

// ListByBudget returns the categories of one budget.
func (s *Categories) ListByBudget(ctx context.Context, budgetID string) ([]models.Category, error) {
	return cache.Query(ctx, s.cache, CategoriesByBudgetKey(budgetID), func(ctx context.Context) ([]models.Category, error) {
		return nonNil(s.api.ListCategoriesByBudget(ctx, budgetID))
	})
}

// Create adds a category to a budget.
func (s *Categories) Create(ctx context.Context, userID string, in models.CategoryInput) (*models.Category, error) {
	tempID, ref, at := s.placeholder(in.ClientRef)
	in.ClientRef = ref

	optimistic := models.Category{
		UserID:      userID,
		BudgetID:    in.BudgetID,
		Name:        in.Name,
		SectionName: in.SectionName,
		Budgeted:    in.Budgeted,
	}
	optimistic.ID = tempID
	optimistic.CreatedAt = at
	optimistic.UpdatedAt = at
	optimistic.ClientRef = ref
	optimistic.IsOptimistic = true

	return cache.Mutate(ctx, s.cache, cache.Mutation[[]models.Category, *models.Category]{
		Keys: []string{CategoriesByUserKey(userID), CategoriesByBudgetKey(in.BudgetID)},
		Apply: func(_ string, v []models.Category) []models.Category {
			return appendTo(v, optimistic)
		},
		Run: func(ctx context.Context) (*models.Category, error) {
			return s.api.CreateCategory(ctx, in)
		},
		Commit: func(_ string, v []models.Category, r *models.Category) []models.Category {
			return settle(v, ref, *r, appendTo[models.Category])
		},
		Invalidate: []string{BudgetsKey(userID)},
	})
}

// Update patches a category wherever it is listed.
func (s *Categories) Update(ctx context.Context, userID, id string, patch models.CategoryPatch) (*models.Category, error) {
	if err := checkSaved(id); err != nil {
		return nil, err
	}
	return cache.Mutate(ctx, s.cache, cache.Mutation[[]models.Category, *models.Category]{
		Keys:     []string{CategoriesByUserKey(userID)},
		Prefixes: []string{categoriesByBudgetPrefix},
		Apply: func(_ string, v []models.Category) []models.Category {
			return mapID(v, id, func(c models.Category) models.Category {
				patch.Apply(&c)
				c.IsOptimistic = true
				return c
			})
		},
		Run: func(ctx context.Context) (*models.Category, error) {
			return s.api.UpdateCategory(ctx, id, patch)
		},
		Commit: func(_ string, v []models.Category, r *models.Category) []models.Category {
			return replaceID(v, id, *r)
		},
		Invalidate: []string{BudgetsKey(userID)},
	})
}

// Delete removes a category. The server refuses while expenses use it.
func (s *Categories) Delete(ctx context.Context, userID, id string) error {
	if err := checkSaved(id); err != nil {
		return err
	}
	_, err := cache.Mutate(ctx, s.cache, cache.Mutation[[]models.Category, struct{}]{
		Keys:     []string{CategoriesByUserKey(userID)},
		Prefixes: []string{categoriesByBudgetPrefix},
		Apply: func(_ string, v []models.Category) []models.Category {
			return removeID(v, id)
		},
		Run: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.DeleteCategory(ctx, id)
		},
		Invalidate: []string{BudgetsKey(userID)},
	})
	return err
}

func nonNil[T any](list []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}
