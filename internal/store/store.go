// Package store exposes budgets, categories and expenses to the app through
// the optimistic cache. Lists are keyed by owner or parent:
//
//	budgets:user:<userID>
//	categories:user:<userID>
//	categories:budget:<budgetID>
//	expenses:user:<userID>
package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"pennywise/internal/cache"
	"pennywise/internal/models"
	"pennywise/internal/uuid"
)

// ErrUnsaved is returned when updating or deleting a record that only exists
// as an optimistic placeholder.
var ErrUnsaved = errors.New("store: record has not been saved yet")

// Key prefixes.
const (
	budgetsPrefix            = "budgets:user:"
	categoriesByUserPrefix   = "categories:user:"
	categoriesByBudgetPrefix = "categories:budget:"
	expensesPrefix           = "expenses:user:"
)

// BudgetsKey is the cache key of a user's budgets.
func BudgetsKey(userID string) string { return budgetsPrefix + userID }

// CategoriesByUserKey is the cache key of all of a user's categories.
func CategoriesByUserKey(userID string) string { return categoriesByUserPrefix + userID }

// CategoriesByBudgetKey is the cache key of one budget's categories.
func CategoriesByBudgetKey(budgetID string) string { return categoriesByBudgetPrefix + budgetID }

// ExpensesKey is the cache key of a user's expenses.
func ExpensesKey(userID string) string { return expensesPrefix + userID }

// BudgetAPI is the part of the gateway the budget store uses.
type BudgetAPI interface {
	ListBudgets(ctx context.Context, userID string) ([]models.Budget, error)
	CreateBudget(ctx context.Context, in models.BudgetInput) (*models.Budget, error)
	UpdateBudget(ctx context.Context, id string, patch models.BudgetPatch) (*models.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	ResetBudgets(ctx context.Context) error
}

// CategoryAPI is the part of the gateway the category store uses.
type CategoryAPI interface {
	ListCategoriesByUser(ctx context.Context, userID string) ([]models.Category, error)
	ListCategoriesByBudget(ctx context.Context, budgetID string) ([]models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// ExpenseAPI is the part of the gateway the expense store uses.
type ExpenseAPI interface {
	ListExpenses(ctx context.Context, userID string) ([]models.Expense, error)
	CreateExpense(ctx context.Context, in models.ExpenseInput) (*models.Expense, error)
	UpdateExpense(ctx context.Context, id string, patch models.ExpensePatch) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

type base struct {
	cache *cache.Cache
	log   *zap.SugaredLogger
	now   func() time.Time
}

func newBase(c *cache.Cache, log *zap.SugaredLogger) base {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return base{cache: c, log: log, now: time.Now}
}

// placeholder returns the temp id, correlation ref and timestamp of a new
// optimistic record.
func (b base) placeholder(ref string) (id, clientRef string, at time.Time) {
	at = b.now()
	if ref == "" {
		ref = uuid.NewRef()
	}
	return uuid.TempID(at), ref, at
}

type record interface {
	RecordID() string
	CorrelationRef() string
	Optimistic() bool
}

func prepend[T any](list []T, r T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, r)
	return append(out, list...)
}

func appendTo[T any](list []T, r T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	return append(out, r)
}

// settle swaps the optimistic record carrying ref for the server record. If
// the placeholder is gone the server record is added with add.
func settle[T record](list []T, ref string, r T, add func([]T, T) []T) []T {
	out := make([]T, 0, len(list))
	found := false
	for _, it := range list {
		if it.Optimistic() && it.CorrelationRef() == ref {
			if !found {
				out = append(out, r)
				found = true
			}
			continue
		}
		if it.RecordID() == r.RecordID() {
			continue
		}
		out = append(out, it)
	}
	if !found {
		return add(out, r)
	}
	return out
}

// mapID returns a copy of list with fn applied to the record with id.
func mapID[T record](list []T, id string, fn func(T) T) []T {
	out := make([]T, len(list))
	for i, it := range list {
		if it.RecordID() == id {
			it = fn(it)
		}
		out[i] = it
	}
	return out
}

// replaceID returns a copy of list with the record with id replaced by r.
func replaceID[T record](list []T, id string, r T) []T {
	return mapID(list, id, func(T) T { return r })
}

// removeID returns a copy of list without the record with id.
func removeID[T record](list []T, id string) []T {
	out := make([]T, 0, len(list))
	for _, it := range list {
		if it.RecordID() != id {
			out = append(out, it)
		}
	}
	return out
}

func checkSaved(id string) error {
	if uuid.IsTemp(id) {
		return ErrUnsaved
	}
	return nil
}
