// Package aibudget turns a budget assistant suggestion into a budget and its
// categories.
package aibudget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pennywise/internal/models"
)

// ErrEmptyPrompt is returned for a blank prompt.
var ErrEmptyPrompt = errors.New("aibudget: prompt is empty")

// Planner asks the assistant for an income split.
type Planner interface {
	AICreateBudget(ctx context.Context, in models.AIBudgetRequest) (*models.AIBudgetResponse, error)
}

// BudgetCreator creates budgets, usually store.Budgets.
type BudgetCreator interface {
	Create(ctx context.Context, userID string, in models.BudgetInput) (*models.Budget, error)
}

// CategoryCreator creates categories, usually store.Categories.
type CategoryCreator interface {
	Create(ctx context.Context, userID string, in models.CategoryInput) (*models.Category, error)
}

// Result is what Create produced. On a category failure it holds the
// categories created before the failure.
type Result struct {
	Suggestion *models.AIBudgetResponse
	Budget     *models.Budget
	Categories []models.Category
}

// Creator runs the AI budget flow.
type Creator struct {
	planner    Planner
	budgets    BudgetCreator
	categories CategoryCreator
	log        *zap.SugaredLogger
	now        func() time.Time
}

// New creates a Creator.
func New(planner Planner, budgets BudgetCreator, categories CategoryCreator, log *zap.SugaredLogger) *Creator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Creator{planner: planner, budgets: budgets, categories: categories, log: log, now: time.Now}
}

// Suggest asks the assistant without creating anything.
func (c *Creator) Suggest(ctx context.Context, prompt string, income *decimal.Decimal) (*models.AIBudgetResponse, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	resp, err := c.planner.AICreateBudget(ctx, models.AIBudgetRequest{Prompt: prompt, Income: income})
	if err != nil {
		return nil, fmt.Errorf("asking budget assistant: %w", err)
	}
	return resp, nil
}

// Create asks the assistant for a split of the prompt's income, creates a
// budget for the current month holding the whole income and then one
// category per suggestion.
func (c *Creator) Create(ctx context.Context, userID, prompt string) (*Result, error) {
	suggestion, err := c.Suggest(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}
	return c.Apply(ctx, userID, suggestion)
}

// Apply creates the budget and categories for an existing suggestion.
func (c *Creator) Apply(ctx context.Context, userID string, suggestion *models.AIBudgetResponse) (*Result, error) {
	res := &Result{Suggestion: suggestion}

	allocated := decimal.Zero
	for _, cat := range suggestion.Categories {
		allocated = allocated.Add(cat.Amount)
	}
	if allocated.GreaterThan(suggestion.Income) {
		c.log.Warnw("assistant allocated more than income", "income", suggestion.Income, "allocated", allocated)
	}

	now := c.now()
	income := suggestion.Income
	budget, err := c.budgets.Create(ctx, userID, models.BudgetInput{
		Month:          int(now.Month()),
		Year:           now.Year(),
		TotalBudgeted:  income,
		TotalAvailable: &income,
	})
	if err != nil {
		return res, fmt.Errorf("creating budget: %w", err)
	}
	res.Budget = budget

	for _, cat := range suggestion.Categories {
		created, err := c.categories.Create(ctx, userID, models.CategoryInput{
			BudgetID:    budget.ID,
			Name:        cat.Name,
			SectionName: cat.SectionName,
			Budgeted:    cat.Amount,
		})
		if err != nil {
			return res, fmt.Errorf("creating category %q: %w", cat.Name, err)
		}
		res.Categories = append(res.Categories, *created)
	}

	c.log.Infow("ai budget created", "user_id", userID, "budget_id", budget.ID, "categories", len(res.Categories))
	return res, nil
}
