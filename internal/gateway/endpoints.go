package gateway

import (
	"context"
	"net/http"
	"net/url"

	"pennywise/internal/models"
)

// ListBudgets returns the user's budgets, newest first.
func (c *Client) ListBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	var out []models.Budget
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/budgets",
		query:  url.Values{"user": {userID}, "sort": {"-createdAt"}},
		out:    &out,
	})
	return out, err
}

// CreateBudget creates a budget for the signed-in user.
func (c *Client) CreateBudget(ctx context.Context, in models.BudgetInput) (*models.Budget, error) {
	var out models.Budget
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/budgets", body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBudget applies patch to budget id.
func (c *Client) UpdateBudget(ctx context.Context, id string, patch models.BudgetPatch) (*models.Budget, error) {
	var out models.Budget
	if err := c.do(ctx, call{method: http.MethodPut, path: "/api/budgets/" + url.PathEscape(id), body: patch, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBudget deletes budget id.
func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/api/budgets/" + url.PathEscape(id)})
}

// ResetBudgets deletes every budget, category and expense of the signed-in user.
func (c *Client) ResetBudgets(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/api/budgets/reset"})
}

// ListCategoriesByUser returns every category of the user.
func (c *Client) ListCategoriesByUser(ctx context.Context, userID string) ([]models.Category, error) {
	var out []models.Category
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/categories", query: url.Values{"user": {userID}}, out: &out})
	return out, err
}

// ListCategoriesByBudget returns the categories of one budget.
func (c *Client) ListCategoriesByBudget(ctx context.Context, budgetID string) ([]models.Category, error) {
	var out []models.Category
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/categories", query: url.Values{"budget": {budgetID}}, out: &out})
	return out, err
}

// CreateCategory adds a category to a budget.
func (c *Client) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/categories", body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCategory applies patch to category id.
func (c *Client) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, call{method: http.MethodPut, path: "/api/categories/" + url.PathEscape(id), body: patch, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory deletes category id. The server answers 409 while expenses use it.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/api/categories/" + url.PathEscape(id)})
}

// ListExpenses returns the user's expenses.
func (c *Client) ListExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	var out []models.Expense
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/expenses", query: url.Values{"user": {userID}}, out: &out})
	return out, err
}

// CreateExpense records an expense or income entry.
func (c *Client) CreateExpense(ctx context.Context, in models.ExpenseInput) (*models.Expense, error) {
	var out models.Expense
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/expenses", body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateExpense applies patch to expense id.
func (c *Client) UpdateExpense(ctx context.Context, id string, patch models.ExpensePatch) (*models.Expense, error) {
	var out models.Expense
	if err := c.do(ctx, call{method: http.MethodPut, path: "/api/expenses/" + url.PathEscape(id), body: patch, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteExpense deletes expense id.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/api/expenses/" + url.PathEscape(id)})
}

// GetCurrency returns the user's ISO 4217 currency code.
func (c *Client) GetCurrency(ctx context.Context) (string, error) {
	var out models.CurrencyPayload
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/users/currency", out: &out}); err != nil {
		return "", err
	}
	return out.Currency, nil
}

// UpdateCurrency sets the user's currency and returns the stored code.
func (c *Client) UpdateCurrency(ctx context.Context, currency string) (string, error) {
	var out models.CurrencyPayload
	err := c.do(ctx, call{
		method: http.MethodPut,
		path:   "/api/users/currency",
		body:   models.CurrencyPayload{Currency: currency},
		out:    &out,
	})
	if err != nil {
		return "", err
	}
	return out.Currency, nil
}

// GetFeatures returns the flag set for the signed-in user on platform.
func (c *Client) GetFeatures(ctx context.Context, platform models.Platform) (*models.FeatureResponse, error) {
	var out models.FeatureResponse
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/features",
		query:  url.Values{"platform": {string(platform)}},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AICreateBudget asks the budget assistant for an income split.
func (c *Client) AICreateBudget(ctx context.Context, in models.AIBudgetRequest) (*models.AIBudgetResponse, error) {
	var out models.AIBudgetResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/budgets/ai-create", body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, in models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/register",
		body:   in,
		out:    &out,
		public: true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/mobile-login",
		body:   models.LoginRequest{Email: email, Password: password},
		out:    &out,
		public: true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GoogleCallback exchanges an OAuth authorization code for a session.
func (c *Client) GoogleCallback(ctx context.Context, code, redirectURI string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/callback/google",
		body:   models.GoogleCallbackRequest{Code: code, RedirectURI: redirectURI},
		out:    &out,
		public: true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/api/auth/logout"})
}
