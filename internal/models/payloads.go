package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request and response bodies of the pennywise API. The server binds them
// with gin; the client gateway sends and decodes the same types.

// BudgetInput is the body of POST /api/budgets.
type BudgetInput struct {
	Month          int              `json:"month" binding:"required,min=1,max=12"`
	Year           int              `json:"year" binding:"required,min=2000,max=2100"`
	TotalBudgeted  decimal.Decimal  `json:"totalBudgeted"`
	TotalAvailable *decimal.Decimal `json:"totalAvailable,omitempty"`
	ClientRef      string           `json:"clientRef,omitempty" binding:"omitempty,max=36"`
}

// Available returns TotalAvailable, defaulting to TotalBudgeted.
func (in BudgetInput) Available() decimal.Decimal {
	if in.TotalAvailable != nil {
		return *in.TotalAvailable
	}
	return in.TotalBudgeted
}

// BudgetPatch is the body of PUT /api/budgets/:id. Nil fields are left unchanged.
type BudgetPatch struct {
	Month          *int             `json:"month,omitempty" binding:"omitempty,min=1,max=12"`
	Year           *int             `json:"year,omitempty" binding:"omitempty,min=2000,max=2100"`
	TotalBudgeted  *decimal.Decimal `json:"totalBudgeted,omitempty"`
	TotalAvailable *decimal.Decimal `json:"totalAvailable,omitempty"`
}

// Apply merges the patch into b.
func (p BudgetPatch) Apply(b *Budget) {
	if p.Month != nil {
		b.Month = *p.Month
	}
	if p.Year != nil {
		b.Year = *p.Year
	}
	if p.TotalBudgeted != nil {
		b.TotalBudgeted = *p.TotalBudgeted
	}
	if p.TotalAvailable != nil {
		b.TotalAvailable = *p.TotalAvailable
	}
}

// Empty reports whether the patch changes nothing.
func (p BudgetPatch) Empty() bool {
	return p.Month == nil && p.Year == nil && p.TotalBudgeted == nil && p.TotalAvailable == nil
}

// CategoryInput is the body of POST /api/categories.
type CategoryInput struct {
	BudgetID    string          `json:"budgetId" binding:"required"`
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	SectionName string          `json:"sectionName,omitempty" binding:"max=100"`
	Budgeted    decimal.Decimal `json:"budgeted"`
	ClientRef   string          `json:"clientRef,omitempty" binding:"omitempty,max=36"`
}

// CategoryPatch is the body of PUT /api/categories/:id.
type CategoryPatch struct {
	Name        *string          `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	SectionName *string          `json:"sectionName,omitempty" binding:"omitempty,max=100"`
	Budgeted    *decimal.Decimal `json:"budgeted,omitempty"`
}

// Apply merges the patch into c.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.SectionName != nil {
		c.SectionName = *p.SectionName
	}
	if p.Budgeted != nil {
		c.Budgeted = *p.Budgeted
	}
}

// ExpenseInput is the body of POST /api/expenses.
type ExpenseInput struct {
	BudgetID    string          `json:"budgetId" binding:"required"`
	CategoryID  string          `json:"categoryId" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=255"`
	Date        string          `json:"date" binding:"required,datetime=2006-01-02"`
	Type        ExpenseType     `json:"type" binding:"required,expense_type"`
	ClientRef   string          `json:"clientRef,omitempty" binding:"omitempty,max=36"`
}

// ExpensePatch is the body of PUT /api/expenses/:id.
type ExpensePatch struct {
	CategoryID  *string          `json:"categoryId,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty" binding:"omitempty,max=255"`
	Date        *string          `json:"date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Type        *ExpenseType     `json:"type,omitempty" binding:"omitempty,expense_type"`
}

// Apply merges the patch into e.
func (p ExpensePatch) Apply(e *Expense) {
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
}

// LoginRequest is the body of POST /api/mobile-login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"max=100"`
}

// GoogleCallbackRequest is the body of POST /api/auth/callback/google.
type GoogleCallbackRequest struct {
	Code        string `json:"code" binding:"required"`
	RedirectURI string `json:"redirectUri,omitempty"`
}

// AuthResponse is returned by every sign-in endpoint.
type AuthResponse struct {
	User    User       `json:"user"`
	Token   string     `json:"token"`
	Expires *time.Time `json:"expires,omitempty"`
}

// CurrencyPayload is the body and response of /api/users/currency.
type CurrencyPayload struct {
	Currency string `json:"currency" binding:"required,iso4217"`
}

// FeatureResponse is returned by GET /api/features.
type FeatureResponse struct {
	Features map[string]bool `json:"features"`
	UserType UserPlan        `json:"userType"`
	UserID   string          `json:"userId"`
	Platform Platform        `json:"platform"`
}

// Clone returns a deep copy.
func (r FeatureResponse) Clone() FeatureResponse {
	out := r
	out.Features = make(map[string]bool, len(r.Features))
	for k, v := range r.Features {
		out.Features[k] = v
	}
	return out
}

// AIBudgetRequest is the body of POST /api/budgets/ai-create.
type AIBudgetRequest struct {
	Prompt string           `json:"prompt" binding:"required,max=2000"`
	Income *decimal.Decimal `json:"income,omitempty"`
}

// AICategory is one category suggested by the budget assistant.
type AICategory struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	SectionName string          `json:"sectionName,omitempty"`
}

// AIBudgetResponse is returned by POST /api/budgets/ai-create.
type AIBudgetResponse struct {
	Income     decimal.Decimal `json:"income"`
	Categories []AICategory    `json:"categories"`
}
