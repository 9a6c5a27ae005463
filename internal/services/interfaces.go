package services

import (
	"context"

	"github.com/shopspring/decimal"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	FindOrCreateGoogleUser(profile *GoogleProfile) (*models.User, error)
	GetCurrency(userID string) (string, error)
	UpdateCurrency(userID, currency string) (string, error)
	SetPlan(userID string, plan models.UserPlan) (*models.User, error)
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in models.BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, newestFirst bool) ([]models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, patch models.BudgetPatch) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	ResetBudgets(userID string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, in models.CategoryInput) (*models.Category, error)
	GetUserCategories(userID string) ([]models.Category, error)
	GetBudgetCategories(userID, budgetID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, patch models.CategoryPatch) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	BudgetID   string
	CategoryID string
	FromDate   string
	ToDate     string
	Type       *models.ExpenseType
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID string, in models.ExpenseInput) (*models.Expense, error)
	GetUserExpenses(userID string, filter ExpenseFilter, page *pagination.PageRequest) (*pagination.Page[models.Expense], error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, patch models.ExpensePatch) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
}

// FeatureServicer defines the contract for feature-flag resolution.
type FeatureServicer interface {
	ResolveFeatures(userID string, platform models.Platform) (*models.FeatureResponse, error)
	UpsertFlag(flag models.FeatureFlag) (*models.FeatureFlag, error)
	SeedDefaults() error
}

// Planner turns a free-text description of someone's finances into a
// budget proposal.
type Planner interface {
	Plan(ctx context.Context, prompt string, income *decimal.Decimal) (*models.AIBudgetResponse, error)
}

// GoogleProfile is the identity returned by a Google sign-in.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
}

// GoogleIdentity exchanges an OAuth authorization code for a profile.
type GoogleIdentity interface {
	Exchange(ctx context.Context, code, redirectURI string) (*GoogleProfile, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
