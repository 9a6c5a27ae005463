package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pennywise/internal/models"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a free-plan user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a free-plan user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     "Test User",
		Plan:     models.UserPlanFree,
		Currency: "USD",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBudget creates a budget for the current month with the given total.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, total int64) *models.Budget {
	t.Helper()

	now := time.Now()
	budget := &models.Budget{
		UserID:         userID,
		Month:          int(now.Month()),
		Year:           now.Year(),
		TotalBudgeted:  decimal.NewFromInt(total),
		TotalAvailable: decimal.NewFromInt(total),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestCategory creates a category inside budgetID.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID, budgetID string, budgeted int64) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:      userID,
		BudgetID:    budgetID,
		Name:        fmt.Sprintf("Category %d", nextID()),
		SectionName: "Needs",
		Budgeted:    decimal.NewFromInt(budgeted),
		Spent:       decimal.Zero,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense creates an expense dated today. It does not update the
// category's spent total.
func CreateTestExpense(t *testing.T, db *gorm.DB, category *models.Category, expenseType models.ExpenseType, amount string) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:      category.UserID,
		BudgetID:    category.BudgetID,
		CategoryID:  category.ID,
		Amount:      decimal.RequireFromString(amount),
		Description: "Test expense",
		Date:        time.Now().Format(models.DateLayout),
		Type:        expenseType,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestFlag creates a feature flag.
func CreateTestFlag(t *testing.T, db *gorm.DB, key string, free, pro bool) *models.FeatureFlag {
	t.Helper()

	flag := &models.FeatureFlag{Key: key, EnabledFree: free, EnabledPro: pro, EnabledAdmin: true}
	if err := db.Create(flag).Error; err != nil {
		t.Fatalf("failed to create test flag: %v", err)
	}
	return flag
}
