package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense records an expense and refreshes the spent total of its category.
func (s *expenseService) CreateExpense(userID string, in models.ExpenseInput) (*models.Expense, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if in.Type == "" {
		in.Type = models.ExpenseTypeExpense
	}

	expense := &models.Expense{
		Envelope:    models.Envelope{ClientRef: in.ClientRef},
		UserID:      userID,
		BudgetID:    in.BudgetID,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
		Type:        in.Type,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, userID, in.BudgetID, in.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recomputeSpent(tx, expense.CategoryID)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// GetUserExpenses lists the user's expenses, newest date first. A nil page
// returns every matching expense in a single page.
func (s *expenseService) GetUserExpenses(userID string, filter ExpenseFilter, page *pagination.PageRequest) (*pagination.Page[models.Expense], error) {
	base := applyExpenseFilters(s.db.Model(&models.Expense{}).Where("user_id = ?", userID), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	q := base.Order("date DESC").Order("created_at DESC")
	req := pagination.PageRequest{Page: 1, PageSize: int(totalItems)}
	if page != nil {
		req = page.Normalize()
		q = q.Scopes(req.Scope())
	}

	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(expenses, req, totalItems)
	return &result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.BudgetID != "" {
		q = q.Where("budget_id = ?", f.BudgetID)
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.FromDate != "" {
		q = q.Where("date >= ?", f.FromDate)
	}
	if f.ToDate != "" {
		q = q.Where("date <= ?", f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	return q
}

// GetExpenseByID retrieves an expense by ID for a specific user.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense applies a partial update. Moving an expense to another
// category refreshes the spent totals of both categories.
func (s *expenseService) UpdateExpense(userID, expenseID string, patch models.ExpensePatch) (*models.Expense, error) {
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}

	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}
	previousCategory := expense.CategoryID
	patch.Apply(expense)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if expense.CategoryID != previousCategory {
			if err := checkCategory(tx, userID, expense.BudgetID, expense.CategoryID); err != nil {
				return err
			}
		}
		updates := map[string]interface{}{
			"category_id": expense.CategoryID,
			"amount":      expense.Amount,
			"description": expense.Description,
			"date":        expense.Date,
			"type":        expense.Type,
		}
		if err := tx.Model(expense).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if expense.CategoryID != previousCategory {
			if err := recomputeSpent(tx, previousCategory); err != nil {
				return err
			}
		}
		return recomputeSpent(tx, expense.CategoryID)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense soft-deletes an expense and refreshes its category's spent total.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return recomputeSpent(tx, expense.CategoryID)
	})
}

// checkCategory verifies the category belongs to the user and to the budget.
func checkCategory(tx *gorm.DB, userID, budgetID, categoryID string) error {
	var category models.Category
	if err := tx.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.BudgetID != budgetID {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category does not belong to the budget")
	}
	return nil
}

// recomputeSpent stores the signed sum of the category's live expenses.
func recomputeSpent(tx *gorm.DB, categoryID string) error {
	var expenses []models.Expense
	if err := tx.Where("category_id = ?", categoryID).Find(&expenses).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := decimal.Zero
	for _, e := range expenses {
		spent = spent.Add(e.Signed())
	}
	if err := tx.Model(&models.Category{}).Where("id = ?", categoryID).Update("spent", spent).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
