package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a monthly budget for the user. TotalAvailable
// defaults to TotalBudgeted when the caller leaves it out.
func (s *budgetService) CreateBudget(userID string, in models.BudgetInput) (*models.Budget, error) {
	if in.TotalBudgeted.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "totalBudgeted must not be negative")
	}

	budget := &models.Budget{
		Envelope:       models.Envelope{ClientRef: in.ClientRef},
		UserID:         userID,
		Month:          in.Month,
		Year:           in.Year,
		TotalBudgeted:  in.TotalBudgeted,
		TotalAvailable: in.Available(),
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetUserBudgets lists the user's budgets, newest first when asked.
func (s *budgetService) GetUserBudgets(userID string, newestFirst bool) ([]models.Budget, error) {
	order := "created_at ASC"
	if newestFirst {
		order = "created_at DESC"
	}

	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).Order(order).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	return budgets, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget applies a partial update.
func (s *budgetService) UpdateBudget(userID, budgetID string, patch models.BudgetPatch) (*models.Budget, error) {
	if patch.TotalBudgeted != nil && patch.TotalBudgeted.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "totalBudgeted must not be negative")
	}

	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return budget, nil
	}

	patch.Apply(budget)
	updates := map[string]interface{}{
		"month":           budget.Month,
		"year":            budget.Year,
		"total_budgeted":  budget.TotalBudgeted,
		"total_available": budget.TotalAvailable,
	}
	if err := s.db.Model(budget).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// DeleteBudget soft-deletes a budget together with its categories and expenses.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		return tx.Delete(budget).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ResetBudgets soft-deletes every budget, category and expense of the user.
func (s *budgetService) ResetBudgets(userID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Expense{}, &models.Category{}, &models.Budget{}} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
