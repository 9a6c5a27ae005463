package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a category inside one of the user's budgets.
func (s *categoryService) CreateCategory(userID string, in models.CategoryInput) (*models.Category, error) {
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if in.Budgeted.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "budgeted must not be negative")
	}
	if err := ownsBudget(s.db, userID, in.BudgetID); err != nil {
		return nil, err
	}

	category := &models.Category{
		Envelope:    models.Envelope{ClientRef: in.ClientRef},
		UserID:      userID,
		BudgetID:    in.BudgetID,
		Name:        in.Name,
		SectionName: in.SectionName,
		Budgeted:    in.Budgeted,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories lists every category the user owns.
func (s *categoryService) GetUserCategories(userID string) ([]models.Category, error) {
	return s.find(s.db.Where("user_id = ?", userID))
}

// GetBudgetCategories lists the categories of one budget.
func (s *categoryService) GetBudgetCategories(userID, budgetID string) ([]models.Category, error) {
	if err := ownsBudget(s.db, userID, budgetID); err != nil {
		return nil, err
	}
	return s.find(s.db.Where("user_id = ? AND budget_id = ?", userID, budgetID))
}

func (s *categoryService) find(q *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	if err := q.Order("created_at ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// GetCategoryByID returns a category by ID if it belongs to the user.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory applies a partial update. Spent is derived from expenses
// and cannot be patched.
func (s *categoryService) UpdateCategory(userID, categoryID string, patch models.CategoryPatch) (*models.Category, error) {
	if patch.Name != nil && *patch.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
	}
	if patch.Budgeted != nil && patch.Budgeted.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "budgeted must not be negative")
	}

	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	patch.Apply(category)
	updates := map[string]interface{}{
		"name":         category.Name,
		"section_name": category.SectionName,
		"budgeted":     category.Budgeted,
	}
	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// DeleteCategory soft-deletes a category that has no expenses.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Expense{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ownsBudget returns ErrBudgetNotFound unless the budget exists and belongs to the user.
func ownsBudget(db *gorm.DB, userID, budgetID string) error {
	var count int64
	if err := db.Model(&models.Budget{}).Where("id = ? AND user_id = ?", budgetID, userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}
