package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// DefaultFlags are seeded on startup when the flag table has no row for the key.
var DefaultFlags = []models.FeatureFlag{
	{Key: "ai_budget_creation", Description: "Create a budget from a description", EnabledPro: true, EnabledAdmin: true},
	{Key: "ai_transaction_entry", Description: "Record expenses from free text", EnabledPro: true, EnabledAdmin: true, Platforms: "mobile"},
	{Key: "advanced_reports", Description: "Spending breakdowns and trends", EnabledPro: true, EnabledAdmin: true},
	{Key: "export_data", Description: "Export budgets and expenses", EnabledPro: true, EnabledAdmin: true},
	{Key: "multiple_budgets", Description: "Keep more than one budget per month", EnabledPro: true, EnabledAdmin: true},
	{Key: "dark_mode", Description: "Dark colour scheme", EnabledFree: true, EnabledPro: true, EnabledAdmin: true},
}

// featureService resolves feature flags per user plan and platform.
type featureService struct {
	db *gorm.DB
}

// NewFeatureService creates a new FeatureServicer.
func NewFeatureService(db *gorm.DB) FeatureServicer {
	return &featureService{db: db}
}

// ResolveFeatures evaluates every flag for the user on the given platform.
func (s *featureService) ResolveFeatures(userID string, platform models.Platform) (*models.FeatureResponse, error) {
	if platform == "" {
		platform = models.PlatformMobile
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var flags []models.FeatureFlag
	if err := s.db.Order("key ASC").Find(&flags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	features := make(map[string]bool, len(flags))
	for _, f := range flags {
		features[f.Key] = f.EnabledFor(user.Plan, platform)
	}
	return &models.FeatureResponse{
		Features: features,
		UserType: user.Plan,
		UserID:   user.ID,
		Platform: platform,
	}, nil
}

// UpsertFlag creates the flag or replaces the settings of the flag with the same key.
func (s *featureService) UpsertFlag(flag models.FeatureFlag) (*models.FeatureFlag, error) {
	if flag.Key == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "flag key is required")
	}

	var existing models.FeatureFlag
	err := s.db.Where("key = ?", flag.Key).First(&existing).Error
	switch {
	case err == nil:
		flag.ID = existing.ID
		flag.CreatedAt = existing.CreatedAt
		if err := s.db.Save(&flag).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(&flag).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &flag, nil
}

// SeedDefaults inserts DefaultFlags, leaving flags that already exist untouched.
func (s *featureService) SeedDefaults() error {
	for _, f := range DefaultFlags {
		flag := f
		if err := s.db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).Create(&flag).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}
