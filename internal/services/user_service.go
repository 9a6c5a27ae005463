package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/validator"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user
func (s *userService) CreateUser(email, password, name string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}
	email = strings.ToLower(email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hashedPassword),
		Name:     name,
		Plan:     models.UserPlanFree,
		Currency: "USD",
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(email), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash.
// Accounts created through Google have no password and never match.
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	if user.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// FindOrCreateGoogleUser returns the user linked to the Google subject,
// linking an existing account with the same email or creating a new one.
func (s *userService) FindOrCreateGoogleUser(profile *GoogleProfile) (*models.User, error) {
	if profile == nil || profile.Subject == "" || profile.Email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "incomplete Google profile")
	}

	var user models.User
	err := s.db.Where("google_subject = ?", profile.Subject).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	existing, err := s.GetUserByEmail(profile.Email)
	switch {
	case err == nil:
		if err := s.db.Model(existing).Update("google_subject", profile.Subject).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return existing, nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return nil, err
	}

	user = models.User{
		Email:         strings.ToLower(profile.Email),
		Name:          profile.Name,
		Plan:          models.UserPlanFree,
		Currency:      "USD",
		GoogleSubject: profile.Subject,
		IsActive:      true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetCurrency returns the user's display currency.
func (s *userService) GetCurrency(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.Currency, nil
}

// UpdateCurrency changes the user's display currency.
func (s *userService) UpdateCurrency(userID, currency string) (string, error) {
	currency = strings.ToUpper(currency)
	if !validator.IsCurrency(currency) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported currency")
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	if err := s.db.Model(user).Update("currency", currency).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return currency, nil
}

// SetPlan changes the user's legacy plan classification.
func (s *userService) SetPlan(userID string, plan models.UserPlan) (*models.User, error) {
	switch plan {
	case models.UserPlanFree, models.UserPlanPro, models.UserPlanAdmin:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown plan")
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("plan", plan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}
