package models

// UserPlan is the user's classification for plan-gated features.
type UserPlan string

const (
	UserPlanFree  UserPlan = "free"
	UserPlanPro   UserPlan = "pro"
	UserPlanAdmin UserPlan = "admin"
)

// User represents the user model in the database
type User struct {
	Base
	Email         string   `gorm:"uniqueIndex;not null" json:"email"`
	Password      string   `json:"-"`
	Name          string   `json:"name"`
	Plan          UserPlan `gorm:"not null;default:'free'" json:"plan"`
	Currency      string   `gorm:"size:3;not null;default:'USD'" json:"currency"`
	GoogleSubject string   `gorm:"index" json:"-"`
	IsActive      bool     `gorm:"default:true" json:"-"`
}
