package models

// AuditLog records user mutations for support and compliance.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;not null;index" json:"userId"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resourceType"`
	ResourceID   string `json:"resourceId"`
	IPAddress    string `json:"ipAddress"`
	Changes      string `json:"changes,omitempty"`
}
