package services

import (
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pennywise/internal/logger"
	"pennywise/internal/models"
)

// auditService appends rows to audit_logs. Writing an audit row never fails
// the request that caused it.
type auditService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db, log: logger.Get()}
}

func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	row := models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      s.encode(action, changes),
	}
	if err := s.db.Create(&row).Error; err != nil {
		s.log.Errorw("audit write failed", "error", err, "user_id", userID, "action", action, "resource", resourceType+"/"+resourceID)
	}
}

// encode renders changes as JSON; nil stays empty.
func (s *auditService) encode(action string, changes map[string]interface{}) string {
	if len(changes) == 0 {
		return ""
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		s.log.Warnw("audit changes not encodable", "error", err, "action", action)
		return "{}"
	}
	return string(raw)
}
