package models

import (
	"time"

	"pennywise/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// RecordID returns the primary key.
func (b Base) RecordID() string { return b.ID }

// Envelope carries the client's bookkeeping for optimistic writes. ClientRef
// is a correlation id chosen by the client when it inserts a placeholder; the
// server stores and echoes it so the settled record can be matched back to the
// placeholder. IsOptimistic never leaves the client.
type Envelope struct {
	ClientRef    string `gorm:"size:36;index" json:"clientRef,omitempty"`
	IsOptimistic bool   `gorm:"-" json:"-"`
}

// CorrelationRef returns the client correlation id.
func (e Envelope) CorrelationRef() string { return e.ClientRef }

// Optimistic reports whether the record is an unconfirmed local write.
func (e Envelope) Optimistic() bool { return e.IsOptimistic }
