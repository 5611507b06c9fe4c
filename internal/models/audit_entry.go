package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrAuditImmutable = errors.New("audit entries are append-only")

// AuditEntry records a single create/update/delete of a tracked entity.
// It deliberately does not embed gorm.Model: entries are never updated
// or deleted, so there is no UpdatedAt or DeletedAt.
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	ActorID    uint   `gorm:"not null;index"`
	Action     string `gorm:"not null"` // "create", "update" or "delete"
	EntityType string `gorm:"not null;index"`
	EntityID   uint   `gorm:"not null"`

	// Scope of the entry, used for visibility checks. Nullable because
	// user-level entries belong to neither a project nor a team.
	ProjectID *uint `gorm:"index"`
	TeamID    *uint `gorm:"index"`

	Before datatypes.JSON `gorm:"type:jsonb"` // null for creates
	After  datatypes.JSON `gorm:"type:jsonb"` // null for deletes
}

func (AuditEntry) BeforeUpdate(*gorm.DB) error { return ErrAuditImmutable }
func (AuditEntry) BeforeDelete(*gorm.DB) error { return ErrAuditImmutable }
