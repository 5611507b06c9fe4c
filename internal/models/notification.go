package models

import (
	"time"

	"gorm.io/gorm"
)

type Notification struct {
	gorm.Model

	UserID  uint   `gorm:"not null;index"`
	TaskID  uint   `gorm:"not null;index"`
	Kind    string `gorm:"not null"` // e.g. "task_overdue"
	Message string
	SentAt  *time.Time

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
