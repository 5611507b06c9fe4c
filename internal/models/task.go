package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	ProjectID   uint   `gorm:"not null;index"`
	Title       string `gorm:"not null;index"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"not null;default:open"`
	Priority    int    `gorm:"not null;default:1"`
	DueDate     *time.Time
	CreatorID   uint `gorm:"not null;index"`

	// Set once the deadline sweeper has notified assignees.
	OverdueNotifiedAt *time.Time

	// Relationships
	Project   Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Creator   User      `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Assignees []User    `gorm:"many2many:task_assignees"`
	Tags      []Tag     `gorm:"many2many:task_tags"`
	Comments  []Comment `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
