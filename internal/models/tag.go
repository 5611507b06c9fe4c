package models

import "gorm.io/gorm"

type Tag struct {
	gorm.Model

	Name string `gorm:"uniqueIndex;not null"`

	// Relationships
	Tasks []Task `gorm:"many2many:task_tags"`
}
