package models

import "gorm.io/gorm"

type Team struct {
	gorm.Model

	Name string `gorm:"uniqueIndex;not null"`

	// Relationships
	Memberships []TeamMembership `gorm:"foreignKey:TeamID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Projects    []Project        `gorm:"many2many:project_teams"`
}
