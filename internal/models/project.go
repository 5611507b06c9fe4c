package models

import "gorm.io/gorm"

type Project struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	CreatorID   uint `gorm:"not null;index"`

	// Webhook notification settings, per project
	WebhookURL     string
	NotifyOverdue  bool `gorm:"default:true"`
	NotifyActivity bool `gorm:"default:false"`

	// Relationships
	Creator User   `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Teams   []Team `gorm:"many2many:project_teams"`
	Tasks   []Task `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
