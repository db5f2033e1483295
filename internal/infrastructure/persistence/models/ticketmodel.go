package models

import "gorm.io/datatypes"

// TicketModel is the read/write view of the tickets table the automation
// core needs: enough columns to build event snapshots and to apply rule
// actions. Ticket lifecycle itself is owned by the surrounding helpdesk
// application.
type TicketModel struct {
	ID              uint   `gorm:"primaryKey"`
	OrganizationID  uint   `gorm:"not null;index"`
	Number          string `gorm:"uniqueIndex;size:50;not null"`
	Title           string `gorm:"size:200;not null"`
	Status          string `gorm:"size:20;not null;index"`
	Priority        string `gorm:"size:20;not null;index"`
	AssigneeID      *uint  `gorm:"index"`
	EscalationLevel int    `gorm:"not null;default:0"`
	Tags            datatypes.JSON
	RequiredSkills  datatypes.JSON
	CustomFields    datatypes.JSON
	Version         int    `gorm:"not null;default:1"`
	CreatedAt       int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt       int64  `gorm:"autoUpdateTime:milli;not null"`

	// Note: No foreign key constraints or associations.
	// All relationships are managed by application business logic.
}

func (TicketModel) TableName() string {
	return "tickets"
}
