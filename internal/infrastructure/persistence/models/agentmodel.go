package models

import "gorm.io/datatypes"

// AgentModel persists the assignment view of a support agent: skills,
// current workload and optional geo position for the nearest strategy.
type AgentModel struct {
	ID             uint    `gorm:"primaryKey"`
	OrganizationID uint    `gorm:"not null;index"`
	Name           string  `gorm:"size:100;not null"`
	Skills         datatypes.JSON
	OpenTickets    int     `gorm:"not null;default:0"`
	Latitude       *float64
	Longitude      *float64
	LastAssignedAt *int64
	IsAvailable    bool  `gorm:"not null;default:true;index"`
	CreatedAt      int64 `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt      int64 `gorm:"autoUpdateTime:milli;not null"`
}

func (AgentModel) TableName() string {
	return "agents"
}
