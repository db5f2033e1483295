package models

import "gorm.io/datatypes"

// PolicyModel persists an SLA policy. Escalation thresholds, including
// their action lists, are stored as one JSON document. CalendarID zero
// means the policy runs on the continuous 24/7 calendar.
type PolicyModel struct {
	ID                   uint   `gorm:"primaryKey"`
	SID                  string `gorm:"uniqueIndex;size:32;not null"`
	OrganizationID       uint   `gorm:"not null;index"`
	Name                 string `gorm:"size:100;not null"`
	FirstResponseMinutes int    `gorm:"not null"`
	ResolutionMinutes    int    `gorm:"not null"`
	CalendarID           uint   `gorm:"not null;default:0"`
	Thresholds           datatypes.JSON
	IsActive             bool   `gorm:"not null;default:false;index"`
	Version              int    `gorm:"not null;default:1"`
	CreatedAt            int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt            int64  `gorm:"autoUpdateTime:milli;not null"`
}

func (PolicyModel) TableName() string {
	return "sla_policies"
}
