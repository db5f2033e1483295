package models

import "gorm.io/datatypes"

// RuleModel persists an automation rule. The condition tree and action
// list are stored as JSON documents; the execution counters live in
// dedicated columns so they can be incremented in-database.
type RuleModel struct {
	ID              uint   `gorm:"primaryKey"`
	SID             string `gorm:"uniqueIndex;size:32;not null"`
	OrganizationID  uint   `gorm:"not null;index"`
	Name            string `gorm:"size:100;not null"`
	TriggerType     string `gorm:"size:50;not null;index"`
	ConditionTree   datatypes.JSON
	Actions         datatypes.JSON `gorm:"not null"`
	ExecutionOrder  int    `gorm:"not null;default:0"`
	IsActive        bool   `gorm:"not null;default:false;index"`
	StopOnMatch     bool   `gorm:"not null;default:false"`
	ExecutionCount  int64  `gorm:"not null;default:0"`
	SuccessCount    int64  `gorm:"not null;default:0"`
	FailureCount    int64  `gorm:"not null;default:0"`
	TotalDurationMS int64  `gorm:"not null;default:0"`
	Version         int    `gorm:"not null;default:1"`
	CreatedAt       int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt       int64  `gorm:"autoUpdateTime:milli;not null"`

	// Note: No foreign key constraints or associations.
	// All relationships are managed by application business logic.
}

func (RuleModel) TableName() string {
	return "automation_rules"
}
