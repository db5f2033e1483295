package models

import "gorm.io/datatypes"

// CalendarModel persists a business-hours calendar. Weekly windows and
// holiday overrides are stored as JSON documents keyed the way the domain
// serializes them.
type CalendarModel struct {
	ID             uint   `gorm:"primaryKey"`
	SID            string `gorm:"uniqueIndex;size:32;not null"`
	OrganizationID uint   `gorm:"not null;index"`
	Name           string `gorm:"size:100;not null"`
	Timezone       string `gorm:"size:64;not null"`
	WeeklyWindows  datatypes.JSON
	Holidays       datatypes.JSON
	Continuous     bool   `gorm:"not null;default:false"`
	Version        int    `gorm:"not null;default:1"`
	CreatedAt      int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt      int64  `gorm:"autoUpdateTime:milli;not null"`
}

func (CalendarModel) TableName() string {
	return "sla_calendars"
}
