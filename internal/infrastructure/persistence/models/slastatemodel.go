package models

// SLAStateModel persists the running SLA clock for one ticket. StartedAt
// is the ticket creation instant the clock was anchored to; CreatedAt and
// UpdatedAt track the row itself. All instants are stored as Unix
// milliseconds in UTC.
type SLAStateModel struct {
	ID               uint   `gorm:"primaryKey"`
	TicketID         uint   `gorm:"uniqueIndex;not null"`
	OrganizationID   uint   `gorm:"not null;index"`
	PolicyID         uint   `gorm:"not null"`
	StartedAt        int64  `gorm:"not null"`
	FirstResponseDue int64  `gorm:"not null"`
	ResolutionDue    int64  `gorm:"not null;index"`
	FirstResponseAt  *int64
	PausedAt         *int64
	RemainingMinutes *int
	PausedTarget     string `gorm:"size:20"`
	Breached         bool   `gorm:"not null;default:false;index"`
	EscalationLevel  int    `gorm:"not null;default:0"`
	Version          int    `gorm:"not null;default:1"`
	CreatedAt        int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt        int64  `gorm:"autoUpdateTime:milli;not null"`

	// Note: No foreign key constraints or associations.
	// All relationships are managed by application business logic.
}

func (SLAStateModel) TableName() string {
	return "ticket_sla_states"
}
