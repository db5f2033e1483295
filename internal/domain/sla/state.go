package sla

import (
	"fmt"
	"time"
)

// DueTarget names which due date a pause snapshot refers to.
type DueTarget string

const (
	TargetFirstResponse DueTarget = "first_response"
	TargetResolution    DueTarget = "resolution"
)

// TicketSLAState tracks one (ticket, policy) pair. Breach and escalation
// level are monotonic: once raised they are never lowered by this package;
// only an explicit administrative override outside this subsystem may
// reset them.
type TicketSLAState struct {
	id               uint
	ticketID         uint
	organizationID   uint
	policyID         uint
	createdAt        time.Time
	firstResponseDue time.Time
	resolutionDue    time.Time
	firstResponseAt  *time.Time
	pausedAt         *time.Time
	remainingMinutes *int
	pausedTarget     DueTarget
	breached         bool
	escalationLevel  int
	version          int
	updatedAt        time.Time
}

// StartState computes the due dates for a freshly created ticket under an
// active policy.
func StartState(ticketID, organizationID uint, policy *Policy, cal *Calendar, createdAt time.Time) (*TicketSLAState, error) {
	if ticketID == 0 {
		return nil, fmt.Errorf("ticket ID is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("policy is required")
	}
	if !policy.IsActive() {
		return nil, fmt.Errorf("policy %d is not active", policy.ID())
	}
	if cal == nil {
		return nil, fmt.Errorf("calendar is required")
	}

	createdAt = createdAt.UTC()
	return &TicketSLAState{
		ticketID:         ticketID,
		organizationID:   organizationID,
		policyID:         policy.ID(),
		createdAt:        createdAt,
		firstResponseDue: AddBusinessTime(createdAt, policy.FirstResponseMinutes(), cal),
		resolutionDue:    AddBusinessTime(createdAt, policy.ResolutionMinutes(), cal),
		version:          1,
		updatedAt:        createdAt,
	}, nil
}

func ReconstructState(
	id uint,
	ticketID uint,
	organizationID uint,
	policyID uint,
	createdAt time.Time,
	firstResponseDue time.Time,
	resolutionDue time.Time,
	firstResponseAt *time.Time,
	pausedAt *time.Time,
	remainingMinutes *int,
	pausedTarget DueTarget,
	breached bool,
	escalationLevel int,
	version int,
	updatedAt time.Time,
) (*TicketSLAState, error) {
	if id == 0 {
		return nil, fmt.Errorf("state ID cannot be zero")
	}
	if ticketID == 0 {
		return nil, fmt.Errorf("ticket ID is required")
	}
	return &TicketSLAState{
		id:               id,
		ticketID:         ticketID,
		organizationID:   organizationID,
		policyID:         policyID,
		createdAt:        createdAt,
		firstResponseDue: firstResponseDue,
		resolutionDue:    resolutionDue,
		firstResponseAt:  firstResponseAt,
		pausedAt:         pausedAt,
		remainingMinutes: remainingMinutes,
		pausedTarget:     pausedTarget,
		breached:         breached,
		escalationLevel:  escalationLevel,
		version:          version,
		updatedAt:        updatedAt,
	}, nil
}

func (s *TicketSLAState) ID() uint                    { return s.id }
func (s *TicketSLAState) TicketID() uint              { return s.ticketID }
func (s *TicketSLAState) OrganizationID() uint        { return s.organizationID }
func (s *TicketSLAState) PolicyID() uint              { return s.policyID }
func (s *TicketSLAState) CreatedAt() time.Time        { return s.createdAt }
func (s *TicketSLAState) FirstResponseDue() time.Time { return s.firstResponseDue }
func (s *TicketSLAState) ResolutionDue() time.Time    { return s.resolutionDue }
func (s *TicketSLAState) FirstResponseAt() *time.Time { return s.firstResponseAt }
func (s *TicketSLAState) PausedAt() *time.Time        { return s.pausedAt }
func (s *TicketSLAState) RemainingMinutes() *int      { return s.remainingMinutes }
func (s *TicketSLAState) PausedTarget() DueTarget     { return s.pausedTarget }
func (s *TicketSLAState) IsBreached() bool            { return s.breached }
func (s *TicketSLAState) EscalationLevel() int        { return s.escalationLevel }
func (s *TicketSLAState) Version() int                { return s.version }
func (s *TicketSLAState) UpdatedAt() time.Time        { return s.updatedAt }

func (s *TicketSLAState) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("state ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("state ID cannot be zero")
	}
	s.id = id
	return nil
}

func (s *TicketSLAState) IsPaused() bool {
	return s.pausedAt != nil
}

// NextDue returns the earliest outstanding due date: first response while
// unfulfilled, resolution afterwards.
func (s *TicketSLAState) NextDue() (time.Time, DueTarget) {
	if s.firstResponseAt == nil {
		return s.firstResponseDue, TargetFirstResponse
	}
	return s.resolutionDue, TargetResolution
}

// MarkFirstResponse records fulfillment of the first-response target.
func (s *TicketSLAState) MarkFirstResponse(at time.Time) error {
	if s.firstResponseAt != nil {
		return fmt.Errorf("first response already marked")
	}
	at = at.UTC()
	s.firstResponseAt = &at
	s.touch(at)
	return nil
}

// Pause freezes SLA consumption. The remaining business minutes toward the
// next outstanding due date are snapshotted; the due timestamps themselves
// stay stale until resume.
func (s *TicketSLAState) Pause(at time.Time, cal *Calendar) error {
	if s.IsPaused() {
		return fmt.Errorf("state is already paused")
	}
	at = at.UTC()
	due, target := s.NextDue()
	remaining := ElapsedBusinessMinutes(at, due, cal)
	s.pausedAt = &at
	s.remainingMinutes = &remaining
	s.pausedTarget = target
	s.touch(at)
	return nil
}

// Resume recomputes the paused due date from the snapshot and clears the
// pause fields.
func (s *TicketSLAState) Resume(at time.Time, cal *Calendar) error {
	if !s.IsPaused() {
		return fmt.Errorf("state is not paused")
	}
	at = at.UTC()
	newDue := AddBusinessTime(at, *s.remainingMinutes, cal)
	switch s.pausedTarget {
	case TargetFirstResponse:
		s.firstResponseDue = newDue
	case TargetResolution:
		s.resolutionDue = newDue
	default:
		return fmt.Errorf("paused state has no target due date")
	}
	s.pausedAt = nil
	s.remainingMinutes = nil
	s.pausedTarget = ""
	s.touch(at)
	return nil
}

// CheckBreach compares now against the outstanding due dates. Paused
// states never breach; a set breach flag is never cleared here.
func (s *TicketSLAState) CheckBreach(now time.Time) bool {
	if s.breached {
		return true
	}
	if s.IsPaused() {
		return false
	}
	now = now.UTC()
	if s.firstResponseAt == nil && now.After(s.firstResponseDue) {
		s.breached = true
	} else if now.After(s.resolutionDue) {
		s.breached = true
	}
	if s.breached {
		s.touch(now)
	}
	return s.breached
}

// RaiseEscalationLevel records the highest threshold already fired so a
// threshold never fires twice. Lower levels are ignored.
func (s *TicketSLAState) RaiseEscalationLevel(level int) bool {
	if level <= s.escalationLevel {
		return false
	}
	s.escalationLevel = level
	s.touch(time.Now().UTC())
	return true
}

func (s *TicketSLAState) touch(at time.Time) {
	s.updatedAt = at
	s.version++
}
