package sla

import (
	"fmt"
	"time"

	"flowdesk/internal/domain/automation"
)

// EscalationThreshold fires when the given percentage of the resolution
// SLA has been consumed. Actions execute directly through the action
// executor in addition to the sla_warning trigger event the scheduler
// feeds into the rule engine.
type EscalationThreshold struct {
	Percent int                 `json:"percent"`
	Actions []automation.Action `json:"-"`
}

// Policy is an organization's SLA definition: business-minute targets for
// first response and resolution, a calendar reference (zero for the 24/7
// sentinel) and ordered escalation thresholds.
type Policy struct {
	id                   uint
	sid                  string
	organizationID       uint
	name                 string
	firstResponseMinutes int
	resolutionMinutes    int
	calendarID           uint
	thresholds           []EscalationThreshold
	isActive             bool
	version              int
	createdAt            time.Time
	updatedAt            time.Time
}

func NewPolicy(
	organizationID uint,
	name string,
	firstResponseMinutes int,
	resolutionMinutes int,
	calendarID uint,
	thresholds []EscalationThreshold,
) (*Policy, error) {
	if organizationID == 0 {
		return nil, fmt.Errorf("organization ID is required")
	}
	if len(name) == 0 {
		return nil, fmt.Errorf("name is required")
	}
	if firstResponseMinutes <= 0 {
		return nil, fmt.Errorf("first response minutes must be positive")
	}
	if resolutionMinutes <= 0 {
		return nil, fmt.Errorf("resolution minutes must be positive")
	}
	if firstResponseMinutes > resolutionMinutes {
		return nil, fmt.Errorf("first response target cannot exceed resolution target")
	}
	if err := validateThresholds(thresholds); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Policy{
		organizationID:       organizationID,
		name:                 name,
		firstResponseMinutes: firstResponseMinutes,
		resolutionMinutes:    resolutionMinutes,
		calendarID:           calendarID,
		thresholds:           thresholds,
		version:              1,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

func validateThresholds(thresholds []EscalationThreshold) error {
	prev := 0
	for _, t := range thresholds {
		if t.Percent <= 0 || t.Percent > 100 {
			return fmt.Errorf("escalation threshold percent %d out of range (0, 100]", t.Percent)
		}
		if t.Percent <= prev {
			return fmt.Errorf("escalation thresholds must be strictly ascending")
		}
		prev = t.Percent
	}
	return nil
}

func ReconstructPolicy(
	id uint,
	sid string,
	organizationID uint,
	name string,
	firstResponseMinutes int,
	resolutionMinutes int,
	calendarID uint,
	thresholds []EscalationThreshold,
	isActive bool,
	version int,
	createdAt, updatedAt time.Time,
) (*Policy, error) {
	if id == 0 {
		return nil, fmt.Errorf("policy ID cannot be zero")
	}
	if err := validateThresholds(thresholds); err != nil {
		return nil, err
	}
	return &Policy{
		id:                   id,
		sid:                  sid,
		organizationID:       organizationID,
		name:                 name,
		firstResponseMinutes: firstResponseMinutes,
		resolutionMinutes:    resolutionMinutes,
		calendarID:           calendarID,
		thresholds:           thresholds,
		isActive:             isActive,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}, nil
}

func (p *Policy) ID() uint                  { return p.id }
func (p *Policy) SID() string               { return p.sid }
func (p *Policy) OrganizationID() uint      { return p.organizationID }
func (p *Policy) Name() string              { return p.name }
func (p *Policy) FirstResponseMinutes() int { return p.firstResponseMinutes }
func (p *Policy) ResolutionMinutes() int    { return p.resolutionMinutes }
func (p *Policy) CalendarID() uint          { return p.calendarID }
func (p *Policy) IsActive() bool            { return p.isActive }
func (p *Policy) Version() int              { return p.version }
func (p *Policy) CreatedAt() time.Time      { return p.createdAt }
func (p *Policy) UpdatedAt() time.Time      { return p.updatedAt }

func (p *Policy) Thresholds() []EscalationThreshold {
	out := make([]EscalationThreshold, len(p.thresholds))
	copy(out, p.thresholds)
	return out
}

func (p *Policy) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("policy ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("policy ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Policy) SetSID(sid string) error {
	if len(p.sid) > 0 {
		return fmt.Errorf("policy SID is already set")
	}
	if len(sid) == 0 {
		return fmt.Errorf("policy SID cannot be empty")
	}
	p.sid = sid
	return nil
}

// Activate requires a valid calendar: a windowless calendar must fail
// here, not during a later due-date calculation.
func (p *Policy) Activate(cal *Calendar) error {
	if p.isActive {
		return nil
	}
	if cal == nil {
		return newCalendarError("policy references no calendar")
	}
	if !cal.IsContinuous() && len(cal.weekly) == 0 {
		return newCalendarError("calendar has no open windows")
	}
	p.isActive = true
	p.updatedAt = time.Now().UTC()
	p.version++
	return nil
}

func (p *Policy) Deactivate() {
	if !p.isActive {
		return
	}
	p.isActive = false
	p.updatedAt = time.Now().UTC()
	p.version++
}

// ThresholdMinutes converts a threshold percentage into business minutes
// of the resolution target.
func (p *Policy) ThresholdMinutes(percent int) int {
	return p.resolutionMinutes * percent / 100
}
