package automation

import (
	"fmt"
	"time"

	"flowdesk/internal/domain/ticket"
)

type TriggerType string

const (
	TriggerOnCreate       TriggerType = "on_create"
	TriggerOnUpdate       TriggerType = "on_update"
	TriggerOnStatusChange TriggerType = "on_status_change"
	TriggerSLAWarning     TriggerType = "sla_warning"
	TriggerSLABreach      TriggerType = "sla_breach"
	TriggerScheduled      TriggerType = "scheduled"
)

var validTriggerTypes = map[TriggerType]bool{
	TriggerOnCreate:       true,
	TriggerOnUpdate:       true,
	TriggerOnStatusChange: true,
	TriggerSLAWarning:     true,
	TriggerSLABreach:      true,
	TriggerScheduled:      true,
}

func (t TriggerType) String() string {
	return string(t)
}

func (t TriggerType) IsValid() bool {
	return validTriggerTypes[t]
}

func NewTriggerType(s string) (TriggerType, error) {
	t := TriggerType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid trigger type: %s", s)
	}
	return t, nil
}

// Rule maps a trigger condition to an ordered action list within one
// organization. Rules for the same (organization, trigger) pair evaluate
// in ascending execution order; a matching rule with stopOnMatch set halts
// evaluation of the rules behind it for that event only.
type Rule struct {
	id             uint
	sid            string
	organizationID uint
	name           string
	triggerType    TriggerType
	conditionTree  *ConditionNode
	actions        []Action
	executionOrder int
	isActive       bool
	stopOnMatch    bool
	stats          *Stats
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

func NewRule(
	organizationID uint,
	name string,
	triggerType TriggerType,
	conditionTree *ConditionNode,
	actions []Action,
	executionOrder int,
) (*Rule, error) {
	if organizationID == 0 {
		return nil, fmt.Errorf("organization ID is required")
	}
	if len(name) == 0 {
		return nil, fmt.Errorf("name is required")
	}
	if len(name) > 200 {
		return nil, fmt.Errorf("name exceeds maximum length of 200 characters")
	}
	if !triggerType.IsValid() {
		return nil, fmt.Errorf("invalid trigger type: %s", triggerType)
	}
	if conditionTree != nil {
		if err := conditionTree.Validate(); err != nil {
			return nil, fmt.Errorf("invalid condition tree: %w", err)
		}
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("at least one action is required")
	}

	now := time.Now().UTC()
	return &Rule{
		organizationID: organizationID,
		name:           name,
		triggerType:    triggerType,
		conditionTree:  conditionTree,
		actions:        actions,
		executionOrder: executionOrder,
		isActive:       false,
		stats:          &Stats{},
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructRule(
	id uint,
	sid string,
	organizationID uint,
	name string,
	triggerType TriggerType,
	conditionTree *ConditionNode,
	actions []Action,
	executionOrder int,
	isActive bool,
	stopOnMatch bool,
	stats *Stats,
	version int,
	createdAt, updatedAt time.Time,
) (*Rule, error) {
	if id == 0 {
		return nil, fmt.Errorf("rule ID cannot be zero")
	}
	if organizationID == 0 {
		return nil, fmt.Errorf("organization ID is required")
	}
	if !triggerType.IsValid() {
		return nil, fmt.Errorf("invalid trigger type: %s", triggerType)
	}
	if stats == nil {
		stats = &Stats{}
	}
	return &Rule{
		id:             id,
		sid:            sid,
		organizationID: organizationID,
		name:           name,
		triggerType:    triggerType,
		conditionTree:  conditionTree,
		actions:        actions,
		executionOrder: executionOrder,
		isActive:       isActive,
		stopOnMatch:    stopOnMatch,
		stats:          stats,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (r *Rule) ID() uint                      { return r.id }
func (r *Rule) SID() string                   { return r.sid }
func (r *Rule) OrganizationID() uint          { return r.organizationID }
func (r *Rule) Name() string                  { return r.name }
func (r *Rule) TriggerType() TriggerType      { return r.triggerType }
func (r *Rule) ConditionTree() *ConditionNode { return r.conditionTree }
func (r *Rule) ExecutionOrder() int           { return r.executionOrder }
func (r *Rule) IsActive() bool                { return r.isActive }
func (r *Rule) StopOnMatch() bool             { return r.stopOnMatch }
func (r *Rule) Stats() *Stats                 { return r.stats }
func (r *Rule) Version() int                  { return r.version }
func (r *Rule) CreatedAt() time.Time          { return r.createdAt }
func (r *Rule) UpdatedAt() time.Time          { return r.updatedAt }

func (r *Rule) Actions() []Action {
	actionsCopy := make([]Action, len(r.actions))
	copy(actionsCopy, r.actions)
	return actionsCopy
}

func (r *Rule) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("rule ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("rule ID cannot be zero")
	}
	r.id = id
	return nil
}

func (r *Rule) SetSID(sid string) error {
	if len(r.sid) > 0 {
		return fmt.Errorf("rule SID is already set")
	}
	if len(sid) == 0 {
		return fmt.Errorf("rule SID cannot be empty")
	}
	r.sid = sid
	return nil
}

// Activate validates the condition tree before the rule becomes eligible
// for evaluation; structural problems surface here, not per event.
func (r *Rule) Activate() error {
	if r.isActive {
		return nil
	}
	if r.conditionTree != nil {
		if err := r.conditionTree.Validate(); err != nil {
			return fmt.Errorf("cannot activate rule with invalid condition tree: %w", err)
		}
	}
	if len(r.actions) == 0 {
		return fmt.Errorf("cannot activate rule without actions")
	}
	r.isActive = true
	r.updatedAt = time.Now().UTC()
	r.version++
	return nil
}

func (r *Rule) Deactivate() {
	if !r.isActive {
		return
	}
	r.isActive = false
	r.updatedAt = time.Now().UTC()
	r.version++
}

func (r *Rule) SetStopOnMatch(stop bool) {
	if r.stopOnMatch == stop {
		return
	}
	r.stopOnMatch = stop
	r.updatedAt = time.Now().UTC()
	r.version++
}

// Matches evaluates the rule's condition tree against a snapshot. A nil
// tree matches everything.
func (r *Rule) Matches(snap ticket.Snapshot) (bool, error) {
	if r.conditionTree == nil {
		return true, nil
	}
	return Evaluate(r.conditionTree, snap)
}
