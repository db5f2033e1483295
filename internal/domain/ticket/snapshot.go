// Package ticket defines the read model the automation core consumes. The
// surrounding application owns ticket persistence and mutation; the core
// only ever sees immutable snapshots taken at event time.
package ticket

import (
	"time"

	vo "flowdesk/internal/domain/ticket/valueobjects"
)

// Snapshot is a point-in-time copy of a ticket as seen by a triggering
// event. Previous carries prior values for fields the event changed, keyed
// by field name; changed_to conditions require it.
type Snapshot struct {
	ID             uint            `json:"id"`
	OrganizationID uint            `json:"organization_id"`
	Number         string          `json:"number"`
	Title          string          `json:"title"`
	Status         vo.TicketStatus `json:"status"`
	Priority       vo.Priority     `json:"priority"`
	AssigneeID     *uint           `json:"assignee_id,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	RequiredSkills []string        `json:"required_skills,omitempty"`
	CustomFields   map[string]any  `json:"custom_fields,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Previous       map[string]any  `json:"previous,omitempty"`
}

// Field resolves a condition field name against the snapshot. Built-in
// fields take precedence; anything else falls through to custom fields.
// The second return reports whether the field exists at all.
func (s Snapshot) Field(name string) (any, bool) {
	switch name {
	case "id":
		return s.ID, true
	case "organization_id":
		return s.OrganizationID, true
	case "number":
		return s.Number, true
	case "title":
		return s.Title, true
	case "status":
		return s.Status.String(), true
	case "priority":
		return s.Priority.String(), true
	case "assignee_id":
		if s.AssigneeID == nil {
			return nil, true
		}
		return *s.AssigneeID, true
	case "tags":
		return s.Tags, true
	case "created_at":
		return s.CreatedAt, true
	case "updated_at":
		return s.UpdatedAt, true
	}
	if s.CustomFields != nil {
		if v, ok := s.CustomFields[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// PreviousField resolves the pre-event value of a field changed by the
// triggering event. Absence means the event did not touch the field.
func (s Snapshot) PreviousField(name string) (any, bool) {
	if s.Previous == nil {
		return nil, false
	}
	v, ok := s.Previous[name]
	return v, ok
}
