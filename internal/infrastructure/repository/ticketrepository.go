package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"flowdesk/internal/domain/ticket"
	vo "flowdesk/internal/domain/ticket/valueobjects"
	"flowdesk/internal/infrastructure/persistence/models"
	"flowdesk/internal/shared/biztime"
	db "flowdesk/internal/shared/db"
	"flowdesk/internal/shared/errors"
)

// mutableTicketFields defines the whitelist of built-in columns a set_field
// action may touch. Anything outside the whitelist lands in custom fields.
var mutableTicketFields = map[string]bool{
	"status":   true,
	"priority": true,
	"title":    true,
}

// TicketRepository is the automation core's view of the tickets table. It
// builds event snapshots and applies rule actions; ticket lifecycle stays
// with the surrounding helpdesk application.
type TicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new ticket repository instance.
func NewTicketRepository(gormDB *gorm.DB) *TicketRepository {
	return &TicketRepository{db: gormDB}
}

// GetSnapshot loads the current state of a ticket as an immutable snapshot.
func (r *TicketRepository) GetSnapshot(ctx context.Context, ticketID uint) (ticket.Snapshot, error) {
	var model models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, ticketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ticket.Snapshot{}, errors.NewNotFoundError("ticket not found")
		}
		return ticket.Snapshot{}, fmt.Errorf("failed to find ticket: %w", err)
	}

	return toSnapshot(&model)
}

func toSnapshot(model *models.TicketModel) (ticket.Snapshot, error) {
	status, err := vo.NewTicketStatus(model.Status)
	if err != nil {
		return ticket.Snapshot{}, fmt.Errorf("ticket %d has invalid status: %w", model.ID, err)
	}
	priority, err := vo.NewPriority(model.Priority)
	if err != nil {
		return ticket.Snapshot{}, fmt.Errorf("ticket %d has invalid priority: %w", model.ID, err)
	}

	snap := ticket.Snapshot{
		ID:             model.ID,
		OrganizationID: model.OrganizationID,
		Number:         model.Number,
		Title:          model.Title,
		Status:         status,
		Priority:       priority,
		AssigneeID:     model.AssigneeID,
		CreatedAt:      time.UnixMilli(model.CreatedAt).UTC(),
		UpdatedAt:      time.UnixMilli(model.UpdatedAt).UTC(),
	}

	if len(model.Tags) > 0 {
		if err := json.Unmarshal(model.Tags, &snap.Tags); err != nil {
			return ticket.Snapshot{}, fmt.Errorf("failed to unmarshal tags for ticket %d: %w", model.ID, err)
		}
	}
	if len(model.RequiredSkills) > 0 {
		if err := json.Unmarshal(model.RequiredSkills, &snap.RequiredSkills); err != nil {
			return ticket.Snapshot{}, fmt.Errorf("failed to unmarshal required skills for ticket %d: %w", model.ID, err)
		}
	}
	if len(model.CustomFields) > 0 {
		if err := json.Unmarshal(model.CustomFields, &snap.CustomFields); err != nil {
			return ticket.Snapshot{}, fmt.Errorf("failed to unmarshal custom fields for ticket %d: %w", model.ID, err)
		}
	}

	return snap, nil
}

// SetField writes one field back onto a ticket. Built-in fields are
// validated against their value objects; unknown fields merge into the
// custom fields document.
func (r *TicketRepository) SetField(ctx context.Context, ticketID uint, field string, value any) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if !mutableTicketFields[field] {
		return r.setCustomField(tx, ticketID, field, value)
	}

	str, ok := value.(string)
	if !ok {
		return errors.NewValidationError(fmt.Sprintf("field %s requires a string value", field))
	}

	switch field {
	case "status":
		if _, err := vo.NewTicketStatus(str); err != nil {
			return errors.NewValidationError(err.Error())
		}
	case "priority":
		if _, err := vo.NewPriority(str); err != nil {
			return errors.NewValidationError(err.Error())
		}
	}

	result := tx.
		Model(&models.TicketModel{}).
		Where("id = ?", ticketID).
		Update(field, str)

	if result.Error != nil {
		return fmt.Errorf("failed to set ticket field %s: %w", field, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("ticket not found")
	}

	return nil
}

func (r *TicketRepository) setCustomField(tx *gorm.DB, ticketID uint, field string, value any) error {
	var model models.TicketModel
	if err := tx.First(&model, ticketID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NewNotFoundError("ticket not found")
		}
		return fmt.Errorf("failed to find ticket: %w", err)
	}

	fields := map[string]any{}
	if len(model.CustomFields) > 0 {
		if err := json.Unmarshal([]byte(model.CustomFields), &fields); err != nil {
			return fmt.Errorf("failed to unmarshal custom fields for ticket %d: %w", ticketID, err)
		}
	}
	fields[field] = value

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal custom fields: %w", err)
	}

	result := tx.
		Model(&models.TicketModel{}).
		Where("id = ?", ticketID).
		Update("custom_fields", datatypes.JSON(fieldsJSON))
	if result.Error != nil {
		return fmt.Errorf("failed to set custom field %s: %w", field, result.Error)
	}

	return nil
}

// Assign sets the ticket's assignee and records the assignment on the
// agent side so workload and round-robin strategies see it. Both writes
// land in one transaction.
func (r *TicketRepository) Assign(ctx context.Context, ticketID uint, agentID uint) error {
	return db.RunInTransaction(ctx, r.db, func(ctx context.Context) error {
		tx := db.GetTxFromContext(ctx, r.db)

		result := tx.
			Model(&models.TicketModel{}).
			Where("id = ?", ticketID).
			Update("assignee_id", agentID)
		if result.Error != nil {
			return fmt.Errorf("failed to assign ticket: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFoundError("ticket not found")
		}

		now := biztime.NowUTC().UnixMilli()
		err := tx.
			Model(&models.AgentModel{}).
			Where("id = ?", agentID).
			Updates(map[string]any{
				"open_tickets":     gorm.Expr("open_tickets + 1"),
				"last_assigned_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to record agent assignment: %w", err)
		}

		return nil
	})
}

// Escalate raises the ticket's escalation level. Lower or equal levels are
// ignored so the level never moves backwards.
func (r *TicketRepository) Escalate(ctx context.Context, ticketID uint, level int) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.TicketModel{}).
		Where("id = ? AND escalation_level < ?", ticketID, level).
		Update("escalation_level", level)
	if result.Error != nil {
		return fmt.Errorf("failed to escalate ticket: %w", result.Error)
	}

	return nil
}
