package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"flowdesk/internal/application/automation/services"
	"flowdesk/internal/infrastructure/persistence/models"
	db "flowdesk/internal/shared/db"
)

// AgentDirectory implements the services.AgentDirectory interface on top
// of the agents table.
type AgentDirectory struct {
	db *gorm.DB
}

// NewAgentDirectory creates a new agent directory instance.
func NewAgentDirectory(gormDB *gorm.DB) services.AgentDirectory {
	return &AgentDirectory{db: gormDB}
}

func (d *AgentDirectory) ListAvailable(ctx context.Context, organizationID uint) ([]services.Agent, error) {
	var list []models.AgentModel
	tx := db.GetTxFromContext(ctx, d.db)

	err := tx.
		Where("organization_id = ? AND is_available = ?", organizationID, true).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available agents: %w", err)
	}

	agents := make([]services.Agent, 0, len(list))
	for i := range list {
		agent, err := toAgent(&list[i])
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}

	return agents, nil
}

func toAgent(model *models.AgentModel) (services.Agent, error) {
	agent := services.Agent{
		ID:          model.ID,
		OpenTickets: model.OpenTickets,
		Latitude:    model.Latitude,
		Longitude:   model.Longitude,
	}

	if len(model.Skills) > 0 {
		if err := json.Unmarshal(model.Skills, &agent.Skills); err != nil {
			return services.Agent{}, fmt.Errorf("failed to unmarshal skills for agent %d: %w", model.ID, err)
		}
	}

	if model.LastAssignedAt != nil {
		at := time.UnixMilli(*model.LastAssignedAt).UTC()
		agent.LastAssignedAt = &at
	}

	return agent, nil
}
