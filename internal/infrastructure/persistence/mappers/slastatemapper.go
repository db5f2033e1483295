package mappers

import (
	"time"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/infrastructure/persistence/models"
)

// SLAStateMapper handles the conversion between TicketSLAState domain entities and persistence models.
type SLAStateMapper interface {
	// ToModel converts an SLA state domain entity to a persistence model.
	ToModel(state *sla.TicketSLAState) *models.SLAStateModel

	// ToDomain converts an SLA state persistence model to a domain entity.
	ToDomain(model *models.SLAStateModel) (*sla.TicketSLAState, error)
}

// SLAStateMapperImpl is the concrete implementation of SLAStateMapper.
type SLAStateMapperImpl struct{}

// NewSLAStateMapper creates a new SLAStateMapper.
func NewSLAStateMapper() SLAStateMapper {
	return &SLAStateMapperImpl{}
}

// ToModel converts an SLA state domain entity to a persistence model.
func (m *SLAStateMapperImpl) ToModel(state *sla.TicketSLAState) *models.SLAStateModel {
	model := &models.SLAStateModel{
		ID:               state.ID(),
		TicketID:         state.TicketID(),
		OrganizationID:   state.OrganizationID(),
		PolicyID:         state.PolicyID(),
		StartedAt:        state.CreatedAt().UnixMilli(),
		FirstResponseDue: state.FirstResponseDue().UnixMilli(),
		ResolutionDue:    state.ResolutionDue().UnixMilli(),
		RemainingMinutes: state.RemainingMinutes(),
		PausedTarget:     string(state.PausedTarget()),
		Breached:         state.IsBreached(),
		EscalationLevel:  state.EscalationLevel(),
		Version:          state.Version(),
		UpdatedAt:        state.UpdatedAt().UnixMilli(),
	}

	if at := state.FirstResponseAt(); at != nil {
		ms := at.UnixMilli()
		model.FirstResponseAt = &ms
	}

	if at := state.PausedAt(); at != nil {
		ms := at.UnixMilli()
		model.PausedAt = &ms
	}

	return model
}

// ToDomain converts an SLA state persistence model to a domain entity.
func (m *SLAStateMapperImpl) ToDomain(model *models.SLAStateModel) (*sla.TicketSLAState, error) {
	var firstResponseAt *time.Time
	if model.FirstResponseAt != nil {
		at := time.UnixMilli(*model.FirstResponseAt).UTC()
		firstResponseAt = &at
	}

	var pausedAt *time.Time
	if model.PausedAt != nil {
		at := time.UnixMilli(*model.PausedAt).UTC()
		pausedAt = &at
	}

	return sla.ReconstructState(
		model.ID,
		model.TicketID,
		model.OrganizationID,
		model.PolicyID,
		time.UnixMilli(model.StartedAt).UTC(),
		time.UnixMilli(model.FirstResponseDue).UTC(),
		time.UnixMilli(model.ResolutionDue).UTC(),
		firstResponseAt,
		pausedAt,
		model.RemainingMinutes,
		sla.DueTarget(model.PausedTarget),
		model.Breached,
		model.EscalationLevel,
		model.Version,
		time.UnixMilli(model.UpdatedAt).UTC(),
	)
}
