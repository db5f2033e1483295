package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/sla"
	"flowdesk/internal/infrastructure/persistence/models"
)

// thresholdRecord is the storage shape of one escalation threshold. The
// action list reuses the rule action envelope format.
type thresholdRecord struct {
	Percent int             `json:"percent"`
	Actions json.RawMessage `json:"actions,omitempty"`
}

// PolicyMapper handles the conversion between Policy domain entities and persistence models.
type PolicyMapper interface {
	// ToModel converts a policy domain entity to a persistence model.
	ToModel(policy *sla.Policy) (*models.PolicyModel, error)

	// ToDomain converts a policy persistence model to a domain entity.
	ToDomain(model *models.PolicyModel) (*sla.Policy, error)
}

// PolicyMapperImpl is the concrete implementation of PolicyMapper.
type PolicyMapperImpl struct{}

// NewPolicyMapper creates a new PolicyMapper.
func NewPolicyMapper() PolicyMapper {
	return &PolicyMapperImpl{}
}

// ToModel converts a policy domain entity to a persistence model.
func (m *PolicyMapperImpl) ToModel(policy *sla.Policy) (*models.PolicyModel, error) {
	model := &models.PolicyModel{
		ID:                   policy.ID(),
		SID:                  policy.SID(),
		OrganizationID:       policy.OrganizationID(),
		Name:                 policy.Name(),
		FirstResponseMinutes: policy.FirstResponseMinutes(),
		ResolutionMinutes:    policy.ResolutionMinutes(),
		CalendarID:           policy.CalendarID(),
		IsActive:             policy.IsActive(),
		Version:              policy.Version(),
		CreatedAt:            policy.CreatedAt().UnixMilli(),
		UpdatedAt:            policy.UpdatedAt().UnixMilli(),
	}

	thresholds := policy.Thresholds()
	if len(thresholds) > 0 {
		records := make([]thresholdRecord, 0, len(thresholds))
		for _, th := range thresholds {
			record := thresholdRecord{Percent: th.Percent}
			if len(th.Actions) > 0 {
				actionsJSON, err := automation.MarshalActions(th.Actions)
				if err != nil {
					return nil, fmt.Errorf("failed to marshal threshold actions: %w", err)
				}
				record.Actions = actionsJSON
			}
			records = append(records, record)
		}
		thresholdsJSON, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal thresholds: %w", err)
		}
		model.Thresholds = thresholdsJSON
	}

	return model, nil
}

// ToDomain converts a policy persistence model to a domain entity.
func (m *PolicyMapperImpl) ToDomain(model *models.PolicyModel) (*sla.Policy, error) {
	var thresholds []sla.EscalationThreshold
	if len(model.Thresholds) > 0 {
		var records []thresholdRecord
		if err := json.Unmarshal(model.Thresholds, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal thresholds for policy %d: %w", model.ID, err)
		}
		thresholds = make([]sla.EscalationThreshold, 0, len(records))
		for _, record := range records {
			th := sla.EscalationThreshold{Percent: record.Percent}
			if len(record.Actions) > 0 {
				actions, err := automation.UnmarshalActions(record.Actions)
				if err != nil {
					return nil, fmt.Errorf("failed to unmarshal threshold actions for policy %d: %w", model.ID, err)
				}
				th.Actions = actions
			}
			thresholds = append(thresholds, th)
		}
	}

	return sla.ReconstructPolicy(
		model.ID,
		model.SID,
		model.OrganizationID,
		model.Name,
		model.FirstResponseMinutes,
		model.ResolutionMinutes,
		model.CalendarID,
		thresholds,
		model.IsActive,
		model.Version,
		time.UnixMilli(model.CreatedAt).UTC(),
		time.UnixMilli(model.UpdatedAt).UTC(),
	)
}
