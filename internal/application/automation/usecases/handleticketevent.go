package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flowdesk/internal/application/automation/services"
	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/ticket"
	apperrors "flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

type HandleTicketEventCommand struct {
	// EventID identifies the event delivery. Callers that can redeliver the
	// same event should set it, so action idempotency keys come out identical
	// on every delivery. A fresh ID is minted when it is empty.
	EventID    string
	Trigger    automation.TriggerType
	Ticket     ticket.Snapshot
	OccurredAt time.Time
}

// RuleOutcome reports what happened to one matched rule.
type RuleOutcome struct {
	RuleID      uint                     `json:"rule_id"`
	RuleName    string                   `json:"rule_name"`
	ExecutionID string                   `json:"execution_id"`
	Report      services.ExecutionReport `json:"report"`
}

type HandleTicketEventResult struct {
	EvaluatedRules int           `json:"evaluated_rules"`
	Outcomes       []RuleOutcome `json:"outcomes"`
	// StoppedAtRule is set when a stop_on_match rule halted evaluation.
	StoppedAtRule *uint `json:"stopped_at_rule,omitempty"`
}

// HandleTicketEventUseCase is the rule engine entry point. Events for the
// same ticket are serialized through the ticket locker; rules evaluate in
// execution order and a condition evaluation error counts as a non-match.
type HandleTicketEventUseCase struct {
	rules    automation.RuleRepository
	locker   TicketLocker
	executor ActionDispatcher
	logger   logger.Interface
}

func NewHandleTicketEventUseCase(
	rules automation.RuleRepository,
	locker TicketLocker,
	executor ActionDispatcher,
	log logger.Interface,
) *HandleTicketEventUseCase {
	return &HandleTicketEventUseCase{
		rules:    rules,
		locker:   locker,
		executor: executor,
		logger:   log,
	}
}

func (uc *HandleTicketEventUseCase) Execute(ctx context.Context, cmd HandleTicketEventCommand) (*HandleTicketEventResult, error) {
	if !cmd.Trigger.IsValid() {
		return nil, apperrors.NewValidationError("invalid trigger type: " + cmd.Trigger.String())
	}
	if cmd.Ticket.ID == 0 {
		return nil, apperrors.NewValidationError("ticket snapshot has no ID")
	}
	if cmd.Ticket.OrganizationID == 0 {
		return nil, apperrors.NewValidationError("ticket snapshot has no organization ID")
	}

	release, err := uc.locker.Lock(ctx, cmd.Ticket.ID)
	if err != nil {
		uc.logger.Errorw("failed to acquire ticket lock",
			"ticket_id", cmd.Ticket.ID, "error", err)
		return nil, apperrors.NewInternalError("failed to acquire ticket lock")
	}
	defer release()

	rules, err := uc.rules.ListActive(ctx, cmd.Ticket.OrganizationID, cmd.Trigger)
	if err != nil {
		uc.logger.Errorw("failed to load active rules",
			"organization_id", cmd.Ticket.OrganizationID,
			"trigger", cmd.Trigger, "error", err)
		return nil, apperrors.NewInternalError("failed to load active rules")
	}

	eventID := cmd.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	result := &HandleTicketEventResult{EvaluatedRules: len(rules)}
	for _, rule := range rules {
		matched, err := rule.Matches(cmd.Ticket)
		if err != nil {
			var evalErr *automation.ConditionEvaluationError
			if errors.As(err, &evalErr) {
				uc.logger.Warnw("condition evaluation failed, treating as non-match",
					"rule_id", rule.ID(),
					"field", evalErr.Field,
					"operator", evalErr.Operator,
					"reason", evalErr.Reason)
				continue
			}
			uc.logger.Errorw("rule evaluation failed",
				"rule_id", rule.ID(), "error", err)
			continue
		}
		if !matched {
			continue
		}

		outcome := uc.runRule(ctx, rule, cmd, eventID)
		result.Outcomes = append(result.Outcomes, outcome)

		if rule.StopOnMatch() {
			ruleID := rule.ID()
			result.StoppedAtRule = &ruleID
			uc.logger.Infow("rule halted further evaluation",
				"rule_id", ruleID, "ticket_id", cmd.Ticket.ID)
			break
		}
	}

	return result, nil
}

func (uc *HandleTicketEventUseCase) runRule(ctx context.Context, rule *automation.Rule, cmd HandleTicketEventCommand, eventID string) RuleOutcome {
	// Per-rule execution ID derived from the event ID, stable for the same
	// event and rule across redeliveries.
	executionID := fmt.Sprintf("%s:%d", eventID, rule.ID())
	started := time.Now()

	report := uc.executor.Execute(ctx, services.ActionContext{
		ExecutionID: executionID,
		RuleID:      rule.ID(),
		Trigger:     cmd.Trigger,
		Ticket:      cmd.Ticket,
	}, rule.Actions())

	duration := time.Since(started)
	succeeded := report.Succeeded()

	if err := uc.rules.IncrementStats(ctx, rule.ID(), succeeded, duration); err != nil {
		uc.logger.Errorw("failed to record rule stats",
			"rule_id", rule.ID(), "error", err)
	}

	uc.logger.Infow("rule executed",
		"rule_id", rule.ID(),
		"rule_name", rule.Name(),
		"ticket_id", cmd.Ticket.ID,
		"execution_id", executionID,
		"succeeded", succeeded,
		"duration_ms", duration.Milliseconds())

	return RuleOutcome{
		RuleID:      rule.ID(),
		RuleName:    rule.Name(),
		ExecutionID: executionID,
		Report:      report,
	}
}
