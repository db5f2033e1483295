package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/cenkalti/backoff/v4"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/ticket"
	"flowdesk/internal/shared/logger"
)

// AssignmentResolver picks an agent for a ticket under a given strategy.
type AssignmentResolver interface {
	Resolve(ctx context.Context, strategy automation.AssignStrategy, snap ticket.Snapshot) (uint, error)
}

// FieldMutator writes a single field back onto a ticket.
type FieldMutator interface {
	SetField(ctx context.Context, ticketID uint, field string, value any) error
	Assign(ctx context.Context, ticketID uint, agentID uint) error
	Escalate(ctx context.Context, ticketID uint, level int) error
}

// Notifier delivers a templated notification to an audience.
type Notifier interface {
	Send(ctx context.Context, templateName string, audience string, snap ticket.Snapshot) error
}

// WebhookSender posts a rendered payload to an external endpoint.
type WebhookSender interface {
	Send(ctx context.Context, endpoint string, payload []byte) error
}

// IdempotencyStore records which action executions have already happened so
// a redelivered event never repeats a side effect. Acquire returns false
// when the key was seen before.
type IdempotencyStore interface {
	Acquire(ctx context.Context, key string) (bool, error)
}

// ActionContext carries everything one action needs about its trigger.
type ActionContext struct {
	ExecutionID string
	RuleID      uint
	Trigger     automation.TriggerType
	Ticket      ticket.Snapshot
}

// ActionResult is the outcome of a single action in a sequence.
type ActionResult struct {
	Index      int                  `json:"index"`
	Kind       automation.ActionKind `json:"kind"`
	Succeeded  bool                 `json:"succeeded"`
	Skipped    bool                 `json:"skipped,omitempty"`
	RetryCount int                  `json:"retry_count"`
	Error      string               `json:"error,omitempty"`
	Duration   time.Duration        `json:"duration"`
}

// ExecutionReport summarizes one rule's action sequence.
type ExecutionReport struct {
	Results []ActionResult `json:"results"`
	Aborted bool           `json:"aborted"`
}

// Succeeded reports whether every non-skipped action completed.
func (r ExecutionReport) Succeeded() bool {
	for _, res := range r.Results {
		if !res.Succeeded {
			return false
		}
	}
	return !r.Aborted
}

// ActionExecutor runs a rule's actions in declared order. Failures in
// non-critical actions are recorded and the sequence continues; a failed
// critical action aborts the remainder. Notification and webhook actions
// retry with exponential backoff before counting as failed.
type ActionExecutor struct {
	assignments AssignmentResolver
	mutator     FieldMutator
	notifier    Notifier
	webhooks    WebhookSender
	idempotency IdempotencyStore
	maxRetries  int
	timeout     time.Duration
	logger      logger.Interface
}

func NewActionExecutor(
	assignments AssignmentResolver,
	mutator FieldMutator,
	notifier Notifier,
	webhooks WebhookSender,
	idempotency IdempotencyStore,
	maxRetries int,
	timeout time.Duration,
	log logger.Interface,
) *ActionExecutor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ActionExecutor{
		assignments: assignments,
		mutator:     mutator,
		notifier:    notifier,
		webhooks:    webhooks,
		idempotency: idempotency,
		maxRetries:  maxRetries,
		timeout:     timeout,
		logger:      log,
	}
}

// Execute runs the actions sequentially and returns a per-action report.
func (e *ActionExecutor) Execute(ctx context.Context, actx ActionContext, actions []automation.Action) ExecutionReport {
	report := ExecutionReport{Results: make([]ActionResult, 0, len(actions))}

	for idx, action := range actions {
		result := ActionResult{Index: idx, Kind: action.Kind()}

		key := fmt.Sprintf("%s:%d", actx.ExecutionID, idx)
		fresh, err := e.idempotency.Acquire(ctx, key)
		if err != nil {
			e.logger.Errorw("idempotency check failed",
				"key", key, "rule_id", actx.RuleID, "error", err)
			result.Error = err.Error()
			report.Results = append(report.Results, result)
			if action.Critical() {
				report.Aborted = true
				return report
			}
			continue
		}
		if !fresh {
			e.logger.Debugw("skipping already-executed action",
				"key", key, "kind", action.Kind())
			result.Succeeded = true
			result.Skipped = true
			report.Results = append(report.Results, result)
			continue
		}

		started := time.Now()
		retries, err := e.runAction(ctx, actx, action)
		result.Duration = time.Since(started)
		result.RetryCount = retries

		if err != nil {
			execErr := &automation.ActionExecutionError{Kind: action.Kind(), Retries: retries, Err: err}
			result.Error = execErr.Error()
			e.logger.Errorw("action failed",
				"rule_id", actx.RuleID,
				"ticket_id", actx.Ticket.ID,
				"kind", action.Kind(),
				"retries", retries,
				"error", err)
			report.Results = append(report.Results, result)
			if action.Critical() {
				report.Aborted = true
				return report
			}
			continue
		}

		result.Succeeded = true
		report.Results = append(report.Results, result)
	}

	return report
}

func (e *ActionExecutor) runAction(ctx context.Context, actx ActionContext, action automation.Action) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	switch a := action.(type) {
	case automation.AssignAction:
		agentID, err := e.assignments.Resolve(ctx, a.Strategy, actx.Ticket)
		if err != nil {
			return 0, fmt.Errorf("resolve assignee: %w", err)
		}
		return 0, e.mutator.Assign(ctx, actx.Ticket.ID, agentID)

	case automation.SetFieldAction:
		return 0, e.mutator.SetField(ctx, actx.Ticket.ID, a.Field, a.Value)

	case automation.EscalateAction:
		return 0, e.mutator.Escalate(ctx, actx.Ticket.ID, a.TargetLevel)

	case automation.NotifyAction:
		return e.withRetry(ctx, func() error {
			return e.notifier.Send(ctx, a.Template, a.Audience, actx.Ticket)
		})

	case automation.WebhookAction:
		payload, err := e.renderPayload(actx, a.PayloadTemplate)
		if err != nil {
			return 0, fmt.Errorf("render webhook payload: %w", err)
		}
		return e.withRetry(ctx, func() error {
			return e.webhooks.Send(ctx, a.Endpoint, payload)
		})

	default:
		return 0, fmt.Errorf("unknown action kind %q", action.Kind())
	}
}

// withRetry runs op with jittered exponential backoff and returns how many
// retries (attempts beyond the first) were consumed.
func (e *ActionExecutor) withRetry(ctx context.Context, op func() error) (int, error) {
	attempts := 0
	policy := backoff.WithContext(
		backoff.WithMaxRetries(newActionBackOff(), uint64(e.maxRetries)), ctx)
	err := backoff.Retry(func() error {
		attempts++
		return op()
	}, policy)
	retries := attempts - 1
	if retries < 0 {
		retries = 0
	}
	return retries, err
}

func newActionBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// renderPayload builds the webhook body. With no template the full ticket
// snapshot plus trigger metadata is sent as JSON; otherwise the template is
// rendered with the action context.
func (e *ActionExecutor) renderPayload(actx ActionContext, tmpl string) ([]byte, error) {
	if tmpl == "" {
		return json.Marshal(map[string]any{
			"execution_id": actx.ExecutionID,
			"rule_id":      actx.RuleID,
			"trigger":      actx.Trigger,
			"ticket":       actx.Ticket,
		})
	}
	parsed, err := template.New("webhook").Parse(tmpl)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := parsed.Execute(&buf, actx); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
