package automation

import (
	"encoding/json"
	"fmt"
)

type ActionKind string

const (
	ActionKindAssign   ActionKind = "assign"
	ActionKindSetField ActionKind = "set_field"
	ActionKindNotify   ActionKind = "notify"
	ActionKindWebhook  ActionKind = "webhook"
	ActionKindEscalate ActionKind = "escalate"
)

// Action is the closed set of side effects a rule can request. Each
// variant is addressable by an idempotency key derived from the rule
// execution id and its index in the rule's action list.
type Action interface {
	Kind() ActionKind
	// Critical reports whether a failure of this action aborts the rest
	// of the action list.
	Critical() bool
}

// ActionExecutionError reports a single action that failed after its
// retry budget was exhausted. It is recorded on the action's result and
// never propagates past the executor.
type ActionExecutionError struct {
	Kind    ActionKind
	Retries int
	Err     error
}

func (e *ActionExecutionError) Error() string {
	return fmt.Sprintf("%s action failed after %d retries: %v", e.Kind, e.Retries, e.Err)
}

func (e *ActionExecutionError) Unwrap() error { return e.Err }

type AssignStrategy string

const (
	StrategySkillMatch AssignStrategy = "skill_match"
	StrategyWorkload   AssignStrategy = "workload"
	StrategyRoundRobin AssignStrategy = "round_robin"
	StrategyNearest    AssignStrategy = "nearest"
)

func (s AssignStrategy) IsValid() bool {
	switch s {
	case StrategySkillMatch, StrategyWorkload, StrategyRoundRobin, StrategyNearest:
		return true
	}
	return false
}

type AssignAction struct {
	Strategy       AssignStrategy `json:"strategy"`
	AbortOnFailure bool           `json:"abort_on_failure,omitempty"`
}

func (a AssignAction) Kind() ActionKind { return ActionKindAssign }
func (a AssignAction) Critical() bool   { return a.AbortOnFailure }

type SetFieldAction struct {
	Field          string `json:"field"`
	Value          any    `json:"value"`
	AbortOnFailure bool   `json:"abort_on_failure,omitempty"`
}

func (a SetFieldAction) Kind() ActionKind { return ActionKindSetField }
func (a SetFieldAction) Critical() bool   { return a.AbortOnFailure }

type NotifyAction struct {
	Template       string `json:"template"`
	Audience       string `json:"audience"`
	AbortOnFailure bool   `json:"abort_on_failure,omitempty"`
}

func (a NotifyAction) Kind() ActionKind { return ActionKindNotify }
func (a NotifyAction) Critical() bool   { return a.AbortOnFailure }

type WebhookAction struct {
	Endpoint        string `json:"endpoint"`
	PayloadTemplate string `json:"payload_template"`
	AbortOnFailure  bool   `json:"abort_on_failure,omitempty"`
}

func (a WebhookAction) Kind() ActionKind { return ActionKindWebhook }
func (a WebhookAction) Critical() bool   { return a.AbortOnFailure }

type EscalateAction struct {
	TargetLevel    int  `json:"target_level"`
	AbortOnFailure bool `json:"abort_on_failure,omitempty"`
}

func (a EscalateAction) Kind() ActionKind { return ActionKindEscalate }
func (a EscalateAction) Critical() bool   { return a.AbortOnFailure }

// actionEnvelope is the storage form: kind tag plus raw params.
type actionEnvelope struct {
	Kind   ActionKind      `json:"kind"`
	Params json.RawMessage `json:"params"`
}

// MarshalActions encodes an ordered action list for storage.
func MarshalActions(actions []Action) ([]byte, error) {
	envelopes := make([]actionEnvelope, 0, len(actions))
	for i, action := range actions {
		params, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal action %d (%s): %w", i, action.Kind(), err)
		}
		envelopes = append(envelopes, actionEnvelope{Kind: action.Kind(), Params: params})
	}
	return json.Marshal(envelopes)
}

// UnmarshalActions decodes a stored action list, rejecting unknown kinds.
func UnmarshalActions(data []byte) ([]Action, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var envelopes []actionEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action list: %w", err)
	}
	actions := make([]Action, 0, len(envelopes))
	for i, env := range envelopes {
		action, err := decodeAction(env)
		if err != nil {
			return nil, fmt.Errorf("failed to decode action %d: %w", i, err)
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func decodeAction(env actionEnvelope) (Action, error) {
	switch env.Kind {
	case ActionKindAssign:
		var a AssignAction
		if err := json.Unmarshal(env.Params, &a); err != nil {
			return nil, err
		}
		if !a.Strategy.IsValid() {
			return nil, fmt.Errorf("invalid assign strategy: %s", a.Strategy)
		}
		return a, nil
	case ActionKindSetField:
		var a SetFieldAction
		if err := json.Unmarshal(env.Params, &a); err != nil {
			return nil, err
		}
		return a, nil
	case ActionKindNotify:
		var a NotifyAction
		if err := json.Unmarshal(env.Params, &a); err != nil {
			return nil, err
		}
		return a, nil
	case ActionKindWebhook:
		var a WebhookAction
		if err := json.Unmarshal(env.Params, &a); err != nil {
			return nil, err
		}
		return a, nil
	case ActionKindEscalate:
		var a EscalateAction
		if err := json.Unmarshal(env.Params, &a); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown action kind: %s", env.Kind)
	}
}
