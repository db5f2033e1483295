package automation

import (
	"fmt"

	"flowdesk/internal/domain/ticket"
)

type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
	CombinatorNot Combinator = "NOT"
)

func (c Combinator) IsValid() bool {
	return c == CombinatorAnd || c == CombinatorOr || c == CombinatorNot
}

// ConditionNode is a tagged variant: a leaf carries Field/Operator/Value,
// a group carries Combinator/Children. Combinator being set is the tag.
// Nodes are immutable once attached to a rule version.
type ConditionNode struct {
	Field    string   `json:"field,omitempty"`
	Operator Operator `json:"operator,omitempty"`
	Value    any      `json:"value,omitempty"`

	Combinator Combinator       `json:"combinator,omitempty"`
	Children   []*ConditionNode `json:"children,omitempty"`
}

func (n *ConditionNode) IsGroup() bool {
	return n != nil && n.Combinator != ""
}

// ConditionEvaluationError reports a malformed tree or an unsatisfiable
// operator application. Callers treat it as a non-match, never a crash.
type ConditionEvaluationError struct {
	Field    string
	Operator Operator
	Reason   string
}

func (e *ConditionEvaluationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("condition evaluation failed on field %q (%s): %s", e.Field, e.Operator, e.Reason)
	}
	return fmt.Sprintf("condition evaluation failed: %s", e.Reason)
}

func newEvalError(field string, op Operator, reason string) *ConditionEvaluationError {
	return &ConditionEvaluationError{Field: field, Operator: op, Reason: reason}
}

// Validate walks the tree and rejects structural problems up front, so a
// rule can refuse activation instead of failing per event.
func (n *ConditionNode) Validate() error {
	if n == nil {
		return newEvalError("", "", "nil condition node")
	}
	if n.IsGroup() {
		if !n.Combinator.IsValid() {
			return newEvalError("", "", fmt.Sprintf("unknown combinator %q", n.Combinator))
		}
		if n.Combinator == CombinatorNot && len(n.Children) != 1 {
			return newEvalError("", "", fmt.Sprintf("NOT requires exactly one child, got %d", len(n.Children)))
		}
		if len(n.Children) == 0 {
			return newEvalError("", "", fmt.Sprintf("%s group has no children", n.Combinator))
		}
		for _, child := range n.Children {
			if err := child.Validate(); err != nil {
				return err
			}
		}
		return nil
	}
	if n.Field == "" {
		return newEvalError("", n.Operator, "leaf condition has no field")
	}
	if !n.Operator.IsValid() {
		return newEvalError(n.Field, n.Operator, "unknown operator")
	}
	return nil
}

// Evaluate applies the condition tree to a ticket snapshot. It is pure and
// deterministic: same tree and snapshot always yield the same result.
// Group evaluation short-circuits; AND stops at the first false child, OR
// at the first true child.
func Evaluate(n *ConditionNode, snap ticket.Snapshot) (bool, error) {
	if n == nil {
		return false, newEvalError("", "", "nil condition node")
	}
	if !n.IsGroup() {
		return evaluateLeaf(n, snap)
	}

	switch n.Combinator {
	case CombinatorAnd:
		if len(n.Children) == 0 {
			return false, newEvalError("", "", "AND group has no children")
		}
		for _, child := range n.Children {
			ok, err := Evaluate(child, snap)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case CombinatorOr:
		if len(n.Children) == 0 {
			return false, newEvalError("", "", "OR group has no children")
		}
		for _, child := range n.Children {
			ok, err := Evaluate(child, snap)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case CombinatorNot:
		if len(n.Children) != 1 {
			return false, newEvalError("", "", fmt.Sprintf("NOT requires exactly one child, got %d", len(n.Children)))
		}
		ok, err := Evaluate(n.Children[0], snap)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default:
		return false, newEvalError("", "", fmt.Sprintf("unknown combinator %q", n.Combinator))
	}
}

func evaluateLeaf(n *ConditionNode, snap ticket.Snapshot) (bool, error) {
	fn, ok := operatorTable[n.Operator]
	if !ok {
		return false, newEvalError(n.Field, n.Operator, "unknown operator")
	}

	actual, present := snap.Field(n.Field)

	if n.Operator == OperatorChangedTo {
		prev, hasPrev := snap.PreviousField(n.Field)
		if !hasPrev {
			return false, newEvalError(n.Field, n.Operator, "snapshot carries no previous value")
		}
		if !present {
			return false, newEvalError(n.Field, n.Operator, "field absent from snapshot")
		}
		return equalValues(actual, n.Value) && !equalValues(prev, n.Value), nil
	}

	// Emptiness checks treat an absent field as empty.
	switch n.Operator {
	case OperatorIsEmpty:
		return !present || isEmpty(actual), nil
	case OperatorIsNotEmpty:
		return present && !isEmpty(actual), nil
	}

	if !present {
		return false, newEvalError(n.Field, n.Operator, "field absent from snapshot")
	}

	return fn(actual, n.Value)
}
