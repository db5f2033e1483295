package automation

import (
	"context"
	"time"
)

// RuleRepository is the persistence port for automation rules.
type RuleRepository interface {
	Save(ctx context.Context, rule *Rule) error
	Update(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, ruleID uint) error
	GetByID(ctx context.Context, ruleID uint) (*Rule, error)
	// ListActive returns the active rules for one organization and trigger
	// type, ordered by ascending execution order.
	ListActive(ctx context.Context, organizationID uint, trigger TriggerType) ([]*Rule, error)
	// IncrementStats applies one execution outcome to the persisted
	// counters with an atomic in-database increment.
	IncrementStats(ctx context.Context, ruleID uint, succeeded bool, duration time.Duration) error
}
