// Package db carries a gorm transaction through context so multi-step
// writes share one unit of work without repositories knowing about each
// other.
package db

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// RunInTransaction executes fn inside a transaction and exposes it via the
// derived context. An error from fn rolls the whole unit back. Calls made
// while a transaction is already ambient join it instead of nesting.
func RunInTransaction(ctx context.Context, base *gorm.DB, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return base.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// GetTxFromContext returns the ambient transaction, falling back to the
// default connection when none is open.
func GetTxFromContext(ctx context.Context, defaultDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return defaultDB.WithContext(ctx)
}
