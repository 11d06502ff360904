package db

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const timeoutCancelKey = "coffeepos:command_timeout_cancel"

// registerCommandTimeout bounds each create/query/update/delete/raw statement
// with its own deadline. Row/Rows are left alone because their result set
// outlives the callback chain.
func registerCommandTimeout(conn *gorm.DB, timeout time.Duration) error {
	before := func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		db.Statement.Context = ctx
		db.InstanceSet(timeoutCancelKey, cancel)
	}
	after := func(db *gorm.DB) {
		if v, ok := db.InstanceGet(timeoutCancelKey); ok {
			if cancel, ok := v.(context.CancelFunc); ok {
				cancel()
			}
		}
	}

	cb := conn.Callback()
	if err := cb.Create().Before("gorm:create").Register("coffeepos:timeout_before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("coffeepos:timeout_after_create", after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("coffeepos:timeout_before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("coffeepos:timeout_after_query", after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("coffeepos:timeout_before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("coffeepos:timeout_after_update", after); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("coffeepos:timeout_before_delete", before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("coffeepos:timeout_after_delete", after); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("coffeepos:timeout_before_raw", before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("coffeepos:timeout_after_raw", after)
}
