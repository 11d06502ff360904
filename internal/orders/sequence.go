package orders

import (
	"context"
	"fmt"

	"github.com/angelmondragon/coffeepos-backend/pkg/types"
)

// sequenceLockNamespace is the first key of the per-day advisory lock.
const sequenceLockNamespace int64 = 0x4350

const (
	advisoryLockSQL   = "SELECT pg_advisory_xact_lock(?, ?)"
	maxDailyNumberSQL = "SELECT COALESCE(MAX(daily_sequence_number), 0) FROM orders WHERE order_date = ?"
)

// NextDailyNumber returns 1 + the highest number already handed out on date.
// It must run inside the transaction that inserts the order. On Postgres the
// transaction first takes an advisory lock keyed by the day, so concurrent
// commits for the same day wait for each other instead of reading the same
// maximum. Other dialects rely on the (order_date, daily_sequence_number)
// unique index.
func (r *repository) NextDailyNumber(ctx context.Context, date types.Date) (int, error) {
	if date.IsZero() {
		return 0, fmt.Errorf("order date required")
	}
	conn := r.db.WithContext(ctx)
	if r.isPostgres() {
		if err := conn.Exec(advisoryLockSQL, sequenceLockNamespace, date.Compact()).Error; err != nil {
			return 0, fmt.Errorf("lock daily sequence: %w", err)
		}
	}

	var current int
	if err := conn.Raw(maxDailyNumberSQL, date).Scan(&current).Error; err != nil {
		return 0, fmt.Errorf("read daily sequence: %w", err)
	}
	return current + 1, nil
}
