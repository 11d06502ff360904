// Package dbtest opens throwaway sqlite databases carrying the same tables,
// cascades and unique indexes as the goose migrations.
package dbtest

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/coffeepos-backend/pkg/db"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]+`)

var schema = []string{
	`CREATE TABLE categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL CHECK (trim(name) <> ''),
		is_active BOOLEAN NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX categories_name_lower_key ON categories (lower(name))`,
	`CREATE TABLE items (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		name TEXT NOT NULL CHECK (trim(name) <> ''),
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX items_category_name_lower_key ON items (category_id, lower(name))`,
	`CREATE TABLE item_prices (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		option_name TEXT,
		price NUMERIC NOT NULL CHECK (price > 0),
		is_default BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		daily_sequence_number INTEGER NOT NULL CHECK (daily_sequence_number >= 1),
		order_date TEXT NOT NULL,
		staff_id TEXT NOT NULL,
		total_amount NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'completed')),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX orders_order_date_daily_sequence_key ON orders (order_date, daily_sequence_number)`,
	`CREATE TABLE order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		item_name TEXT NOT NULL,
		category_name TEXT NOT NULL,
		chosen_price NUMERIC NOT NULL CHECK (chosen_price > 0),
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		details TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE bug_reports (
		id TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL,
		staff_role TEXT,
		report_text TEXT NOT NULL,
		reported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
	`CREATE UNIQUE INDEX outbox_events_type_aggregate_key ON outbox_events (event_type, aggregate_id)
		WHERE event_type = 'report.daily_sales_summary'`,
}

// Open returns a client over a private in-memory database. The pool holds a
// single connection so concurrent transactions queue up behind each other.
func Open(t testing.TB) *db.Client {
	t.Helper()

	name := unsafeName.ReplaceAllString(t.Name(), "_") + "_" + uuid.NewString()[:8]
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}

	client, err := db.FromConn(conn, 0)
	if err != nil {
		t.Fatalf("wrap client: %v", err)
	}
	return client
}
