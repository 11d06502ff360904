package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected one %s migration", suffix)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_catalog")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE TABLE IF NOT EXISTS items",
		"CREATE TABLE IF NOT EXISTS item_prices",
		"ON categories (lower(name))",
		"ON items (category_id, lower(name))",
		"FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE",
		"FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE",
		"CHECK (price > 0)",
	}
	for _, check := range checks {
		require.Contains(t, content, check)
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_orders")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"ON orders (order_date, daily_sequence_number)",
		"ON orders (status, created_at)",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity >= 1)",
		"CHECK (status IN ('new', 'completed'))",
		"NUMERIC(12,2)",
	}
	for _, check := range checks {
		require.Contains(t, content, check)
	}
	require.NotContains(t, content, "REFERENCES items", "order lines must snapshot names, not reference the catalog")
}

func TestSixDomainTablesPlusOutbox(t *testing.T) {
	files, err := EmbeddedFiles()
	require.NoError(t, err)

	var all strings.Builder
	for _, name := range files {
		data, err := embedded.ReadFile(embeddedDir + "/" + name)
		require.NoError(t, err)
		all.Write(data)
	}
	for _, table := range []string{"categories", "items", "item_prices", "orders", "order_items", "bug_reports", "outbox_events"} {
		require.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestValidateDirAcceptsRepositoryMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, time.October, 19, 8, 30, 0, 0, time.UTC)

	path, err := createAt(dir, "Add Order Notes!", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20261019083000_add_order_notes.sql"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "-- +goose Up")
	require.Contains(t, string(data), "-- rollback add_order_notes")
	require.NoError(t, ValidateDir(dir))

	_, err = createAt(dir, "Add Order Notes!", now)
	require.Error(t, err, "same version twice must fail")

	_, err = createAt(dir, "!!!", now)
	require.Error(t, err)
}
