package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvictorme/nikola-sub002/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add price history index", "add_price_history_index"},
		{"Add-Credit-Ledger", "add_credit_ledger"},
		{"ADD_ORDER_LINES", "add_order_lines"},
		{"add__order__lines", "add_order_lines"},
		{"Orders 2", "orders_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add customer kind", "Distinguish system users from people")
	require.NoError(t, err)

	assert.Equal(t, "000001", mf.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_customer_kind.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_customer_kind.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add customer kind")
	assert.Contains(t, string(up), "Distinguish system users from people")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
}

func TestCreateMigration_ContinuesSequence(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000001_pricing_schema.up.sql", "000001_pricing_schema.down.sql",
		"000007_add_index.up.sql", "000007_add_index.down.sql",
		"README.md",
	)

	mf, err := CreateMigration(dir, "next", "")
	require.NoError(t, err)
	assert.Equal(t, "000008", mf.Version)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "test", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"000002_add_orders.up.sql", "000002_add_orders.down.sql",
		"000001_pricing_schema.up.sql", "000001_pricing_schema.down.sql",
		"README.md", ".gitkeep", "notes.up.sql",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_pricing_schema", "000002_add_orders"}, names)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	names, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		match := migrationFileRe.FindStringSubmatch(e.Name())
		require.NotNil(t, match, "unexpected file %s", e.Name())
		if match[3] == "up" {
			ups[match[1]+"_"+match[2]] = true
		} else {
			downs[match[1]+"_"+match[2]] = true
		}
	}
	assert.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}
