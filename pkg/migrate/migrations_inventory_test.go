package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// The migrations directory must only contain well-formed goose SQL files.
func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestMigrationsCoverCoreTables(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	require.NoError(t, err)

	var all strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
		require.NoError(t, err)
		all.Write(b)
	}

	sql := all.String()
	for _, table := range []string{
		"CREATE TABLE users",
		"CREATE TABLE listings",
		"CREATE TABLE matches",
		"CREATE TABLE payments",
		"CREATE TABLE delivery_confirmations",
	} {
		require.Contains(t, sql, table)
	}

	// A payment can only ever have one confirmation row.
	require.Contains(t, sql, "CREATE UNIQUE INDEX idx_delivery_confirmations_payment_id")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Something New!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_something_new.sql"))

	require.NoError(t, ValidateDir(dir))
}
