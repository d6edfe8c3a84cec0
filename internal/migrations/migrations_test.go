package migrations

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"curalink/internal/database"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func openTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "bootstrap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func count(t *testing.T, db *database.Database, query string, args ...any) int {
	t.Helper()
	var n int
	_, err := db.QueryOne(context.Background(), func(s database.Scanner) error {
		return s.Scan(&n)
	}, query, args...)
	require.NoError(t, err)
	return n
}

func fullSeed() Options {
	return Options{SeedTemplates: true, SeedContacts: true}
}

func TestGetInitialSchema(t *testing.T) {
	schema, err := GetInitialSchema()
	require.NoError(t, err)

	for _, table := range []string{"migrations", "settings", "contacts", "templates", "message_history"} {
		assert.True(t, strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table), table)
	}
	assert.Contains(t, schema, "ON DELETE CASCADE")
	assert.Contains(t, schema, "ON DELETE SET NULL")
}

func TestBootstrap_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Bootstrap(ctx, db, fullSeed(), testLogger()))

	assert.Equal(t, len(All), count(t, db, "SELECT COUNT(*) FROM migrations"))
	assert.Equal(t, 8, count(t, db, "SELECT COUNT(*) FROM settings"))
	assert.Equal(t, 4, count(t, db, "SELECT COUNT(*) FROM templates"))
	assert.Equal(t, 4, count(t, db, "SELECT COUNT(*) FROM contacts"))
	assert.Equal(t, 0, count(t, db, "SELECT COUNT(*) FROM events"))

	for _, m := range All {
		applied, err := IsApplied(ctx, db, m.Version)
		require.NoError(t, err)
		assert.True(t, applied, m.Version)
	}
}

func TestBootstrap_IsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, Bootstrap(ctx, db, fullSeed(), testLogger()))
	}

	assert.Equal(t, len(All), count(t, db, "SELECT COUNT(*) FROM migrations"))
	assert.Equal(t, 8, count(t, db, "SELECT COUNT(*) FROM settings"))
	assert.Equal(t, 4, count(t, db, "SELECT COUNT(*) FROM templates"))
	assert.Equal(t, 4, count(t, db, "SELECT COUNT(*) FROM contacts"))
}

func TestBootstrap_SeedsByNaturalKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Bootstrap(ctx, db, Options{}, testLogger()))
	assert.Equal(t, 0, count(t, db, "SELECT COUNT(*) FROM templates"))
	assert.Equal(t, 0, count(t, db, "SELECT COUNT(*) FROM contacts"))

	_, err := db.Exec(ctx, `INSERT INTO templates (id, title, content) VALUES ('mine', 'Birthday Wishes', 'Happy birthday!')`)
	require.NoError(t, err)
	_, err = db.Exec(ctx, `INSERT INTO contacts (id, name) VALUES ('c-1', 'Sarah Johnson')`)
	require.NoError(t, err)

	require.NoError(t, Bootstrap(ctx, db, fullSeed(), testLogger()))

	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM templates WHERE title = ?", "Birthday Wishes"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM templates WHERE id = 'mine'"))
	assert.Equal(t, 4, count(t, db, "SELECT COUNT(*) FROM templates"))
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM contacts WHERE name = ?", "Sarah Johnson"))
	assert.Equal(t, 4, count(t, db, "SELECT COUNT(*) FROM contacts"))
}

func TestBootstrap_KeepsChangedSettings(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Bootstrap(ctx, db, Options{}, testLogger()))
	_, err := db.Exec(ctx, `UPDATE settings SET value = 'Riverside Physio' WHERE key = 'organization'`)
	require.NoError(t, err)

	require.NoError(t, Bootstrap(ctx, db, Options{}, testLogger()))

	var org string
	_, err = db.QueryOne(ctx, func(s database.Scanner) error {
		return s.Scan(&org)
	}, "SELECT value FROM settings WHERE key = 'organization'")
	require.NoError(t, err)
	assert.Equal(t, "Riverside Physio", org)
}

func TestBootstrap_AppliesPendingMigrationOnOlderDatabase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// A database created before the events table existed
	schema, err := GetInitialSchema()
	require.NoError(t, err)
	_, err = db.Exec(ctx, schema)
	require.NoError(t, err)
	_, err = db.Exec(ctx, insertMigrationQuery, "1.0.0", time.Now().UTC())
	require.NoError(t, err)

	applied, err := IsApplied(ctx, db, "1.1.0")
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, Bootstrap(ctx, db, Options{}, testLogger()))

	applied, err = IsApplied(ctx, db, "1.1.0")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'events'"))
}
