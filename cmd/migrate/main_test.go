package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curalink/internal/config"
	"curalink/internal/database"
	"curalink/internal/migrations"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvDBPath, config.EnvPort, config.EnvEncryptionSecret,
		config.EnvEnableEncryption, config.EnvLogLevel, config.EnvEnvironment,
	} {
		t.Setenv(key, "")
	}
}

func TestRun_BootstrapsSeedsAndBacksUp(t *testing.T) {
	isolateEnv(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ctx := context.Background()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "app-data.db")

	require.NoError(t, run(ctx, dbPath, true, false, false, logger))
	require.NoError(t, run(ctx, dbPath, true, true, true, logger))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	for _, m := range migrations.All {
		applied, err := migrations.IsApplied(ctx, db, m.Version)
		require.NoError(t, err)
		assert.True(t, applied, m.Version)
	}

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Contacts, "seeding twice inserts nothing new")
	assert.Equal(t, 4, stats.Templates)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var backups int
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "app-data_backup_") {
			backups++
		}
	}
	assert.Equal(t, 1, backups)
}

func TestRun_InvalidPath(t *testing.T) {
	isolateEnv(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	err := run(context.Background(), "../../etc/app.db", false, false, false, logger)
	assert.Error(t, err)
}
