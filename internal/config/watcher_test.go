package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"curalink/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewConfigWatcher(t *testing.T) {
	logger := quietLogger()
	watcher := NewConfigWatcher("/path/to/config.json", logger)

	assert.Equal(t, "/path/to/config.json", watcher.configPath)
	assert.Equal(t, defaultWatchInterval, watcher.interval)
	assert.Nil(t, watcher.GetConfig())
	assert.Empty(t, watcher.callbacks)
}

func TestConfigWatcher_Start_InvalidPath(t *testing.T) {
	isolateEnv(t)
	watcher := NewConfigWatcher(filepath.Join(t.TempDir(), "missing.json"), quietLogger())

	err := watcher.Start(context.Background())
	assert.Error(t, err)
}

func TestConfigWatcher_Start_LoadsConfig(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `{"log_level": "warn"}`)
	watcher := NewConfigWatcher(path, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, watcher.Start(ctx))
	require.NotNil(t, watcher.GetConfig())
	assert.Equal(t, "warn", watcher.GetConfig().LogLevel)
}

func TestConfigWatcher_ReloadsOnChange(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `{"log_level": "info", "reminders": {"upcoming_window_days": 1}}`)

	watcher := NewConfigWatcher(path, quietLogger())
	watcher.interval = 20 * time.Millisecond

	changed := make(chan *models.Config, 1)
	watcher.OnConfigChange(func(c *models.Config) { changed <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watcher.Start(ctx) }()

	require.Eventually(t, func() bool { return watcher.GetConfig() != nil }, time.Second, 10*time.Millisecond)
	// let Start record the initial modification time
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"log_level": "debug", "reminders": {"upcoming_window_days": 7}}`), 0600))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	select {
	case c := <-changed:
		assert.Equal(t, "debug", c.LogLevel)
		assert.Equal(t, 7, c.Reminders.UpcomingWindowDays)
	case <-time.After(2 * time.Second):
		t.Fatal("config change callback was not called")
	}
	assert.Equal(t, "debug", watcher.GetConfig().LogLevel)

	cancel()
	assert.NoError(t, <-done)
}

func TestConfigWatcher_KeepsConfigOnInvalidReload(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `{"log_level": "info"}`)

	watcher := NewConfigWatcher(path, quietLogger())
	initial, err := LoadConfig(path)
	require.NoError(t, err)
	watcher.config = initial

	called := false
	watcher.OnConfigChange(func(*models.Config) { called = true })

	require.NoError(t, os.WriteFile(path, []byte(`{"log_level": "loud"}`), 0600))
	watcher.reloadConfig()

	assert.Same(t, initial, watcher.GetConfig())
	assert.False(t, called)
}

func TestConfigWatcher_CallbackPanicRecovered(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `{}`)

	watcher := NewConfigWatcher(path, quietLogger())
	after := make(chan struct{})
	watcher.OnConfigChange(func(*models.Config) { panic("boom") })
	watcher.OnConfigChange(func(*models.Config) { close(after) })

	watcher.reloadConfig()

	select {
	case <-after:
	case <-time.After(time.Second):
		t.Fatal("second callback was not called")
	}
	assert.NotNil(t, watcher.GetConfig())
}
