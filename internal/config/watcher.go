package config

import (
	"context"
	"os"
	"sync"
	"time"

	"curalink/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	defaultWatchInterval = 5 * time.Second
	// a change is only reloaded once the file has stopped changing for one poll
	settleDelay = 100 * time.Millisecond
)

// ConfigWatcher polls the configuration file and reloads it when its
// modification time or size changes. Only settings that can change at
// runtime are acted on; the rest are reported as needing a restart.
type ConfigWatcher struct {
	configPath string
	logger     *logrus.Logger
	interval   time.Duration

	mu        sync.RWMutex
	config    *models.Config
	callbacks []func(*models.Config)
}

type fileState struct {
	modTime time.Time
	size    int64
}

func statFile(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{modTime: info.ModTime(), size: info.Size()}, nil
}

// NewConfigWatcher creates a watcher for the file at configPath
func NewConfigWatcher(configPath string, logger *logrus.Logger) *ConfigWatcher {
	return &ConfigWatcher{
		configPath: configPath,
		logger:     logger,
		interval:   defaultWatchInterval,
	}
}

// Start loads the configuration and then polls the file until ctx is done.
// It fails only when the first load fails.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	config, err := LoadConfig(cw.configPath)
	if err != nil {
		return err
	}
	last, err := statFile(cw.configPath)
	if err != nil {
		return err
	}

	cw.mu.Lock()
	cw.config = config
	cw.mu.Unlock()

	cw.logger.WithFields(logrus.Fields{
		"file_path":   cw.configPath,
		"interval_ms": cw.interval.Milliseconds(),
	}).Info("Configuration watcher started")

	ticker := time.NewTicker(cw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.logger.Debug("Configuration watcher stopped")
			return nil
		case <-ticker.C:
			current, err := statFile(cw.configPath)
			if err != nil {
				cw.logger.WithError(err).Warn("Configuration file unavailable, keeping current settings")
				continue
			}
			if current == last {
				continue
			}

			time.Sleep(settleDelay)
			if settled, err := statFile(cw.configPath); err == nil {
				current = settled
			}
			last = current
			cw.reloadConfig()
		}
	}
}

// GetConfig returns the configuration most recently loaded
func (cw *ConfigWatcher) GetConfig() *models.Config {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.config
}

// OnConfigChange registers fn to receive every successfully reloaded configuration
func (cw *ConfigWatcher) OnConfigChange(fn func(*models.Config)) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, fn)
}

// reloadConfig swaps in the new configuration. An invalid file leaves the
// previous configuration in place and notifies no one.
func (cw *ConfigWatcher) reloadConfig() {
	next, err := LoadConfig(cw.configPath)
	if err != nil {
		cw.logger.WithError(err).Error("Configuration reload rejected")
		return
	}

	cw.mu.Lock()
	prev := cw.config
	cw.config = next
	callbacks := append([]func(*models.Config){}, cw.callbacks...)
	cw.mu.Unlock()

	cw.logChanges(prev, next)

	for _, fn := range callbacks {
		go cw.notify(fn, next)
	}
}

func (cw *ConfigWatcher) notify(fn func(*models.Config), config *models.Config) {
	defer func() {
		if r := recover(); r != nil {
			cw.logger.WithField("panic", r).Error("Config change callback panicked")
		}
	}()
	fn(config)
}

func (cw *ConfigWatcher) logChanges(prev, next *models.Config) {
	if prev == nil {
		cw.logger.Info("Configuration loaded")
		return
	}

	changed := logrus.Fields{}
	if prev.LogLevel != next.LogLevel {
		changed["log_level"] = next.LogLevel
	}
	if prev.Reminders.UpcomingWindowDays != next.Reminders.UpcomingWindowDays {
		changed["window_days"] = next.Reminders.UpcomingWindowDays
	}
	cw.logger.WithFields(changed).Info("Configuration reloaded")

	if prev.Database.Path != next.Database.Path || prev.Server.Port != next.Server.Port || prev.Server.Host != next.Server.Host {
		cw.logger.Warn("Database path and listen address changes take effect after a restart")
	}
}
