package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curalink/internal/config"
	"curalink/internal/constants"
	"curalink/internal/database"
	"curalink/internal/facade"
	"curalink/internal/migrations"
	"curalink/internal/models"
	"curalink/internal/retry"
	"curalink/internal/service"
	"curalink/internal/tracing"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging (includes per-call detail)")
	configPath = flag.String("config", "", "Path to an optional JSON configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("CuraLink %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting CuraLink host")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLogLevel(logger, cfg.LogLevel, *verbose)

	tracingManager := tracing.NewTracingManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewServices(db, logger, service.Options{})
	if stats, err := svc.Stats(ctx); err != nil {
		logger.WithError(err).Warn("Failed to read database stats")
	} else {
		logger.WithFields(logrus.Fields{
			"contacts":  stats.Contacts,
			"templates": stats.Templates,
			"messages":  stats.Messages,
			"events":    stats.Events,
		}).Info("Database ready")
	}

	refresher := service.NewReminderRefresher(svc.Events, svc.Settings, cron.New(), cfg.Reminders, logger)
	refresher.OnRefresh(func(snap service.Snapshot) {
		if len(snap.NeedingReminders) > 0 {
			logger.WithField(service.LogFieldCount, len(snap.NeedingReminders)).Info("Events need reminders for tomorrow")
		}
	})
	if err := refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reminder refresher: %w", err)
	}
	defer refresher.Stop()

	if *configPath != "" {
		watcher := config.NewConfigWatcher(*configPath, logger)
		watcher.OnConfigChange(func(c *models.Config) {
			applyLogLevel(logger, c.LogLevel, *verbose)
			refresher.SetWindowDays(c.Reminders.UpcomingWindowDays)
		})
		go func() {
			if err := watcher.Start(ctx); err != nil {
				logger.WithError(err).Warn("Configuration watcher stopped")
			}
		}()
	}

	dispatcher := facade.NewDispatcher(svc, facade.ModeRemote, logger)
	server := NewServer(cfg, svc, dispatcher, refresher, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

// applyLogLevel sets the configured level. Debug output needs -verbose.
func applyLogLevel(logger *logrus.Logger, configured string, verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	level, err := logrus.ParseLevel(configured)
	if err != nil {
		logger.Warnf("Invalid log level %q, defaulting to info", configured)
		level = logrus.InfoLevel
	}
	if level > logrus.InfoLevel {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// openStore opens and bootstraps the database, retrying while the file is locked
func openStore(ctx context.Context, cfg *models.Config, logger *logrus.Logger) (*database.Database, error) {
	backoff := retry.NewBackoff(retry.FromRetryConfig(cfg.Retry)).OnRetry(func(attempt int, err error, delay time.Duration) {
		logger.WithError(err).WithFields(logrus.Fields{
			service.LogFieldAttempt:  attempt,
			service.LogFieldDuration: delay.Milliseconds(),
		}).Warn("Database busy, retrying")
	})

	var db *database.Database
	err := backoff.RetryWithPredicate(ctx, func() error {
		opened, err := database.Open(cfg.Database.Path, database.WithEncryption(cfg.Database.EncryptionEnabled, cfg.Database.EncryptionSecret))
		if err != nil {
			return err
		}
		if err := migrations.Bootstrap(ctx, opened, migrations.Options{
			SeedTemplates: !cfg.SkipSampleData,
			SeedContacts:  !cfg.SkipSampleData,
		}, logger); err != nil {
			opened.Close()
			return err
		}
		db = opened
		return nil
	}, database.IsTransientError)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
	}

	logger.WithField(service.LogFieldFilePath, cfg.Database.Path).Info("Database opened")
	return db, nil
}
