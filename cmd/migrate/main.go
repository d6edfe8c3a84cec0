package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"curalink/internal/config"
	"curalink/internal/database"
	"curalink/internal/migrations"

	"github.com/sirupsen/logrus"
)

func main() {
	dbPath := flag.String("db", "", "Path to the database file (defaults to the configured path)")
	seed := flag.Bool("seed", false, "Insert sample templates and contacts that are not present yet")
	stats := flag.Bool("stats", false, "Print row counts after migrating")
	backup := flag.Bool("backup", false, "Write a backup copy next to the database before migrating")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(context.Background(), *dbPath, *seed, *stats, *backup, logger); err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}
}

func run(ctx context.Context, dbPath string, seed, stats, backup bool, logger *logrus.Logger) error {
	if dbPath != "" {
		if err := os.Setenv(config.EnvDBPath, dbPath); err != nil {
			return err
		}
	}
	cfg, err := config.LoadConfig("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(cfg.Database.Path, database.WithEncryption(cfg.Database.EncryptionEnabled, cfg.Database.EncryptionSecret))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if backup {
		path, err := db.Backup(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("failed to back up database: %w", err)
		}
		logger.WithField("file_path", path).Info("Backup written")
	}

	for _, m := range migrations.All {
		// the migration log is missing before the first bootstrap
		if applied, err := migrations.IsApplied(ctx, db, m.Version); err == nil && applied {
			continue
		}
		logger.WithFields(logrus.Fields{
			"version":     m.Version,
			"description": m.Description,
		}).Info("Pending migration")
	}

	if err := migrations.Bootstrap(ctx, db, migrations.Options{
		SeedTemplates: seed,
		SeedContacts:  seed,
	}, logger); err != nil {
		return err
	}

	if stats {
		s, err := db.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to read stats: %w", err)
		}
		fmt.Printf("contacts:  %d\ntemplates: %d\nmessages:  %d\nevents:    %d\n", s.Contacts, s.Templates, s.Messages, s.Events)
	}

	logger.WithField("file_path", db.Path()).Info("Database schema is up to date")
	return nil
}
