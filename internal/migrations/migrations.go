package migrations

import (
	"context"
	"embed"
	"fmt"
	"time"

	"curalink/internal/codec"
	"curalink/internal/database"
	"curalink/internal/seed"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Store is the subset of the row store the bootstrap needs
type Store interface {
	Exec(ctx context.Context, query string, args ...any) (database.Result, error)
	QueryOne(ctx context.Context, scan func(database.Scanner) error, query string, args ...any) (bool, error)
}

// Migration is a named, ordered schema change applied at most once
type Migration struct {
	Version     string
	Description string
	File        string
}

// All lists every migration in the order it must be applied. Version 1.0.0
// is the base schema itself and only gets recorded.
var All = []Migration{
	{Version: "1.0.0", Description: "Initial schema"},
	{Version: "1.1.0", Description: "Add events table", File: "sql/1.1.0_events.sql"},
}

// Options controls which default rows the bootstrap inserts
type Options struct {
	SeedTemplates bool
	SeedContacts  bool
	Now           func() time.Time
}

const (
	selectMigrationQuery = `SELECT version FROM migrations WHERE version = ?`
	insertMigrationQuery = `INSERT INTO migrations (version, applied_at) VALUES (?, ?)`

	insertSettingIfMissingQuery = `INSERT OR IGNORE INTO settings (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)`

	insertTemplateIfMissingQuery = `
		INSERT INTO templates (id, title, content, variables, category, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM templates WHERE title = ?)
	`

	insertContactIfMissingQuery = `
		INSERT INTO contacts (id, name, phone, email, organization, tags, status, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM contacts WHERE name = ?)
	`
)

// GetInitialSchema returns the base schema script
func GetInitialSchema() (string, error) {
	b, err := sqlFiles.ReadFile("sql/schema.sql")
	if err != nil {
		return "", fmt.Errorf("could not read schema: %w", err)
	}
	return string(b), nil
}

// Bootstrap brings a store up to date. Every step is idempotent, so it is safe
// to run on each start: tables and indexes are created if missing, pending
// migrations are applied and recorded, and default rows are inserted only when
// no row with the same natural key exists.
func Bootstrap(ctx context.Context, store Store, opts Options, logger *logrus.Logger) error {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	schema, err := GetInitialSchema()
	if err != nil {
		return err
	}
	if _, err := store.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	applied, err := applyMigrations(ctx, store, now, logger)
	if err != nil {
		return err
	}

	if err := seedSettings(ctx, store, now()); err != nil {
		return err
	}
	if opts.SeedTemplates {
		if err := seedTemplates(ctx, store, now()); err != nil {
			return err
		}
	}
	if opts.SeedContacts {
		if err := seedContacts(ctx, store, now()); err != nil {
			return err
		}
	}

	logger.WithFields(logrus.Fields{
		"applied_migrations": applied,
		"latest_version":     All[len(All)-1].Version,
	}).Info("Database bootstrap complete")
	return nil
}

// IsApplied reports whether version is recorded in the migration log
func IsApplied(ctx context.Context, store Store, version string) (bool, error) {
	var v string
	found, err := store.QueryOne(ctx, func(s database.Scanner) error {
		return s.Scan(&v)
	}, selectMigrationQuery, version)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", version, err)
	}
	return found, nil
}

func applyMigrations(ctx context.Context, store Store, now func() time.Time, logger *logrus.Logger) (int, error) {
	applied := 0
	for _, m := range All {
		done, err := IsApplied(ctx, store, m.Version)
		if err != nil {
			return applied, err
		}
		if done {
			logger.WithField("version", m.Version).Debug("Migration already applied, skipping")
			continue
		}

		if m.File != "" {
			script, err := sqlFiles.ReadFile(m.File)
			if err != nil {
				return applied, fmt.Errorf("failed to read migration %s: %w", m.Version, err)
			}
			if _, err := store.Exec(ctx, string(script)); err != nil {
				return applied, fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
			}
		}

		if _, err := store.Exec(ctx, insertMigrationQuery, m.Version, now().UTC()); err != nil {
			return applied, fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}
		applied++

		logger.WithFields(logrus.Fields{
			"version":     m.Version,
			"description": m.Description,
		}).Info("Applied migration")
	}
	return applied, nil
}

func seedSettings(ctx context.Context, store Store, at time.Time) error {
	for _, s := range seed.Settings() {
		if _, err := store.Exec(ctx, insertSettingIfMissingQuery, s.Key, s.Value, at.UTC(), at.UTC()); err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", s.Key, err)
		}
	}
	return nil
}

func seedTemplates(ctx context.Context, store Store, at time.Time) error {
	for _, t := range seed.Templates() {
		vars, err := codec.EncodeList(t.Variables)
		if err != nil {
			return err
		}
		_, err = store.Exec(ctx, insertTemplateIfMissingQuery,
			uuid.NewString(), t.Title, t.Content, vars, t.Category, at.UTC(), at.UTC(), t.Title)
		if err != nil {
			return fmt.Errorf("failed to seed template %q: %w", t.Title, err)
		}
	}
	return nil
}

func seedContacts(ctx context.Context, store Store, at time.Time) error {
	for _, c := range seed.Contacts() {
		tags, err := codec.EncodeList(c.Tags)
		if err != nil {
			return err
		}
		_, err = store.Exec(ctx, insertContactIfMissingQuery,
			uuid.NewString(), c.Name, c.Phone, c.Email, c.Organization, tags, c.Status, at.UTC(), at.UTC(), c.Name)
		if err != nil {
			return fmt.Errorf("failed to seed contact %q: %w", c.Name, err)
		}
	}
	return nil
}
