package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"curalink/internal/constants"
	"curalink/internal/models"
	"curalink/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

// Scanner is satisfied by *sql.Row and *sql.Rows
type Scanner interface {
	Scan(dest ...any) error
}

// Result reports the outcome of a mutating statement
type Result struct {
	AffectedCount int64
	LastInsertID  int64
}

// Database is the row store over a single SQLite file. It issues parameterized
// statements only and never retries; failures are returned with their cause.
type Database struct {
	db     *sql.DB
	path   string
	cipher *fieldCipher
}

// Option configures a Database at open time
type Option func(*options)

type options struct {
	encryptionEnabled bool
	encryptionSecret  string
}

// WithEncryption enables at-rest encryption of sensitive free-text columns
func WithEncryption(enabled bool, secret string) Option {
	return func(o *options) {
		o.encryptionEnabled = enabled
		o.encryptionSecret = secret
	}
}

// Open creates the database file and its directory when missing, enables
// foreign key enforcement and verifies the connection.
func Open(dbPath string, opts ...Option) (*Database, error) {
	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cipher, err := newFieldCipher(o.encryptionEnabled, o.encryptionSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600) // #nosec G304 - Path validated by security.ValidateFilePath above
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{db: db, path: dbPath, cipher: cipher}, nil
}

func dsn(dbPath string) string {
	return "file:" + dbPath + "?_foreign_keys=on&_busy_timeout=5000"
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the file the database was opened from
func (d *Database) Path() string {
	return d.path
}

// Exec runs a mutating statement
func (d *Database) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute statement: %w", err)
	}

	var out Result
	if out.AffectedCount, err = res.RowsAffected(); err != nil {
		return Result{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if out.LastInsertID, err = res.LastInsertId(); err != nil {
		return Result{}, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return out, nil
}

// QueryOne scans the first row of query. It reports false when there is no row.
func (d *Database) QueryOne(ctx context.Context, scan func(Scanner) error, query string, args ...any) (bool, error) {
	row := d.db.QueryRowContext(ctx, query, args...)
	if err := scan(row); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to query row: %w", err)
	}
	return true, nil
}

// QueryAll calls scan once per row of query, in result order
func (d *Database) QueryAll(ctx context.Context, scan func(Scanner) error, query string, args ...any) error {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate rows: %w", err)
	}
	return nil
}

// Backup writes a consistent copy of the database next to the live file and returns its path
func (d *Database) Backup(ctx context.Context, now time.Time) (string, error) {
	ext := filepath.Ext(d.path)
	base := strings.TrimSuffix(d.path, ext)
	if ext == "" {
		ext = ".db"
	}
	dest := base + constants.DefaultBackupSuffix + strconv.FormatInt(now.UnixMilli(), 10) + ext

	if _, err := d.db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}
	return dest, nil
}

// Stats counts the rows of the main tables
func (d *Database) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	_, err := d.QueryOne(ctx, func(s Scanner) error {
		return s.Scan(&stats.Contacts, &stats.Templates, &stats.Messages, &stats.Events)
	}, SelectStatsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	return &stats, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
