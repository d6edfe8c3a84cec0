package database

import (
	"context"
	"database/sql"
	"fmt"

	"curalink/internal/codec"
	"curalink/internal/models"
)

// SaveHistoryEntry appends a message history row
func (d *Database) SaveHistoryEntry(ctx context.Context, entry *models.MessageHistoryEntry) error {
	meta, err := codec.EncodeMap(entry.Metadata)
	if err != nil {
		return err
	}
	meta, err = d.cipher.EncryptIfEnabled(meta)
	if err != nil {
		return fmt.Errorf("failed to encrypt metadata: %w", err)
	}

	_, err = d.Exec(ctx, InsertHistoryQuery,
		entry.ID, entry.ContactID, entry.MessageContent, entry.Timestamp.UTC(),
		nullString(entry.TemplateID), entry.SentVia, entry.SendStatus, meta)
	if err != nil {
		return fmt.Errorf("failed to save message history: %w", err)
	}
	return nil
}

// GetHistoryEntry returns a joined history row, or nil when the id is unknown
func (d *Database) GetHistoryEntry(ctx context.Context, id string) (*models.MessageHistoryEntry, error) {
	var entry *models.MessageHistoryEntry
	found, err := d.QueryOne(ctx, func(s Scanner) error {
		e, err := d.scanHistory(s)
		entry = e
		return err
	}, SelectHistoryByIDQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message history: %w", err)
	}
	if !found {
		return nil, nil
	}
	return entry, nil
}

// ListHistory returns all history newest first
func (d *Database) ListHistory(ctx context.Context) ([]models.MessageHistoryEntry, error) {
	entries, err := d.queryHistory(ctx, SelectAllHistoryQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list message history: %w", err)
	}
	return entries, nil
}

// ListHistoryByContact returns one contact's history newest first
func (d *Database) ListHistoryByContact(ctx context.Context, contactID string) ([]models.MessageHistoryEntry, error) {
	entries, err := d.queryHistory(ctx, SelectHistoryByContactQuery, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list message history for contact: %w", err)
	}
	return entries, nil
}

// SearchHistory matches term against message content and contact name
func (d *Database) SearchHistory(ctx context.Context, term string) ([]models.MessageHistoryEntry, error) {
	pattern := likePattern(term)
	entries, err := d.queryHistory(ctx, SearchHistoryQuery, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search message history: %w", err)
	}
	return entries, nil
}

func (d *Database) queryHistory(ctx context.Context, query string, args ...any) ([]models.MessageHistoryEntry, error) {
	entries := []models.MessageHistoryEntry{}
	err := d.QueryAll(ctx, func(s Scanner) error {
		e, err := d.scanHistory(s)
		if err != nil {
			return err
		}
		entries = append(entries, *e)
		return nil
	}, query, args...)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (d *Database) scanHistory(s Scanner) (*models.MessageHistoryEntry, error) {
	var (
		e          models.MessageHistoryEntry
		templateID sql.NullString
		meta       sql.NullString
	)

	if err := s.Scan(&e.ID, &e.ContactID, &e.MessageContent, &e.Timestamp, &templateID,
		&e.SentVia, &e.SendStatus, &meta, &e.ContactName, &e.ContactPhone, &e.TemplateTitle); err != nil {
		return nil, err
	}

	plain, err := d.cipher.DecryptIfEnabled(meta.String)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt metadata: %w", err)
	}
	if e.Metadata, err = codec.DecodeMap(plain); err != nil {
		return nil, err
	}
	e.TemplateID = templateID.String
	return &e, nil
}
