package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"curalink/internal/codec"
	"curalink/internal/models"
)

// SaveContact inserts a new contact
func (d *Database) SaveContact(ctx context.Context, contact *models.Contact) error {
	tags, err := codec.EncodeList(contact.Tags)
	if err != nil {
		return err
	}

	notes, err := d.cipher.EncryptIfEnabled(contact.Notes)
	if err != nil {
		return fmt.Errorf("failed to encrypt notes: %w", err)
	}

	_, err = d.Exec(ctx, InsertContactQuery,
		contact.ID, contact.Name, nullString(contact.Phone), nullString(contact.Email),
		nullString(contact.Organization), tags, contact.Status, nullString(notes),
		nullString(contact.AvatarPath), contact.CreatedAt.UTC(), contact.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}

// UpdateContact replaces the mutable fields of a contact. It reports false when no row matched.
func (d *Database) UpdateContact(ctx context.Context, contact *models.Contact) (bool, error) {
	tags, err := codec.EncodeList(contact.Tags)
	if err != nil {
		return false, err
	}

	notes, err := d.cipher.EncryptIfEnabled(contact.Notes)
	if err != nil {
		return false, fmt.Errorf("failed to encrypt notes: %w", err)
	}

	res, err := d.Exec(ctx, UpdateContactQuery,
		contact.Name, nullString(contact.Phone), nullString(contact.Email),
		nullString(contact.Organization), tags, contact.Status, nullString(notes),
		nullString(contact.AvatarPath), contact.UpdatedAt.UTC(), contact.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	return res.AffectedCount > 0, nil
}

// GetContact returns nil when the id is unknown
func (d *Database) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	var contact *models.Contact
	found, err := d.QueryOne(ctx, func(s Scanner) error {
		c, err := d.scanContact(s)
		contact = c
		return err
	}, SelectContactByIDQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	if !found {
		return nil, nil
	}
	return contact, nil
}

// ListContacts returns all contacts ordered by name
func (d *Database) ListContacts(ctx context.Context) ([]models.Contact, error) {
	contacts, err := d.queryContacts(ctx, SelectAllContactsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// SearchContacts matches term case-insensitively against name, email and
// organization. An empty status disables the status filter.
func (d *Database) SearchContacts(ctx context.Context, term, status string) ([]models.Contact, error) {
	pattern := likePattern(term)
	query := SearchContactsQuery
	args := []any{pattern, pattern, pattern}
	if status != "" {
		query += SearchContactsStatusClause
		args = append(args, status)
	}
	query += SearchContactsOrderClause

	contacts, err := d.queryContacts(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	return contacts, nil
}

// DeleteContact removes a contact and, through the foreign key, its message history
func (d *Database) DeleteContact(ctx context.Context, id string) error {
	if _, err := d.Exec(ctx, DeleteContactQuery, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

func (d *Database) queryContacts(ctx context.Context, query string, args ...any) ([]models.Contact, error) {
	contacts := []models.Contact{}
	err := d.QueryAll(ctx, func(s Scanner) error {
		c, err := d.scanContact(s)
		if err != nil {
			return err
		}
		contacts = append(contacts, *c)
		return nil
	}, query, args...)
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (d *Database) scanContact(s Scanner) (*models.Contact, error) {
	var (
		c                                        models.Contact
		phone, email, org, notes, avatar, status sql.NullString
		tags                                     string
	)

	if err := s.Scan(&c.ID, &c.Name, &phone, &email, &org, &tags, &status, &notes, &avatar,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.Tags, err = codec.DecodeList(tags); err != nil {
		return nil, err
	}
	if c.Notes, err = d.cipher.DecryptIfEnabled(notes.String); err != nil {
		return nil, fmt.Errorf("failed to decrypt notes: %w", err)
	}
	c.Phone = phone.String
	c.Email = email.String
	c.Organization = org.String
	c.Status = status.String
	c.AvatarPath = avatar.String
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring LIKE pattern with wildcards in term escaped
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
