package service

import (
	"context"
	"strings"
	"time"

	"curalink/internal/constants"
	"curalink/internal/errors"
	"curalink/internal/models"
	"curalink/internal/privacy"
	"curalink/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContactServiceInterface defines the interface for contact operations
type ContactServiceInterface interface {
	GetAll(ctx context.Context) ([]models.Contact, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	Create(ctx context.Context, contact models.Contact) (*models.Contact, error)
	Update(ctx context.Context, contact models.Contact) (*models.Contact, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, search models.ContactSearch) ([]models.Contact, error)
}

// ContactDatabaseService defines the database operations needed by ContactService
type ContactDatabaseService interface {
	SaveContact(ctx context.Context, contact *models.Contact) error
	UpdateContact(ctx context.Context, contact *models.Contact) (bool, error)
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)
	SearchContacts(ctx context.Context, term, status string) ([]models.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// ContactService manages the contact list
type ContactService struct {
	db     ContactDatabaseService
	logger *errors.Logger
	now    func() time.Time
	newID  func() string
}

// NewContactService creates a new contact service instance
func NewContactService(db ContactDatabaseService, logger *logrus.Logger) *ContactService {
	return &ContactService{
		db:     db,
		logger: errors.WrapLogger(logger),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// GetAll returns every contact ordered by name
func (cs *ContactService) GetAll(ctx context.Context) ([]models.Contact, error) {
	contacts, err := cs.db.ListContacts(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list contacts", err)
	}
	return contacts, nil
}

// GetByID returns nil when the contact does not exist
func (cs *ContactService) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	contact, err := cs.db.GetContact(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("get contact", err).WithContext(LogFieldContactID, id)
	}
	return contact, nil
}

// Create assigns an id and timestamps, stores the contact and returns the stored row
func (cs *ContactService) Create(ctx context.Context, contact models.Contact) (*models.Contact, error) {
	normalizeContact(&contact)
	if err := validateContact(&contact); err != nil {
		return nil, err
	}

	now := cs.now()
	contact.ID = cs.newID()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	if err := cs.db.SaveContact(ctx, &contact); err != nil {
		appErr := errors.NewDatabaseError("save contact", err)
		cs.logger.LogError(appErr, "Failed to create contact", logrus.Fields{
			LogFieldPhone: privacy.MaskPhoneNumber(contact.Phone),
		})
		return nil, appErr
	}

	cs.logger.WithFields(logrus.Fields{
		LogFieldContactID: contact.ID,
		LogFieldPhone:     privacy.MaskPhoneNumber(contact.Phone),
	}).Debug("Contact created")

	return cs.GetByID(ctx, contact.ID)
}

// Update replaces the contact identified by contact.ID. A missing contact yields nil without error.
func (cs *ContactService) Update(ctx context.Context, contact models.Contact) (*models.Contact, error) {
	if err := validation.ValidateRequired(contact.ID, "id"); err != nil {
		return nil, err
	}
	normalizeContact(&contact)
	if err := validateContact(&contact); err != nil {
		return nil, err
	}

	contact.UpdatedAt = cs.now()
	ok, err := cs.db.UpdateContact(ctx, &contact)
	if err != nil {
		return nil, errors.NewDatabaseError("update contact", err).WithContext(LogFieldContactID, contact.ID)
	}
	if !ok {
		cs.logger.WithField(LogFieldContactID, contact.ID).Debug("Skipping contact update: not found")
		return nil, nil
	}
	return cs.GetByID(ctx, contact.ID)
}

// Delete removes a contact; its message history goes with it, its events stay
func (cs *ContactService) Delete(ctx context.Context, id string) error {
	if err := cs.db.DeleteContact(ctx, id); err != nil {
		return errors.NewDatabaseError("delete contact", err).WithContext(LogFieldContactID, id)
	}
	cs.logger.WithField(LogFieldContactID, id).Debug("Contact deleted")
	return nil
}

// Search matches the term against name, email and organization.
// An empty status or "All Contacts" disables the status filter.
func (cs *ContactService) Search(ctx context.Context, search models.ContactSearch) ([]models.Contact, error) {
	status := strings.TrimSpace(search.Status)
	if status == constants.ContactStatusFilterAll {
		status = ""
	}

	contacts, err := cs.db.SearchContacts(ctx, strings.TrimSpace(search.Term), status)
	if err != nil {
		return nil, errors.NewDatabaseError("search contacts", err)
	}
	return contacts, nil
}

func normalizeContact(c *models.Contact) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	if c.Status == "" {
		c.Status = constants.DefaultContactStatus
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
}

func validateContact(c *models.Contact) error {
	if err := validation.ValidateRequired(c.Name, "name"); err != nil {
		return err
	}
	if err := validation.ValidateStringLength(c.Name, "name", 1, validation.MaxNameLength); err != nil {
		return err
	}
	if c.Phone != "" {
		if err := validation.ValidatePhoneNumber(c.Phone); err != nil {
			return err
		}
	}
	if c.Email != "" {
		if err := validation.ValidateEmail(c.Email); err != nil {
			return err
		}
	}
	return validation.ValidateStringLength(c.Notes, "notes", 0, validation.MaxNotesLength)
}
