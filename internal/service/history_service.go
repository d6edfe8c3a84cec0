package service

import (
	"context"
	"strings"
	"time"

	"curalink/internal/constants"
	"curalink/internal/errors"
	"curalink/internal/models"
	"curalink/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HistoryDatabaseService defines the database operations needed by HistoryService
type HistoryDatabaseService interface {
	SaveHistoryEntry(ctx context.Context, entry *models.MessageHistoryEntry) error
	GetHistoryEntry(ctx context.Context, id string) (*models.MessageHistoryEntry, error)
	ListHistory(ctx context.Context) ([]models.MessageHistoryEntry, error)
	ListHistoryByContact(ctx context.Context, contactID string) ([]models.MessageHistoryEntry, error)
	SearchHistory(ctx context.Context, term string) ([]models.MessageHistoryEntry, error)
}

// HistoryService is the append-only log of messages handed off to the chat service
type HistoryService struct {
	db     HistoryDatabaseService
	logger *errors.Logger
	now    func() time.Time
	newID  func() string
}

func NewHistoryService(db HistoryDatabaseService, logger *logrus.Logger) *HistoryService {
	return &HistoryService{
		db:     db,
		logger: errors.WrapLogger(logger),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// GetAll returns history newest first, joined with contact and template names
func (hs *HistoryService) GetAll(ctx context.Context) ([]models.MessageHistoryEntry, error) {
	entries, err := hs.db.ListHistory(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list history", err)
	}
	return entries, nil
}

func (hs *HistoryService) GetByContact(ctx context.Context, contactID string) ([]models.MessageHistoryEntry, error) {
	entries, err := hs.db.ListHistoryByContact(ctx, contactID)
	if err != nil {
		return nil, errors.NewDatabaseError("list contact history", err).WithContext(LogFieldContactID, contactID)
	}
	return entries, nil
}

// Create appends an entry. Timestamp defaults to now, sent_via to "whatsapp"
// and send_status to "sent".
func (hs *HistoryService) Create(ctx context.Context, entry models.MessageHistoryEntry) (*models.MessageHistoryEntry, error) {
	if err := validation.ValidateRequired(entry.ContactID, "contact_id"); err != nil {
		return nil, err
	}
	if err := validation.ValidateRequired(entry.MessageContent, "message_content"); err != nil {
		return nil, err
	}

	entry.ID = hs.newID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = hs.now()
	}
	if entry.SentVia == "" {
		entry.SentVia = constants.DefaultSentVia
	}
	if entry.SendStatus == "" {
		entry.SendStatus = constants.DefaultSendStatus
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}

	if err := hs.db.SaveHistoryEntry(ctx, &entry); err != nil {
		appErr := errors.NewDatabaseError("save history", err).WithContext(LogFieldContactID, entry.ContactID)
		hs.logger.LogError(appErr, "Failed to record message history")
		return nil, appErr
	}

	hs.logger.WithFields(logrus.Fields{
		LogFieldHistoryID: entry.ID,
		LogFieldContactID: entry.ContactID,
	}).Debug("Message history recorded")

	saved, err := hs.db.GetHistoryEntry(ctx, entry.ID)
	if err != nil {
		return nil, errors.NewDatabaseError("get history", err).WithContext(LogFieldHistoryID, entry.ID)
	}
	return saved, nil
}

// Search matches message content or contact name
func (hs *HistoryService) Search(ctx context.Context, term string) ([]models.MessageHistoryEntry, error) {
	entries, err := hs.db.SearchHistory(ctx, strings.TrimSpace(term))
	if err != nil {
		return nil, errors.NewDatabaseError("search history", err)
	}
	return entries, nil
}
