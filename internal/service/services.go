package service

import (
	"context"
	"time"

	"curalink/internal/errors"
	"curalink/internal/models"

	"github.com/sirupsen/logrus"
)

// Store is everything the domain services need from a backing store.
// *database.Database implements it, as does the local emulation store.
type Store interface {
	ContactDatabaseService
	TemplateDatabaseService
	HistoryDatabaseService
	EventDatabaseService
	SettingsDatabaseService
	StatsProvider
}

// Options overrides the clock and id generator shared by all services
type Options struct {
	Now   func() time.Time
	NewID func() string
}

// Services groups the domain services built over one store
type Services struct {
	Contacts  *ContactService
	Templates *TemplateService
	History   *HistoryService
	Events    *EventService
	Settings  *SettingsService
	store     StatsProvider
}

// NewServices wires every domain service to store
func NewServices(store Store, logger *logrus.Logger, opts Options) *Services {
	s := &Services{
		Contacts:  NewContactService(store, logger),
		Templates: NewTemplateService(store, logger),
		History:   NewHistoryService(store, logger),
		Events:    NewEventService(store, store, logger),
		Settings:  NewSettingsService(store, logger),
		store:     store,
	}

	if opts.Now != nil {
		s.Contacts.now = opts.Now
		s.Templates.now = opts.Now
		s.History.now = opts.Now
		s.Events.now = opts.Now
		s.Settings.now = opts.Now
	}
	if opts.NewID != nil {
		s.Contacts.newID = opts.NewID
		s.Templates.newID = opts.NewID
		s.History.newID = opts.NewID
		s.Events.newID = opts.NewID
	}
	return s
}

// Stats returns row counts for contacts, templates, messages and events
func (s *Services) Stats(ctx context.Context) (*models.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("stats", err)
	}
	return stats, nil
}
