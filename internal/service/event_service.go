package service

import (
	"context"
	"strings"
	"time"

	"curalink/internal/calendar"
	"curalink/internal/constants"
	"curalink/internal/errors"
	"curalink/internal/models"
	"curalink/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventDatabaseService defines the database operations needed by EventService
type EventDatabaseService interface {
	SaveEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) (bool, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListEventsInRange(ctx context.Context, from, to string) ([]models.Event, error)
	ListEventsByDate(ctx context.Context, date string) ([]models.Event, error)
	ListEventsByContact(ctx context.Context, contactID string) ([]models.Event, error)
	ListEventsNeedingReminder(ctx context.Context, date string) ([]models.Event, error)
	MarkEventCompleted(ctx context.Context, id string, at time.Time) (bool, error)
	MarkEventReminderSent(ctx context.Context, id string, at time.Time) (bool, error)
	DeleteEvent(ctx context.Context, id string) error
}

// ContactLookup resolves a contact for the name snapshot stored on events
type ContactLookup interface {
	GetContact(ctx context.Context, id string) (*models.Contact, error)
}

// EventService manages calendar events and their reminder state.
// Date windows are computed from the injected clock in its own location.
type EventService struct {
	db       EventDatabaseService
	contacts ContactLookup
	logger   *errors.Logger
	now      func() time.Time
	newID    func() string
}

// NewEventService creates an event service. contacts may be nil, in which case
// contact names are stored only as supplied by the caller.
func NewEventService(db EventDatabaseService, contacts ContactLookup, logger *logrus.Logger) *EventService {
	return &EventService{
		db:       db,
		contacts: contacts,
		logger:   errors.WrapLogger(logger),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// GetAll returns events ordered by date then time
func (es *EventService) GetAll(ctx context.Context) ([]models.Event, error) {
	events, err := es.db.ListEvents(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list events", err)
	}
	return events, nil
}

func (es *EventService) GetByID(ctx context.Context, id string) (*models.Event, error) {
	event, err := es.db.GetEvent(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("get event", err).WithContext(LogFieldEventID, id)
	}
	return event, nil
}

// Create stores a new event. ContactName is a snapshot taken now and is not
// kept in sync with later contact renames.
func (es *EventService) Create(ctx context.Context, event models.Event) (*models.Event, error) {
	if err := es.prepare(ctx, &event); err != nil {
		return nil, err
	}

	now := es.now()
	event.ID = es.newID()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := es.db.SaveEvent(ctx, &event); err != nil {
		appErr := errors.NewDatabaseError("save event", err)
		es.logger.LogError(appErr, "Failed to create event", logrus.Fields{LogFieldDate: event.EventDate})
		return nil, appErr
	}

	es.logger.WithFields(logrus.Fields{
		LogFieldEventID: event.ID,
		LogFieldDate:    event.EventDate,
	}).Debug("Event created")

	return es.GetByID(ctx, event.ID)
}

// Update replaces an event. A missing event yields nil without error.
func (es *EventService) Update(ctx context.Context, event models.Event) (*models.Event, error) {
	if err := validation.ValidateRequired(event.ID, "id"); err != nil {
		return nil, err
	}
	if err := es.prepare(ctx, &event); err != nil {
		return nil, err
	}

	event.UpdatedAt = es.now()
	ok, err := es.db.UpdateEvent(ctx, &event)
	if err != nil {
		return nil, errors.NewDatabaseError("update event", err).WithContext(LogFieldEventID, event.ID)
	}
	if !ok {
		return nil, nil
	}
	return es.GetByID(ctx, event.ID)
}

func (es *EventService) Delete(ctx context.Context, id string) error {
	if err := es.db.DeleteEvent(ctx, id); err != nil {
		return errors.NewDatabaseError("delete event", err).WithContext(LogFieldEventID, id)
	}
	es.logger.WithField(LogFieldEventID, id).Debug("Event deleted")
	return nil
}

// GetUpcoming returns open events dated within [today, today+days]
func (es *EventService) GetUpcoming(ctx context.Context, days int) ([]models.Event, error) {
	if err := validation.ValidateNumericRange(days, "days", 0, validation.MaxUpcomingWindow); err != nil {
		return nil, err
	}

	from, to := calendar.UpcomingWindow(es.now(), days)
	events, err := es.db.ListEventsInRange(ctx, from, to)
	if err != nil {
		return nil, errors.NewDatabaseError("list upcoming events", err).
			WithContext(LogFieldWindowDays, days)
	}
	return events, nil
}

// GetByDate returns events on an exact YYYY-MM-DD date, ordered by time
func (es *EventService) GetByDate(ctx context.Context, date string) ([]models.Event, error) {
	if err := validation.ValidateDate(date, "date"); err != nil {
		return nil, err
	}
	events, err := es.db.ListEventsByDate(ctx, date)
	if err != nil {
		return nil, errors.NewDatabaseError("list events by date", err).WithContext(LogFieldDate, date)
	}
	return events, nil
}

func (es *EventService) GetByContact(ctx context.Context, contactID string) ([]models.Event, error) {
	events, err := es.db.ListEventsByContact(ctx, contactID)
	if err != nil {
		return nil, errors.NewDatabaseError("list events by contact", err).WithContext(LogFieldContactID, contactID)
	}
	return events, nil
}

// MarkCompleted sets is_completed. Repeating it changes nothing but updated_at.
func (es *EventService) MarkCompleted(ctx context.Context, id string) (*models.Event, error) {
	ok, err := es.db.MarkEventCompleted(ctx, id, es.now())
	if err != nil {
		return nil, errors.NewDatabaseError("mark event completed", err).WithContext(LogFieldEventID, id)
	}
	if !ok {
		return nil, nil
	}
	es.logger.WithField(LogFieldEventID, id).Debug("Event marked completed")
	return es.GetByID(ctx, id)
}

// MarkReminderSent sets reminder_sent so the event drops out of GetNeedingReminders
func (es *EventService) MarkReminderSent(ctx context.Context, id string) (*models.Event, error) {
	ok, err := es.db.MarkEventReminderSent(ctx, id, es.now())
	if err != nil {
		return nil, errors.NewDatabaseError("mark reminder sent", err).WithContext(LogFieldEventID, id)
	}
	if !ok {
		return nil, nil
	}
	es.logger.WithField(LogFieldEventID, id).Debug("Event reminder marked sent")
	return es.GetByID(ctx, id)
}

// GetNeedingReminders returns open events dated exactly tomorrow whose reminder is not sent
func (es *EventService) GetNeedingReminders(ctx context.Context) ([]models.Event, error) {
	tomorrow := calendar.Tomorrow(es.now())
	events, err := es.db.ListEventsNeedingReminder(ctx, tomorrow)
	if err != nil {
		return nil, errors.NewDatabaseError("list events needing reminder", err).WithContext(LogFieldDate, tomorrow)
	}
	return events, nil
}

func (es *EventService) prepare(ctx context.Context, e *models.Event) error {
	e.EventType = strings.TrimSpace(e.EventType)
	e.EventTime = strings.TrimSpace(e.EventTime)
	if err := validation.ValidateRequired(e.EventType, "event_type"); err != nil {
		return err
	}
	if err := validation.ValidateDate(e.EventDate, "event_date"); err != nil {
		return err
	}
	if err := validation.ValidateStringLength(e.Notes, "notes", 0, validation.MaxNotesLength); err != nil {
		return err
	}

	if e.Color == "" {
		e.Color = models.EventColor(e.EventType, constants.DefaultEventColor)
	} else if err := validation.ValidateColor(e.Color); err != nil {
		return err
	}

	if e.ContactID != "" && e.ContactName == "" && es.contacts != nil {
		contact, err := es.contacts.GetContact(ctx, e.ContactID)
		if err != nil {
			return errors.NewDatabaseError("get contact", err).WithContext(LogFieldContactID, e.ContactID)
		}
		if contact != nil {
			e.ContactName = contact.Name
		}
	}
	return nil
}
