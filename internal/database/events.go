package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"curalink/internal/models"
)

// SaveEvent inserts a new event
func (d *Database) SaveEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Exec(ctx, InsertEventQuery,
		event.ID, nullString(event.ContactID), nullString(event.ContactName), event.EventType,
		event.EventDate, event.EventTime, nullString(event.Notes), event.Color,
		boolToInt(event.IsCompleted), boolToInt(event.ReminderSent),
		event.CreatedAt.UTC(), event.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// UpdateEvent reports false when no row matched
func (d *Database) UpdateEvent(ctx context.Context, event *models.Event) (bool, error) {
	res, err := d.Exec(ctx, UpdateEventQuery,
		nullString(event.ContactID), nullString(event.ContactName), event.EventType,
		event.EventDate, event.EventTime, nullString(event.Notes), event.Color,
		boolToInt(event.IsCompleted), boolToInt(event.ReminderSent),
		event.UpdatedAt.UTC(), event.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update event: %w", err)
	}
	return res.AffectedCount > 0, nil
}

func (d *Database) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event *models.Event
	found, err := d.QueryOne(ctx, func(s Scanner) error {
		e, err := scanEvent(s)
		event = e
		return err
	}, SelectEventByIDQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if !found {
		return nil, nil
	}
	return event, nil
}

// ListEvents returns all events by date then time
func (d *Database) ListEvents(ctx context.Context) ([]models.Event, error) {
	return d.queryEvents(ctx, "list events", SelectAllEventsQuery)
}

// ListEventsInRange returns incomplete events with from <= event_date <= to
func (d *Database) ListEventsInRange(ctx context.Context, from, to string) ([]models.Event, error) {
	return d.queryEvents(ctx, "list events in range", SelectEventsInRangeQuery, from, to)
}

func (d *Database) ListEventsByDate(ctx context.Context, date string) ([]models.Event, error) {
	return d.queryEvents(ctx, "list events by date", SelectEventsByDateQuery, date)
}

func (d *Database) ListEventsByContact(ctx context.Context, contactID string) ([]models.Event, error) {
	return d.queryEvents(ctx, "list events by contact", SelectEventsByContactQuery, contactID)
}

// ListEventsNeedingReminder returns incomplete events on date whose reminder is unsent
func (d *Database) ListEventsNeedingReminder(ctx context.Context, date string) ([]models.Event, error) {
	return d.queryEvents(ctx, "list events needing reminder", SelectEventsNeedingReminderQuery, date)
}

// MarkEventCompleted is idempotent; it reports false when no row matched
func (d *Database) MarkEventCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := d.Exec(ctx, MarkEventCompletedQuery, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark event completed: %w", err)
	}
	return res.AffectedCount > 0, nil
}

// MarkEventReminderSent is idempotent; it reports false when no row matched
func (d *Database) MarkEventReminderSent(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := d.Exec(ctx, MarkEventReminderSentQuery, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark event reminder sent: %w", err)
	}
	return res.AffectedCount > 0, nil
}

func (d *Database) DeleteEvent(ctx context.Context, id string) error {
	if _, err := d.Exec(ctx, DeleteEventQuery, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (d *Database) queryEvents(ctx context.Context, op, query string, args ...any) ([]models.Event, error) {
	events := []models.Event{}
	err := d.QueryAll(ctx, func(s Scanner) error {
		e, err := scanEvent(s)
		if err != nil {
			return err
		}
		events = append(events, *e)
		return nil
	}, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return events, nil
}

func scanEvent(s Scanner) (*models.Event, error) {
	var (
		e                             models.Event
		contactID, contactName, notes sql.NullString
		eventTime                     sql.NullString
		isCompleted, reminderSent     int
	)

	if err := s.Scan(&e.ID, &contactID, &contactName, &e.EventType, &e.EventDate, &eventTime,
		&notes, &e.Color, &isCompleted, &reminderSent, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	e.ContactID = contactID.String
	e.ContactName = contactName.String
	e.EventTime = eventTime.String
	e.Notes = notes.String
	e.IsCompleted = isCompleted != 0
	e.ReminderSent = reminderSent != 0
	return &e, nil
}
