package models

import "time"

// Event types understood by the calendar
const (
	EventTypeAppointment  = "appointment"
	EventTypeBirthday     = "birthday"
	EventTypeAnniversary  = "anniversary"
	EventTypeFollowUp     = "follow-up"
	EventTypeConsultation = "consultation"
	EventTypeReminder     = "reminder"
)

var eventColors = map[string]string{
	EventTypeAppointment:  "#10b981",
	EventTypeBirthday:     "#8b5cf6",
	EventTypeAnniversary:  "#06b6d4",
	EventTypeFollowUp:     "#f59e0b",
	EventTypeConsultation: "#ef4444",
	EventTypeReminder:     "#6366f1",
}

// EventTypes lists the known event types in display order
var EventTypes = []string{
	EventTypeAppointment,
	EventTypeBirthday,
	EventTypeAnniversary,
	EventTypeFollowUp,
	EventTypeConsultation,
	EventTypeReminder,
}

// EventColor returns the palette color for an event type, or fallback when the type is unknown
func EventColor(eventType, fallback string) string {
	if c, ok := eventColors[eventType]; ok {
		return c
	}
	return fallback
}

// Event is a dated item on the calendar, optionally tied to a contact.
// EventDate is a calendar date key (YYYY-MM-DD), EventTime is free text such as "10:00 AM".
type Event struct {
	ID           string    `json:"id"`
	ContactID    string    `json:"contact_id,omitempty"`
	ContactName  string    `json:"contact_name,omitempty"`
	EventType    string    `json:"event_type"`
	EventDate    string    `json:"event_date"`
	EventTime    string    `json:"event_time,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Color        string    `json:"color"`
	IsCompleted  bool      `json:"is_completed"`
	ReminderSent bool      `json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
