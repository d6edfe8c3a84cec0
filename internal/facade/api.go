package facade

import (
	"context"
	"encoding/json"

	"curalink/internal/errors"
	"curalink/internal/models"
)

// Service is a typed wrapper over a Client
type Service struct {
	client Client
}

func NewService(client Client) *Service {
	return &Service{client: client}
}

// Mode reports which implementation backs the service
func (s *Service) Mode() string {
	return s.client.Mode()
}

func call[T any](ctx context.Context, c Client, channel, action string, payload any) (T, error) {
	var out T
	raw, err := Payload(payload)
	if err != nil {
		return out, err
	}
	result, err := c.Invoke(ctx, channel, action, raw)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return out, errors.Wrap(err, errors.ErrCodeInternalError, "failed to decode "+channel+"."+action+" result")
	}
	return out, nil
}

func callDelete(ctx context.Context, c Client, channel, id string) error {
	_, err := call[SuccessResult](ctx, c, channel, ActionDelete, id)
	return err
}

// Contacts

func (s *Service) GetContacts(ctx context.Context) ([]models.Contact, error) {
	return call[[]models.Contact](ctx, s.client, ChannelContacts, ActionGetAll, nil)
}

func (s *Service) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	return call[*models.Contact](ctx, s.client, ChannelContacts, ActionGetByID, id)
}

func (s *Service) CreateContact(ctx context.Context, c models.Contact) (*models.Contact, error) {
	return call[*models.Contact](ctx, s.client, ChannelContacts, ActionCreate, c)
}

func (s *Service) UpdateContact(ctx context.Context, c models.Contact) (*models.Contact, error) {
	return call[*models.Contact](ctx, s.client, ChannelContacts, ActionUpdate, c)
}

func (s *Service) DeleteContact(ctx context.Context, id string) error {
	return callDelete(ctx, s.client, ChannelContacts, id)
}

func (s *Service) SearchContacts(ctx context.Context, term, status string) ([]models.Contact, error) {
	return call[[]models.Contact](ctx, s.client, ChannelContacts, ActionSearch, models.ContactSearch{Term: term, Status: status})
}

// Templates

func (s *Service) GetTemplates(ctx context.Context) ([]models.Template, error) {
	return call[[]models.Template](ctx, s.client, ChannelTemplates, ActionGetAll, nil)
}

func (s *Service) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	return call[*models.Template](ctx, s.client, ChannelTemplates, ActionGetByID, id)
}

func (s *Service) CreateTemplate(ctx context.Context, t models.Template) (*models.Template, error) {
	return call[*models.Template](ctx, s.client, ChannelTemplates, ActionCreate, t)
}

func (s *Service) UpdateTemplate(ctx context.Context, t models.Template) (*models.Template, error) {
	return call[*models.Template](ctx, s.client, ChannelTemplates, ActionUpdate, t)
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	return callDelete(ctx, s.client, ChannelTemplates, id)
}

// Events

func (s *Service) GetEvents(ctx context.Context) ([]models.Event, error) {
	return call[[]models.Event](ctx, s.client, ChannelEvents, ActionGetAll, nil)
}

func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return call[*models.Event](ctx, s.client, ChannelEvents, ActionGetByID, id)
}

func (s *Service) CreateEvent(ctx context.Context, e models.Event) (*models.Event, error) {
	return call[*models.Event](ctx, s.client, ChannelEvents, ActionCreate, e)
}

func (s *Service) UpdateEvent(ctx context.Context, e models.Event) (*models.Event, error) {
	return call[*models.Event](ctx, s.client, ChannelEvents, ActionUpdate, e)
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	return callDelete(ctx, s.client, ChannelEvents, id)
}

func (s *Service) GetUpcomingEvents(ctx context.Context, days int) ([]models.Event, error) {
	return call[[]models.Event](ctx, s.client, ChannelEvents, ActionGetUpcoming, days)
}

func (s *Service) GetEventsByDate(ctx context.Context, date string) ([]models.Event, error) {
	return call[[]models.Event](ctx, s.client, ChannelEvents, ActionGetByDate, date)
}

func (s *Service) GetEventsByContact(ctx context.Context, contactID string) ([]models.Event, error) {
	return call[[]models.Event](ctx, s.client, ChannelEvents, ActionGetByContact, contactID)
}

func (s *Service) MarkEventCompleted(ctx context.Context, id string) (*models.Event, error) {
	return call[*models.Event](ctx, s.client, ChannelEvents, ActionMarkCompleted, id)
}

func (s *Service) MarkReminderSent(ctx context.Context, id string) (*models.Event, error) {
	return call[*models.Event](ctx, s.client, ChannelEvents, ActionMarkReminderSent, id)
}

func (s *Service) GetEventsNeedingReminders(ctx context.Context) ([]models.Event, error) {
	return call[[]models.Event](ctx, s.client, ChannelEvents, ActionGetNeedingReminders, nil)
}

// Message history

func (s *Service) GetHistory(ctx context.Context) ([]models.MessageHistoryEntry, error) {
	return call[[]models.MessageHistoryEntry](ctx, s.client, ChannelHistory, ActionGetAll, nil)
}

func (s *Service) GetHistoryByContact(ctx context.Context, contactID string) ([]models.MessageHistoryEntry, error) {
	return call[[]models.MessageHistoryEntry](ctx, s.client, ChannelHistory, ActionGetByContact, contactID)
}

func (s *Service) AddHistory(ctx context.Context, e models.MessageHistoryEntry) (*models.MessageHistoryEntry, error) {
	return call[*models.MessageHistoryEntry](ctx, s.client, ChannelHistory, ActionCreate, e)
}

func (s *Service) SearchHistory(ctx context.Context, term string) ([]models.MessageHistoryEntry, error) {
	return call[[]models.MessageHistoryEntry](ctx, s.client, ChannelHistory, ActionSearch, term)
}

// Settings

func (s *Service) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	return call[*models.Setting](ctx, s.client, ChannelSettings, ActionGet, key)
}

func (s *Service) SetSetting(ctx context.Context, key, value string) (*models.Setting, error) {
	return call[*models.Setting](ctx, s.client, ChannelSettings, ActionSet, SettingPayload{Key: key, Value: value})
}

func (s *Service) GetSettings(ctx context.Context) (map[string]string, error) {
	return call[map[string]string](ctx, s.client, ChannelSettings, ActionGetAll, nil)
}
