package facade

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"curalink/internal/constants"
	"curalink/internal/models"
	"curalink/internal/seed"
)

// Storage keys, one JSON document per channel
const (
	keyContacts  = constants.LocalStorageKeyPrefix + ChannelContacts
	keyTemplates = constants.LocalStorageKeyPrefix + ChannelTemplates
	keyEvents    = constants.LocalStorageKeyPrefix + ChannelEvents
	keyHistory   = constants.LocalStorageKeyPrefix + ChannelHistory
	keySettings  = constants.LocalStorageKeyPrefix + ChannelSettings
)

// LocalStore emulates the row store on top of a Storage. It mirrors the
// ordering, join and cascade behavior of the sqlite schema so the domain
// services behave the same over either store.
type LocalStore struct {
	storage Storage
	samples bool
	now     func() time.Time

	mu sync.Mutex

	idMu   sync.Mutex
	lastID int64
}

// NewLocalStore creates a store. samples controls whether the sample
// templates and contacts are seeded into empty channels.
func NewLocalStore(storage Storage, samples bool, now func() time.Time) *LocalStore {
	if now == nil {
		now = time.Now
	}
	return &LocalStore{storage: storage, samples: samples, now: now}
}

// NextID returns a timestamp-based id, strictly increasing within the process
func (s *LocalStore) NextID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func load[T any](s *LocalStore, key string, defaults func() []T) ([]T, error) {
	raw, ok, err := s.storage.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		items := []T{}
		if defaults != nil {
			items = defaults()
		}
		if err := save(s, key, items); err != nil {
			return nil, err
		}
		return items, nil
	}

	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return items, nil
}

func save[T any](s *LocalStore, key string, items []T) error {
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.storage.Set(key, b)
}

func (s *LocalStore) contacts() ([]models.Contact, error) {
	return load(s, keyContacts, func() []models.Contact {
		if !s.samples {
			return []models.Contact{}
		}
		now := s.now().UTC()
		contacts := seed.Contacts()
		for i := range contacts {
			contacts[i].ID = s.NextID()
			contacts[i].CreatedAt = now
			contacts[i].UpdatedAt = now
		}
		return contacts
	})
}

func (s *LocalStore) templates() ([]models.Template, error) {
	return load(s, keyTemplates, func() []models.Template {
		if !s.samples {
			return []models.Template{}
		}
		now := s.now().UTC()
		templates := seed.Templates()
		for i := range templates {
			templates[i].ID = s.NextID()
			templates[i].CreatedAt = now
			templates[i].UpdatedAt = now
		}
		return templates
	})
}

func (s *LocalStore) events() ([]models.Event, error) {
	return load[models.Event](s, keyEvents, nil)
}

func (s *LocalStore) historyRows() ([]models.MessageHistoryEntry, error) {
	return load[models.MessageHistoryEntry](s, keyHistory, nil)
}

func (s *LocalStore) settingRows() ([]models.Setting, error) {
	return load(s, keySettings, func() []models.Setting {
		now := s.now().UTC()
		defaults := seed.Settings()
		settings := make([]models.Setting, 0, len(defaults))
		for _, d := range defaults {
			settings = append(settings, models.Setting{Key: d.Key, Value: d.Value, UpdatedAt: now})
		}
		return settings
	})
}

// Contacts

func (s *LocalStore) SaveContact(_ context.Context, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.contacts()
	if err != nil {
		return err
	}
	for _, c := range contacts {
		if c.ID == contact.ID {
			return fmt.Errorf("failed to save contact: duplicate id %s", contact.ID)
		}
	}

	c := *contact
	c.Tags = append([]string{}, c.Tags...)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return save(s, keyContacts, append(contacts, c))
}

func (s *LocalStore) UpdateContact(_ context.Context, contact *models.Contact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.contacts()
	if err != nil {
		return false, err
	}
	for i := range contacts {
		if contacts[i].ID != contact.ID {
			continue
		}
		created := contacts[i].CreatedAt
		contacts[i] = *contact
		contacts[i].Tags = append([]string{}, contact.Tags...)
		contacts[i].CreatedAt = created
		contacts[i].UpdatedAt = contact.UpdatedAt.UTC()
		return true, save(s, keyContacts, contacts)
	}
	return false, nil
}

func (s *LocalStore) GetContact(_ context.Context, id string) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.contacts()
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *LocalStore) ListContacts(_ context.Context) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.contacts()
	if err != nil {
		return nil, err
	}
	sortContacts(contacts)
	return contacts, nil
}

func (s *LocalStore) SearchContacts(_ context.Context, term, status string) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.contacts()
	if err != nil {
		return nil, err
	}

	matched := []models.Contact{}
	for _, c := range contacts {
		if status != "" && c.Status != status {
			continue
		}
		if containsFold(c.Name, term) || nonEmptyContainsFold(c.Email, term) ||
			nonEmptyContainsFold(c.Organization, term) {
			matched = append(matched, c)
		}
	}
	sortContacts(matched)
	return matched, nil
}

// DeleteContact removes the contact and its message history. Events keep their contact_id.
func (s *LocalStore) DeleteContact(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.contacts()
	if err != nil {
		return err
	}
	history, err := s.historyRows()
	if err != nil {
		return err
	}

	contacts = filter(contacts, func(c models.Contact) bool { return c.ID != id })
	history = filter(history, func(h models.MessageHistoryEntry) bool { return h.ContactID != id })

	if err := save(s, keyContacts, contacts); err != nil {
		return err
	}
	return save(s, keyHistory, history)
}

// Templates

func (s *LocalStore) SaveTemplate(_ context.Context, tmpl *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.templates()
	if err != nil {
		return err
	}
	for _, t := range templates {
		if t.ID == tmpl.ID {
			return fmt.Errorf("failed to save template: duplicate id %s", tmpl.ID)
		}
	}

	t := *tmpl
	t.Variables = append([]string{}, t.Variables...)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return save(s, keyTemplates, append(templates, t))
}

func (s *LocalStore) UpdateTemplate(_ context.Context, tmpl *models.Template) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.templates()
	if err != nil {
		return false, err
	}
	for i := range templates {
		if templates[i].ID != tmpl.ID {
			continue
		}
		templates[i].Title = tmpl.Title
		templates[i].Content = tmpl.Content
		templates[i].Variables = append([]string{}, tmpl.Variables...)
		templates[i].Category = tmpl.Category
		templates[i].UpdatedAt = tmpl.UpdatedAt.UTC()
		return true, save(s, keyTemplates, templates)
	}
	return false, nil
}

func (s *LocalStore) GetTemplate(_ context.Context, id string) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.templates()
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *LocalStore) ListTemplates(_ context.Context) ([]models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.templates()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(templates, func(i, j int) bool {
		if templates[i].Category != templates[j].Category {
			return templates[i].Category < templates[j].Category
		}
		return templates[i].Title < templates[j].Title
	})
	return templates, nil
}

// DeleteTemplate removes the template and clears it from history entries that used it
func (s *LocalStore) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.templates()
	if err != nil {
		return err
	}
	history, err := s.historyRows()
	if err != nil {
		return err
	}

	templates = filter(templates, func(t models.Template) bool { return t.ID != id })
	for i := range history {
		if history[i].TemplateID == id {
			history[i].TemplateID = ""
		}
	}

	if err := save(s, keyTemplates, templates); err != nil {
		return err
	}
	return save(s, keyHistory, history)
}

// Message history

// SaveHistoryEntry rejects unknown contact or template references like the sqlite foreign keys do
func (s *LocalStore) SaveHistoryEntry(_ context.Context, entry *models.MessageHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.contacts()
	if err != nil {
		return err
	}
	if !contains(contacts, func(c models.Contact) bool { return c.ID == entry.ContactID }) {
		return fmt.Errorf("failed to save message history: unknown contact %s", entry.ContactID)
	}
	if entry.TemplateID != "" {
		templates, err := s.templates()
		if err != nil {
			return err
		}
		if !contains(templates, func(t models.Template) bool { return t.ID == entry.TemplateID }) {
			return fmt.Errorf("failed to save message history: unknown template %s", entry.TemplateID)
		}
	}

	history, err := s.historyRows()
	if err != nil {
		return err
	}

	e := *entry
	e.Timestamp = e.Timestamp.UTC()
	e.ContactName, e.ContactPhone, e.TemplateTitle = "", "", ""
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
	return save(s, keyHistory, append(history, e))
}

func (s *LocalStore) GetHistoryEntry(_ context.Context, id string) (*models.MessageHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.joinedHistory(func(h models.MessageHistoryEntry) bool { return h.ID == id })
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

func (s *LocalStore) ListHistory(_ context.Context) ([]models.MessageHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joinedHistory(nil)
}

func (s *LocalStore) ListHistoryByContact(_ context.Context, contactID string) ([]models.MessageHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joinedHistory(func(h models.MessageHistoryEntry) bool { return h.ContactID == contactID })
}

func (s *LocalStore) SearchHistory(_ context.Context, term string) ([]models.MessageHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joinedHistory(func(h models.MessageHistoryEntry) bool {
		return containsFold(h.MessageContent, term) || nonEmptyContainsFold(h.ContactName, term)
	})
}

// joinedHistory fills the contact and template fields, applies keep and orders newest first
func (s *LocalStore) joinedHistory(keep func(models.MessageHistoryEntry) bool) ([]models.MessageHistoryEntry, error) {
	history, err := s.historyRows()
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts()
	if err != nil {
		return nil, err
	}
	templates, err := s.templates()
	if err != nil {
		return nil, err
	}

	byContact := make(map[string]models.Contact, len(contacts))
	for _, c := range contacts {
		byContact[c.ID] = c
	}
	titles := make(map[string]string, len(templates))
	for _, t := range templates {
		titles[t.ID] = t.Title
	}

	out := []models.MessageHistoryEntry{}
	for _, h := range history {
		if c, ok := byContact[h.ContactID]; ok {
			h.ContactName = c.Name
			h.ContactPhone = c.Phone
		}
		h.TemplateTitle = titles[h.TemplateID]
		if keep == nil || keep(h) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// Events

func (s *LocalStore) SaveEvent(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events()
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.ID == event.ID {
			return fmt.Errorf("failed to save event: duplicate id %s", event.ID)
		}
	}

	e := *event
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return save(s, keyEvents, append(events, e))
}

func (s *LocalStore) UpdateEvent(_ context.Context, event *models.Event) (bool, error) {
	return s.mutateEvent(event.ID, func(e *models.Event) {
		created := e.CreatedAt
		*e = *event
		e.CreatedAt = created
		e.UpdatedAt = event.UpdatedAt.UTC()
	})
}

func (s *LocalStore) GetEvent(_ context.Context, id string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events()
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (s *LocalStore) ListEvents(_ context.Context) ([]models.Event, error) {
	return s.selectEvents(nil, byDateThenTime)
}

func (s *LocalStore) ListEventsInRange(_ context.Context, from, to string) ([]models.Event, error) {
	return s.selectEvents(func(e models.Event) bool {
		return e.EventDate >= from && e.EventDate <= to && !e.IsCompleted
	}, byDateThenTime)
}

func (s *LocalStore) ListEventsByDate(_ context.Context, date string) ([]models.Event, error) {
	return s.selectEvents(func(e models.Event) bool { return e.EventDate == date }, byTime)
}

func (s *LocalStore) ListEventsByContact(_ context.Context, contactID string) ([]models.Event, error) {
	return s.selectEvents(func(e models.Event) bool { return e.ContactID == contactID }, byDateThenTime)
}

func (s *LocalStore) ListEventsNeedingReminder(_ context.Context, date string) ([]models.Event, error) {
	return s.selectEvents(func(e models.Event) bool {
		return e.EventDate == date && !e.ReminderSent && !e.IsCompleted
	}, byTime)
}

func (s *LocalStore) MarkEventCompleted(_ context.Context, id string, at time.Time) (bool, error) {
	return s.mutateEvent(id, func(e *models.Event) {
		e.IsCompleted = true
		e.UpdatedAt = at.UTC()
	})
}

func (s *LocalStore) MarkEventReminderSent(_ context.Context, id string, at time.Time) (bool, error) {
	return s.mutateEvent(id, func(e *models.Event) {
		e.ReminderSent = true
		e.UpdatedAt = at.UTC()
	})
}

func (s *LocalStore) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events()
	if err != nil {
		return err
	}
	return save(s, keyEvents, filter(events, func(e models.Event) bool { return e.ID != id }))
}

func (s *LocalStore) mutateEvent(id string, apply func(*models.Event)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events()
	if err != nil {
		return false, err
	}
	for i := range events {
		if events[i].ID == id {
			apply(&events[i])
			return true, save(s, keyEvents, events)
		}
	}
	return false, nil
}

func (s *LocalStore) selectEvents(keep func(models.Event) bool, less func(a, b models.Event) bool) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.events()
	if err != nil {
		return nil, err
	}
	if keep != nil {
		events = filter(events, keep)
	}
	sort.SliceStable(events, func(i, j int) bool { return less(events[i], events[j]) })
	return events, nil
}

func byDateThenTime(a, b models.Event) bool {
	if a.EventDate != b.EventDate {
		return a.EventDate < b.EventDate
	}
	return a.EventTime < b.EventTime
}

func byTime(a, b models.Event) bool {
	return a.EventTime < b.EventTime
}

// Settings

func (s *LocalStore) GetSetting(_ context.Context, key string) (*models.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.settingRows()
	if err != nil {
		return nil, err
	}
	for _, st := range settings {
		if st.Key == key {
			return &st, nil
		}
	}
	return nil, nil
}

func (s *LocalStore) SetSetting(_ context.Context, key, value string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.settingRows()
	if err != nil {
		return err
	}
	for i := range settings {
		if settings[i].Key == key {
			settings[i].Value = value
			settings[i].UpdatedAt = at.UTC()
			return save(s, keySettings, settings)
		}
	}
	return save(s, keySettings, append(settings, models.Setting{Key: key, Value: value, UpdatedAt: at.UTC()}))
}

func (s *LocalStore) ListSettings(_ context.Context) ([]models.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.settingRows()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}

// Stats counts the emulated rows
func (s *LocalStore) Stats(_ context.Context) (*models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.contacts()
	if err != nil {
		return nil, err
	}
	templates, err := s.templates()
	if err != nil {
		return nil, err
	}
	history, err := s.historyRows()
	if err != nil {
		return nil, err
	}
	events, err := s.events()
	if err != nil {
		return nil, err
	}
	return &models.Stats{
		Contacts:  len(contacts),
		Templates: len(templates),
		Messages:  len(history),
		Events:    len(events),
	}, nil
}

func sortContacts(contacts []models.Contact) {
	sort.SliceStable(contacts, func(i, j int) bool { return contacts[i].Name < contacts[j].Name })
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func contains[T any](items []T, match func(T) bool) bool {
	for _, item := range items {
		if match(item) {
			return true
		}
	}
	return false
}

// containsFold matches like a sqlite LIKE '%term%' on a NOT NULL column
func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

// nonEmptyContainsFold treats "" as NULL, which never matches LIKE
func nonEmptyContainsFold(s, term string) bool {
	return s != "" && containsFold(s, term)
}
