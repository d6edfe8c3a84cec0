package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"curalink/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/mock"
)

type mockContactDB struct {
	mock.Mock
}

func (m *mockContactDB) SaveContact(ctx context.Context, contact *models.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *mockContactDB) UpdateContact(ctx context.Context, contact *models.Contact) (bool, error) {
	args := m.Called(ctx, contact)
	return args.Bool(0), args.Error(1)
}

func (m *mockContactDB) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *mockContactDB) ListContacts(ctx context.Context) ([]models.Contact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contact), args.Error(1)
}

func (m *mockContactDB) SearchContacts(ctx context.Context, term, status string) ([]models.Contact, error) {
	args := m.Called(ctx, term, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Contact), args.Error(1)
}

func (m *mockContactDB) DeleteContact(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockEventSource struct {
	mock.Mock
}

func (m *mockEventSource) GetUpcoming(ctx context.Context, days int) ([]models.Event, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *mockEventSource) GetNeedingReminders(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

type staticSettings map[string]string

func (s staticSettings) Value(_ context.Context, key, fallback string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return fallback
}

// manualScheduler records registered jobs and runs them only when fired
type manualScheduler struct {
	mu      sync.Mutex
	specs   []string
	jobs    []func()
	started bool
	stopped bool
}

func (s *manualScheduler) AddFunc(spec string, cmd func()) (cron.EntryID, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs = append(s.specs, spec)
	s.jobs = append(s.jobs, cmd)
	return cron.EntryID(len(s.jobs)), nil
}

func (s *manualScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
}

func (s *manualScheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func (s *manualScheduler) fire() {
	s.mu.Lock()
	jobs := append([]func(){}, s.jobs...)
	s.mu.Unlock()
	for _, job := range jobs {
		job()
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
