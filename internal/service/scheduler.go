package service

import (
	"context"
	"sync"
	"time"

	"curalink/internal/constants"
	"curalink/internal/metrics"
	"curalink/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs registered functions on a cron spec. *cron.Cron satisfies it.
type Scheduler interface {
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
	Start()
	Stop() context.Context
}

// ReminderSource supplies the event lists a refresh collects
type ReminderSource interface {
	GetUpcoming(ctx context.Context, days int) ([]models.Event, error)
	GetNeedingReminders(ctx context.Context) ([]models.Event, error)
}

// SettingReader reads a setting value with a fallback
type SettingReader interface {
	Value(ctx context.Context, key, fallback string) string
}

// Snapshot is the result of one refresh
type Snapshot struct {
	Upcoming         []models.Event `json:"upcoming"`
	NeedingReminders []models.Event `json:"needing_reminders"`
	RefreshedAt      time.Time      `json:"refreshed_at"`
}

// ReminderRefresher collects upcoming events and pending reminders on demand
// and on a schedule. A scheduled tick that finds a refresh still running is skipped.
type ReminderRefresher struct {
	events     ReminderSource
	settings   SettingReader
	scheduler  Scheduler
	spec       string
	windowDays int
	logger     *logrus.Logger
	now        func() time.Time

	running sync.Mutex

	mu        sync.RWMutex
	latest    *Snapshot
	listeners []func(Snapshot)
}

// NewReminderRefresher creates a refresher. settings may be nil, in which case reminders are always collected.
func NewReminderRefresher(events ReminderSource, settings SettingReader, scheduler Scheduler, cfg models.ReminderConfig, logger *logrus.Logger) *ReminderRefresher {
	spec := cfg.RefreshSchedule
	if spec == "" {
		spec = constants.DefaultReminderRefreshSpec
	}
	days := cfg.UpcomingWindowDays
	if days <= 0 {
		days = constants.DefaultUpcomingWindowDays
	}
	return &ReminderRefresher{
		events:     events,
		settings:   settings,
		scheduler:  scheduler,
		spec:       spec,
		windowDays: days,
		logger:     logger,
		now:        time.Now,
	}
}

// OnRefresh registers a listener called with every new snapshot
func (r *ReminderRefresher) OnRefresh(fn func(Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Start registers the periodic refresh and starts the scheduler
func (r *ReminderRefresher) Start(ctx context.Context) error {
	if _, err := r.scheduler.AddFunc(r.spec, func() { r.tick(ctx) }); err != nil {
		return err
	}
	r.scheduler.Start()

	r.mu.RLock()
	days := r.windowDays
	r.mu.RUnlock()

	r.logger.WithFields(logrus.Fields{
		LogFieldSchedule:   r.spec,
		LogFieldWindowDays: days,
	}).Info("Starting reminder refresher")
	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish
func (r *ReminderRefresher) Stop() {
	<-r.scheduler.Stop().Done()
	r.logger.Info("Reminder refresher stopped")
}

// SetWindowDays changes the upcoming window used by the next refresh. Non-positive values are ignored.
func (r *ReminderRefresher) SetWindowDays(days int) {
	if days <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.windowDays != days {
		r.logger.WithField(LogFieldWindowDays, days).Info("Reminder window changed")
	}
	r.windowDays = days
}

// Latest returns the most recent snapshot, if any refresh has completed
func (r *ReminderRefresher) Latest() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return Snapshot{}, false
	}
	return *r.latest, true
}

// Refresh collects a new snapshot now, waiting for any refresh in flight
func (r *ReminderRefresher) Refresh(ctx context.Context) (Snapshot, error) {
	r.running.Lock()
	defer r.running.Unlock()
	return r.refresh(ctx)
}

func (r *ReminderRefresher) tick(ctx context.Context) {
	if !r.running.TryLock() {
		metrics.IncrementCounter(metrics.ReminderRefreshSkipped, nil, "Scheduled reminder refreshes skipped while busy")
		r.logger.Warn("Skipping reminder refresh: previous refresh still running")
		return
	}
	defer r.running.Unlock()

	if _, err := r.refresh(ctx); err != nil {
		r.logger.WithError(err).Error("Failed to refresh reminders")
	}
}

func (r *ReminderRefresher) refresh(ctx context.Context) (Snapshot, error) {
	start := time.Now()

	r.mu.RLock()
	days := r.windowDays
	r.mu.RUnlock()

	upcoming, err := r.events.GetUpcoming(ctx, days)
	if err != nil {
		metrics.IncrementCounter(metrics.ReminderRefreshes, map[string]string{"status": "error"}, "Reminder refreshes")
		return Snapshot{}, err
	}

	needing := []models.Event{}
	if r.remindersEnabled(ctx) {
		needing, err = r.events.GetNeedingReminders(ctx)
		if err != nil {
			metrics.IncrementCounter(metrics.ReminderRefreshes, map[string]string{"status": "error"}, "Reminder refreshes")
			return Snapshot{}, err
		}
	}

	snap := Snapshot{
		Upcoming:         upcoming,
		NeedingReminders: needing,
		RefreshedAt:      r.now(),
	}

	r.mu.Lock()
	r.latest = &snap
	listeners := append([]func(Snapshot){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}

	metrics.IncrementCounter(metrics.ReminderRefreshes, map[string]string{"status": "ok"}, "Reminder refreshes")
	metrics.RecordTimer(metrics.ReminderRefreshDuration, time.Since(start), nil, "Reminder refresh duration")
	metrics.SetGauge(metrics.EventsNeedingReminder, float64(len(needing)), nil, "Events dated tomorrow without a sent reminder")

	r.logger.WithFields(logrus.Fields{
		"upcoming":       len(upcoming),
		LogFieldCount:    len(needing),
		LogFieldDuration: time.Since(start).Milliseconds(),
	}).Debug("Completed reminder refresh")

	return snap, nil
}

func (r *ReminderRefresher) remindersEnabled(ctx context.Context) bool {
	if r.settings == nil {
		return true
	}
	return r.settings.Value(ctx, constants.SettingEventReminders, "true") != "false"
}
