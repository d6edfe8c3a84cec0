package service

import (
	"context"
	"strings"
	"time"

	"curalink/internal/errors"
	"curalink/internal/models"
	"curalink/internal/validation"

	"github.com/sirupsen/logrus"
)

// SettingsDatabaseService defines the database operations needed by SettingsService
type SettingsDatabaseService interface {
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	SetSetting(ctx context.Context, key, value string, at time.Time) error
	ListSettings(ctx context.Context) ([]models.Setting, error)
}

// StatsProvider counts rows in the main tables
type StatsProvider interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

// SettingsService reads and writes key/value settings. Settings are never deleted.
type SettingsService struct {
	db     SettingsDatabaseService
	logger *errors.Logger
	now    func() time.Time
}

func NewSettingsService(db SettingsDatabaseService, logger *logrus.Logger) *SettingsService {
	return &SettingsService{
		db:     db,
		logger: errors.WrapLogger(logger),
		now:    time.Now,
	}
}

// Get returns nil when the key has never been set
func (ss *SettingsService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := ss.db.GetSetting(ctx, key)
	if err != nil {
		return nil, errors.NewDatabaseError("get setting", err).WithContext(LogFieldSettingKey, key)
	}
	return setting, nil
}

// Value returns the setting value, or fallback when unset or unreadable
func (ss *SettingsService) Value(ctx context.Context, key, fallback string) string {
	setting, err := ss.Get(ctx, key)
	if err != nil {
		ss.logger.LogWarn(err, "Failed to read setting, using default")
		return fallback
	}
	if setting == nil {
		return fallback
	}
	return setting.Value
}

// Set inserts or replaces a setting and bumps its updated_at
func (ss *SettingsService) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if err := validation.ValidateRequired(key, "key"); err != nil {
		return nil, err
	}
	if err := validation.ValidateStringLength(key, "key", 1, validation.MaxSettingKeyLen); err != nil {
		return nil, err
	}

	if err := ss.db.SetSetting(ctx, key, value, ss.now()); err != nil {
		return nil, errors.NewDatabaseError("set setting", err).WithContext(LogFieldSettingKey, key)
	}
	ss.logger.WithField(LogFieldSettingKey, key).Debug("Setting updated")
	return ss.Get(ctx, key)
}

// GetAll returns every setting as a key/value map
func (ss *SettingsService) GetAll(ctx context.Context) (map[string]string, error) {
	settings, err := ss.db.ListSettings(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list settings", err)
	}

	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}
	return values, nil
}
