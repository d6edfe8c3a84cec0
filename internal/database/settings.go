package database

import (
	"context"
	"fmt"
	"time"

	"curalink/internal/models"
)

// GetSetting returns nil when the key is unknown
func (d *Database) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	found, err := d.QueryOne(ctx, func(s Scanner) error {
		return s.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	}, SelectSettingQuery, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &setting, nil
}

// SetSetting inserts or replaces a value and bumps its timestamp
func (d *Database) SetSetting(ctx context.Context, key, value string, at time.Time) error {
	if _, err := d.Exec(ctx, UpsertSettingQuery, key, value, at.UTC()); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// ListSettings returns all settings ordered by key
func (d *Database) ListSettings(ctx context.Context) ([]models.Setting, error) {
	settings := []models.Setting{}
	err := d.QueryAll(ctx, func(s Scanner) error {
		var setting models.Setting
		if err := s.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return err
		}
		settings = append(settings, setting)
		return nil
	}, SelectAllSettingsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}
