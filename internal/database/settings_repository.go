package database

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/example/flashbot/internal/srs"
)

// Setting names recognized as algorithm config overrides
const (
	SettingBaseEase            = "base_ease"
	SettingIntervalChangeHard  = "interval_change_hard"
	SettingEasyBonus           = "easy_bonus"
	SettingEnableLoadBalancer  = "enable_load_balancer"
	SettingMaxIntervalDays     = "max_interval_days"
	SettingMaxLinkContribution = "max_link_contribution"
	SettingEaseFloor           = "ease_floor"
)

// SettingsRepository persists named settings: algorithm config
// overrides plus a few bot-level values like the reminder chat id
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new repository instance
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns a setting value; ok is false when the setting is unset
func (r *SettingsRepository) Get(name string) (string, bool, error) {
	var value string
	err := r.db.Get(&value, "SELECT value FROM settings WHERE name = $1", name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %v", name, err)
	}
	return value, true, nil
}

// Set stores a setting value, replacing any previous one
func (r *SettingsRepository) Set(name, value string) error {
	_, err := r.db.Exec(
		"INSERT INTO settings (name, value) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value",
		name, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %v", name, err)
	}
	return nil
}

// Delete removes a setting so the default applies again
func (r *SettingsRepository) Delete(name string) error {
	if _, err := r.db.Exec("DELETE FROM settings WHERE name = $1", name); err != nil {
		return fmt.Errorf("failed to delete setting %s: %v", name, err)
	}
	return nil
}

// LoadOverrides reads the stored algorithm settings into an override
// set ready to merge with the config defaults. Unparseable values are
// skipped, leaving the default in effect.
func (r *SettingsRepository) LoadOverrides() (srs.Overrides, error) {
	rows, err := r.db.Queryx("SELECT name, value FROM settings")
	if err != nil {
		return srs.Overrides{}, fmt.Errorf("failed to load settings: %v", err)
	}
	defer rows.Close()

	var overrides srs.Overrides
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return srs.Overrides{}, fmt.Errorf("failed to scan setting: %v", err)
		}

		switch name {
		case SettingBaseEase:
			overrides.BaseEase = parseInt(value)
		case SettingIntervalChangeHard:
			overrides.IntervalChangeHard = parseInt(value)
		case SettingEasyBonus:
			overrides.EasyBonus = parseInt(value)
		case SettingEnableLoadBalancer:
			if b, err := strconv.ParseBool(value); err == nil {
				overrides.EnableLoadBalancer = &b
			}
		case SettingMaxIntervalDays:
			overrides.MaxIntervalDays = parseInt(value)
		case SettingMaxLinkContribution:
			overrides.MaxLinkContribution = parseInt(value)
		case SettingEaseFloor:
			overrides.EaseFloor = parseInt(value)
		}
	}
	if err := rows.Err(); err != nil {
		return srs.Overrides{}, fmt.Errorf("failed to read settings: %v", err)
	}
	return overrides, nil
}

func parseInt(value string) *int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}
