package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const (
	KeyGlobalEnabled         = "ads_global_enabled"
	KeyMainEnabled           = "ads_main_enabled"
	KeySecondaryEnabled      = "ads_secondary_enabled"
	KeyMainAdOncePerDay      = "main_ad_once_per_day"
	KeySecondaryAdOncePerDay = "secondary_ad_once_per_day"
)

// AdSettings are the delivery gates read on every selection.
type AdSettings struct {
	GlobalEnabled         bool `json:"global_enabled"`
	MainEnabled           bool `json:"main_enabled"`
	SecondaryEnabled      bool `json:"secondary_enabled"`
	MainAdOncePerDay      bool `json:"main_ad_once_per_day"`
	SecondaryAdOncePerDay bool `json:"secondary_ad_once_per_day"`
}

// DefaultAdSettings applies to any key that has never been written.
var DefaultAdSettings = AdSettings{
	GlobalEnabled:    true,
	MainEnabled:      true,
	SecondaryEnabled: true,
}

// AdSettingsPatch is a partial update; nil fields keep their stored value.
type AdSettingsPatch struct {
	GlobalEnabled         *bool `json:"global_enabled"`
	MainEnabled           *bool `json:"main_enabled"`
	SecondaryEnabled      *bool `json:"secondary_enabled"`
	MainAdOncePerDay      *bool `json:"main_ad_once_per_day"`
	SecondaryAdOncePerDay *bool `json:"secondary_ad_once_per_day"`
}

// GetSetting returns the stored value for key, or def when the key is absent.
func GetSetting(ctx context.Context, db *sql.DB, key, def string) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM settings WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return v, nil
}

func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func GetAdSettings(ctx context.Context, db *sql.DB) (AdSettings, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT k, v FROM settings WHERE k IN (?, ?, ?, ?, ?)`,
		KeyGlobalEnabled, KeyMainEnabled, KeySecondaryEnabled, KeyMainAdOncePerDay, KeySecondaryAdOncePerDay,
	)
	if err != nil {
		return AdSettings{}, fmt.Errorf("ad settings: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]string, 5)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return AdSettings{}, fmt.Errorf("scan setting: %w", err)
		}
		stored[k] = v
	}
	if err := rows.Err(); err != nil {
		return AdSettings{}, err
	}

	d := DefaultAdSettings
	return AdSettings{
		GlobalEnabled:         decodeBool(stored, KeyGlobalEnabled, d.GlobalEnabled),
		MainEnabled:           decodeBool(stored, KeyMainEnabled, d.MainEnabled),
		SecondaryEnabled:      decodeBool(stored, KeySecondaryEnabled, d.SecondaryEnabled),
		MainAdOncePerDay:      decodeBool(stored, KeyMainAdOncePerDay, d.MainAdOncePerDay),
		SecondaryAdOncePerDay: decodeBool(stored, KeySecondaryAdOncePerDay, d.SecondaryAdOncePerDay),
	}, nil
}

func UpdateAdSettings(ctx context.Context, db *sql.DB, p AdSettingsPatch) error {
	fields := []struct {
		key   string
		value *bool
	}{
		{KeyGlobalEnabled, p.GlobalEnabled},
		{KeyMainEnabled, p.MainEnabled},
		{KeySecondaryEnabled, p.SecondaryEnabled},
		{KeyMainAdOncePerDay, p.MainAdOncePerDay},
		{KeySecondaryAdOncePerDay, p.SecondaryAdOncePerDay},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := SetSetting(ctx, db, f.key, encodeBool(*f.value)); err != nil {
			return err
		}
	}
	return nil
}

// ParseBool reports whether s is one of 1, true, yes, y, on (any case).
func ParseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func decodeBool(stored map[string]string, key string, def bool) bool {
	v, ok := stored[key]
	if !ok {
		return def
	}
	return ParseBool(v)
}

func encodeBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
