package service

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/saadjs/cycle-cli/internal/app"
	"github.com/saadjs/cycle-cli/internal/errors"
)

const (
	ConfigAPIURL         = "api_url"
	ConfigHTTPTimeout    = "http_timeout"
	ConfigRemindSchedule = "remind_schedule"
)

var configValidators = map[string]func(string) (string, error){
	ConfigAPIURL: app.NormalizeAPIURL,
	ConfigHTTPTimeout: func(v string) (string, error) {
		d, err := app.ParseTimeout(v)
		if err != nil {
			return "", err
		}
		return d.String(), nil
	},
	ConfigRemindSchedule: func(v string) (string, error) {
		v = strings.TrimSpace(v)
		if _, err := cron.ParseStandard(v); err != nil {
			return "", errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("invalid cron schedule %q", v), err)
		}
		return v, nil
	},
}

// ConfigKeys lists the settings `cycle config set` accepts.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configValidators))
	for k := range configValidators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func SetConfig(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	validate, ok := configValidators[key]
	if !ok {
		return errors.New(errors.ErrCodeConfig, fmt.Sprintf("unknown config key %q", key)).
			WithSuggestion("Known keys: " + strings.Join(ConfigKeys(), ", "))
	}
	normalized, err := validate(value)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, normalized)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func UnsetConfig(db *sql.DB, key string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if _, err := db.Exec(`DELETE FROM app_config WHERE key = ?`, key); err != nil {
		return fmt.Errorf("unset config %q: %w", key, err)
	}
	return nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}
