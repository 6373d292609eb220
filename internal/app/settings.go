package app

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/saadjs/cycle-cli/internal/api"
	"github.com/saadjs/cycle-cli/internal/errors"
)

const (
	EnvAPIURL   = "CYCLE_API_URL"
	EnvLogLevel = "CYCLE_LOG_LEVEL"
	EnvTimeout  = "CYCLE_HTTP_TIMEOUT"

	DefaultRemindSchedule = "0 8 * * *"
)

// Source names where a setting came from, for `cycle doctor`.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "env"
	SourceConfig  Source = "config"
	SourceDefault Source = "default"
)

type Settings struct {
	APIURL         string
	APIURLSource   Source
	HTTPTimeout    time.Duration
	RemindSchedule string
}

// Overrides are values given on the command line; empty means unset.
type Overrides struct {
	APIURL string
}

// LoadEnv reads .env from the working directory when present. Variables
// already set in the environment win.
func LoadEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "load .env", err)
	}
	return nil
}

// ResolveSettings applies flag > env > stored config > default.
func ResolveSettings(stored map[string]string, flags Overrides, getenv func(string) string) (Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	s := Settings{
		APIURL:         api.DefaultBaseURL,
		APIURLSource:   SourceDefault,
		HTTPTimeout:    api.DefaultTimeout,
		RemindSchedule: DefaultRemindSchedule,
	}

	switch {
	case strings.TrimSpace(flags.APIURL) != "":
		s.APIURL, s.APIURLSource = flags.APIURL, SourceFlag
	case strings.TrimSpace(getenv(EnvAPIURL)) != "":
		s.APIURL, s.APIURLSource = getenv(EnvAPIURL), SourceEnv
	case strings.TrimSpace(stored["api_url"]) != "":
		s.APIURL, s.APIURLSource = stored["api_url"], SourceConfig
	}
	normalized, err := NormalizeAPIURL(s.APIURL)
	if err != nil {
		return Settings{}, err
	}
	s.APIURL = normalized

	rawTimeout := strings.TrimSpace(getenv(EnvTimeout))
	if rawTimeout == "" {
		rawTimeout = strings.TrimSpace(stored["http_timeout"])
	}
	if rawTimeout != "" {
		d, err := ParseTimeout(rawTimeout)
		if err != nil {
			return Settings{}, err
		}
		s.HTTPTimeout = d
	}

	if v := strings.TrimSpace(stored["remind_schedule"]); v != "" {
		s.RemindSchedule = v
	}
	return s, nil
}

// NormalizeAPIURL requires an absolute http(s) URL and strips trailing slashes.
func NormalizeAPIURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.New(errors.ErrCodeConfig, fmt.Sprintf("invalid API URL %q", raw)).
			WithSuggestion("Use an absolute URL such as http://127.0.0.1:5001")
	}
	return strings.TrimRight(raw, "/"), nil
}

// ParseTimeout accepts a Go duration or a bare number of seconds. Zero
// disables the timeout.
func ParseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, errors.New(errors.ErrCodeConfig, fmt.Sprintf("invalid http timeout %q", raw)).
		WithSuggestion("Use a duration like 12s or 1m, or 0 to disable")
}
