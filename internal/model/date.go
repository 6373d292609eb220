package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

// Date is a calendar date without a time of day, anchored at midnight in
// time.Local so day arithmetic matches the user's calendar.
type Date struct {
	t time.Time
}

// NewDate truncates t to its calendar date in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.Local)}
}

// ParseDate accepts YYYY-MM-DD and the timestamp shapes the service emits.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
}

// MustParseDate is ParseDate for literals in tests and defaults.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Format renders the date with a time layout, e.g. "Jan 02, 2006".
func (d Date) Format(layout string) string {
	return d.t.Format(layout)
}

// DaysSince returns the number of calendar days from other to d.
func (d Date) DaysSince(other Date) int {
	a := time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 12, 0, 0, 0, time.UTC)
	b := time.Date(other.t.Year(), other.t.Month(), other.t.Day(), 12, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) After(other Date) bool { return d.t.After(other.t) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML keeps yaml output in the same YYYY-MM-DD shape as JSON.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}
