package cycle

import (
	"fmt"
	"time"

	"github.com/saadjs/cycle-cli/internal/model"
)

// Kind selects the wording used once a predicted date has arrived.
type Kind int

const (
	KindPeriod Kind = iota
	KindOvulation
)

// Countdown is the distance from today to a predicted date. Days is only
// meaningful when Due is false; it is never negative.
type Countdown struct {
	Days int  `json:"days" yaml:"days"`
	Due  bool `json:"due" yaml:"due"`
}

// CountdownTo counts whole calendar days from today to predicted.
func CountdownTo(predicted model.Date, today time.Time) Countdown {
	days := predicted.DaysSince(model.NewDate(today))
	if days <= 0 {
		return Countdown{Due: true}
	}
	return Countdown{Days: days}
}

// Describe renders the countdown, e.g. "In 5 days" or "Expected now or overdue".
func (c Countdown) Describe(kind Kind) string {
	if c.Due {
		if kind == KindOvulation {
			return "Expected now or passed"
		}
		return "Expected now or overdue"
	}
	if c.Days == 1 {
		return "In 1 day"
	}
	return fmt.Sprintf("In %d days", c.Days)
}
