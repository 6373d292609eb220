// Package cycle derives where in the menstrual cycle the user currently is
// and how far away predicted dates are. Everything here is a pure function of
// its inputs; callers recompute on every render because "today" moves.
package cycle

import (
	"time"

	"github.com/saadjs/cycle-cli/internal/model"
)

type Phase string

const (
	PhaseUnknown    Phase = "Unknown"
	PhaseMenstrual  Phase = "Menstrual"
	PhaseFollicular Phase = "Follicular"
	PhaseOvulation  Phase = "Ovulation"
	PhaseLuteal     Phase = "Luteal"
)

// Upper bounds (inclusive) of each phase in days since the last period
// started. These are fixed heuristics and ignore the user's own averages.
const (
	menstrualLastDay  = 7
	follicularLastDay = 14
	ovulationLastDay  = 21
)

var descriptions = map[Phase]string{
	PhaseUnknown:    "Add your first period to get started",
	PhaseMenstrual:  "Your period is currently active or just ended",
	PhaseFollicular: "Your body is preparing for ovulation",
	PhaseOvulation:  "You may be ovulating or in your fertile window",
	PhaseLuteal:     "Your body is preparing for your next period",
}

// Status is the derived phase for one point in time. It is never persisted.
type Status struct {
	Phase          Phase  `json:"phase" yaml:"phase"`
	Description    string `json:"description" yaml:"description"`
	DaysSinceStart *int   `json:"days_since_start,omitempty" yaml:"days_since_start,omitempty"`
}

// Latest returns the period with the greatest start date, or nil. The
// service lists most-recent-first, so on ties the earlier entry wins.
func Latest(records []model.PeriodRecord) *model.PeriodRecord {
	var latest *model.PeriodRecord
	for i := range records {
		if latest == nil || records[i].StartDate.After(latest.StartDate) {
			latest = &records[i]
		}
	}
	return latest
}

// CurrentPhase classifies today relative to the start of latest.
func CurrentPhase(latest *model.PeriodRecord, today time.Time) Status {
	if latest == nil || latest.StartDate.IsZero() {
		return Status{Phase: PhaseUnknown, Description: descriptions[PhaseUnknown]}
	}
	days := model.NewDate(today).DaysSince(latest.StartDate)
	if days < 0 {
		days = 0
	}
	phase := PhaseForDay(days)
	return Status{Phase: phase, Description: descriptions[phase], DaysSinceStart: &days}
}

// PhaseForDay maps a non-negative day offset to its phase.
func PhaseForDay(daysSinceStart int) Phase {
	switch {
	case daysSinceStart <= menstrualLastDay:
		return PhaseMenstrual
	case daysSinceStart <= follicularLastDay:
		return PhaseFollicular
	case daysSinceStart <= ovulationLastDay:
		return PhaseOvulation
	default:
		return PhaseLuteal
	}
}

// Describe returns the user-facing explanation for p.
func (p Phase) Describe() string {
	return descriptions[p]
}
