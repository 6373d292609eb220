package model

import "strconv"

const (
	FlowLight  = "light"
	FlowMedium = "medium"
	FlowHeavy  = "heavy"
)

var FlowIntensities = []string{FlowLight, FlowMedium, FlowHeavy}

const (
	MucusDry      = "dry"
	MucusSticky   = "sticky"
	MucusCreamy   = "creamy"
	MucusWatery   = "watery"
	MucusEggWhite = "egg-white"
)

var CervicalMucusTypes = []string{MucusDry, MucusSticky, MucusCreamy, MucusWatery, MucusEggWhite}

// Basal body temperature bounds in °F.
const (
	MinBasalBodyTemperature = 95.0
	MaxBasalBodyTemperature = 105.0
)

type User struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
}

// AuthResponse is returned by both login and registration.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type PeriodRecord struct {
	ID            int64   `json:"id" yaml:"id"`
	StartDate     Date    `json:"start_date" yaml:"start_date"`
	EndDate       *Date   `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	FlowIntensity *string `json:"flow_intensity,omitempty" yaml:"flow_intensity,omitempty"`
	Symptoms      *string `json:"symptoms,omitempty" yaml:"symptoms,omitempty"`
}

type OvulationRecord struct {
	ID                   int64    `json:"id" yaml:"id"`
	OvulationDate        Date     `json:"ovulation_date" yaml:"ovulation_date"`
	BasalBodyTemperature *float64 `json:"basal_body_temperature,omitempty" yaml:"basal_body_temperature,omitempty"`
	CervicalMucus        *string  `json:"cervical_mucus,omitempty" yaml:"cervical_mucus,omitempty"`
	Symptoms             *string  `json:"symptoms,omitempty" yaml:"symptoms,omitempty"`
}

// Forecast is a prediction for the next period or ovulation. A nil
// PredictedDate means the service does not have enough history yet.
type Forecast struct {
	PredictedDate *Date  `json:"predicted_date,omitempty" yaml:"predicted_date,omitempty"`
	Confidence    string `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

func (f Forecast) HasDate() bool {
	return f.PredictedDate != nil && !f.PredictedDate.IsZero()
}

// CycleStatistics is the aggregate summary returned by the service, kept
// exactly as received: absent fields stay nil.
type CycleStatistics struct {
	AverageCycleLength  *float64 `json:"average_cycle_length,omitempty" yaml:"average_cycle_length,omitempty"`
	AveragePeriodLength *float64 `json:"average_period_length,omitempty" yaml:"average_period_length,omitempty"`
	TotalPeriods        *int     `json:"total_periods,omitempty" yaml:"total_periods,omitempty"`
	CycleRegularity     *string  `json:"cycle_regularity,omitempty" yaml:"cycle_regularity,omitempty"`
}

// StatisticsDisplay holds presentation strings with defaults applied.
type StatisticsDisplay struct {
	AverageCycleLength  string `json:"average_cycle_length" yaml:"average_cycle_length"`
	AveragePeriodLength string `json:"average_period_length" yaml:"average_period_length"`
	TotalPeriods        int    `json:"total_periods" yaml:"total_periods"`
	CycleRegularity     string `json:"cycle_regularity" yaml:"cycle_regularity"`
}

// Display fills in "N/A", 0 and "Unknown" for missing values. Zero averages
// count as missing, matching how the web dashboard rendered them.
func (s CycleStatistics) Display() StatisticsDisplay {
	out := StatisticsDisplay{
		AverageCycleLength:  "N/A",
		AveragePeriodLength: "N/A",
		CycleRegularity:     "Unknown",
	}
	if s.AverageCycleLength != nil && *s.AverageCycleLength != 0 {
		out.AverageCycleLength = formatNumber(*s.AverageCycleLength)
	}
	if s.AveragePeriodLength != nil && *s.AveragePeriodLength != 0 {
		out.AveragePeriodLength = formatNumber(*s.AveragePeriodLength)
	}
	if s.TotalPeriods != nil {
		out.TotalPeriods = *s.TotalPeriods
	}
	if s.CycleRegularity != nil && *s.CycleRegularity != "" {
		out.CycleRegularity = *s.CycleRegularity
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
