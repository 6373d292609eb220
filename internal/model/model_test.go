package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateUnmarshalAcceptsServiceShapes(t *testing.T) {
	inputs := []string{
		`"2024-03-01"`,
		`"2024-03-01T00:00:00"`,
		`"2024-03-01T00:00:00Z"`,
		`"Fri, 01 Mar 2024 00:00:00 GMT"`,
	}
	for _, in := range inputs {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(in), &d), in)
		assert.Equal(t, "2024-03-01", d.String(), in)
	}

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	require.Error(t, json.Unmarshal([]byte(`"03/01/2024"`), &d))
}

func TestDateMarshal(t *testing.T) {
	b, err := json.Marshal(MustParseDate("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01"`, string(b))
}

func TestDaysSinceIgnoresTimeOfDayAndDST(t *testing.T) {
	start := MustParseDate("2024-03-01")
	today := NewDate(time.Date(2024, 3, 31, 23, 59, 0, 0, time.Local))
	assert.Equal(t, 30, today.DaysSince(start))
	assert.Equal(t, -30, start.DaysSince(today))
}

func TestPeriodRecordDecodesOptionalFields(t *testing.T) {
	var records []PeriodRecord
	require.NoError(t, json.Unmarshal([]byte(`[
  {"id": 2, "start_date": "2024-03-01", "end_date": null, "flow_intensity": "heavy", "symptoms": null},
  {"id": 1, "start_date": "2024-02-02", "end_date": "2024-02-06"}
]`), &records))
	require.Len(t, records, 2)
	assert.Nil(t, records[0].EndDate)
	require.NotNil(t, records[0].FlowIntensity)
	assert.Equal(t, "heavy", *records[0].FlowIntensity)
	require.NotNil(t, records[1].EndDate)
	assert.Equal(t, "2024-02-06", records[1].EndDate.String())
}

func TestStatisticsDisplayDefaults(t *testing.T) {
	empty := CycleStatistics{}.Display()
	assert.Equal(t, StatisticsDisplay{
		AverageCycleLength:  "N/A",
		AveragePeriodLength: "N/A",
		TotalPeriods:        0,
		CycleRegularity:     "Unknown",
	}, empty)

	var stats CycleStatistics
	require.NoError(t, json.Unmarshal([]byte(`{"average_cycle_length": 28.5, "average_period_length": 0, "total_periods": 6, "cycle_regularity": "Regular"}`), &stats))
	display := stats.Display()
	assert.Equal(t, "28.5", display.AverageCycleLength)
	assert.Equal(t, "N/A", display.AveragePeriodLength)
	assert.Equal(t, 6, display.TotalPeriods)
	assert.Equal(t, "Regular", display.CycleRegularity)
}

func TestForecastHasDate(t *testing.T) {
	var f Forecast
	require.NoError(t, json.Unmarshal([]byte(`{"confidence": "low"}`), &f))
	assert.False(t, f.HasDate())
	require.NoError(t, json.Unmarshal([]byte(`{"predicted_date": "2024-04-01", "confidence": "high"}`), &f))
	assert.True(t, f.HasDate())
}
