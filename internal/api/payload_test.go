package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/cycle-cli/internal/errors"
)

func TestEncodeOvulationBlankOptionalsAreExplicitNulls(t *testing.T) {
	t.Parallel()

	got, err := EncodeOvulation(OvulationInput{OvulationDate: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t,
		`{"ovulation_date":"2024-03-01","basal_body_temperature":null,"cervical_mucus":null,"symptoms":null}`,
		string(got))
}

func TestEncodePeriodOmitsBlankEndDate(t *testing.T) {
	t.Parallel()

	got, err := EncodePeriod(PeriodInput{StartDate: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, `{"start_date":"2024-03-01","flow_intensity":null,"symptoms":null}`, string(got))
	assert.NotContains(t, string(got), "end_date")
}

func TestEncodePeriodAppendsEndDateWhenPresent(t *testing.T) {
	t.Parallel()

	got, err := EncodePeriod(PeriodInput{
		StartDate:     "2024-03-01",
		EndDate:       "2024-03-05",
		FlowIntensity: "heavy",
		Symptoms:      "cramps",
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"start_date":"2024-03-01","flow_intensity":"heavy","symptoms":"cramps","end_date":"2024-03-05"}`,
		string(got))
}

func TestEncodeTreatsWhitespaceAsBlank(t *testing.T) {
	t.Parallel()

	period, err := EncodePeriod(PeriodInput{StartDate: " 2024-03-01 ", EndDate: "   ", Symptoms: "\t"})
	require.NoError(t, err)
	assert.Equal(t, `{"start_date":"2024-03-01","flow_intensity":null,"symptoms":null}`, string(period))

	ovulation, err := EncodeOvulation(OvulationInput{OvulationDate: "2024-03-01", BasalBodyTemperature: "  ", CervicalMucus: " "})
	require.NoError(t, err)
	assert.Equal(t,
		`{"ovulation_date":"2024-03-01","basal_body_temperature":null,"cervical_mucus":null,"symptoms":null}`,
		string(ovulation))
}

func TestEncodeOvulationSendsTemperatureAsNumber(t *testing.T) {
	t.Parallel()

	got, err := EncodeOvulation(OvulationInput{
		OvulationDate:        "2024-03-14",
		BasalBodyTemperature: "98.6",
		CervicalMucus:        "egg-white",
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"ovulation_date":"2024-03-14","basal_body_temperature":98.6,"cervical_mucus":"egg-white","symptoms":null}`,
		string(got))
}

func TestEncodeOvulationRejectsUnparseableTemperature(t *testing.T) {
	t.Parallel()

	_, err := EncodeOvulation(OvulationInput{OvulationDate: "2024-03-14", BasalBodyTemperature: "warm"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}
