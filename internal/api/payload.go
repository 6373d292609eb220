package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/saadjs/cycle-cli/internal/errors"
)

// PeriodInput is raw form input; blank strings mean "not provided".
type PeriodInput struct {
	StartDate     string
	EndDate       string
	FlowIntensity string
	Symptoms      string
}

// OvulationInput is raw form input; blank strings mean "not provided".
type OvulationInput struct {
	OvulationDate        string
	BasalBodyTemperature string
	CervicalMucus        string
	Symptoms             string
}

// The service expects blank period fields as explicit nulls, except
// end_date, which must be left out entirely. Field order matches what the
// web client sent.
type periodPayload struct {
	StartDate     string  `json:"start_date"`
	FlowIntensity *string `json:"flow_intensity"`
	Symptoms      *string `json:"symptoms"`
	EndDate       *string `json:"end_date,omitempty"`
}

// Every optional ovulation field is sent, as null when blank.
type ovulationPayload struct {
	OvulationDate        string   `json:"ovulation_date"`
	BasalBodyTemperature *float64 `json:"basal_body_temperature"`
	CervicalMucus        *string  `json:"cervical_mucus"`
	Symptoms             *string  `json:"symptoms"`
}

// EncodePeriod shapes in into the request body for POST /periods.
func EncodePeriod(in PeriodInput) ([]byte, error) {
	p := periodPayload{
		StartDate:     strings.TrimSpace(in.StartDate),
		FlowIntensity: optional(in.FlowIntensity),
		Symptoms:      optional(in.Symptoms),
		EndDate:       optional(in.EndDate),
	}
	return json.Marshal(p)
}

// EncodeOvulation shapes in into the request body for POST /ovulation.
func EncodeOvulation(in OvulationInput) ([]byte, error) {
	p := ovulationPayload{
		OvulationDate: strings.TrimSpace(in.OvulationDate),
		CervicalMucus: optional(in.CervicalMucus),
		Symptoms:      optional(in.Symptoms),
	}
	if raw := strings.TrimSpace(in.BasalBodyTemperature); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeValidation, fmt.Sprintf("invalid basal body temperature %q", raw), err)
		}
		p.BasalBodyTemperature = &v
	}
	return json.Marshal(p)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
