package form

import (
	"strings"
	"time"

	"github.com/saadjs/cycle-cli/internal/api"
	"github.com/saadjs/cycle-cli/internal/model"
	"github.com/saadjs/cycle-cli/internal/ux"
)

type Period struct {
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	FlowIntensity string `json:"flow_intensity" validate:"omitempty,oneof=light medium heavy"`
	Symptoms      string `json:"symptoms"`
}

// NewPeriod starts a period form dated today.
func NewPeriod(today time.Time) Period {
	return Period{StartDate: model.NewDate(today).String()}
}

func (p *Period) normalize() {
	p.StartDate = strings.TrimSpace(p.StartDate)
	p.EndDate = strings.TrimSpace(p.EndDate)
	p.FlowIntensity = strings.ToLower(strings.TrimSpace(p.FlowIntensity))
	p.Symptoms = strings.TrimSpace(p.Symptoms)
}

func (p *Period) Validate() error {
	p.normalize()
	return check("period entry", *p)
}

func (p Period) Input() api.PeriodInput {
	return api.PeriodInput{
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		FlowIntensity: p.FlowIntensity,
		Symptoms:      p.Symptoms,
	}
}

func (p *Period) Fields() []ux.FormField {
	return []ux.FormField{
		{Kind: ux.KindInput, Title: "Start Date *", Placeholder: model.DateLayout, Value: &p.StartDate},
		{Kind: ux.KindInput, Title: "End Date (optional)", Placeholder: model.DateLayout, Value: &p.EndDate},
		{Kind: ux.KindSelect, Title: "Flow Intensity", Options: model.FlowIntensities, Optional: true, Value: &p.FlowIntensity},
		{Kind: ux.KindText, Title: "Symptoms (optional)", Placeholder: "Describe any symptoms you experienced (cramps, headaches, mood changes, etc.)", Value: &p.Symptoms},
	}
}

type Ovulation struct {
	OvulationDate        string `json:"ovulation_date" validate:"required,datetime=2006-01-02"`
	BasalBodyTemperature string `json:"basal_body_temperature" validate:"omitempty,bbt"`
	CervicalMucus        string `json:"cervical_mucus" validate:"omitempty,oneof=dry sticky creamy watery egg-white"`
	Symptoms             string `json:"symptoms"`
}

// NewOvulation starts an ovulation form dated today.
func NewOvulation(today time.Time) Ovulation {
	return Ovulation{OvulationDate: model.NewDate(today).String()}
}

func (o *Ovulation) normalize() {
	o.OvulationDate = strings.TrimSpace(o.OvulationDate)
	o.BasalBodyTemperature = strings.TrimSpace(o.BasalBodyTemperature)
	o.CervicalMucus = strings.ToLower(strings.TrimSpace(o.CervicalMucus))
	o.Symptoms = strings.TrimSpace(o.Symptoms)
}

func (o *Ovulation) Validate() error {
	o.normalize()
	return check("ovulation entry", *o)
}

func (o Ovulation) Input() api.OvulationInput {
	return api.OvulationInput{
		OvulationDate:        o.OvulationDate,
		BasalBodyTemperature: o.BasalBodyTemperature,
		CervicalMucus:        o.CervicalMucus,
		Symptoms:             o.Symptoms,
	}
}

func (o *Ovulation) Fields() []ux.FormField {
	return []ux.FormField{
		{Kind: ux.KindInput, Title: "Ovulation Date *", Placeholder: model.DateLayout, Value: &o.OvulationDate},
		{Kind: ux.KindInput, Title: "Basal Body Temperature (°F)", Placeholder: "e.g., 98.6", Value: &o.BasalBodyTemperature},
		{Kind: ux.KindSelect, Title: "Cervical Mucus", Options: model.CervicalMucusTypes, Optional: true, Value: &o.CervicalMucus},
		{Kind: ux.KindText, Title: "Ovulation Symptoms (optional)", Placeholder: "Describe any ovulation symptoms (ovulation pain, breast tenderness, increased libido, etc.)", Value: &o.Symptoms},
	}
}

type Login struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (l *Login) Validate() error {
	l.Username = strings.TrimSpace(l.Username)
	return check("login", *l)
}

func (l *Login) Fields() []ux.FormField {
	return []ux.FormField{
		{Kind: ux.KindInput, Title: "Username", Value: &l.Username},
		{Kind: ux.KindPassword, Title: "Password", Value: &l.Password},
	}
}

type Register struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *Register) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	return check("registration", *r)
}

func (r *Register) Fields() []ux.FormField {
	return []ux.FormField{
		{Kind: ux.KindInput, Title: "Username", Value: &r.Username},
		{Kind: ux.KindInput, Title: "Email", Value: &r.Email},
		{Kind: ux.KindPassword, Title: "Password", Value: &r.Password},
	}
}
