package dashboard

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/saadjs/cycle-cli/internal/model"
	"github.com/saadjs/cycle-cli/internal/ux"
)

const (
	longDate  = "Jan 02, 2006"
	shortDate = "Jan 02"
)

var failureNotes = map[Source]string{
	SourcePeriods:           "Could not load periods",
	SourceOvulations:        "Could not load ovulation data",
	SourcePeriodForecast:    "Could not load period prediction",
	SourceOvulationForecast: "Could not load ovulation prediction",
	SourceStats:             "Could not load cycle statistics",
}

// Render writes v in format: text, json or yaml.
func Render(w io.Writer, v View, format string) error {
	if strings.EqualFold(strings.TrimSpace(format), ux.FormatText) || strings.TrimSpace(format) == "" {
		_, err := io.WriteString(w, v.String())
		return err
	}
	f, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: w})
	if err != nil {
		return err
	}
	return f.Format(v)
}

// String renders the text dashboard.
func (v View) String() string {
	var b strings.Builder

	b.WriteString(ux.TitleStyle.Render("Dashboard") + "\n")
	b.WriteString(ux.MutedStyle.Render("Track your menstrual cycle and health") + "\n")
	if v.User != nil && v.User.Username != "" {
		b.WriteString("Welcome, " + v.User.Username + "\n")
	}
	b.WriteString("\n")

	b.WriteString(ux.Card("Current Phase", v.phaseBody()) + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		ux.Card("Next Period", v.predictionBody(v.NextPeriod, SourcePeriodForecast)),
		" ",
		ux.Card("Next Ovulation", v.predictionBody(v.NextOvulation, SourceOvulationForecast)),
	) + "\n")
	b.WriteString(ux.Card("Cycle Statistics", v.statsBody()) + "\n")
	b.WriteString(ux.Card("Recent Periods", v.periodsBody()) + "\n")
	b.WriteString(ux.Card("Recent Ovulation", v.ovulationsBody()) + "\n")

	for _, n := range v.failureLines() {
		b.WriteString(ux.WarningStyle.Render("! "+n) + "\n")
	}
	return b.String()
}

func (v View) phaseBody() string {
	lines := []string{ux.ValueStyle.Render(string(v.Phase.Phase)), v.Phase.Description}
	if v.Phase.DaysSinceStart != nil {
		lines = append(lines, ux.MutedStyle.Render(fmt.Sprintf("Cycle day %d", *v.Phase.DaysSinceStart+1)))
	}
	return strings.Join(lines, "\n")
}

func (v View) predictionBody(p *Prediction, src Source) string {
	if p == nil {
		if v.Failed(src) {
			return ux.MutedStyle.Render(failureNotes[src])
		}
		return ux.MutedStyle.Render("No prediction available")
	}
	if !p.Forecast.HasDate() {
		return ux.MutedStyle.Render(p.Summary)
	}
	lines := []string{
		ux.ValueStyle.Render(p.Forecast.PredictedDate.Format(longDate)),
		p.Summary,
	}
	if p.Forecast.Confidence != "" {
		lines = append(lines, ux.LabelStyle.Render(p.Forecast.Confidence+" confidence"))
	}
	return strings.Join(lines, "\n")
}

func (v View) statsBody() string {
	s := v.Summary
	return strings.Join([]string{
		ux.Field("Avg Cycle Length", s.AverageCycleLength),
		ux.Field("Avg Period Length", s.AveragePeriodLength),
		ux.Field("Total Periods", strconv.Itoa(s.TotalPeriods)),
		ux.Field("Regularity", s.CycleRegularity),
	}, "\n")
}

func (v View) periodsBody() string {
	if len(v.Periods) == 0 {
		return ux.MutedStyle.Render("No periods recorded yet")
	}
	lines := make([]string, 0, RecentLimit)
	for _, p := range recentPeriods(v.Periods) {
		lines = append(lines, PeriodLine(p))
	}
	return strings.Join(lines, "\n")
}

func (v View) ovulationsBody() string {
	if len(v.Ovulations) == 0 {
		return ux.MutedStyle.Render("No ovulation data recorded yet")
	}
	lines := make([]string, 0, RecentLimit)
	for _, o := range recentOvulations(v.Ovulations) {
		lines = append(lines, OvulationLine(o))
	}
	return strings.Join(lines, "\n")
}

// PeriodLine formats one period, e.g. "Mar 01, 2024 - Mar 05 · heavy flow".
func PeriodLine(p model.PeriodRecord) string {
	line := p.StartDate.Format(longDate)
	if p.EndDate != nil && !p.EndDate.IsZero() {
		line += " - " + p.EndDate.Format(shortDate)
	}
	if p.FlowIntensity != nil && *p.FlowIntensity != "" {
		line += " · " + *p.FlowIntensity + " flow"
	}
	return line
}

// OvulationLine formats one ovulation record, e.g. "Mar 14, 2024 · 98.6°F · egg-white".
func OvulationLine(o model.OvulationRecord) string {
	parts := []string{o.OvulationDate.Format(longDate)}
	if o.BasalBodyTemperature != nil && *o.BasalBodyTemperature != 0 {
		parts = append(parts, strconv.FormatFloat(*o.BasalBodyTemperature, 'f', -1, 64)+"°F")
	}
	if o.CervicalMucus != nil && *o.CervicalMucus != "" {
		parts = append(parts, *o.CervicalMucus)
	}
	return strings.Join(parts, " · ")
}

// The service lists records most recent first; the view keeps that order
// and only caps the count.
func recentPeriods(records []model.PeriodRecord) []model.PeriodRecord {
	if len(records) > RecentLimit {
		return records[:RecentLimit]
	}
	return records
}

func recentOvulations(records []model.OvulationRecord) []model.OvulationRecord {
	if len(records) > RecentLimit {
		return records[:RecentLimit]
	}
	return records
}

func (v View) failureLines() []string {
	srcs := make([]string, 0, len(v.Failures))
	for src := range v.Failures {
		srcs = append(srcs, string(src))
	}
	sort.Strings(srcs)
	out := make([]string, 0, len(srcs))
	for _, s := range srcs {
		note := failureNotes[Source(s)]
		if msg := v.Failures[Source(s)]; msg != "" && msg != note {
			note += ": " + msg
		}
		out = append(out, note)
	}
	return out
}

// Digest is a one-line summary used by reminders.
func (v View) Digest() string {
	parts := []string{fmt.Sprintf("%s: %s phase", v.Today.Format(longDate), v.Phase.Phase)}
	if v.Phase.DaysSinceStart != nil {
		parts[0] += fmt.Sprintf(" (cycle day %d)", *v.Phase.DaysSinceStart+1)
	}
	parts = append(parts, "next period: "+digestPart(v.NextPeriod, v.Failed(SourcePeriodForecast)))
	parts = append(parts, "next ovulation: "+digestPart(v.NextOvulation, v.Failed(SourceOvulationForecast)))
	return strings.Join(parts, " · ")
}

func digestPart(p *Prediction, failed bool) string {
	switch {
	case p == nil && failed:
		return "unavailable"
	case p == nil:
		return "unknown"
	case !p.Forecast.HasDate():
		return "not enough data"
	default:
		return strings.ToLower(p.Summary[:1]) + p.Summary[1:]
	}
}
