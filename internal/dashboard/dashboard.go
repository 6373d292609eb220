// Package dashboard gathers everything the home view shows. The five reads
// run concurrently and fail independently: a failed source leaves its part
// of the view empty and records a note, nothing more.
package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saadjs/cycle-cli/internal/cycle"
	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/log"
	"github.com/saadjs/cycle-cli/internal/model"
)

type Source string

const (
	SourcePeriods           Source = "periods"
	SourceOvulations        Source = "ovulations"
	SourcePeriodForecast    Source = "period_forecast"
	SourceOvulationForecast Source = "ovulation_forecast"
	SourceStats             Source = "stats"
)

// RecentLimit is how many periods and ovulations the view lists.
const RecentLimit = 5

// Fetcher is the read side of the API client.
type Fetcher interface {
	ListPeriods(ctx context.Context) ([]model.PeriodRecord, error)
	ListOvulations(ctx context.Context) ([]model.OvulationRecord, error)
	PeriodForecast(ctx context.Context) (model.Forecast, error)
	OvulationForecast(ctx context.Context) (model.Forecast, error)
	CycleStats(ctx context.Context) (model.CycleStatistics, error)
}

// Prediction is a forecast plus its countdown from today. Countdown is nil
// when the service had no date to offer.
type Prediction struct {
	Forecast  model.Forecast   `json:"forecast" yaml:"forecast"`
	Countdown *cycle.Countdown `json:"countdown,omitempty" yaml:"countdown,omitempty"`
	Summary   string           `json:"summary" yaml:"summary"`
}

type View struct {
	Today         model.Date              `json:"today" yaml:"today"`
	User          *model.User             `json:"user,omitempty" yaml:"user,omitempty"`
	Phase         cycle.Status            `json:"phase" yaml:"phase"`
	Periods       []model.PeriodRecord    `json:"periods" yaml:"periods"`
	Ovulations    []model.OvulationRecord `json:"ovulations" yaml:"ovulations"`
	NextPeriod    *Prediction             `json:"next_period,omitempty" yaml:"next_period,omitempty"`
	NextOvulation *Prediction             `json:"next_ovulation,omitempty" yaml:"next_ovulation,omitempty"`
	Stats         model.CycleStatistics   `json:"stats" yaml:"stats"`
	Summary       model.StatisticsDisplay `json:"stats_display" yaml:"stats_display"`
	Failures      map[Source]string       `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Failed reports whether src could not be loaded.
func (v View) Failed(src Source) bool {
	_, ok := v.Failures[src]
	return ok
}

// Load issues every read concurrently and assembles the view. It never
// returns an error; per-source failures are in View.Failures.
func Load(ctx context.Context, f Fetcher, today time.Time, logger *log.Logger) View {
	logger = log.OrDiscard(logger)

	v := View{
		Today:      model.NewDate(today),
		Periods:    []model.PeriodRecord{},
		Ovulations: []model.OvulationRecord{},
		Failures:   map[Source]string{},
	}
	var (
		mu                sync.Mutex
		periodForecast    *model.Forecast
		ovulationForecast *model.Forecast
	)
	fail := func(src Source, err error) {
		logger.WithError(err).Warn("dashboard source failed", "source", string(src))
		mu.Lock()
		v.Failures[src] = errors.MessageOf(err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		periods, err := f.ListPeriods(ctx)
		if err != nil {
			fail(SourcePeriods, err)
			return nil
		}
		v.Periods = periods
		return nil
	})
	g.Go(func() error {
		ovulations, err := f.ListOvulations(ctx)
		if err != nil {
			fail(SourceOvulations, err)
			return nil
		}
		v.Ovulations = ovulations
		return nil
	})
	g.Go(func() error {
		fc, err := f.PeriodForecast(ctx)
		if err != nil {
			fail(SourcePeriodForecast, err)
			return nil
		}
		periodForecast = &fc
		return nil
	})
	g.Go(func() error {
		fc, err := f.OvulationForecast(ctx)
		if err != nil {
			fail(SourceOvulationForecast, err)
			return nil
		}
		ovulationForecast = &fc
		return nil
	})
	g.Go(func() error {
		stats, err := f.CycleStats(ctx)
		if err != nil {
			fail(SourceStats, err)
			return nil
		}
		v.Stats = stats
		return nil
	})
	_ = g.Wait()

	if v.Periods == nil {
		v.Periods = []model.PeriodRecord{}
	}
	if v.Ovulations == nil {
		v.Ovulations = []model.OvulationRecord{}
	}
	v.Phase = cycle.CurrentPhase(cycle.Latest(v.Periods), today)
	v.NextPeriod = predict(periodForecast, today, cycle.KindPeriod)
	v.NextOvulation = predict(ovulationForecast, today, cycle.KindOvulation)
	v.Summary = v.Stats.Display()
	return v
}

func predict(fc *model.Forecast, today time.Time, kind cycle.Kind) *Prediction {
	if fc == nil {
		return nil
	}
	p := &Prediction{Forecast: *fc}
	if !fc.HasDate() {
		if kind == cycle.KindOvulation {
			p.Summary = "Add period data for ovulation predictions"
		} else {
			p.Summary = "Add more period data for predictions"
		}
		return p
	}
	cd := cycle.CountdownTo(*fc.PredictedDate, today)
	p.Countdown = &cd
	p.Summary = cd.Describe(kind)
	return p
}
