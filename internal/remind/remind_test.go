package remind

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/model"
	"github.com/saadjs/cycle-cli/internal/session"
)

type fixedSession session.Outcome

func (f fixedSession) Restore(context.Context) session.Outcome { return session.Outcome(f) }

type stubFetcher struct{}

func (stubFetcher) ListPeriods(context.Context) ([]model.PeriodRecord, error) {
	return []model.PeriodRecord{{StartDate: model.MustParseDate("2024-03-01")}}, nil
}

func (stubFetcher) ListOvulations(context.Context) ([]model.OvulationRecord, error) {
	return nil, nil
}

func (stubFetcher) PeriodForecast(context.Context) (model.Forecast, error) {
	d := model.MustParseDate("2024-03-29")
	return model.Forecast{PredictedDate: &d}, nil
}

func (stubFetcher) OvulationForecast(context.Context) (model.Forecast, error) {
	return model.Forecast{}, errors.New(errors.ErrCodeFetchFailed, "down")
}

func (stubFetcher) CycleStats(context.Context) (model.CycleStatistics, error) {
	return model.CycleStatistics{}, nil
}

func fixedNow() time.Time { return time.Date(2024, 3, 24, 8, 0, 0, 0, time.Local) }

func TestRunOnceWritesDigest(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	s := &Service{Session: fixedSession(session.Valid), Fetcher: stubFetcher{}, Out: &out, Now: fixedNow}

	line := s.RunOnce(context.Background())
	assert.Equal(t, "Mar 24, 2024: Luteal phase (cycle day 24) · next period: in 5 days · next ovulation: unavailable", line)
	assert.Equal(t, line+"\n", out.String())
}

func TestRunOnceWithoutSession(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	s := &Service{Session: fixedSession(session.Invalid), Fetcher: stubFetcher{}, Out: &out, Now: fixedNow}

	line := s.RunOnce(context.Background())
	assert.Contains(t, line, "not signed in")
	assert.Contains(t, line, "cycle auth login")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	s := &Service{Session: fixedSession(session.Valid), Fetcher: stubFetcher{}, Out: &bytes.Buffer{}}
	_, err := s.Start(context.Background(), "whenever")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfig, errors.CodeOf(err))
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()

	s := &Service{Session: fixedSession(session.Valid), Fetcher: stubFetcher{}, Out: &bytes.Buffer{}}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "0 8 * * *") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
