// Package remind prints a daily cycle digest on a cron schedule.
package remind

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/saadjs/cycle-cli/internal/dashboard"
	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/log"
	"github.com/saadjs/cycle-cli/internal/session"
)

// Restorer re-establishes the session from durable storage.
type Restorer interface {
	Restore(ctx context.Context) session.Outcome
}

type Service struct {
	Session Restorer
	Fetcher dashboard.Fetcher
	Out     io.Writer
	Logger  *log.Logger
	Now     func() time.Time

	mu sync.Mutex
}

// RunOnce restores the session, loads the dashboard and writes one digest
// line. An invalid session produces a line saying so rather than an error.
func (s *Service) RunOnce(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := log.OrDiscard(s.Logger)
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today := now()

	var line string
	if s.Session.Restore(ctx) != session.Valid {
		line = fmt.Sprintf("%s: not signed in. Run 'cycle auth login' to resume reminders.", today.Format("Jan 02, 2006"))
		logger.Warn("reminder skipped", "reason", "session invalid")
	} else {
		line = dashboard.Load(ctx, s.Fetcher, today, logger).Digest()
	}
	if _, err := fmt.Fprintln(s.Out, line); err != nil {
		logger.WithError(err).Warn("write reminder")
	}
	return line
}

// Start schedules RunOnce on a standard five-field cron schedule.
func (s *Service) Start(ctx context.Context, schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.RunOnce(ctx) }); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("invalid reminder schedule %q", schedule), err)
	}
	c.Start()
	log.OrDiscard(s.Logger).Info("reminders scheduled", "schedule", schedule)
	return c, nil
}

// Run schedules reminders and blocks until ctx is done, then waits for a
// running digest to finish.
func (s *Service) Run(ctx context.Context, schedule string) error {
	c, err := s.Start(ctx, schedule)
	if err != nil {
		return err
	}
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
