// Package scheduler runs the storefront's periodic housekeeping.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionPurger deletes sessions that can no longer be used.
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Scheduler wraps a cron instance with the storefront's jobs registered.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionPurger
	timeout  time.Duration
}

// New registers the hourly session purge.
func New(sessions SessionPurger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.DiscardLogger)),
		sessions: sessions,
		timeout:  time.Minute,
	}
	if _, err := s.cron.AddFunc("@hourly", s.purgeSessions); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and returns a context done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		zap.S().Errorw("session purge failed", "error", err)
		return
	}
	if n > 0 {
		zap.S().Infow("purged sessions", "count", n)
	}
}
