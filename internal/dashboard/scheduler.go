package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs a Refresher on a fixed interval.
type Scheduler struct {
	cron      *cron.Cron
	refresher *Refresher
	interval  time.Duration
	ctx       context.Context
}

// NewScheduler registers the refresh job. Each run gets a deadline of one
// interval. Runs are not serialized: a slow cycle may overlap the next one.
func NewScheduler(ctx context.Context, r *Refresher, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	s := &Scheduler{
		cron:      cron.New(),
		refresher: r,
		interval:  interval,
		ctx:       ctx,
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.RunNow); err != nil {
		return nil, fmt.Errorf("register refresh task: %w", err)
	}
	return s, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Dur("interval", s.interval).Msg("scheduler started")
}

// Stop stops the scheduler and waits for running refreshes.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes one refresh immediately (initial load / manual trigger).
func (s *Scheduler) RunNow() {
	ctx, cancel := context.WithTimeout(s.ctx, s.interval)
	defer cancel()
	s.refresher.Refresh(ctx)
}
