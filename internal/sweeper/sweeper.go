// Package sweeper wires up the cron job that periodically removes postings
// long past their end date.
package sweeper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"gigboard/feed-service/internal/store"
)

// expiredGrace is how long an expired posting is kept before the sweep
// removes it. Within the grace window owners can still see and repost it.
const expiredGrace = 30 * 24 * time.Hour

// Sweeper wraps robfig/cron and manages the expired-job sweep loop.
type Sweeper struct {
	cron *cron.Cron
	jobs *store.Jobs
	spec string // cron spec, e.g. "@every 24h"
}

// New creates a Sweeper that fires every intervalHours hours.
func New(jobs *store.Jobs, intervalHours int) *Sweeper {
	return &Sweeper{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		jobs: jobs,
		spec: fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so a long-stopped instance catches up without waiting for the
// first tick.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[sweeper] Cron started — spec: %s", s.spec)

	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	log.Println("[sweeper] Cron stopped")
}

func (s *Sweeper) runSweep(ctx context.Context) {
	n, err := s.jobs.SweepExpired(ctx, expiredGrace)
	if err != nil {
		log.Printf("[sweeper] SweepExpired error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[sweeper] Removed %d expired posting(s)", n)
	}
}
