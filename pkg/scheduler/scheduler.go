// Package scheduler triggers catalogue cache rebuilds: once at process
// start and then daily at a fixed wall-clock time. It is deliberately
// decoupled from the caches; it only knows the forced-refresh entry
// point they share with the admin endpoints.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultSpec rebuilds every day at 03:00 local time, when storefront
// traffic is lowest.
const DefaultSpec = "0 3 * * *"

// refreshTimeout bounds one full rebuild. A hung upstream stalls only
// that rebuild attempt; readers keep serving the prior snapshot.
const refreshTimeout = 10 * time.Minute

// Refresher is the forced-refresh entry point the scheduler drives.
type Refresher interface {
	ForceRefresh(ctx context.Context) error
}

// Scheduler owns the cron loop.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	logger    zerolog.Logger
}

// New creates a scheduler running the given cron spec.
func New(refresher Refresher, spec string) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSpec
	}

	s := &Scheduler{
		cron:      cron.New(),
		refresher: refresher,
		logger:    log.With().Str("component", "scheduler").Logger(),
	}

	if _, err := s.cron.AddFunc(spec, s.runScheduled); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start performs the one-shot startup rebuild synchronously, then
// starts the recurring schedule. A failed startup rebuild is returned
// so the caller can decide whether to accept traffic cold.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info().Msg("Running startup cache rebuild")
	if err := s.refresh(ctx); err != nil {
		s.cron.Start()
		return fmt.Errorf("startup rebuild: %w", err)
	}

	s.cron.Start()
	s.logger.Info().Msg("Daily refresh schedule started")
	return nil
}

// Stop halts the schedule. A rebuild already in flight runs to
// completion.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Refresh schedule stopped")
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.refresh(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled cache rebuild failed")
	}
}

func (s *Scheduler) refresh(ctx context.Context) error {
	start := time.Now()
	err := s.refresher.ForceRefresh(ctx)
	if err == nil {
		s.logger.Info().Dur("duration", time.Since(start)).Msg("Cache rebuild complete")
	}
	return err
}
