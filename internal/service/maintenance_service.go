package service

import (
	"context"
	"sync"
	"time"

	"github.com/klm-wiki-api/internal/cache"
	"github.com/klm-wiki-api/internal/config"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// jobTimeout bounds a single scheduled run
const jobTimeout = 5 * time.Minute

// maintenanceService runs the approvals purge and cache sweep on a cron schedule
type maintenanceService struct {
	cfg       config.MaintenanceConfig
	approvals ApprovalService
	cache     cache.Store
	cron      *cron.Cron
	log       zerolog.Logger
	running   bool
	mu        sync.Mutex
}

func newMaintenanceService(cfg config.MaintenanceConfig, approvals ApprovalService, store cache.Store, log zerolog.Logger) *maintenanceService {
	return &maintenanceService{
		cfg:       cfg,
		approvals: approvals,
		cache:     store,
		log:       log.With().Str("service", "maintenance").Logger(),
	}
}

// Start registers the jobs and starts the scheduler. It is a no-op when
// maintenance is disabled or already running.
func (s *maintenanceService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || !s.cfg.Enabled {
		return nil
	}

	c := cron.New(cron.WithChain(cron.Recover(cronLogger{s.log})))

	if _, err := c.AddFunc(s.cfg.ApprovalsSchedule, s.purgeApprovals); err != nil {
		return errors.Wrapf(err, "invalid approvals schedule %q", s.cfg.ApprovalsSchedule)
	}
	if purger, ok := s.cache.(cache.Purger); ok {
		if _, err := c.AddFunc(s.cfg.CachePurgeSchedule, func() { s.purgeCache(purger) }); err != nil {
			return errors.Wrapf(err, "invalid cache purge schedule %q", s.cfg.CachePurgeSchedule)
		}
	}

	c.Start()
	s.cron = c
	s.running = true

	s.log.Info().
		Str("approvals_schedule", s.cfg.ApprovalsSchedule).
		Int("jobs", len(c.Entries())).
		Msg("Maintenance scheduler started")
	return nil
}

// Stop waits for running jobs to finish or ctx to expire
func (s *maintenanceService) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("Maintenance jobs still running at shutdown")
	}
	s.running = false
	s.log.Info().Msg("Maintenance scheduler stopped")
}

func (s *maintenanceService) purgeApprovals() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.approvals.PurgePreviousMonth(ctx); err != nil {
		s.log.Error().Err(err).Msg("Scheduled approvals purge failed")
	}
}

func (s *maintenanceService) purgeCache(purger cache.Purger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := purger.PurgeExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Cache purge failed")
		return
	}
	s.log.Debug().Int64("purged", n).Msg("Expired cache entries purged")
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
