// Package scheduler runs the one-shot bootstrap seed and the recurring
// fund refresh job.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/models"
)

// DefaultRefreshSchedule refreshes the fund universe every 8 hours.
const DefaultRefreshSchedule = "@every 8h"

// PopularTickers is the fixed fallback list used when dynamic catalog
// discovery is unavailable.
var PopularTickers = []string{
	"BCRI11", "BPFF11", "CPTS11", "HFOF11", "KISU11",
	"MFII11", "MXRF11", "RBFF11", "RECR11", "VISC11",
	"VINO11", "VILG11", "HGRU11", "HGLG11", "XPML11",
	"KNRI11", "RBRR11", "IRDM11", "ALZR11", "BBFI11",
}

// ScrapeExecutor is the slice of the scrape usecase the scheduler needs.
type ScrapeExecutor interface {
	Execute(ctx context.Context, tickers []string) ([]*models.Fund, error)
}

// Service seeds the store at startup and keeps it fresh on a fixed
// interval. Each run builds a fresh scrape usecase via newScrape because
// a scrape pass owns (and closes) its gateway session.
type Service struct {
	repository     interfaces.FundRepository
	newScrape      func() ScrapeExecutor
	bootstrapDelay time.Duration
	cron           *cron.Cron
	entryID        cron.EntryID
	logger         arbor.ILogger

	mu           sync.Mutex // Protects isProcessing
	isProcessing bool
	running      bool
}

// NewService creates a scheduler service.
func NewService(repository interfaces.FundRepository, newScrape func() ScrapeExecutor, bootstrapDelay time.Duration, logger arbor.ILogger) *Service {
	return &Service{
		repository:     repository,
		newScrape:      newScrape,
		bootstrapDelay: bootstrapDelay,
		cron:           cron.New(),
		logger:         logger,
	}
}

// Bootstrap runs the one-time startup seed: after a grace delay for
// dependent services, it scrapes the full catalog, falling back to the
// popular-ticker list when discovery fails. A store that already holds
// records is left untouched. Bootstrap never panics out or returns an
// error into the host process.
func (s *Service) Bootstrap(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in bootstrap")
		}
	}()

	s.logger.Info().Msg("Starting initial database seed")

	existing, err := s.repository.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Initial seed failed: repository unavailable")
		return
	}
	if len(existing) > 0 {
		s.logger.Info().
			Int("count", len(existing)).
			Msg("Database already seeded, skipping initial seed")
		return
	}

	// Grace delay so dependent services finish starting first.
	select {
	case <-time.After(s.bootstrapDelay):
	case <-ctx.Done():
		s.logger.Warn().Msg("Initial seed cancelled before start")
		return
	}

	funds, err := s.scrapeWithFallback(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Initial seed failed")
		return
	}

	s.logger.Info().
		Int("count", len(funds)).
		Msg("Initial seed completed")
}

// Start arms the recurring refresh job. Calling Start while already
// running is a no-op; the job is never registered twice.
func (s *Service) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}

	entryID, err := s.cron.AddFunc(schedule, s.runRefresh)
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Msg("Fund refresh scheduler started")

	return nil
}

// Stop disarms the refresh trigger. An in-flight run is allowed to
// finish. Repeated Stop calls are safe.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Remove(s.entryID)
	s.cron.Stop()
	s.running = false

	s.logger.Info().Msg("Fund refresh scheduler stopped")
}

// IsRunning returns true if the scheduler is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// runRefresh executes one refresh cycle. A cycle that overlaps a still
// pending previous run is dropped rather than queued. All failures are
// caught here; the job never raises into the scheduler.
func (s *Service) runRefresh() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in scheduled refresh")
		}
	}()

	s.mu.Lock()
	if s.isProcessing {
		s.logger.Debug().Msg("Previous refresh still in flight, skipping this cycle")
		s.mu.Unlock()
		return
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
	}()

	ctx := context.Background()
	s.logger.Info().Msg("Starting scheduled fund refresh")

	existing, err := s.repository.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled refresh failed: repository unavailable")
		return
	}

	if len(existing) == 0 {
		funds, err := s.scrapeWithFallback(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("Scheduled refresh failed")
			return
		}
		s.logger.Info().
			Int("count", len(funds)).
			Msg("Scheduled refresh seeded empty database")
		return
	}

	// Full discovery both updates existing funds and finds new ones.
	funds, err := s.newScrape().Execute(ctx, nil)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int("existing", len(existing)).
			Msg("Catalog discovery failed, refreshing known tickers only")

		tickers := make([]string, 0, len(existing))
		for _, fund := range existing {
			tickers = append(tickers, fund.Ticker)
		}

		funds, err = s.newScrape().Execute(ctx, tickers)
		if err != nil {
			s.logger.Error().Err(err).Msg("Scheduled refresh failed on known tickers")
			return
		}
	}

	s.logger.Info().
		Int("count", len(funds)).
		Msg("Scheduled refresh completed")
}

// scrapeWithFallback attempts full catalog discovery and degrades to the
// fixed popular-ticker list when the discovery endpoint is unreachable.
func (s *Service) scrapeWithFallback(ctx context.Context) ([]*models.Fund, error) {
	funds, err := s.newScrape().Execute(ctx, nil)
	if err == nil {
		return funds, nil
	}

	s.logger.Warn().
		Err(err).
		Int("fallback_tickers", len(PopularTickers)).
		Msg("Catalog discovery failed, using popular ticker fallback")

	return s.newScrape().Execute(ctx, PopularTickers)
}
