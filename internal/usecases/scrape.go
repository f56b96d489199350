// Package usecases contains the scrape, analysis, listing and magic-number
// orchestrators that tie the repository, gateway and rule engine together.
package usecases

import (
	"context"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/models"
)

// ScrapeUseCase resolves tickers to fund records with bounded concurrency:
// a stored record is returned as-is, a missing one is fetched from the
// gateway and persisted. The default bound is 1 (sequential) because the
// upstream site rate-limits aggressively.
type ScrapeUseCase struct {
	repository interfaces.FundRepository
	gateway    interfaces.FundGateway
	semaphore  chan struct{}
	logger     arbor.ILogger
}

// NewScrapeUseCase creates a scrape orchestrator. maxConcurrentRequests
// values below 1 collapse to sequential resolution.
func NewScrapeUseCase(repository interfaces.FundRepository, gateway interfaces.FundGateway, maxConcurrentRequests int, logger arbor.ILogger) *ScrapeUseCase {
	if maxConcurrentRequests < 1 {
		maxConcurrentRequests = 1
	}

	return &ScrapeUseCase{
		repository: repository,
		gateway:    gateway,
		semaphore:  make(chan struct{}, maxConcurrentRequests),
		logger:     logger,
	}
}

// Execute resolves the given tickers (or the full discovered catalog when
// nil) to fund records. The result order matches the input ticker order,
// not completion order; tickers that fail to resolve contribute nothing.
// The gateway session is always closed before returning, including when
// discovery fails.
func (u *ScrapeUseCase) Execute(ctx context.Context, tickers []string) ([]*models.Fund, error) {
	defer u.gateway.Close()

	if tickers == nil {
		discovered, err := u.gateway.ListTickers(ctx)
		if err != nil {
			return nil, err
		}
		tickers = discovered
	}

	// Collect positionally so the result matches input order regardless
	// of which ticker finishes first.
	resolved := make([]*models.Fund, len(tickers))

	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(index int, ticker string) {
			defer wg.Done()

			u.semaphore <- struct{}{}
			defer func() { <-u.semaphore }()

			resolved[index] = u.getOrCreate(ctx, ticker)
		}(i, ticker)
	}
	wg.Wait()

	funds := make([]*models.Fund, 0, len(resolved))
	for _, fund := range resolved {
		if fund != nil {
			funds = append(funds, fund)
		}
	}

	u.logger.Info().
		Int("requested", len(tickers)).
		Int("resolved", len(funds)).
		Msg("Scrape pass completed")

	return funds, nil
}

// getOrCreate is the per-ticker unit of work: store check, then gateway
// fetch plus persist, strictly in that order. A stored record is trusted
// as-is and never re-fetched.
func (u *ScrapeUseCase) getOrCreate(ctx context.Context, ticker string) *models.Fund {
	fund, err := u.repository.Get(ctx, ticker)
	if err != nil {
		u.logger.Error().
			Err(err).
			Str("ticker", strings.ToUpper(ticker)).
			Msg("Repository lookup failed")
		return nil
	}
	if fund != nil {
		return fund
	}

	fund = u.gateway.GetFund(ctx, ticker)
	if fund == nil {
		return nil
	}

	if _, err := u.repository.Add(ctx, fund); err != nil {
		u.logger.Error().
			Err(err).
			Str("ticker", strings.ToUpper(ticker)).
			Msg("Failed to persist scraped fund")
		return nil
	}

	return fund
}
