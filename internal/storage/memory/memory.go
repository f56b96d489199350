// Package memory provides an in-memory fund repository seeded with sample
// data, used for demos, tests and as the degraded-mode fallback when the
// managed backend is unreachable.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/models"
)

// FundStorage is a mutex-guarded in-memory fund repository. Tickers are
// resolved once per scrape pass, but different tickers' tasks call Add
// concurrently, so the map needs internal exclusion.
type FundStorage struct {
	mu     sync.RWMutex
	funds  map[string]*models.Fund
	logger arbor.ILogger
}

// NewFundStorage creates an empty in-memory repository.
func NewFundStorage(logger arbor.ILogger) *FundStorage {
	return &FundStorage{
		funds:  make(map[string]*models.Fund),
		logger: logger,
	}
}

// NewSampleFundStorage creates an in-memory repository pre-seeded with
// sample funds.
func NewSampleFundStorage(logger arbor.ILogger) *FundStorage {
	s := NewFundStorage(logger)
	for _, fund := range sampleFunds() {
		s.funds[fund.Key()] = fund
	}
	logger.Info().
		Int("count", len(s.funds)).
		Msg("In-memory repository seeded with sample funds")
	return s
}

// Add inserts a fund, returning 0 without overwrite when the ticker
// already exists.
func (s *FundStorage) Add(ctx context.Context, fund *models.Fund) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fund.Key()
	if _, exists := s.funds[key]; exists {
		return 0, nil
	}

	s.funds[key] = fund
	return 1, nil
}

// Get returns the fund for a ticker (case-insensitive), nil when absent.
func (s *FundStorage) Get(ctx context.Context, ticker string) (*models.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.funds[models.TickerKey(ticker)], nil
}

// List returns all stored funds in unspecified order.
func (s *FundStorage) List(ctx context.Context) ([]*models.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	funds := make([]*models.Fund, 0, len(s.funds))
	for _, fund := range s.funds {
		funds = append(funds, fund)
	}
	return funds, nil
}

var _ interfaces.FundRepository = (*FundStorage)(nil)

func sampleFunds() []*models.Fund {
	liquidity := func(value string) *decimal.Decimal {
		d := decimal.RequireFromString(value)
		return &d
	}

	return []*models.Fund{
		{
			Ticker:                 "BCRI11",
			PriceToBookRatio:       decimal.RequireFromString("0.85"),
			Segment:                "lajes corporativas",
			Duration:               "indeterminado",
			Evaluation12M:          decimal.RequireFromString("8.5"),
			EvaluationCurrentMonth: decimal.RequireFromString("1.2"),
			LastPrice:              decimal.RequireFromString("95.50"),
			LastDividend:           decimal.RequireFromString("0.89"),
			DividendYield12M:       decimal.RequireFromString("10.5"),
			DailyLiquidity:         liquidity("2500000"),
		},
		{
			Ticker:                 "HGRE11",
			PriceToBookRatio:       decimal.RequireFromString("0.92"),
			Segment:                "híbrido",
			Duration:               "indeterminado",
			Evaluation12M:          decimal.RequireFromString("12.8"),
			EvaluationCurrentMonth: decimal.RequireFromString("2.1"),
			LastPrice:              decimal.RequireFromString("125.80"),
			LastDividend:           decimal.RequireFromString("1.03"),
			DividendYield12M:       decimal.RequireFromString("9.8"),
			DailyLiquidity:         liquidity("5800000"),
		},
		{
			Ticker:                 "XPLG11",
			PriceToBookRatio:       decimal.RequireFromString("0.78"),
			Segment:                "logística",
			Duration:               "indeterminado",
			Evaluation12M:          decimal.RequireFromString("15.2"),
			EvaluationCurrentMonth: decimal.RequireFromString("0.8"),
			LastPrice:              decimal.RequireFromString("98.20"),
			LastDividend:           decimal.RequireFromString("0.95"),
			DividendYield12M:       decimal.RequireFromString("11.2"),
			DailyLiquidity:         liquidity("4200000"),
		},
		{
			Ticker:                 "MXRF11",
			PriceToBookRatio:       decimal.RequireFromString("1.02"),
			Segment:                "papel",
			Duration:               "indeterminado",
			Evaluation12M:          decimal.RequireFromString("6.4"),
			EvaluationCurrentMonth: decimal.RequireFromString("0.5"),
			LastPrice:              decimal.RequireFromString("10.45"),
			LastDividend:           decimal.RequireFromString("0.10"),
			DividendYield12M:       decimal.RequireFromString("12.1"),
			DailyLiquidity:         liquidity("9800000"),
		},
	}
}
