// Package csvfile provides a flat-file fund repository. The whole file is
// loaded on construction and rewritten on every insert, which is O(n) per
// write and acceptable at the fund-universe scale of hundreds of rows.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/models"
)

var header = []string{
	"ticker",
	"dy_12",
	"last_dividend",
	"last_price",
	"p_vp",
	"segment",
	"duration",
	"last_12_month_evaluation",
	"current_month_evaluation",
	"start_date",
	"daily_liquidity",
}

// FundStorage implements interfaces.FundRepository on a CSV file.
type FundStorage struct {
	mu     sync.Mutex
	path   string
	funds  map[string]*models.Fund
	logger arbor.ILogger
}

// NewFundStorage opens (or prepares to create) the CSV database at path,
// loading all existing rows into memory.
func NewFundStorage(path string, logger arbor.ILogger) (*FundStorage, error) {
	s := &FundStorage{
		path:   path,
		funds:  make(map[string]*models.Fund),
		logger: logger,
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Add inserts a fund and rewrites the file, returning 0 without overwrite
// when the ticker already exists.
func (s *FundStorage) Add(ctx context.Context, fund *models.Fund) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fund.Key()
	if _, exists := s.funds[key]; exists {
		return 0, nil
	}

	s.funds[key] = fund
	if err := s.save(); err != nil {
		delete(s.funds, key)
		return 0, err
	}

	return 1, nil
}

// Get returns the fund for a ticker (case-insensitive), nil when absent.
func (s *FundStorage) Get(ctx context.Context, ticker string) (*models.Fund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.funds[models.TickerKey(ticker)], nil
}

// List returns all stored funds in unspecified order.
func (s *FundStorage) List(ctx context.Context) ([]*models.Fund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	funds := make([]*models.Fund, 0, len(s.funds))
	for _, fund := range s.funds {
		funds = append(funds, fund)
	}
	return funds, nil
}

func (s *FundStorage) load() error {
	file, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open csv database: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read csv database: %w", err)
	}

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		fund, err := rowToFund(row)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int("row", i).
				Msg("Skipping malformed csv row")
			continue
		}
		s.funds[fund.Key()] = fund
	}

	s.logger.Debug().
		Int("count", len(s.funds)).
		Str("path", s.path).
		Msg("CSV repository loaded")

	return nil
}

// save rewrites the whole file from the in-memory map.
func (s *FundStorage) save() error {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create csv database: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, fund := range s.funds {
		if err := writer.Write(fundToRow(fund)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func fundToRow(fund *models.Fund) []string {
	startDate := ""
	if fund.ListingStartDate != nil {
		startDate = fund.ListingStartDate.Format("2006-01-02")
	}

	return []string{
		fund.Ticker,
		fund.DividendYield12M.String(),
		fund.LastDividend.String(),
		fund.LastPrice.String(),
		fund.PriceToBookRatio.String(),
		fund.Segment,
		fund.Duration,
		fund.Evaluation12M.String(),
		fund.EvaluationCurrentMonth.String(),
		startDate,
		fund.DailyLiquidityOrZero().String(),
	}
}

func rowToFund(row []string) (*models.Fund, error) {
	if len(row) != len(header) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(header), len(row))
	}

	fund := &models.Fund{
		Ticker:   row[0],
		Segment:  row[5],
		Duration: row[6],
	}

	decimals := []struct {
		value string
		dest  *decimal.Decimal
	}{
		{row[1], &fund.DividendYield12M},
		{row[2], &fund.LastDividend},
		{row[3], &fund.LastPrice},
		{row[4], &fund.PriceToBookRatio},
		{row[7], &fund.Evaluation12M},
		{row[8], &fund.EvaluationCurrentMonth},
	}
	for _, field := range decimals {
		if field.value == "" {
			continue
		}
		value, err := decimal.NewFromString(field.value)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", field.value, err)
		}
		*field.dest = value
	}

	if row[9] != "" {
		startDate, err := time.Parse("2006-01-02", row[9])
		if err != nil {
			return nil, fmt.Errorf("invalid start_date %q: %w", row[9], err)
		}
		fund.ListingStartDate = &startDate
	}

	if row[10] != "" {
		liquidity, err := decimal.NewFromString(row[10])
		if err != nil {
			return nil, fmt.Errorf("invalid daily_liquidity %q: %w", row[10], err)
		}
		fund.DailyLiquidity = &liquidity
	}

	return fund, nil
}

var _ interfaces.FundRepository = (*FundStorage)(nil)
