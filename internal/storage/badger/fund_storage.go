package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/models"
)

// fundItem is the persisted form of a fund record. Decimals are stored as
// strings to avoid floating-point round-trip loss; the optional listing
// date is an ISO-8601 date string, empty when absent.
type fundItem struct {
	Ticker                 string `badgerhold:"key"`
	PriceToBookRatio       string
	Segment                string
	Duration               string
	Evaluation12M          string
	EvaluationCurrentMonth string
	LastPrice              string
	LastDividend           string
	DividendYield12M       string
	ListingStartDate       string
	DailyLiquidity         string
}

// FundStorage implements interfaces.FundRepository on Badger
type FundStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFundStorage creates a new FundStorage instance
func NewFundStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FundRepository {
	return &FundStorage{
		db:     db,
		logger: logger,
	}
}

// Add inserts a fund keyed by its canonical ticker. Re-adding an existing
// ticker is a no-op returning 0; the stored record is never overwritten.
func (s *FundStorage) Add(ctx context.Context, fund *models.Fund) (int, error) {
	item := toItem(fund)

	err := s.db.Store().Insert(item.Ticker, item)
	if err == badgerhold.ErrKeyExists {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert fund %s: %w", item.Ticker, err)
	}

	s.logger.Debug().
		Str("ticker", item.Ticker).
		Msg("Fund persisted")

	return 1, nil
}

// Get retrieves a fund by ticker (case-insensitive), nil when absent.
func (s *FundStorage) Get(ctx context.Context, ticker string) (*models.Fund, error) {
	var item fundItem
	err := s.db.Store().Get(models.TickerKey(ticker), &item)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund %s: %w", ticker, err)
	}

	return fromItem(&item)
}

// List returns all stored funds in unspecified order.
func (s *FundStorage) List(ctx context.Context) ([]*models.Fund, error) {
	var items []fundItem
	if err := s.db.Store().Find(&items, nil); err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}

	funds := make([]*models.Fund, 0, len(items))
	for i := range items {
		fund, err := fromItem(&items[i])
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("ticker", items[i].Ticker).
				Msg("Skipping corrupt fund record")
			continue
		}
		funds = append(funds, fund)
	}

	return funds, nil
}

func toItem(fund *models.Fund) *fundItem {
	item := &fundItem{
		Ticker:                 fund.Key(),
		PriceToBookRatio:       fund.PriceToBookRatio.String(),
		Segment:                fund.Segment,
		Duration:               fund.Duration,
		Evaluation12M:          fund.Evaluation12M.String(),
		EvaluationCurrentMonth: fund.EvaluationCurrentMonth.String(),
		LastPrice:              fund.LastPrice.String(),
		LastDividend:           fund.LastDividend.String(),
		DividendYield12M:       fund.DividendYield12M.String(),
		DailyLiquidity:         fund.DailyLiquidityOrZero().String(),
	}

	if fund.ListingStartDate != nil {
		item.ListingStartDate = fund.ListingStartDate.Format("2006-01-02")
	}

	return item
}

func fromItem(item *fundItem) (*models.Fund, error) {
	fund := &models.Fund{
		Ticker:   item.Ticker,
		Segment:  item.Segment,
		Duration: item.Duration,
	}

	fields := []struct {
		name  string
		value string
		dest  *decimal.Decimal
	}{
		{"p_vp", item.PriceToBookRatio, &fund.PriceToBookRatio},
		{"last_12_month_evaluation", item.Evaluation12M, &fund.Evaluation12M},
		{"current_month_evaluation", item.EvaluationCurrentMonth, &fund.EvaluationCurrentMonth},
		{"last_price", item.LastPrice, &fund.LastPrice},
		{"last_dividend", item.LastDividend, &fund.LastDividend},
		{"dy_12", item.DividendYield12M, &fund.DividendYield12M},
	}
	for _, field := range fields {
		value, err := decimal.NewFromString(field.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s for %s: %w", field.name, item.Ticker, err)
		}
		*field.dest = value
	}

	if item.DailyLiquidity != "" {
		liquidity, err := decimal.NewFromString(item.DailyLiquidity)
		if err != nil {
			return nil, fmt.Errorf("invalid daily_liquidity for %s: %w", item.Ticker, err)
		}
		fund.DailyLiquidity = &liquidity
	}

	if item.ListingStartDate != "" {
		startDate, err := time.Parse("2006-01-02", item.ListingStartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date for %s: %w", item.Ticker, err)
		}
		fund.ListingStartDate = &startDate
	}

	return fund, nil
}
