// Package models defines the FII domain entities.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fund represents a Brazilian real-estate investment fund (FII) and the
// financial attributes scraped from its detail page.
//
// Tickers are case-insensitive; Key() gives the canonical storage form.
// Evaluation percentages may be negative, every other decimal field is a
// non-negative magnitude. A fund is never mutated by analysis, only
// accepted or rejected.
type Fund struct {
	Ticker                 string           `json:"ticker"`
	PriceToBookRatio       decimal.Decimal  `json:"p_vp"`
	Segment                string           `json:"segment"`
	Duration               string           `json:"duration"`
	Evaluation12M          decimal.Decimal  `json:"last_12_month_evaluation"`
	EvaluationCurrentMonth decimal.Decimal  `json:"current_month_evaluation"`
	LastPrice              decimal.Decimal  `json:"last_price"`
	LastDividend           decimal.Decimal  `json:"last_dividend"`
	DividendYield12M       decimal.Decimal  `json:"dy_12"`
	ListingStartDate       *time.Time       `json:"start_date,omitempty"`
	DailyLiquidity         *decimal.Decimal `json:"daily_liquidity,omitempty"`
}

// Key returns the canonical lookup key for the fund ticker.
func (f *Fund) Key() string {
	return TickerKey(f.Ticker)
}

// TickerKey normalizes a ticker for case-insensitive lookup.
func TickerKey(ticker string) string {
	return strings.ToLower(strings.TrimSpace(ticker))
}

// DailyLiquidityOrZero returns the daily liquidity, defaulting to zero
// when the field was absent or garbled at scrape time.
func (f *Fund) DailyLiquidityOrZero() decimal.Decimal {
	if f.DailyLiquidity == nil {
		return decimal.Zero
	}
	return *f.DailyLiquidity
}
