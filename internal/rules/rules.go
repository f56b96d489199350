// Package rules implements the investability rule chain applied to fund
// records during analysis.
package rules

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/models"
)

// Thresholds for the rule catalog. Evaluation thresholds are percentages.
var (
	acceptableDevaluation  = decimal.NewFromInt(-15)
	minPriceToBookRatio    = decimal.RequireFromString("0.9")
	maxPriceToBookRatio    = decimal.RequireFromString("1.1")
	minDailyLiquidity      = decimal.NewFromInt(750000)
	minDividendYield       = decimal.RequireFromString("6.0")
	minListingAge          = 365 * 24 * time.Hour
	indeterminateDurations = []string{"indeterminado", "indeterminada"}
)

// Rule is a named stateless predicate over a fund record with a fixed
// human-readable failure message.
type Rule struct {
	Name    string
	Message string
	Check   func(fund *models.Fund) bool
}

// Validator evaluates an ordered rule chain against a fund record.
type Validator struct {
	rules  []Rule
	logger arbor.ILogger
}

// NewValidator builds a validator with the full rule catalog in canonical
// order. Each call returns a fresh instance; rules share no mutable state.
func NewValidator(logger arbor.ILogger) *Validator {
	return &Validator{
		rules:  Catalog(),
		logger: logger,
	}
}

// Validate evaluates rules in order and short-circuits at the first
// failure, logging which rule rejected which ticker. Order only affects
// which failure is reported, not the aggregate outcome.
func (v *Validator) Validate(fund *models.Fund) bool {
	for _, rule := range v.rules {
		if !rule.Check(fund) {
			v.logger.Info().
				Str("ticker", strings.ToUpper(fund.Ticker)).
				Str("rule", rule.Name).
				Msg(rule.Message)
			return false
		}
	}

	return true
}

// Catalog returns the fixed rule set in evaluation order.
func Catalog() []Rule {
	return []Rule{
		{
			Name:    "CurrentMonthEvaluation",
			Message: "Current month evaluation is less than -15%",
			Check: func(fund *models.Fund) bool {
				return fund.EvaluationCurrentMonth.GreaterThanOrEqual(acceptableDevaluation)
			},
		},
		{
			Name:    "Last12MonthEvaluation",
			Message: "Last 12 month evaluation is less than -15%",
			Check: func(fund *models.Fund) bool {
				return fund.Evaluation12M.GreaterThanOrEqual(acceptableDevaluation)
			},
		},
		{
			Name:    "PriceToBookRatio",
			Message: "P/VP is not in: 0.9 <= p_vp <= 1.1",
			Check: func(fund *models.Fund) bool {
				return fund.PriceToBookRatio.GreaterThanOrEqual(minPriceToBookRatio) &&
					fund.PriceToBookRatio.LessThanOrEqual(maxPriceToBookRatio)
			},
		},
		{
			Name:    "ListedOlderThan1Year",
			Message: "Start date is less than 1 year",
			Check: func(fund *models.Fund) bool {
				if fund.ListingStartDate == nil {
					return true
				}
				return !fund.ListingStartDate.After(time.Now().Add(-minListingAge))
			},
		},
		{
			Name:    "IndeterminateDuration",
			Message: "Duration is not indeterminate",
			Check: func(fund *models.Fund) bool {
				duration := strings.ToLower(strings.TrimSpace(fund.Duration))
				for _, accepted := range indeterminateDurations {
					if duration == accepted {
						return true
					}
				}
				return false
			},
		},
		{
			Name:    "MinimumDailyLiquidity",
			Message: "No more than 750000 daily liquidity",
			Check: func(fund *models.Fund) bool {
				if fund.DailyLiquidity == nil {
					return true
				}
				return fund.DailyLiquidity.GreaterThanOrEqual(minDailyLiquidity)
			},
		},
		{
			Name:    "PositiveDividend",
			Message: "Dividend must be positive",
			Check: func(fund *models.Fund) bool {
				return fund.LastDividend.GreaterThan(decimal.Zero)
			},
		},
		{
			Name:    "MinimumDividendYield",
			Message: "DY 12 months must be at least 6.0%",
			Check: func(fund *models.Fund) bool {
				return fund.DividendYield12M.GreaterThanOrEqual(minDividendYield)
			},
		},
	}
}
