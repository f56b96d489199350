package usecases

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/models"
	"github.com/ternarybob/fiiradar/internal/rules"
)

// AnalyseOptions control one analysis pass.
type AnalyseOptions struct {
	// Tickers limits the pass to an explicit set; nil means the full
	// discovered catalog.
	Tickers []string

	// MinDividendYield is the hard DY floor in percent (default 6).
	MinDividendYield decimal.Decimal

	// BypassRules suppresses the rule chain. The hard numeric guards
	// (DY floor, positive dividend, positive price) always apply.
	BypassRules bool

	// FromGateway reads records live from the gateway instead of the
	// repository.
	FromGateway bool
}

// AnalyseUseCase filters the fund universe down to the investable subset:
// a fund passes when the rule chain accepts it (unless bypassed) and it
// clears the hard dividend-yield, dividend and price guards.
type AnalyseUseCase struct {
	repository interfaces.FundRepository
	gateway    interfaces.FundGateway
	logger     arbor.ILogger
}

// NewAnalyseUseCase creates an analysis orchestrator.
func NewAnalyseUseCase(repository interfaces.FundRepository, gateway interfaces.FundGateway, logger arbor.ILogger) *AnalyseUseCase {
	return &AnalyseUseCase{
		repository: repository,
		gateway:    gateway,
		logger:     logger,
	}
}

// Execute returns the funds that pass validation. The gateway session is
// always closed at the end, regardless of outcome.
func (u *AnalyseUseCase) Execute(ctx context.Context, opts AnalyseOptions) ([]*models.Fund, error) {
	defer u.gateway.Close()

	if opts.MinDividendYield.IsZero() {
		opts.MinDividendYield = decimal.NewFromInt(6)
	}

	tickers := opts.Tickers
	if tickers == nil {
		discovered, err := u.gateway.ListTickers(ctx)
		if err != nil {
			return nil, err
		}
		tickers = discovered
	}

	var funds []*models.Fund
	for _, ticker := range tickers {
		fund := u.get(ctx, ticker, opts.FromGateway)
		if fund == nil {
			continue
		}
		if u.accept(fund, opts) {
			funds = append(funds, fund)
		}
	}

	u.logger.Info().
		Int("candidates", len(tickers)).
		Int("accepted", len(funds)).
		Msg("Analysis pass completed")

	return funds, nil
}

func (u *AnalyseUseCase) get(ctx context.Context, ticker string, fromGateway bool) *models.Fund {
	if fromGateway {
		return u.gateway.GetFund(ctx, ticker)
	}

	fund, err := u.repository.Get(ctx, ticker)
	if err != nil {
		u.logger.Error().
			Err(err).
			Str("ticker", ticker).
			Msg("Repository lookup failed during analysis")
		return nil
	}
	return fund
}

// accept applies the rule chain and the hard guards. A fresh validator is
// built per fund; rules share no mutable state across calls.
func (u *AnalyseUseCase) accept(fund *models.Fund, opts AnalyseOptions) bool {
	if !opts.BypassRules && !rules.NewValidator(u.logger).Validate(fund) {
		return false
	}

	return fund.DividendYield12M.GreaterThanOrEqual(opts.MinDividendYield) &&
		fund.LastDividend.GreaterThan(decimal.Zero) &&
		fund.LastPrice.GreaterThan(decimal.Zero)
}
