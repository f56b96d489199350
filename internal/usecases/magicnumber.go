package usecases

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/models"
)

// DefaultInvestedValue is the invested amount assumed when none is given.
const DefaultInvestedValue = 10000

// MagicNumber is the payback-period heuristic for one fund: how many
// quotas one distribution cycle pays for, plus what a fixed invested
// amount buys and yields.
type MagicNumber struct {
	Ticker                   string          `json:"ticker"`
	MagicNumber              int64           `json:"magic_number"`
	QuotasForInvestedValue   int64           `json:"quotas_for_invested_value"`
	DividendForInvestedValue decimal.Decimal `json:"dividend_for_invested_value"`
	InvestedValue            int             `json:"invested_value"`
	Fund                     *models.Fund    `json:"fii"`
}

// MagicNumberUseCase computes magic numbers over the stored fund universe.
type MagicNumberUseCase struct {
	repository interfaces.FundRepository
}

// NewMagicNumberUseCase creates a magic-number usecase.
func NewMagicNumberUseCase(repository interfaces.FundRepository) *MagicNumberUseCase {
	return &MagicNumberUseCase{repository: repository}
}

// Execute computes the magic number for every stored fund. investedValue
// defaults to 10000 when zero or negative. Funds without a positive price
// and dividend are skipped; their ratios are undefined.
func (u *MagicNumberUseCase) Execute(ctx context.Context, investedValue int) ([]MagicNumber, error) {
	if investedValue <= 0 {
		investedValue = DefaultInvestedValue
	}

	funds, err := u.repository.List(ctx)
	if err != nil {
		return nil, err
	}

	invested := decimal.NewFromInt(int64(investedValue))

	magicNumbers := make([]MagicNumber, 0, len(funds))
	for _, fund := range funds {
		if !fund.LastPrice.IsPositive() || !fund.LastDividend.IsPositive() {
			continue
		}

		quotas := invested.Div(fund.LastPrice).IntPart()
		magicNumbers = append(magicNumbers, MagicNumber{
			Ticker:                   fund.Ticker,
			MagicNumber:              fund.LastPrice.Div(fund.LastDividend).IntPart(),
			QuotasForInvestedValue:   quotas,
			DividendForInvestedValue: fund.LastDividend.Mul(decimal.NewFromInt(quotas)),
			InvestedValue:            investedValue,
			Fund:                     fund,
		})
	}

	return magicNumbers, nil
}
