package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/models"
	"github.com/ternarybob/fiiradar/internal/storage/memory"
)

// fakeGateway is a hand-rolled gateway double with call counting.
type fakeGateway struct {
	mu          sync.Mutex
	tickers     []string
	listErr     error
	funds       map[string]*models.Fund
	getCalls    []string
	closeCalled int
}

func (g *fakeGateway) ListTickers(ctx context.Context) ([]string, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.tickers, nil
}

func (g *fakeGateway) GetFund(ctx context.Context, ticker string) *models.Fund {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getCalls = append(g.getCalls, ticker)
	return g.funds[models.TickerKey(ticker)]
}

func (g *fakeGateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closeCalled++
}

func scrapedFund(ticker string, dividendYield string) *models.Fund {
	startDate := time.Date(2012, time.December, 31, 0, 0, 0, 0, time.UTC)
	liquidity := decimal.NewFromInt(800000)
	return &models.Fund{
		Ticker:                 ticker,
		PriceToBookRatio:       decimal.RequireFromString("0.95"),
		Segment:                "logística",
		Duration:               "indeterminado",
		Evaluation12M:          decimal.RequireFromString("5"),
		EvaluationCurrentMonth: decimal.RequireFromString("1"),
		LastPrice:              decimal.RequireFromString("100"),
		LastDividend:           decimal.RequireFromString("1"),
		DividendYield12M:       decimal.RequireFromString(dividendYield),
		ListingStartDate:       &startDate,
		DailyLiquidity:         &liquidity,
	}
}

func TestScrape_FetchesAndPersistsMissingFund(t *testing.T) {
	repository := memory.NewFundStorage(arbor.NewLogger())
	gateway := &fakeGateway{
		funds: map[string]*models.Fund{"test11": scrapedFund("TEST11", "8")},
	}
	useCase := NewScrapeUseCase(repository, gateway, 1, arbor.NewLogger())

	funds, err := useCase.Execute(context.Background(), []string{"TEST11"})
	require.NoError(t, err)
	require.Len(t, funds, 1)
	assert.Equal(t, []string{"TEST11"}, gateway.getCalls)
	assert.Equal(t, 1, gateway.closeCalled)

	stored, err := repository.Get(context.Background(), "TEST11")
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestScrape_StoredFundIsNotRefetched(t *testing.T) {
	repository := memory.NewFundStorage(arbor.NewLogger())
	_, err := repository.Add(context.Background(), scrapedFund("TEST11", "8"))
	require.NoError(t, err)

	gateway := &fakeGateway{}
	useCase := NewScrapeUseCase(repository, gateway, 1, arbor.NewLogger())

	funds, err := useCase.Execute(context.Background(), []string{"TEST11"})
	require.NoError(t, err)
	require.Len(t, funds, 1)
	assert.Empty(t, gateway.getCalls)
}

func TestScrape_NilTickersDiscoversCatalog(t *testing.T) {
	repository := memory.NewFundStorage(arbor.NewLogger())
	gateway := &fakeGateway{
		tickers: []string{"aaaa11", "bbbb11"},
		funds: map[string]*models.Fund{
			"aaaa11": scrapedFund("aaaa11", "8"),
			"bbbb11": scrapedFund("bbbb11", "7"),
		},
	}
	useCase := NewScrapeUseCase(repository, gateway, 2, arbor.NewLogger())

	funds, err := useCase.Execute(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, funds, 2)

	// Result order follows the catalog order, not completion order.
	assert.Equal(t, "aaaa11", funds[0].Ticker)
	assert.Equal(t, "bbbb11", funds[1].Ticker)
}

func TestScrape_DiscoveryFailurePropagatesAndCloses(t *testing.T) {
	repository := memory.NewFundStorage(arbor.NewLogger())
	gateway := &fakeGateway{listErr: errors.New("upstream down")}
	useCase := NewScrapeUseCase(repository, gateway, 1, arbor.NewLogger())

	_, err := useCase.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, gateway.closeCalled)
}

func TestScrape_UnresolvableTickerContributesNothing(t *testing.T) {
	repository := memory.NewFundStorage(arbor.NewLogger())
	gateway := &fakeGateway{
		funds: map[string]*models.Fund{"good11": scrapedFund("GOOD11", "8")},
	}
	useCase := NewScrapeUseCase(repository, gateway, 1, arbor.NewLogger())

	funds, err := useCase.Execute(context.Background(), []string{"BAD11", "GOOD11"})
	require.NoError(t, err)
	require.Len(t, funds, 1)
	assert.Equal(t, "GOOD11", funds[0].Ticker)
}
