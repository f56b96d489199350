package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/models"
	"github.com/ternarybob/fiiradar/internal/storage/memory"
	"github.com/ternarybob/fiiradar/internal/usecases"
)

type stubGateway struct{}

func (stubGateway) ListTickers(ctx context.Context) ([]string, error) { return nil, nil }
func (stubGateway) GetFund(ctx context.Context, ticker string) *models.Fund {
	return nil
}
func (stubGateway) Close() {}

func storedFund(ticker string, dividendYield string) *models.Fund {
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

func newTestHandler(t *testing.T, funds ...*models.Fund) (*FundHandler, *memory.FundStorage) {
	t.Helper()

	repository := memory.NewFundStorage(arbor.NewLogger())
	for _, fund := range funds {
		_, err := repository.Add(context.Background(), fund)
		require.NoError(t, err)
	}

	newAnalyser := func() *usecases.AnalyseUseCase {
		return usecases.NewAnalyseUseCase(repository, stubGateway{}, arbor.NewLogger())
	}

	return NewFundHandler(repository, newAnalyser, arbor.NewLogger()), repository
}

func TestListFundsHandler(t *testing.T) {
	handler, _ := newTestHandler(t, storedFund("HGLG11", "8"), storedFund("XPLG11", "7"))

	rec := httptest.NewRecorder()
	handler.ListFundsHandler(rec, httptest.NewRequest("GET", "/api/funds", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var funds []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &funds))
	assert.Len(t, funds, 2)
}

func TestListFundsHandler_MethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ListFundsHandler(rec, httptest.NewRequest("POST", "/api/funds", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetFundHandler(t *testing.T) {
	handler, _ := newTestHandler(t, storedFund("HGLG11", "8"))

	rec := httptest.NewRecorder()
	handler.GetFundHandler(rec, httptest.NewRequest("GET", "/api/funds/hglg11", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "0.95", payload["p_vp"])
}

func TestGetFundHandler_NotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.GetFundHandler(rec, httptest.NewRequest("GET", "/api/funds/nope11", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFundHandler_InvalidTicker(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.GetFundHandler(rec, httptest.NewRequest("GET", "/api/funds/a/b", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMagicNumbersHandler(t *testing.T) {
	fund := storedFund("MAGI11", "8")
	fund.LastPrice = decimal.NewFromInt(100)
	fund.LastDividend = decimal.NewFromInt(10)
	handler, _ := newTestHandler(t, fund)

	rec := httptest.NewRecorder()
	handler.MagicNumbersHandler(rec, httptest.NewRequest("GET", "/api/funds/magic-numbers?invested_value=10000", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload, 1)
	assert.Equal(t, float64(10), payload[0]["magic_number"])
	assert.Equal(t, float64(100), payload[0]["quotas_for_invested_value"])
}

func TestMagicNumbersHandler_InvalidInvestedValue(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.MagicNumbersHandler(rec, httptest.NewRequest("GET", "/api/funds/magic-numbers?invested_value=lots", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisHandler(t *testing.T) {
	handler, _ := newTestHandler(t, storedFund("GOOD11", "8"), storedFund("LOWY11", "4"))

	rec := httptest.NewRecorder()
	handler.AnalysisHandler(rec, httptest.NewRequest("GET", "/api/analysis", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var funds []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &funds))
	require.Len(t, funds, 1)
	assert.Equal(t, "GOOD11", funds[0]["ticker"])
}

func TestAnalysisHandler_InvalidMinDY(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.AnalysisHandler(rec, httptest.NewRequest("GET", "/api/analysis?min_dy=high", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusHandler(t *testing.T) {
	repository := memory.NewFundStorage(arbor.NewLogger())
	_, err := repository.Add(context.Background(), storedFund("HGLG11", "8"))
	require.NoError(t, err)

	handler := NewStatusHandler(repository, stoppedScheduler{}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.Status(rec, httptest.NewRequest("GET", "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, float64(1), payload["funds"])
	assert.Equal(t, false, payload["scheduler_running"])
}

type stoppedScheduler struct{}

func (stoppedScheduler) IsRunning() bool { return false }
