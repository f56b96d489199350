package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/usecases"
)

// FundHandler serves the fund read API.
type FundHandler struct {
	repository  interfaces.FundRepository
	listUse     *usecases.ListUseCase
	magicUse    *usecases.MagicNumberUseCase
	newAnalyser func() *usecases.AnalyseUseCase
	logger      arbor.ILogger
}

// NewFundHandler creates a fund handler. newAnalyser builds a fresh
// analysis usecase per request because a pass owns its gateway session.
func NewFundHandler(repository interfaces.FundRepository, newAnalyser func() *usecases.AnalyseUseCase, logger arbor.ILogger) *FundHandler {
	return &FundHandler{
		repository:  repository,
		listUse:     usecases.NewListUseCase(repository),
		magicUse:    usecases.NewMagicNumberUseCase(repository),
		newAnalyser: newAnalyser,
		logger:      logger,
	}
}

// ListFundsHandler handles GET /api/funds - lists all stored funds
func (h *FundHandler) ListFundsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	funds, err := h.listUse.Execute(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list funds")
		WriteError(w, http.StatusInternalServerError, "Failed to list funds")
		return
	}

	h.logger.Debug().Int("count", len(funds)).Msg("Listed funds")
	WriteJSON(w, http.StatusOK, funds)
}

// GetFundHandler handles GET /api/funds/{ticker} - retrieves one fund
func (h *FundHandler) GetFundHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker := strings.TrimPrefix(r.URL.Path, "/api/funds/")
	if ticker == "" || strings.Contains(ticker, "/") {
		WriteError(w, http.StatusBadRequest, "Invalid ticker")
		return
	}

	fund, err := h.repository.Get(r.Context(), ticker)
	if err != nil {
		h.logger.Error().Err(err).Str("ticker", ticker).Msg("Failed to get fund")
		WriteError(w, http.StatusInternalServerError, "Failed to get fund")
		return
	}
	if fund == nil {
		WriteError(w, http.StatusNotFound, "Fund not found")
		return
	}

	WriteJSON(w, http.StatusOK, fund)
}

// MagicNumbersHandler handles GET /api/funds/magic-numbers?invested_value=N
func (h *FundHandler) MagicNumbersHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	investedValue := 0
	if raw := r.URL.Query().Get("invested_value"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invested_value must be an integer")
			return
		}
		investedValue = parsed
	}

	magicNumbers, err := h.magicUse.Execute(r.Context(), investedValue)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to compute magic numbers")
		WriteError(w, http.StatusInternalServerError, "Failed to compute magic numbers")
		return
	}

	WriteJSON(w, http.StatusOK, magicNumbers)
}

// AnalysisHandler handles GET /api/analysis?min_dy=N&bypass_rules=true.
// It analyses the stored universe; tickers are never re-fetched here.
func (h *FundHandler) AnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	opts := usecases.AnalyseOptions{}

	if raw := r.URL.Query().Get("min_dy"); raw != "" {
		minDY, err := decimal.NewFromString(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "min_dy must be a number")
			return
		}
		opts.MinDividendYield = minDY
	}
	if raw := r.URL.Query().Get("bypass_rules"); raw != "" {
		opts.BypassRules = raw == "true" || raw == "1"
	}

	funds, err := h.repository.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load funds for analysis")
		WriteError(w, http.StatusInternalServerError, "Failed to analyse funds")
		return
	}

	tickers := make([]string, 0, len(funds))
	for _, fund := range funds {
		tickers = append(tickers, fund.Ticker)
	}
	opts.Tickers = tickers

	accepted, err := h.newAnalyser().Execute(r.Context(), opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Analysis failed")
		WriteError(w, http.StatusInternalServerError, "Failed to analyse funds")
		return
	}

	WriteJSON(w, http.StatusOK, accepted)
}
