package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/ternarybob/fiiradar/internal/common"
	"github.com/ternarybob/fiiradar/internal/models"
)

// Structural positions of each field on the fund detail page, translated
// from the page layout. Required fields abort the record when missing or
// unparseable; soft fields degrade to nil.
const (
	selPriceToBookRatio = "body > main > div:nth-of-type(2) > div:nth-of-type(5) > div > div:nth-of-type(2) > div > div:nth-of-type(1) > strong"
	selSegment          = "body > main > div:nth-of-type(3) > div > div > div:nth-of-type(2) > div > div:nth-of-type(6) > div > div > strong"
	selStartDate        = "body > main > div:nth-of-type(3) > div > div > div:nth-of-type(2) > div > div:nth-of-type(3) > div > div > strong"
	selEvaluation12M    = "body > main > div:nth-of-type(2) > div:nth-of-type(1) > div:nth-of-type(5) > div > div:nth-of-type(1) > strong"
	selEvaluationMonth  = "body > main > div:nth-of-type(2) > div:nth-of-type(1) > div:nth-of-type(5) > div > div:nth-of-type(2) > div > span:nth-of-type(2) > b"
	selLastPrice        = "body > main > div:nth-of-type(2) > div:nth-of-type(1) > div:nth-of-type(1) > div > div:nth-of-type(1) > strong"
	selLastDividend     = "body > main > div:nth-of-type(2) > div:nth-of-type(7) > div:nth-of-type(2) > div > div:nth-of-type(1) > strong"
	selDuration         = "body > main > div:nth-of-type(3) > div > div > div:nth-of-type(2) > div > div:nth-of-type(4) > div > div > div > strong"
	selDividendYield12M = "body > main > div:nth-of-type(2) > div:nth-of-type(1) > div:nth-of-type(4) > div > div:nth-of-type(1) > strong"
	selDailyLiquidity   = "body > main > div:nth-of-type(2) > div:nth-of-type(6) > div > div > div:nth-of-type(3) > div > div > div > strong"
)

// Client scrapes fund data from Status Invest.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// NewClient creates a new Status Invest gateway client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:  common.GetLogger(),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListTickers fetches the full fund catalog and extracts a ticker from the
// trailing path segment of each entry's url field. Transport failures
// (non-2xx, connection errors) propagate to the caller; discovery is a
// pre-condition the orchestrator is allowed to see fail loudly.
func (c *Client) ListTickers(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("%s/fii/fundsnavigation?size=%d", c.baseURL, listingPageSize)

	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var tickers []string
	gjson.ParseBytes(body).ForEach(func(_, entry gjson.Result) bool {
		fundURL := entry.Get("url").String()
		if fundURL == "" {
			return true
		}
		segments := strings.Split(fundURL, "/")
		tickers = append(tickers, segments[len(segments)-1])
		return true
	})

	c.logger.Info().
		Int("count", len(tickers)).
		Msg("Fund catalog discovered")

	return tickers, nil
}

// GetFund scrapes one fund's detail page and builds a fund record. Any
// failure is logged and absorbed to nil: GetFund runs in a tight
// per-ticker loop and must never abort the batch. A partial record is
// never returned.
func (c *Client) GetFund(ctx context.Context, ticker string) *models.Fund {
	key := models.TickerKey(ticker)
	pageURL := fmt.Sprintf("%s/fundos-imobiliarios/%s", c.baseURL, key)

	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("url", pageURL).
			Msg("Fund page fetch failed")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("ticker", strings.ToUpper(ticker)).
			Msg("Fund page parse failed")
		return nil
	}

	fund, err := c.extractFund(doc, ticker)
	if err != nil {
		c.logger.Info().
			Err(err).
			Str("ticker", strings.ToUpper(ticker)).
			Msg("Fund page did not convert")
		return nil
	}

	c.logger.Info().
		Str("ticker", strings.ToUpper(ticker)).
		Msg("Fund converted")

	return fund
}

// Close releases the underlying network session. Must be called exactly
// once per client after use; that is the caller's responsibility.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// extractFund locates the structural positions of each field and converts
// them. Required fields return an error on a selector miss or a failed
// decimal conversion; start date and daily liquidity use the soft
// converters so garbled values degrade to nil.
func (c *Client) extractFund(doc *goquery.Document, ticker string) (*models.Fund, error) {
	priceToBook, err := c.requiredDecimal(doc, selPriceToBookRatio, "p_vp")
	if err != nil {
		return nil, err
	}
	evaluation12M, err := c.requiredDecimal(doc, selEvaluation12M, "last_12_month_evaluation")
	if err != nil {
		return nil, err
	}
	evaluationMonth, err := c.requiredDecimal(doc, selEvaluationMonth, "current_month_evaluation")
	if err != nil {
		return nil, err
	}
	lastPrice, err := c.requiredDecimal(doc, selLastPrice, "last_price")
	if err != nil {
		return nil, err
	}
	lastDividend, err := c.requiredDecimal(doc, selLastDividend, "last_dividend")
	if err != nil {
		return nil, err
	}
	dividendYield, err := c.requiredDecimal(doc, selDividendYield12M, "dy_12")
	if err != nil {
		return nil, err
	}

	segment, ok := textAt(doc, selSegment)
	if !ok {
		return nil, fmt.Errorf("segment not found on page")
	}
	duration, ok := textAt(doc, selDuration)
	if !ok {
		return nil, fmt.Errorf("duration not found on page")
	}

	fund := &models.Fund{
		Ticker:                 ticker,
		PriceToBookRatio:       priceToBook,
		Segment:                strings.ToLower(segment),
		Duration:               strings.ToLower(duration),
		Evaluation12M:          evaluation12M,
		EvaluationCurrentMonth: evaluationMonth,
		LastPrice:              lastPrice,
		LastDividend:           lastDividend,
		DividendYield12M:       dividendYield,
	}

	// Optional fields: a miss or a garbled value is not fatal.
	if text, ok := textAt(doc, selStartDate); ok {
		fund.ListingStartDate = common.ToDateOrNil(text)
	}
	if text, ok := textAt(doc, selDailyLiquidity); ok {
		fund.DailyLiquidity = common.ToDecimalOrNil(text)
	}

	return fund, nil
}

// requiredDecimal reads a required field's text node and converts it,
// failing the whole record on a miss or conversion error.
func (c *Client) requiredDecimal(doc *goquery.Document, selector, field string) (decimal.Decimal, error) {
	text, ok := textAt(doc, selector)
	if !ok {
		return decimal.Zero, fmt.Errorf("%s not found on page", field)
	}

	value, err := common.ToDecimal(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}

	return value, nil
}

// textAt returns the trimmed text of the first node matching the selector.
func textAt(doc *goquery.Document, selector string) (string, bool) {
	selection := doc.Find(selector).First()
	if selection.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(selection.Text()), true
}

// fetch performs a rate-limited GET and returns the response body.
func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().
		Str("url", endpoint).
		Msg("Status Invest request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
