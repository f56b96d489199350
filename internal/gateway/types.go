// Package gateway provides a client for the Status Invest fund site.
// It discovers the FII ticker universe from the funds-navigation endpoint
// and scrapes per-fund financial attributes from detail pages.
package gateway

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the Status Invest site.
	DefaultBaseURL = "https://statusinvest.com.br"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default request pacing (requests per second).
	// The upstream rate-limits aggressively, so the default is conservative.
	DefaultRateLimit = 2

	// listingPageSize is the page size requested from the catalog endpoint,
	// large enough to return the full fund universe in one call.
	listingPageSize = 99999
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// APIError represents a non-2xx response from the upstream site.
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status invest error: status %d (endpoint: %s)", e.StatusCode, e.Endpoint)
}
