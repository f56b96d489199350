// Package interfaces declares the contracts shared between the storage,
// usecase and scheduler layers.
package interfaces

import (
	"context"

	"github.com/ternarybob/fiiradar/internal/models"
)

// FundRepository is the persistence contract for fund records.
//
// All implementations are keyed by the canonical (lower-cased) ticker.
// Add is an upsert-if-absent: re-adding an existing ticker is a no-op
// returning 0, so calling Add twice with the same ticker never produces
// two records. Get returns nil (not an error) for an absent ticker.
// List order is not meaningful; consumers must not depend on it.
type FundRepository interface {
	// Add persists a fund and returns 1 if inserted, 0 if a record with
	// that ticker already exists.
	Add(ctx context.Context, fund *models.Fund) (int, error)

	// Get returns the fund for a ticker (case-insensitive), or nil if absent.
	Get(ctx context.Context, ticker string) (*models.Fund, error)

	// List returns all stored funds in unspecified order.
	List(ctx context.Context) ([]*models.Fund, error)
}

// FundGateway fetches the ticker universe and per-ticker fund data from
// the upstream site.
type FundGateway interface {
	// ListTickers discovers the full ticker catalog. Transport failures
	// propagate to the caller; there is no internal retry.
	ListTickers(ctx context.Context) ([]string, error)

	// GetFund scrapes one fund's detail page. Any failure (transport,
	// structural query miss, required conversion) is absorbed and logged,
	// returning nil so a single fund never aborts a batch. A partial
	// record is never returned.
	GetFund(ctx context.Context, ticker string) *models.Fund

	// Close releases the underlying network session. Callers must close
	// the gateway exactly once after use.
	Close()
}
