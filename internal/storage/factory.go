// Package storage selects and constructs the fund repository backend.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/common"
	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/storage/badger"
	"github.com/ternarybob/fiiradar/internal/storage/csvfile"
	"github.com/ternarybob/fiiradar/internal/storage/memory"
)

// probeTimeout bounds the health probe against the primary backend.
const probeTimeout = 3 * time.Second

type factoryState int

const (
	stateUntested factoryState = iota
	stateUsingPrimary
	stateUsingFallback
)

// Factory resolves the fund repository lazily: it constructs the primary
// backend, probes it with a bounded-time List call, and on any probe
// failure degrades permanently (for the process lifetime) to the
// sample-seeded in-memory store. The decision is made once, guarded by a
// single lock so concurrent callers never run duplicate probes.
type Factory struct {
	mu         sync.Mutex
	state      factoryState
	repository interfaces.FundRepository
	newPrimary func() (interfaces.FundRepository, error)
	logger     arbor.ILogger
}

// NewFactory creates a factory for the backend named in config.
func NewFactory(config *common.Config, logger arbor.ILogger) *Factory {
	return &Factory{
		newPrimary: func() (interfaces.FundRepository, error) {
			return newPrimaryRepository(config, logger)
		},
		logger: logger,
	}
}

// NewFactoryWithPrimary creates a factory with an injected primary
// constructor. Used by tests and by callers that already hold a backend.
func NewFactoryWithPrimary(newPrimary func() (interfaces.FundRepository, error), logger arbor.ILogger) *Factory {
	return &Factory{
		newPrimary: newPrimary,
		logger:     logger,
	}
}

// Repository returns the resolved repository, probing the primary backend
// on first call and caching the outcome for the process lifetime.
func (f *Factory) Repository() interfaces.FundRepository {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != stateUntested {
		return f.repository
	}

	primary, err := f.newPrimary()
	if err == nil {
		err = f.probe(primary)
	}

	if err != nil {
		f.logger.Warn().
			Err(err).
			Msg("Primary repository unavailable, falling back to in-memory store")
		f.state = stateUsingFallback
		f.repository = memory.NewSampleFundStorage(f.logger)
		return f.repository
	}

	f.state = stateUsingPrimary
	f.repository = primary
	return f.repository
}

// probe issues a bounded-time List call against the candidate backend.
func (f *Factory) probe(repository interfaces.FundRepository) error {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := repository.List(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("repository probe failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("repository probe timed out after %s", probeTimeout)
	}
}

func newPrimaryRepository(config *common.Config, logger arbor.ILogger) (interfaces.FundRepository, error) {
	switch config.Storage.Type {
	case "badger", "":
		db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
		if err != nil {
			return nil, err
		}
		return badger.NewFundStorage(db, logger), nil
	case "csv":
		return csvfile.NewFundStorage(config.Storage.CSV.Path, logger)
	case "memory":
		return memory.NewSampleFundStorage(logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
	}
}
