package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/models"
	"github.com/ternarybob/fiiradar/internal/storage/memory"
)

type failingRepository struct{}

func (failingRepository) Add(ctx context.Context, fund *models.Fund) (int, error) {
	return 0, errors.New("backend down")
}

func (failingRepository) Get(ctx context.Context, ticker string) (*models.Fund, error) {
	return nil, errors.New("backend down")
}

func (failingRepository) List(ctx context.Context) ([]*models.Fund, error) {
	return nil, errors.New("backend down")
}

func TestRepository_UsesPrimaryWhenHealthy(t *testing.T) {
	primary := memory.NewFundStorage(arbor.NewLogger())
	factory := NewFactoryWithPrimary(func() (interfaces.FundRepository, error) {
		return primary, nil
	}, arbor.NewLogger())

	repository := factory.Repository()
	assert.Same(t, primary, repository)
}

func TestRepository_FallsBackWhenConstructorFails(t *testing.T) {
	factory := NewFactoryWithPrimary(func() (interfaces.FundRepository, error) {
		return nil, errors.New("cannot open")
	}, arbor.NewLogger())

	repository := factory.Repository()
	require.NotNil(t, repository)

	// Fallback is the sample-seeded in-memory store.
	funds, err := repository.List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, funds)
}

func TestRepository_FallsBackWhenProbeFails(t *testing.T) {
	factory := NewFactoryWithPrimary(func() (interfaces.FundRepository, error) {
		return failingRepository{}, nil
	}, arbor.NewLogger())

	repository := factory.Repository()
	require.NotNil(t, repository)

	_, err := repository.List(context.Background())
	assert.NoError(t, err)
}

func TestRepository_DecisionIsCached(t *testing.T) {
	calls := 0
	factory := NewFactoryWithPrimary(func() (interfaces.FundRepository, error) {
		calls++
		return nil, errors.New("cannot open")
	}, arbor.NewLogger())

	first := factory.Repository()
	second := factory.Repository()

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}
