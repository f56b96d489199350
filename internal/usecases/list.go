package usecases

import (
	"context"

	"github.com/ternarybob/fiiradar/internal/interfaces"
	"github.com/ternarybob/fiiradar/internal/models"
)

// ListUseCase exposes the stored fund universe to the serving layer.
type ListUseCase struct {
	repository interfaces.FundRepository
}

// NewListUseCase creates a listing usecase.
func NewListUseCase(repository interfaces.FundRepository) *ListUseCase {
	return &ListUseCase{repository: repository}
}

// Execute returns all stored funds.
func (u *ListUseCase) Execute(ctx context.Context) ([]*models.Fund, error) {
	return u.repository.List(ctx)
}
