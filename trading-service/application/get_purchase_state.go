package application

import (
	"context"
	"errors"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/trading-service/domain"
	pkgerrors "github.com/pkg/errors"
)

var ErrPurchaseNotFound = errors.New("purchase not found")

// GetPurchaseState reads the committed snapshot of a purchase
type GetPurchaseState struct {
	repository domain.PurchaseRepository
}

// NewGetPurchaseState creates a new GetPurchaseState use case
func NewGetPurchaseState(repository domain.PurchaseRepository) *GetPurchaseState {
	return &GetPurchaseState{repository: repository}
}

// Execute returns the snapshot for idempotencyID
func (uc *GetPurchaseState) Execute(ctx context.Context, idempotencyID string) (*events.PurchaseSnapshot, error) {
	correlationID, err := models.NewID(idempotencyID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid idempotency ID")
	}

	state, err := uc.repository.FindByCorrelationID(ctx, correlationID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to find purchase")
	}

	if state == nil {
		return nil, ErrPurchaseNotFound
	}

	snapshot := state.Snapshot()
	return &snapshot, nil
}
