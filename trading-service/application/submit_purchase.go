package application

import (
	"context"
	"fmt"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
	"github.com/pkg/errors"
)

// ErrInvalidPurchase marks purchase requests rejected before anything was published
var ErrInvalidPurchase = errors.New("invalid purchase request")

// SubmitPurchaseCommand represents the command to start a purchase
type SubmitPurchaseCommand struct {
	UserID        string `json:"-"`
	ItemID        string `json:"item_id"`
	Quantity      int    `json:"quantity"`
	IdempotencyID string `json:"idempotency_id"`
}

// SubmitPurchaseResponse represents the response after submitting a purchase
type SubmitPurchaseResponse struct {
	IdempotencyID string `json:"idempotency_id"`
}

// SubmitPurchase publishes a PurchaseRequested event for the saga to pick up
type SubmitPurchase struct {
	eventPublisher events.Publisher
}

// NewSubmitPurchase creates a new SubmitPurchase use case
func NewSubmitPurchase(eventPublisher events.Publisher) *SubmitPurchase {
	return &SubmitPurchase{eventPublisher: eventPublisher}
}

// Execute validates and publishes the purchase request
func (uc *SubmitPurchase) Execute(ctx context.Context, cmd *SubmitPurchaseCommand) (*SubmitPurchaseResponse, error) {
	if err := uc.validateCommand(cmd); err != nil {
		return nil, invalid(err, "invalid command")
	}

	userID, err := models.NewID(cmd.UserID)
	if err != nil {
		return nil, invalid(err, "invalid user ID")
	}

	itemID, err := models.NewID(cmd.ItemID)
	if err != nil {
		return nil, invalid(err, "invalid item ID")
	}

	correlationID, err := models.NewID(cmd.IdempotencyID)
	if err != nil {
		return nil, invalid(err, "invalid idempotency ID")
	}

	event := events.NewEvent(correlationID, events.PurchaseRequestedTopic, events.PurchaseRequested{
		UserID:        userID,
		ItemID:        itemID,
		Quantity:      cmd.Quantity,
		CorrelationID: correlationID,
	}).WithCorrelationID(correlationID)

	if err := uc.eventPublisher.Publish(ctx, event); err != nil {
		return nil, errors.Wrap(err, "failed to publish purchase request")
	}

	return &SubmitPurchaseResponse{IdempotencyID: correlationID.String()}, nil
}

func (uc *SubmitPurchase) validateCommand(cmd *SubmitPurchaseCommand) error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}

	if cmd.ItemID == "" {
		return errors.New("item ID is required")
	}

	if cmd.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	if cmd.IdempotencyID == "" {
		return errors.New("idempotency ID is required")
	}

	return nil
}

func invalid(err error, message string) error {
	return fmt.Errorf("%w: %v", ErrInvalidPurchase, errors.Wrap(err, message))
}
