package application

import (
	"errors"
	"fmt"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
)

// ErrUncorrelatable is returned when an event cannot be routed to any purchase
var ErrUncorrelatable = errors.New("event cannot be correlated to a purchase")

// CorrelationRouter maps inbound events to the purchase they belong to
type CorrelationRouter struct{}

// NewCorrelationRouter creates a new CorrelationRouter
func NewCorrelationRouter() *CorrelationRouter {
	return &CorrelationRouter{}
}

// Resolve returns the correlation id of event. Faults carry it inside the original command,
// never on the envelope.
func (r *CorrelationRouter) Resolve(event *events.Event) (models.ID, error) {
	var raw models.ID

	switch event.Topic {
	case events.PurchaseRequestedTopic:
		var data events.PurchaseRequested
		if err := event.UnmarshalPayload(&data); err != nil {
			return "", uncorrelatable(event, err)
		}
		raw = data.CorrelationID
	case events.GetPurchaseStateTopic:
		var data events.GetPurchaseState
		if err := event.UnmarshalPayload(&data); err != nil {
			return "", uncorrelatable(event, err)
		}
		raw = data.CorrelationID
	case events.InventoryItemsGrantedTopic:
		var data events.InventoryItemsGranted
		if err := event.UnmarshalPayload(&data); err != nil {
			return "", uncorrelatable(event, err)
		}
		raw = data.CorrelationID
	case events.GilDebitedTopic:
		var data events.GilDebited
		if err := event.UnmarshalPayload(&data); err != nil {
			return "", uncorrelatable(event, err)
		}
		raw = data.CorrelationID
	case events.GrantItemsFaultedTopic:
		var data events.GrantItemsFault
		if err := event.UnmarshalPayload(&data); err != nil {
			return "", uncorrelatable(event, err)
		}
		raw = data.OriginalCommand.CorrelationID
	case events.DebitGilFaultedTopic:
		var data events.DebitGilFault
		if err := event.UnmarshalPayload(&data); err != nil {
			return "", uncorrelatable(event, err)
		}
		raw = data.OriginalCommand.CorrelationID
	default:
		return "", fmt.Errorf("%w: unsupported topic %q", ErrUncorrelatable, event.Topic)
	}

	if raw.IsZero() {
		return "", fmt.Errorf("%w: %s has no correlation id", ErrUncorrelatable, event.Topic)
	}

	id, err := models.NewID(raw.String())
	if err != nil {
		return "", fmt.Errorf("%w: %s has invalid correlation id %q", ErrUncorrelatable, event.Topic, raw)
	}

	return id, nil
}

func uncorrelatable(event *events.Event, err error) error {
	return fmt.Errorf("%w: malformed %s payload: %v", ErrUncorrelatable, event.Topic, err)
}
