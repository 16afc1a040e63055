package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/draftea/trading-system/shared/events"
	sharedinfra "github.com/draftea/trading-system/shared/infrastructure"
	"github.com/draftea/trading-system/trading-service/application"
	"github.com/draftea/trading-system/trading-service/domain"
)

// RetryPolicy is how many times a failing event is processed before it is handed back to the queue
type RetryPolicy struct {
	Attempts int
	Interval time.Duration
}

// DefaultRetryPolicy retries three times, five seconds apart
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Interval: 5 * time.Second}

// PurchaseProcessor applies one event to the purchase saga
type PurchaseProcessor interface {
	Execute(ctx context.Context, event *events.Event) (*application.Transition, error)
}

// ReplicaSyncer applies one catalog, inventory or identity event to the store replicas
type ReplicaSyncer interface {
	Execute(ctx context.Context, event *events.Event) error
}

// TradingEventHandlers handles all events consumed by the trading service
type TradingEventHandlers struct {
	processPurchaseEvent PurchaseProcessor
	syncStoreReplica     ReplicaSyncer
	retry                RetryPolicy
	logger               *slog.Logger
}

// NewTradingEventHandlers creates new trading event handlers
func NewTradingEventHandlers(
	processPurchaseEvent PurchaseProcessor,
	syncStoreReplica ReplicaSyncer,
	retry RetryPolicy,
	logger *slog.Logger,
) *TradingEventHandlers {
	if retry.Attempts <= 0 {
		retry.Attempts = DefaultRetryPolicy.Attempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TradingEventHandlers{
		processPurchaseEvent: processPurchaseEvent,
		syncStoreReplica:     syncStoreReplica,
		retry:                retry,
		logger:               logger,
	}
}

// Handle implements the events.EventHandler interface
func (h *TradingEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.Topic {
	case events.PurchaseRequestedTopic,
		events.InventoryItemsGrantedTopic,
		events.GilDebitedTopic,
		events.GrantItemsFaultedTopic,
		events.DebitGilFaultedTopic,
		events.GetPurchaseStateTopic:
		return h.HandlePurchaseEvent(ctx, event)
	case events.CatalogItemCreatedTopic,
		events.CatalogItemUpdatedTopic,
		events.CatalogItemDeletedTopic,
		events.InventoryItemUpdatedTopic,
		events.UserUpdatedTopic:
		return h.HandleReplicaEvent(ctx, event)
	default:
		// Unknown event type, ignore
		return nil
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *TradingEventHandlers) HandlerID() string {
	return "trading-service-event-handler"
}

// HandlePurchaseEvent runs the saga for event under the retry policy. Events that can never
// succeed are logged and acknowledged; anything else that outlives the retries is returned so
// the queue redelivers it.
func (h *TradingEventHandlers) HandlePurchaseEvent(ctx context.Context, event *events.Event) error {
	return h.withRetry(ctx, event, "purchase", func() error {
		_, err := h.processPurchaseEvent.Execute(ctx, event)
		return err
	})
}

// HandleReplicaEvent writes a catalog, inventory or identity event to the store replicas under
// the same retry policy as purchase events
func (h *TradingEventHandlers) HandleReplicaEvent(ctx context.Context, event *events.Event) error {
	return h.withRetry(ctx, event, "replica", func() error {
		return h.syncStoreReplica.Execute(ctx, event)
	})
}

func (h *TradingEventHandlers) withRetry(ctx context.Context, event *events.Event, kind string, apply func() error) error {
	logger := h.logger.With("event_id", event.ID, "topic", event.Topic)

	operation := func() (struct{}, error) {
		err := apply()
		if err == nil {
			return struct{}{}, nil
		}
		if isUnrecoverable(event, err) {
			return struct{}{}, backoff.Permanent(err)
		}
		logger.WarnContext(ctx, "failed to process "+kind+" event", "error", err)
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(h.retry.Interval)),
		backoff.WithMaxTries(uint(h.retry.Attempts)),
	)
	if err == nil {
		return nil
	}

	if isUnrecoverable(event, err) {
		logger.ErrorContext(ctx, "dropping "+kind+" event", "error", err)
		return nil
	}

	return err
}

// isUnrecoverable reports whether redelivering event can never make err go away. A state query
// whose reply topic has no route stays unroutable.
func isUnrecoverable(event *events.Event, err error) bool {
	if event.Topic == events.GetPurchaseStateTopic && errors.Is(err, sharedinfra.ErrNoDestination) {
		return true
	}
	return errors.Is(err, application.ErrUncorrelatable) ||
		errors.Is(err, application.ErrMalformedEvent) ||
		errors.Is(err, application.ErrIllegalTransition) ||
		domain.IsDomainError(err)
}
