package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/shared/telemetry"
	"github.com/draftea/trading-system/trading-service/domain"
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultMaxRedrives = 5

// ErrRedrivesExhausted is returned when every redrive of an event lost the version race
var ErrRedrivesExhausted = errors.New("concurrency conflict persisted after redrives")

// OutcomeObserver is told about every decided transition, after it was committed
type OutcomeObserver interface {
	Observe(ctx context.Context, transition *Transition)
}

// ProcessPurchaseEvent drives one inbound event through the purchase saga:
// correlate, load, decide, commit and release.
type ProcessPurchaseEvent struct {
	router      *CorrelationRouter
	repository  domain.PurchaseRepository
	machine     *PurchaseStateMachine
	outbox      *Outbox
	publisher   events.Publisher
	observers   []OutcomeObserver
	clock       models.Clock
	maxRedrives int
	logger      *slog.Logger
	locks       *purchaseLocks
}

// ProcessPurchaseEventOption configures ProcessPurchaseEvent
type ProcessPurchaseEventOption func(*ProcessPurchaseEvent)

// WithMaxRedrives bounds how many times an event is redriven after a version conflict
func WithMaxRedrives(n int) ProcessPurchaseEventOption {
	return func(uc *ProcessPurchaseEvent) {
		if n >= 0 {
			uc.maxRedrives = n
		}
	}
}

// WithClock replaces the clock used to stamp transitions
func WithClock(clock models.Clock) ProcessPurchaseEventOption {
	return func(uc *ProcessPurchaseEvent) {
		uc.clock = clock
	}
}

// WithObservers registers outcome observers
func WithObservers(observers ...OutcomeObserver) ProcessPurchaseEventOption {
	return func(uc *ProcessPurchaseEvent) {
		uc.observers = append(uc.observers, observers...)
	}
}

// WithProcessLogger sets the logger
func WithProcessLogger(logger *slog.Logger) ProcessPurchaseEventOption {
	return func(uc *ProcessPurchaseEvent) {
		uc.logger = logger
	}
}

// NewProcessPurchaseEvent creates a new ProcessPurchaseEvent use case.
// publisher is used for query replies; commands go through the outbox.
func NewProcessPurchaseEvent(
	router *CorrelationRouter,
	repository domain.PurchaseRepository,
	machine *PurchaseStateMachine,
	outbox *Outbox,
	publisher events.Publisher,
	opts ...ProcessPurchaseEventOption,
) *ProcessPurchaseEvent {
	uc := &ProcessPurchaseEvent{
		router:      router,
		repository:  repository,
		machine:     machine,
		outbox:      outbox,
		publisher:   publisher,
		clock:       models.UTCNow,
		maxRedrives: DefaultMaxRedrives,
		logger:      slog.Default(),
		locks:       newPurchaseLocks(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute applies event to the purchase it correlates to and returns the committed transition.
// Events for the same purchase are applied one at a time within the process. Version conflicts
// are redriven against a fresh load; ErrUncorrelatable and ErrMalformedEvent mean the event can
// never be applied.
func (uc *ProcessPurchaseEvent) Execute(ctx context.Context, event *events.Event) (*Transition, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProcessPurchaseEvent")
	defer span.End()
	span.SetAttributes(attribute.String("topic", event.Topic.String()))

	correlationID, err := uc.router.Resolve(event)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("correlation_id", correlationID.String()))

	logger := uc.logger.With("correlation_id", correlationID, "topic", event.Topic)

	unlock := uc.locks.Lock(correlationID)
	defer unlock()

	for attempt := 0; attempt <= uc.maxRedrives; attempt++ {
		instance, err := uc.repository.FindByCorrelationID(ctx, correlationID)
		if err != nil {
			span.RecordError(err)
			return nil, pkgerrors.Wrap(err, "failed to load purchase state")
		}

		expectedVersion := 0
		if instance != nil {
			expectedVersion = instance.Version
		}

		transition, err := uc.machine.Decide(ctx, uc.clock(), instance, event)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		switch {
		case transition.Outcome == OutcomeQueried:
			if err := uc.reply(ctx, correlationID, event, instance); err != nil {
				return nil, err
			}
		case transition.Outcome == OutcomeIgnored:
			logger.DebugContext(ctx, "event ignored", "state", transition.From)
		case transition.Outcome == OutcomeResent:
			logger.InfoContext(ctx, "releasing pending commands again",
				"state", transition.From,
				"version", transition.Instance.Version,
				"commands", len(transition.Commands),
			)
			if err := uc.outbox.Release(ctx, transition.Instance, transition.Commands); err != nil {
				span.RecordError(err)
				return nil, err
			}
		default:
			err = uc.outbox.Commit(ctx, transition.Instance, expectedVersion, transition.Commands, transition.Notify)
			if errors.Is(err, domain.ErrConcurrencyConflict) {
				logger.InfoContext(ctx, "version conflict, redriving event",
					"expected_version", expectedVersion,
					"attempt", attempt+1,
				)
				continue
			}
			if err != nil {
				span.RecordError(err)
				return nil, err
			}
			logger.InfoContext(ctx, "purchase transitioned",
				"from", transition.From,
				"to", transition.To(),
				"version", transition.Instance.Version,
				"commands", len(transition.Commands),
			)
		}

		uc.observe(ctx, transition)
		return transition, nil
	}

	return nil, pkgerrors.Wrapf(ErrRedrivesExhausted, "purchase %s after %d redrives", correlationID, uc.maxRedrives)
}

// reply answers a GetPurchaseState query on the topic named by its reply_to metadata
func (uc *ProcessPurchaseEvent) reply(ctx context.Context, correlationID models.ID, query *events.Event, instance *domain.PurchaseState) error {
	if instance == nil {
		uc.logger.WarnContext(ctx, "state requested for unknown purchase", "correlation_id", correlationID)
		return nil
	}

	topic := events.PurchaseStateTopic
	if replyTo, ok := query.Metadata.Get(events.ReplyToKey); ok && replyTo != "" {
		topic = events.Topic(replyTo)
	}

	response := events.NewEvent(correlationID, topic, instance.Snapshot()).WithCorrelationID(correlationID)
	if err := uc.publisher.Publish(ctx, response); err != nil {
		return pkgerrors.Wrap(err, "failed to reply with purchase state")
	}
	return nil
}

func (uc *ProcessPurchaseEvent) observe(ctx context.Context, transition *Transition) {
	for _, o := range uc.observers {
		o.Observe(ctx, transition)
	}
}
