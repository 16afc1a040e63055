package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/trading-service/domain"
)

// ErrMalformedEvent is returned when an event payload cannot be decoded or carries values no
// purchase can have. Redelivery cannot fix it.
var ErrMalformedEvent = errors.New("malformed event")

// ErrIllegalTransition is returned when a transition would leave the purchase in a state that
// does not follow its current one
var ErrIllegalTransition = errors.New("illegal purchase transition")

// Outcome classifies what a transition did to a purchase
type Outcome string

const (
	OutcomeStarted   Outcome = "started"
	OutcomeAdvanced  Outcome = "advanced"
	OutcomeCompleted Outcome = "completed"
	OutcomeFaulted   Outcome = "faulted"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeQueried   Outcome = "queried"
	// OutcomeResent releases again the commands of a purchase whose last release never went
	// through. The instance is not changed.
	OutcomeResent Outcome = "resent"
)

// Mutates reports whether the outcome changes the stored instance
func (o Outcome) Mutates() bool {
	return o != OutcomeIgnored && o != OutcomeQueried && o != OutcomeResent
}

// stateInitial is the row of the table used when no instance exists yet
const stateInitial domain.State = ""

// Transition is the decision taken for one event. Instance is the next value of the purchase,
// or the current one (possibly nil) when the outcome does not mutate it.
type Transition struct {
	Topic    events.Topic
	From     domain.State
	Instance *domain.PurchaseState
	Commands []*events.Event
	Notify   bool
	Outcome  Outcome
}

// To returns the state the purchase is in after the transition
func (t *Transition) To() domain.State {
	if t.Instance == nil {
		return stateInitial
	}
	return t.Instance.CurrentState
}

type transitionFunc func(ctx context.Context, now time.Time, instance *domain.PurchaseState, event *events.Event) (*Transition, error)

// PurchaseStateMachine decides purchase transitions. It performs no I/O besides pricing.
type PurchaseStateMachine struct {
	pricer PriceCalculator
	table  map[domain.State]map[events.Topic]transitionFunc
}

// NewPurchaseStateMachine creates a new PurchaseStateMachine
func NewPurchaseStateMachine(pricer PriceCalculator) *PurchaseStateMachine {
	m := &PurchaseStateMachine{pricer: pricer}

	// Any (state, topic) pair missing here is a no-op: duplicates, events for terminal
	// purchases and faults for a step that already advanced.
	m.table = map[domain.State]map[events.Topic]transitionFunc{
		stateInitial: {
			events.PurchaseRequestedTopic: m.initiate,
		},
		domain.StateAccepted: {
			events.InventoryItemsGrantedTopic: m.itemsGranted,
			events.GrantItemsFaultedTopic:     m.grantItemsFaulted,
		},
		domain.StateItemsGranted: {
			events.GilDebitedTopic:      m.gilDebited,
			events.DebitGilFaultedTopic: m.debitGilFaulted,
		},
	}

	return m
}

// Decide returns the transition event causes on instance. instance is nil when the purchase
// does not exist yet and is never modified. A flow event that would be ignored while the
// instance still has unreleased commands yields OutcomeResent with those commands.
func (m *PurchaseStateMachine) Decide(ctx context.Context, now time.Time, instance *domain.PurchaseState, event *events.Event) (*Transition, error) {
	current := stateInitial
	if instance != nil {
		current = instance.CurrentState
	}

	if event.Topic == events.GetPurchaseStateTopic {
		return &Transition{Topic: event.Topic, From: current, Instance: instance, Outcome: OutcomeQueried}, nil
	}

	handle, ok := m.table[current][event.Topic]
	if !ok {
		if instance != nil && instance.PendingRelease {
			return &Transition{
				Topic:    event.Topic,
				From:     current,
				Instance: instance,
				Commands: pendingCommands(instance),
				Outcome:  OutcomeResent,
			}, nil
		}
		return &Transition{Topic: event.Topic, From: current, Instance: instance, Outcome: OutcomeIgnored}, nil
	}

	t, err := handle(ctx, now, instance.Clone(), event)
	if err != nil {
		return nil, err
	}
	if !current.CanTransitionTo(t.To()) {
		return nil, fmt.Errorf("%w: %q to %q on %s", ErrIllegalTransition, current, t.To(), event.Topic)
	}
	t.Topic = event.Topic
	t.From = current
	t.Notify = true
	return t, nil
}

func (m *PurchaseStateMachine) initiate(ctx context.Context, now time.Time, _ *domain.PurchaseState, event *events.Event) (*Transition, error) {
	var data events.PurchaseRequested
	if err := event.UnmarshalPayload(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	correlationID, err := models.NewID(data.CorrelationID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid correlation id: %v", ErrMalformedEvent, err)
	}
	userID, err := models.NewID(data.UserID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id: %v", ErrMalformedEvent, err)
	}
	itemID, err := models.NewID(data.ItemID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid item id: %v", ErrMalformedEvent, err)
	}
	if data.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrMalformedEvent, data.Quantity)
	}

	purchase := &domain.PurchaseState{
		CorrelationID: correlationID,
		UserID:        userID,
		ItemID:        itemID,
		Quantity:      data.Quantity,
		Received:      now,
		LastUpdated:   now,
	}

	total, err := m.pricer.Execute(ctx, itemID, data.Quantity)
	if err != nil {
		// A cancelled context says nothing about the purchase; let the message be redelivered.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		purchase.CurrentState = domain.StateFaulted
		purchase.ErrorMessage = err.Error()
		return &Transition{Instance: purchase, Outcome: OutcomeFaulted}, nil
	}

	purchase.PurchaseTotal = &total
	purchase.CurrentState = domain.StateAccepted

	return &Transition{Instance: purchase, Commands: []*events.Event{grantItemsCommand(purchase)}, Outcome: OutcomeStarted}, nil
}

func (m *PurchaseStateMachine) itemsGranted(_ context.Context, now time.Time, purchase *domain.PurchaseState, _ *events.Event) (*Transition, error) {
	if purchase.PurchaseTotal == nil {
		return nil, fmt.Errorf("purchase %s is %s without a total", purchase.CorrelationID, purchase.CurrentState)
	}

	purchase.CurrentState = domain.StateItemsGranted
	purchase.LastUpdated = now

	return &Transition{Instance: purchase, Commands: []*events.Event{debitGilCommand(purchase)}, Outcome: OutcomeAdvanced}, nil
}

func (m *PurchaseStateMachine) grantItemsFaulted(_ context.Context, now time.Time, purchase *domain.PurchaseState, event *events.Event) (*Transition, error) {
	var data events.GrantItemsFault
	if err := event.UnmarshalPayload(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	purchase.CurrentState = domain.StateFaulted
	purchase.ErrorMessage = firstMessage(data.ErrorMessages)
	purchase.LastUpdated = now

	return &Transition{Instance: purchase, Outcome: OutcomeFaulted}, nil
}

func (m *PurchaseStateMachine) gilDebited(_ context.Context, now time.Time, purchase *domain.PurchaseState, _ *events.Event) (*Transition, error) {
	purchase.CurrentState = domain.StateCompleted
	purchase.LastUpdated = now

	return &Transition{Instance: purchase, Outcome: OutcomeCompleted}, nil
}

func (m *PurchaseStateMachine) debitGilFaulted(_ context.Context, now time.Time, purchase *domain.PurchaseState, event *events.Event) (*Transition, error) {
	var data events.DebitGilFault
	if err := event.UnmarshalPayload(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	purchase.CurrentState = domain.StateFaulted
	purchase.ErrorMessage = firstMessage(data.ErrorMessages)
	purchase.LastUpdated = now

	return &Transition{Instance: purchase, Commands: []*events.Event{subtractItemsCommand(purchase)}, Outcome: OutcomeFaulted}, nil
}

// pendingCommands rebuilds the commands the transition into the purchase's current state emitted
func pendingCommands(purchase *domain.PurchaseState) []*events.Event {
	switch purchase.CurrentState {
	case domain.StateAccepted:
		return []*events.Event{grantItemsCommand(purchase)}
	case domain.StateItemsGranted:
		if purchase.PurchaseTotal == nil {
			return nil
		}
		return []*events.Event{debitGilCommand(purchase)}
	case domain.StateFaulted:
		// Only a fault after the grant compensates.
		return []*events.Event{subtractItemsCommand(purchase)}
	default:
		return nil
	}
}

func grantItemsCommand(purchase *domain.PurchaseState) *events.Event {
	return events.NewEvent(purchase.CorrelationID, events.GrantItemsTopic, events.GrantItems{
		UserID:        purchase.UserID,
		ItemID:        purchase.ItemID,
		Quantity:      purchase.Quantity,
		CorrelationID: purchase.CorrelationID,
	}).WithCorrelationID(purchase.CorrelationID)
}

func debitGilCommand(purchase *domain.PurchaseState) *events.Event {
	return events.NewEvent(purchase.CorrelationID, events.DebitGilTopic, events.DebitGil{
		UserID:        purchase.UserID,
		Amount:        *purchase.PurchaseTotal,
		CorrelationID: purchase.CorrelationID,
	}).WithCorrelationID(purchase.CorrelationID)
}

func subtractItemsCommand(purchase *domain.PurchaseState) *events.Event {
	return events.NewEvent(purchase.CorrelationID, events.SubtractItemsTopic, events.SubtractItems{
		UserID:        purchase.UserID,
		ItemID:        purchase.ItemID,
		Quantity:      purchase.Quantity,
		CorrelationID: purchase.CorrelationID,
	}).WithCorrelationID(purchase.CorrelationID)
}

func firstMessage(messages []string) string {
	for _, msg := range messages {
		if msg != "" {
			return msg
		}
	}
	return "unknown failure"
}
