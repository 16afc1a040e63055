package domain

import (
	"context"
	"errors"
	"time"

	"github.com/draftea/trading-system/shared/events"
	"github.com/draftea/trading-system/shared/models"
	"github.com/shopspring/decimal"
)

// State is the position of a purchase saga in its state machine
type State string

const (
	StateAccepted     State = "Accepted"
	StateItemsGranted State = "ItemsGranted"
	StateCompleted    State = "Completed"
	StateFaulted      State = "Faulted"
)

// progress orders the forward path. Faulted is reachable from any non-terminal state.
var progress = map[State]int{
	StateAccepted:     1,
	StateItemsGranted: 2,
	StateCompleted:    3,
}

// IsTerminal reports whether no further flow event can change the state
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFaulted
}

// IsValid reports whether s is one of the known states
func (s State) IsValid() bool {
	_, ok := progress[s]
	return ok || s == StateFaulted
}

// CanTransitionTo reports whether next is a legal successor of s
func (s State) CanTransitionTo(next State) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFaulted {
		return true
	}
	return progress[next] == progress[s]+1
}

func (s State) String() string {
	return string(s)
}

var ErrConcurrencyConflict = errors.New("concurrency conflict")

// PurchaseState is one purchase saga instance, keyed by its correlation id
type PurchaseState struct {
	CorrelationID models.ID
	CurrentState  State
	UserID        models.ID
	ItemID        models.ID
	Quantity      int
	PurchaseTotal *decimal.Decimal
	Received      time.Time
	LastUpdated   time.Time
	ErrorMessage  string
	Version       int

	// PendingRelease is set when the last committed transition emitted commands that are
	// not yet known to be published.
	PendingRelease bool
}

// Clone returns a deep copy so callers can mutate it without touching stored state
func (p *PurchaseState) Clone() *PurchaseState {
	if p == nil {
		return nil
	}
	clone := *p
	if p.PurchaseTotal != nil {
		total := *p.PurchaseTotal
		clone.PurchaseTotal = &total
	}
	return &clone
}

// Snapshot returns the externally visible view of the instance
func (p *PurchaseState) Snapshot() events.PurchaseSnapshot {
	var total *decimal.Decimal
	if p.PurchaseTotal != nil {
		t := *p.PurchaseTotal
		total = &t
	}
	return events.PurchaseSnapshot{
		CorrelationID: p.CorrelationID,
		UserID:        p.UserID,
		ItemID:        p.ItemID,
		PurchaseTotal: total,
		Quantity:      p.Quantity,
		CurrentState:  p.CurrentState.String(),
		ErrorMessage:  p.ErrorMessage,
		Received:      p.Received,
		LastUpdated:   p.LastUpdated,
	}
}

// PurchaseRepository is the durable store of purchase saga instances.
// Create stores state with Version 1 and fails with ErrConcurrencyConflict if the id exists.
// Save is a compare-and-set on Version: it fails with ErrConcurrencyConflict when the stored
// version differs from expectedVersion, and stores state with Version expectedVersion+1.
// Both set state.Version to the stored version on success.
// MarkReleased clears PendingRelease on the row still at version, without bumping it; a row
// that moved on is left untouched.
type PurchaseRepository interface {
	FindByCorrelationID(ctx context.Context, correlationID models.ID) (*PurchaseState, error)
	Create(ctx context.Context, state *PurchaseState) error
	Save(ctx context.Context, state *PurchaseState, expectedVersion int) error
	MarkReleased(ctx context.Context, correlationID models.ID, version int) error
}

// Notifier pushes purchase snapshots to the owning user. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, userID models.ID, snapshot events.PurchaseSnapshot) error
}
