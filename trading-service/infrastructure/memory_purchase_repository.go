package infrastructure

import (
	"context"
	"sync"

	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/trading-service/domain"
)

// MemoryPurchaseRepository keeps purchases in process memory. Stored values are copies,
// so callers never share state with the store.
type MemoryPurchaseRepository struct {
	mu        sync.RWMutex
	purchases map[models.ID]*domain.PurchaseState
}

// NewMemoryPurchaseRepository creates a new MemoryPurchaseRepository
func NewMemoryPurchaseRepository() *MemoryPurchaseRepository {
	return &MemoryPurchaseRepository{
		purchases: make(map[models.ID]*domain.PurchaseState),
	}
}

func (r *MemoryPurchaseRepository) FindByCorrelationID(_ context.Context, correlationID models.ID) (*domain.PurchaseState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.purchases[correlationID].Clone(), nil
}

func (r *MemoryPurchaseRepository) Create(_ context.Context, state *domain.PurchaseState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.purchases[state.CorrelationID]; ok {
		return domain.ErrConcurrencyConflict
	}

	state.Version = 1
	r.purchases[state.CorrelationID] = state.Clone()
	return nil
}

func (r *MemoryPurchaseRepository) Save(_ context.Context, state *domain.PurchaseState, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.purchases[state.CorrelationID]
	if !ok || stored.Version != expectedVersion {
		return domain.ErrConcurrencyConflict
	}

	state.Version = expectedVersion + 1
	r.purchases[state.CorrelationID] = state.Clone()
	return nil
}

func (r *MemoryPurchaseRepository) MarkReleased(_ context.Context, correlationID models.ID, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.purchases[correlationID]; ok && stored.Version == version {
		stored.PendingRelease = false
	}
	return nil
}
