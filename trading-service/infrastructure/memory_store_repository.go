package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/trading-service/domain"
)

// MemoryStoreRepository serves the catalog, inventory and user replicas from memory.
// It backs the memory storage driver.
type MemoryStoreRepository struct {
	mu        sync.RWMutex
	catalog   map[models.ID]*domain.CatalogItem
	inventory map[models.ID][]*domain.InventoryItem
	users     map[models.ID]*domain.User
}

// NewMemoryStoreRepository creates a store seeded with catalog
func NewMemoryStoreRepository(catalog ...*domain.CatalogItem) *MemoryStoreRepository {
	r := &MemoryStoreRepository{
		catalog:   make(map[models.ID]*domain.CatalogItem, len(catalog)),
		inventory: make(map[models.ID][]*domain.InventoryItem),
		users:     make(map[models.ID]*domain.User),
	}
	for _, item := range catalog {
		r.catalog[item.ID] = item
	}
	return r
}

// UpsertCatalogItem adds or replaces a catalog item
func (r *MemoryStoreRepository) UpsertCatalogItem(_ context.Context, item *domain.CatalogItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *item
	r.catalog[item.ID] = &clone
	return nil
}

// DeleteCatalogItem removes a catalog item; unknown ids are not an error
func (r *MemoryStoreRepository) DeleteCatalogItem(_ context.Context, id models.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.catalog, id)
	return nil
}

// UpsertUser adds or replaces a user
func (r *MemoryStoreRepository) UpsertUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

// UpsertInventoryItem sets the quantity a user owns of an item
func (r *MemoryStoreRepository) UpsertInventoryItem(_ context.Context, item *domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned := r.inventory[item.UserID]
	kept := owned[:0]
	for _, existing := range owned {
		if existing.CatalogItemID != item.CatalogItemID {
			kept = append(kept, existing)
		}
	}
	if item.Quantity > 0 {
		clone := *item
		kept = append(kept, &clone)
	}

	if len(kept) == 0 {
		delete(r.inventory, item.UserID)
		return nil
	}
	r.inventory[item.UserID] = kept
	return nil
}

func (r *MemoryStoreRepository) FindByID(_ context.Context, id models.ID) (*domain.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.catalog[id]
	if !ok {
		return nil, nil
	}
	clone := *item
	return &clone, nil
}

func (r *MemoryStoreRepository) FindAll(_ context.Context) ([]*domain.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*domain.CatalogItem, 0, len(r.catalog))
	for _, item := range r.catalog {
		clone := *item
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MemoryStoreRepository) FindByUserID(_ context.Context, userID models.ID) ([]*domain.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := r.inventory[userID]
	items := make([]*domain.InventoryItem, 0, len(owned))
	for _, item := range owned {
		clone := *item
		items = append(items, &clone)
	}
	return items, nil
}

// Users returns a view of the store satisfying domain.UserRepository
func (r *MemoryStoreRepository) Users() domain.UserRepository {
	return memoryUsers{r}
}

type memoryUsers struct {
	r *MemoryStoreRepository
}

func (u memoryUsers) FindByID(_ context.Context, id models.ID) (*domain.User, error) {
	u.r.mu.RLock()
	defer u.r.mu.RUnlock()

	user, ok := u.r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}
