package application

import (
	"sync"

	"github.com/draftea/trading-system/shared/models"
)

// purchaseLocks hands out one mutex per correlation id and forgets it once nobody holds it
type purchaseLocks struct {
	mu    sync.Mutex
	locks map[models.ID]*purchaseLock
}

type purchaseLock struct {
	sync.Mutex
	holders int
}

func newPurchaseLocks() *purchaseLocks {
	return &purchaseLocks{locks: make(map[models.ID]*purchaseLock)}
}

// Lock blocks until the purchase is free and returns the function that frees it
func (p *purchaseLocks) Lock(correlationID models.ID) func() {
	p.mu.Lock()
	lock, ok := p.locks[correlationID]
	if !ok {
		lock = &purchaseLock{}
		p.locks[correlationID] = lock
	}
	lock.holders++
	p.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		p.mu.Lock()
		lock.holders--
		if lock.holders == 0 {
			delete(p.locks, correlationID)
		}
		p.mu.Unlock()
	}
}

func (p *purchaseLocks) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
