package lock

import (
	"context"
	"sync"
)

// MemoryCoordinator is a mutex-map Coordinator for single-process
// deployments. It is constructed explicitly and injected; there is no
// package-level registry, so tests stay isolated.
type MemoryCoordinator struct {
	mu    sync.Mutex
	locks map[string]*memLock
	held  map[string]map[string]struct{} // txID -> keys
}

type memLock struct {
	ch    chan struct{} // capacity 1; full means locked
	owner string
}

// NewMemoryCoordinator builds an empty coordinator.
func NewMemoryCoordinator() *MemoryCoordinator {
	return &MemoryCoordinator{
		locks: make(map[string]*memLock),
		held:  make(map[string]map[string]struct{}),
	}
}

// Acquire blocks until the key is free or ctx is done.
func (c *MemoryCoordinator) Acquire(ctx context.Context, txID, key string) error {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &memLock{ch: make(chan struct{}, 1)}
		c.locks[key] = l
	}
	if l.owner == txID && len(l.ch) == 1 {
		// Re-entrant within the same transaction.
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.mu.Lock()
	l.owner = txID
	keys, ok := c.held[txID]
	if !ok {
		keys = make(map[string]struct{})
		c.held[txID] = keys
	}
	keys[key] = struct{}{}
	c.mu.Unlock()
	return nil
}

// ReleaseAll frees every lock held by txID.
func (c *MemoryCoordinator) ReleaseAll(_ context.Context, txID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.held[txID] {
		l := c.locks[key]
		if l == nil || l.owner != txID {
			continue
		}
		l.owner = ""
		<-l.ch
	}
	delete(c.held, txID)
	return nil
}

// Held reports how many keys txID currently holds. Used by tests.
func (c *MemoryCoordinator) Held(txID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.held[txID])
}
