package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	tenantID  uuid.UUID
	expiresAt time.Time
}

// InMemoryTenantCache is a process-local TenantCache. A background loop
// evicts expired entries until Close.
type InMemoryTenantCache struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryTenantCache creates an in-memory cache that sweeps every interval
func NewInMemoryTenantCache(sweepInterval time.Duration) *InMemoryTenantCache {
	c := &InMemoryTenantCache{
		entries:  make(map[uuid.UUID]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	c.wg.Add(1)
	go c.sweepLoop(sweepInterval)
	return c
}

// Get returns the cached tenant of a user
func (c *InMemoryTenantCache) Get(_ context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok || !c.now().Before(e.expiresAt) {
		return uuid.Nil, false, nil
	}
	return e.tenantID, true, nil
}

// Set caches the tenant of a user for ttl
func (c *InMemoryTenantCache) Set(_ context.Context, userID, tenantID uuid.UUID, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = entry{tenantID: tenantID, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete drops the cached tenant of a user
func (c *InMemoryTenantCache) Delete(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

// Close stops the sweep loop. Safe to call more than once.
func (c *InMemoryTenantCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of stored entries, expired ones included
func (c *InMemoryTenantCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryTenantCache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *InMemoryTenantCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for userID, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, userID)
		}
	}
}

var _ TenantCache = (*InMemoryTenantCache)(nil)
