package service

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/aufwind/aufwind-backend/internal/domain"
)

// SnapshotCache caches derived balance snapshots per customer. Every
// successful ledger mutation invalidates the affected customer so reads
// after a write always recompute from the log. Concurrent cold reads for
// the same customer are collapsed into one computation.
type SnapshotCache struct {
	mu        sync.RWMutex
	snapshots map[int32]domain.BalanceSnapshot
	// generations guards the store against a compute that was already in
	// flight when an invalidation landed: such a result must not be cached.
	generations map[int32]uint64
	group       singleflight.Group
}

// NewSnapshotCache creates a new SnapshotCache
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		snapshots:   make(map[int32]domain.BalanceSnapshot),
		generations: make(map[int32]uint64),
	}
}

// Get returns the cached snapshot for a customer, computing it via compute
// on a miss. Only one compute runs per customer at a time. A result computed
// before a concurrent Invalidate is returned to the caller but not stored.
func (c *SnapshotCache) Get(customerID int32, compute func() (domain.BalanceSnapshot, error)) (domain.BalanceSnapshot, error) {
	c.mu.RLock()
	snapshot, ok := c.snapshots[customerID]
	generation := c.generations[customerID]
	c.mu.RUnlock()
	if ok {
		return snapshot, nil
	}

	result, err, _ := c.group.Do(strconv.Itoa(int(customerID)), func() (interface{}, error) {
		snapshot, err := compute()
		if err != nil {
			return domain.BalanceSnapshot{}, err
		}
		c.mu.Lock()
		if c.generations[customerID] == generation {
			c.snapshots[customerID] = snapshot
		}
		c.mu.Unlock()
		return snapshot, nil
	})
	if err != nil {
		return domain.BalanceSnapshot{}, err
	}
	return result.(domain.BalanceSnapshot), nil
}

// Invalidate drops the cached snapshot for a customer and fences out any
// compute that started before the invalidation.
func (c *SnapshotCache) Invalidate(customerID int32) {
	c.mu.Lock()
	delete(c.snapshots, customerID)
	c.generations[customerID]++
	c.mu.Unlock()
	c.group.Forget(strconv.Itoa(int(customerID)))
}
