package service

import (
	"sync"
	"time"
)

const (
	// lockCleanupInterval is the interval for evicting idle lock entries
	lockCleanupInterval = 5 * time.Minute
	// lockTTL is the time-to-live for unreferenced lock entries
	lockTTL = 10 * time.Minute
)

// CustomerLocks serializes all ledger mutations per customer. Every write
// path (booking, edit, delete, membership edit, period roll) acquires the
// customer's lock around mutate -> recompute -> publish, so concurrent admin
// actions on the same membership cannot interleave. Entries that have been
// idle past their TTL are evicted in the background.
type CustomerLocks struct {
	mu     sync.Mutex
	locks  map[int32]*lockEntry
	stopCh chan struct{}
}

type lockEntry struct {
	mu       sync.Mutex
	refs     int
	lastUsed time.Time
}

// NewCustomerLocks creates a new CustomerLocks registry
func NewCustomerLocks() *CustomerLocks {
	l := &CustomerLocks{
		locks:  make(map[int32]*lockEntry),
		stopCh: make(chan struct{}),
	}

	// Start cleanup goroutine
	go l.cleanup()

	return l
}

// Lock acquires the lock for a customer and returns the unlock function.
func (l *CustomerLocks) Lock(customerID int32) func() {
	l.mu.Lock()
	entry, ok := l.locks[customerID]
	if !ok {
		entry = &lockEntry{}
		l.locks[customerID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		entry.lastUsed = time.Now()
		l.mu.Unlock()
	}
}

// cleanup periodically removes idle lock entries to prevent memory leaks
func (l *CustomerLocks) cleanup() {
	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

// evictIdle drops entries that are unreferenced and idle past the TTL. The
// refcount covers goroutines that fetched an entry but have not locked it
// yet, so an entry in use can never be replaced by a fresh mutex.
func (l *CustomerLocks) evictIdle(now time.Time) {
	l.mu.Lock()
	for customerID, entry := range l.locks {
		if entry.refs == 0 && now.Sub(entry.lastUsed) > lockTTL {
			delete(l.locks, customerID)
		}
	}
	l.mu.Unlock()
}

// Stop stops the cleanup goroutine
func (l *CustomerLocks) Stop() {
	close(l.stopCh)
}
