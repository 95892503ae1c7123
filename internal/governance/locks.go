package governance

import "sync"

// slotLocks serializes mutating operations per slot. Slots are independent
// units of concurrency; two slots never contend on the same lock.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: map[string]*sync.Mutex{}}
}

// acquire locks the mutex for slotID, creating it on first use, and returns
// the unlock function. Lock entries are never removed; the slot population
// is bounded by tenant channels.
func (l *slotLocks) acquire(slotID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[slotID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[slotID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
