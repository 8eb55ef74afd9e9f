package assignment

import "sync"

// keyedLocks serializes assignment events per order id. Cross-order
// operations proceed in parallel; entries are dropped once unused.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*orderLock)}
}

// Lock acquires the per-order lock and returns its unlock function.
func (k *keyedLocks) Lock(orderID string) func() {
	k.mu.Lock()
	l, ok := k.locks[orderID]
	if !ok {
		l = &orderLock{}
		k.locks[orderID] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, orderID)
		}
		k.mu.Unlock()
	}
}
