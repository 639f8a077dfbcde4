package shkb

import (
	"sync"
)

// overrides holds the reported-active flag a view should return on its next
// Active read instead of asking the pod. One per pod, shared by its views.
// Last write wins; it is not a lock on the device.
type overrides struct {
	mu      sync.Mutex
	pending map[ViewKind]bool
}

func newOverrides() *overrides {
	return &overrides{
		pending: make(map[ViewKind]bool),
	}
}

func (o *overrides) set(v ViewKind, active bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending[v] = active
}

// take returns and discards the pending value for v
func (o *overrides) take(v ViewKind) (bool, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	active, ok := o.pending[v]
	if ok {
		delete(o.pending, v)
	}
	return active, ok
}

func (o *overrides) clear(v ViewKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, v)
}

func (o *overrides) clearAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	clear(o.pending)
}
