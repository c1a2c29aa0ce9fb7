package services

import (
	"sync"
)

// InFlight rejects overlapping calls to the same mutating operation on the
// same resource.
type InFlight struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{pending: make(map[string]struct{})}
}

// Acquire marks op on resource as running. The returned release must be
// called exactly once when the operation ends.
func (g *InFlight) Acquire(op, resource string) (func(), error) {
	key := op + "|" + resource

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.pending[key]; busy {
		return nil, newError(KindOperationInProgress, "Another request is already in progress. Please wait.", nil)
	}
	g.pending[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.pending, key)
			g.mu.Unlock()
		})
	}, nil
}

func (g *InFlight) Busy(op, resource string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.pending[op+"|"+resource]
	return busy
}
