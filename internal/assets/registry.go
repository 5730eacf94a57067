package assets

import "sync"

// Registry is the read-only asset/identity collaborator consulted at auction
// creation time. Its real implementation lives outside the engine.
type Registry interface {
	IsOwner(nftRef, userRef string) (bool, error)
}

// InMemoryRegistry is a concurrency-safe Registry backed by a map. Used by
// the server wiring and by tests.
type InMemoryRegistry struct {
	mu     sync.RWMutex
	owners map[string]string // nftRef -> owner userRef
}

// NewInMemoryRegistry creates an empty registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{owners: make(map[string]string)}
}

// SetOwner records userRef as the owner of nftRef.
func (r *InMemoryRegistry) SetOwner(nftRef, userRef string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[nftRef] = userRef
}

// IsOwner reports whether userRef owns nftRef. Unknown assets are owned by
// nobody.
func (r *InMemoryRegistry) IsOwner(nftRef, userRef string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owners[nftRef] == userRef && userRef != "", nil
}
