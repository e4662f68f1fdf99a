// File: internal/realtime/registry.go
package realtime

import "sync"

// Registry is the process-wide map from authenticated user to their single
// live connection. It is owned by the composition root and injected wherever
// routing is needed; all methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint]*Connection
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint]*Connection)}
}

// Bind registers conn as the live connection for userID, replacing any prior
// entry. The replaced connection is returned but not closed: it simply stops
// receiving routed frames.
func (r *Registry) Bind(userID uint, conn *Connection) (replaced *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced = r.conns[userID]
	r.conns[userID] = conn
	return replaced
}

// Unbind removes the entry for userID, but only if conn is still the current
// binding. A connection that was replaced and later closes must not evict its
// successor, so unbinding a stale connection is a no-op.
func (r *Registry) Unbind(userID uint, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.conns[userID]; ok && current == conn {
		delete(r.conns, userID)
	}
}

// Lookup returns the live connection for userID, if any. Sessions unbind on
// close, so an entry found here is live apart from a narrow close race, which
// the caller absorbs as a failed push.
func (r *Registry) Lookup(userID uint) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// Len reports the number of currently bound users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
