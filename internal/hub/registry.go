// Package hub tracks live connections and their display metadata through the
// Registry type.
package hub

import (
	"log"
	"sync"
)

// Registry owns every live client connection for one hub. All membership
// mutation happens on the hub's event loop; the mutex exists so pump
// goroutines can check liveness while a send is in flight.
type Registry struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewRegistry returns an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[*Client]struct{})}
}

// Register admits a client. Registering an already-registered client is a
// no-op.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.closed = false
	r.clients[c] = struct{}{}
}

// Unregister removes a client and closes its send channel. It is idempotent;
// the second and later calls return false and do nothing.
func (r *Registry) Unregister(c *Client) bool {
	r.mu.Lock()
	if _, ok := r.clients[c]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.clients, c)
	c.closed = true
	r.mu.Unlock()

	// Close after releasing the lock; Send holds the read lock for the
	// whole membership check plus channel send, so nobody can be mid-send
	// on this channel anymore.
	close(c.send)
	return true
}

// SetProfile attaches or updates the client's display metadata. It has no
// effect on room membership.
func (r *Registry) SetProfile(c *Client, name, avatar string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.name = name
	c.avatar = avatar
}

// Snapshot returns the current set of registered clients.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}

// Len reports the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Send queues payload for one client without blocking. It returns false if
// the client is gone, already closing, or its send buffer is full.
func (r *Registry) Send(c *Client, payload []byte) bool {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Recovered from panic while queueing message: %v", rec)
		}
	}()

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.clients[c]; !ok || c.closed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}
