// Package registry implements the thread-safe client table that maps a
// connected player to its socket and lets the Worker and World broadcast or
// tear down connections without reaching into transport internals. Grounded
// on the original's ClientRegistry (register_client/remove_client,
// close-before-unlink ordering) and the teacher's connections map in
// cmd/gameserver/main.go.
package registry

import (
	"net"
	"sync"

	"github.com/fenix/serpent/internal/game"
)

// Client is one registered connection.
type Client struct {
	ID   game.PlayerID
	Conn net.Conn

	// mu serializes writes made through Write, so concurrent writers never
	// interleave frames on the same net.Conn.
	mu sync.Mutex
}

// Write sends buf to the client's connection, serialized against concurrent
// writers.
func (c *Client) Write(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.Write(buf)
}

// Registry is the server-wide table of connected clients.
type Registry struct {
	mu      sync.RWMutex
	clients map[game.PlayerID]*Client
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{clients: make(map[game.PlayerID]*Client)}
}

// Register adds a client under id. Grounded on register_client.
func (r *Registry) Register(id game.PlayerID, conn net.Conn) *Client {
	c := &Client{ID: id, Conn: conn}
	r.mu.Lock()
	r.clients[id] = c
	r.mu.Unlock()
	return c
}

// Remove drops the client from the table and then closes its connection,
// outside the lock. Closing is what unblocks that client's Receiver
// goroutine, which may be parked in a blocking Read. Removing an id that is
// not registered is a no-op. Grounded on remove_client.
func (r *Registry) Remove(id game.PlayerID) {
	r.mu.Lock()
	c, ok := r.clients[id]
	if ok {
		delete(r.clients, id)
	}
	r.mu.Unlock()

	if ok {
		c.Conn.Close()
	}
}

// Find looks up a client by id. Grounded on find_client.
func (r *Registry) Find(id game.PlayerID) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

// Each calls fn for every registered client, under a read lock. fn must not
// call back into the Registry.
func (r *Registry) Each(fn func(*Client)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		fn(c)
	}
}

// Count reports the number of registered clients.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
