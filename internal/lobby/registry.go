// Package lobby implements the player-facing listener: authentication,
// catalog browsing, chunked downloads, room lifecycle, and reviews.
// Grounded on lobby_server.py's LobbyServer and spec.md §4.4.
package lobby

import (
	"sync"

	"github.com/kestrelgames/gamestore/internal/protocol"
)

// Registry tracks every authenticated player's live connection, keyed by
// player ID, so room broadcasts can reach only the members who are
// currently connected (spec.md §4.6: "sent to every member whose session
// is currently open").
type Registry struct {
	mu      sync.RWMutex
	clients map[int64]*protocol.Conn
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[int64]*protocol.Conn)}
}

// Add registers a connection under a player ID, replacing any prior
// connection for that player (a second login from the same account).
func (r *Registry) Add(playerID int64, conn *protocol.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[playerID] = conn
}

// Remove unregisters a player's connection if it is still the current one.
func (r *Registry) Remove(playerID int64, conn *protocol.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clients[playerID] == conn {
		delete(r.clients, playerID)
	}
}

// Send delivers msg to a connected player, silently dropping it if the
// player isn't currently connected.
func (r *Registry) Send(playerID int64, msg *protocol.Message) {
	r.mu.RLock()
	conn, ok := r.clients[playerID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	_ = conn.Write(msg)
}
