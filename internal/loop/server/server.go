// Package server tracks the game clients connected through every transport.
//
// Each client runs its own single-player session; the registry only knows who
// is connected so that operators can count them and shut them down cleanly.
package server

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// ClientEvent represents an event sent from the registry to a client.
type ClientEvent struct {
	Type ClientEventType
}

// ClientHandle represents a client's registration.
type ClientHandle struct {
	ID        int
	Username  string
	Transport string           // "ssh", "web" or "local"
	EventsCh  chan ClientEvent // Closed when the client is unregistered
	Joined    time.Time
}

// Registry keeps the set of connected clients.
type Registry struct {
	mu           sync.RWMutex
	clients      map[int]*ClientHandle
	nextClientID int
	log          *log.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Registry{
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		log:          logger,
	}
}

// RegisterClient registers a new client and returns its handle.
func (r *Registry) RegisterClient(username, transport string) *ClientHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle := &ClientHandle{
		ID:        r.nextClientID,
		Username:  username,
		Transport: transport,
		EventsCh:  make(chan ClientEvent, 4),
		Joined:    time.Now(),
	}
	r.nextClientID++
	r.clients[handle.ID] = handle

	r.log.Info("client joined", "id", handle.ID, "user", username, "transport", transport, "clients", len(r.clients))
	return handle
}

// UnregisterClient removes a client and closes its event channel.
// Unknown IDs are ignored.
func (r *Registry) UnregisterClient(clientID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle, ok := r.clients[clientID]
	if !ok {
		return
	}
	close(handle.EventsCh)
	delete(r.clients, clientID)

	r.log.Info("client left", "id", clientID, "user", handle.Username,
		"played", time.Since(handle.Joined).Round(time.Second), "clients", len(r.clients))
}

// Count returns the number of connected clients.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CountByTransport returns the number of connected clients per transport.
func (r *Registry) CountByTransport() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, handle := range r.clients {
		counts[handle.Transport]++
	}
	return counts
}

// Shutdown notifies all connected clients about the shutdown and waits for
// them to disconnect, up to the given timeout. Returns the number of clients
// still connected when it gave up.
func (r *Registry) Shutdown(timeout time.Duration) int {
	r.mu.RLock()
	for _, handle := range r.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	r.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if remaining := r.Count(); remaining == 0 {
			return 0
		}
		select {
		case <-deadline:
			remaining := r.Count()
			r.log.Warn("shutdown timed out", "remaining", remaining)
			return remaining
		case <-ticker.C:
		}
	}
}
