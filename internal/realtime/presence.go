package realtime

import (
	"sync"

	"github.com/glimmer-social/backend/internal/observability/metrics"
)

// Entry is one user's presence mapping, serialized in the who-is-online
// broadcast.
type Entry struct {
	UserID string `json:"userId"`
	ConnID string `json:"connectionId"`
}

// Registry maps user ids to connection ids. It is process-local: presence is
// only meaningful within a single server instance.
type Registry interface {
	// Register claims the user's presence slot. First writer wins: it
	// returns false when the user already has a mapping, and the existing
	// mapping is kept.
	Register(userID, connID string) bool
	// Unregister removes the mapping owned by connID, if any, and returns
	// the user id it freed.
	Unregister(connID string) (string, bool)
	Lookup(userID string) (string, bool)
	Snapshot() []Entry
}

type memoryRegistry struct {
	mu         sync.Mutex
	userToConn map[string]string
	connToUser map[string]string
}

func NewRegistry() Registry {
	return &memoryRegistry{
		userToConn: map[string]string{},
		connToUser: map[string]string{},
	}
}

func (r *memoryRegistry) Register(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.userToConn[userID]; exists {
		return false
	}
	r.userToConn[userID] = connID
	r.connToUser[connID] = userID
	metrics.PresenceEntries.Set(float64(len(r.userToConn)))
	return true
}

func (r *memoryRegistry) Unregister(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.connToUser[connID]
	if !ok {
		return "", false
	}
	delete(r.connToUser, connID)
	delete(r.userToConn, userID)
	metrics.PresenceEntries.Set(float64(len(r.userToConn)))
	return userID, true
}

func (r *memoryRegistry) Lookup(userID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connID, ok := r.userToConn[userID]
	return connID, ok
}

func (r *memoryRegistry) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]Entry, 0, len(r.userToConn))
	for userID, connID := range r.userToConn {
		entries = append(entries, Entry{UserID: userID, ConnID: connID})
	}
	return entries
}
