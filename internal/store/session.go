package store

import (
	"time"

	"github.com/grupo7/gestao-clientes-go/internal/infra/cache"

	"github.com/grupo7/gestao-clientes-go/internal/domain"
)

// Sessions holds the ephemeral session markers. Markers live in memory with
// a TTL and vanish on restart; only the currentUser record persists.
type Sessions struct {
	markers *cache.InMemory[domain.SessionMarker]
}

// NewSessions creates the session-marker store with the given lifetime.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{markers: cache.New[domain.SessionMarker](ttl)}
}

// Create registers a marker for the identity and returns it.
func (s *Sessions) Create(userID, email string) domain.SessionMarker {
	m := domain.SessionMarker{
		UserID:    userID,
		Email:     email,
		Timestamp: time.Now(),
	}
	s.markers.Set(userID, m)
	return m
}

// Get returns the marker for the identity, if one is active.
func (s *Sessions) Get(userID string) (domain.SessionMarker, bool) {
	return s.markers.Get(userID)
}

// Drop discards the marker (logout).
func (s *Sessions) Drop(userID string) {
	s.markers.Delete(userID)
}
