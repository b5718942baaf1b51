package auth

import (
	"sync"
	"time"
)

// RevocationStore tracks revoked session token ids (jti claims) in memory.
// Entries are dropped once the token would have expired anyway, so the store
// stays bounded by the number of logouts within one token lifetime.
type RevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time // jti -> token expiry
	done    chan struct{}
}

// NewRevocationStore creates a store and starts a background sweeper that
// removes expired entries every 5 minutes. Call Close to stop it.
func NewRevocationStore() *RevocationStore {
	s := &RevocationStore{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Revoke marks a token id as revoked until its natural expiry.
func (s *RevocationStore) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	s.mu.Lock()
	s.entries[jti] = expiresAt
	s.mu.Unlock()
}

// IsRevoked reports whether the token id has been revoked.
func (s *RevocationStore) IsRevoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[jti]
	return ok
}

// Len returns the number of tracked revocations.
func (s *RevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the background sweeper.
func (s *RevocationStore) Close() {
	close(s.done)
}

func (s *RevocationStore) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.removeExpired(time.Now())
		}
	}
}

func (s *RevocationStore) removeExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, jti)
		}
	}
}
