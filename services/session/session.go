// Package sessionsvc remembers revoked JWT ids until the token would have expired anyway.
package sessionsvc

import (
	"context"
	"sync"
	"time"
)

var nowFunc = time.Now // mockable

// Store keeps revoked token ids.
type Store interface {
	// Revoke marks jti revoked until `until`; past instants are ignored.
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type memoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time // {jti: expiry}
}

var _ Store = (*memoryStore)(nil)

func NewMemoryStore() Store {
	return &memoryStore{revoked: make(map[string]time.Time)}
}

func (s *memoryStore) Revoke(_ context.Context, jti string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowFunc()
	if !until.After(now) {
		return nil
	}
	s.revoked[jti] = until
	s.gc(now)
	return nil
}

func (s *memoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if !until.After(nowFunc()) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}

// gc drops expired entries. Callers hold s.mu.
func (s *memoryStore) gc(now time.Time) {
	for jti, until := range s.revoked {
		if !until.After(now) {
			delete(s.revoked, jti)
		}
	}
}
