package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/upsimu/internal/errors"
	"github.com/vytor/upsimu/internal/logger"
	"github.com/vytor/upsimu/internal/models"
)

type memoryEntry struct {
	attempt   *models.Attempt
	expiresAt time.Time
}

// MemoryStore keeps attempts in process memory. Entries expire ttl after their
// last Save; expired entries are invisible to Get and removed by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || s.expired(e) {
		logger.FromContext(ctx).WithPrefix("attempt_cache").Debug("attempt not found: id=%s", id)
		return nil, errors.NewNotFoundError("attempt", id)
	}
	return cloneAttempt(e.attempt), nil
}

func (s *MemoryStore) Save(_ context.Context, a *models.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[a.ID] = memoryEntry{attempt: cloneAttempt(a), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		logger.FromContext(ctx).WithPrefix("attempt_cache").Debug("swept %d expired attempts", removed)
	}
	return removed, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Len counts stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return s.ttl > 0 && !s.now().Before(e.expiresAt)
}
