package budget

import (
	"sync"
	"time"
)

type memoEntry struct {
	value     string
	expiresAt time.Time
}

// MemoStore is a keyed TTL store backing the summary views' delta
// comparisons. It is a display-continuity memo, not a ledger: entries may
// expire or be lost at any time and readers must treat absence as "new".
type MemoStore struct {
	mu      sync.Mutex
	entries map[string]memoEntry
	now     func() time.Time
}

func NewMemoStore() *MemoStore {
	return NewMemoStoreWithClock(time.Now)
}

func NewMemoStoreWithClock(now func() time.Time) *MemoStore {
	return &MemoStore{
		entries: make(map[string]memoEntry),
		now:     now,
	}
}

func (s *MemoStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	return e.value, true
}

func (s *MemoStore) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoEntry{value: value, expiresAt: s.now().Add(ttl)}
}
