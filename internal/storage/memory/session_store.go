// Package memory provides in-memory store implementations for tests and
// the offline CLIs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pulseguard/internal/domain"
	"pulseguard/internal/storage"
)

// SessionStore is an in-memory implementation of storage.SessionStore.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string]domain.SessionRecord // keyed by (session_id, time_ms)
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{data: make(map[string]domain.SessionRecord)}
}

var _ storage.SessionStore = (*SessionStore)(nil)

func sessionKey(sessionID string, timeMs int64) string {
	return fmt.Sprintf("%s|%d", sessionID, timeMs)
}

// InsertBulk appends records atomically, failing the whole batch on any
// duplicate, including intra-batch duplicates.
func (s *SessionStore) InsertBulk(_ context.Context, records []domain.SessionRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.SessionID == "" {
			return storage.ErrInvalidInput
		}
		key := sessionKey(r.SessionID, r.TimeMs)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		s.data[sessionKey(r.SessionID, r.TimeMs)] = r
	}
	return nil
}

// GetBySessionID retrieves a full recording, ordered by time ASC.
func (s *SessionStore) GetBySessionID(_ context.Context, sessionID string) ([]domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SessionRecord
	for _, r := range s.data {
		if r.SessionID == sessionID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TimeMs < result[j].TimeMs })
	return result, nil
}

// GetByTimeRange retrieves records within [start, end], ordered by time ASC.
func (s *SessionStore) GetByTimeRange(_ context.Context, sessionID string, start, end int64) ([]domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SessionRecord
	for _, r := range s.data {
		if r.SessionID == sessionID && r.TimeMs >= start && r.TimeMs <= end {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TimeMs < result[j].TimeMs })
	return result, nil
}

// ListSessions returns the distinct session IDs, sorted.
func (s *SessionStore) ListSessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, r := range s.data {
		seen[r.SessionID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
