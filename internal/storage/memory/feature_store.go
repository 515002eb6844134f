package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pulseguard/internal/domain"
	"pulseguard/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[string]domain.FeatureRow // keyed by (session_id, window_end_ms)
}

// NewFeatureStore creates an empty in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{data: make(map[string]domain.FeatureRow)}
}

var _ storage.FeatureStore = (*FeatureStore)(nil)

func featureKey(sessionID string, windowEndMs int64) string {
	return fmt.Sprintf("%s|%d", sessionID, windowEndMs)
}

// InsertBulk appends rows, failing the whole batch on any duplicate.
func (s *FeatureStore) InsertBulk(_ context.Context, rows []domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.SessionID == "" {
			return storage.ErrInvalidInput
		}
		key := featureKey(r.SessionID, r.WindowEndMs)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		s.data[featureKey(r.SessionID, r.WindowEndMs)] = r
	}
	return nil
}

// GetBySessionID retrieves all rows for a session, ordered by window end ASC.
func (s *FeatureStore) GetBySessionID(_ context.Context, sessionID string) ([]domain.FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.FeatureRow
	for _, r := range s.data {
		if r.SessionID == sessionID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WindowEndMs < result[j].WindowEndMs })
	return result, nil
}
