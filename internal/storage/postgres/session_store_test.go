package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseguard/internal/domain"
	"pulseguard/internal/storage"
)

func makeTestRecord(sessionID string, timeMs int64) domain.SessionRecord {
	return domain.SessionRecord{
		SessionID:      sessionID,
		TimeMs:         timeMs,
		IR:             85000 + float64(timeMs%100),
		Red:            41000,
		HR:             72,
		HRV:            45,
		SpO2:           98,
		FingerDetected: true,
		HRVReady:       true,
		BeatQuality:    85,
	}
}

func TestSessionStore_InsertBulkAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	records := []domain.SessionRecord{
		makeTestRecord("session-1", 0),
		makeTestRecord("session-1", 10),
		makeTestRecord("session-1", 20),
	}

	err := store.InsertBulk(ctx, records)
	require.NoError(t, err)

	result, err := store.GetBySessionID(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, result, 3)

	first := result[0]
	assert.Equal(t, "session-1", first.SessionID)
	assert.Equal(t, int64(0), first.TimeMs)
	assert.InDelta(t, 85000.0, first.IR, 0.0001)
	assert.InDelta(t, 41000.0, first.Red, 0.0001)
	assert.InDelta(t, 72.0, first.HR, 0.0001)
	assert.InDelta(t, 45.0, first.HRV, 0.0001)
	assert.InDelta(t, 98.0, first.SpO2, 0.0001)
	assert.True(t, first.FingerDetected)
	assert.True(t, first.HRVReady)
	assert.InDelta(t, 85.0, first.BeatQuality, 0.0001)
}

func TestSessionStore_InsertBulkAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	firstBatch := []domain.SessionRecord{
		makeTestRecord("session-atomic", 0),
	}
	err := store.InsertBulk(ctx, firstBatch)
	require.NoError(t, err)

	// Second batch has a duplicate - should fail entirely
	secondBatch := []domain.SessionRecord{
		makeTestRecord("session-atomic", 10),
		makeTestRecord("session-atomic", 0), // duplicate!
	}
	err = store.InsertBulk(ctx, secondBatch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Should still have only 1 record (atomic rollback)
	result, err := store.GetBySessionID(ctx, "session-atomic")
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestSessionStore_InsertBulkEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	err := store.InsertBulk(ctx, nil)
	require.NoError(t, err)
}

func TestSessionStore_InsertBulkInvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	records := []domain.SessionRecord{makeTestRecord("", 0)}
	err := store.InsertBulk(ctx, records)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestSessionStore_Ordering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	// Insert out of order
	records := []domain.SessionRecord{
		makeTestRecord("session-order", 20),
		makeTestRecord("session-order", 0),
		makeTestRecord("session-order", 10),
	}
	err := store.InsertBulk(ctx, records)
	require.NoError(t, err)

	result, err := store.GetBySessionID(ctx, "session-order")
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, int64(0), result[0].TimeMs)
	assert.Equal(t, int64(10), result[1].TimeMs)
	assert.Equal(t, int64(20), result[2].TimeMs)
}

func TestSessionStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	var records []domain.SessionRecord
	for ms := int64(0); ms <= 100; ms += 10 {
		records = append(records, makeTestRecord("session-range", ms))
	}
	err := store.InsertBulk(ctx, records)
	require.NoError(t, err)

	// Bounds are inclusive
	result, err := store.GetByTimeRange(ctx, "session-range", 20, 50)
	require.NoError(t, err)
	require.Len(t, result, 4)
	assert.Equal(t, int64(20), result[0].TimeMs)
	assert.Equal(t, int64(50), result[3].TimeMs)
}

func TestSessionStore_ListSessions(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	records := []domain.SessionRecord{
		makeTestRecord("session-b", 0),
		makeTestRecord("session-a", 0),
		makeTestRecord("session-a", 10),
	}
	err := store.InsertBulk(ctx, records)
	require.NoError(t, err)

	ids, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"session-a", "session-b"}, ids)
}

func TestSessionStore_EmptyResult(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSessionStore(pool)

	result, err := store.GetBySessionID(ctx, "nonexistent-session")
	require.NoError(t, err)
	assert.Empty(t, result)

	ids, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
