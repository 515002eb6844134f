package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseguard/internal/domain"
	"pulseguard/internal/storage"
)

func makeRecord(sessionID string, timeMs int64) domain.SessionRecord {
	return domain.SessionRecord{
		SessionID:      sessionID,
		TimeMs:         timeMs,
		IR:             85000,
		Red:            41000,
		FingerDetected: true,
	}
}

func TestSessionStore_InsertAndGet(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	records := []domain.SessionRecord{
		makeRecord("s1", 20),
		makeRecord("s1", 0),
		makeRecord("s1", 10),
		makeRecord("s2", 0),
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	result, err := store.GetBySessionID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, int64(0), result[0].TimeMs)
	assert.Equal(t, int64(10), result[1].TimeMs)
	assert.Equal(t, int64(20), result[2].TimeMs)
}

func TestSessionStore_DuplicateRejected(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []domain.SessionRecord{makeRecord("s1", 0)}))

	err := store.InsertBulk(ctx, []domain.SessionRecord{
		makeRecord("s1", 10),
		makeRecord("s1", 0), // duplicate!
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Batch must not be partially applied
	result, err := store.GetBySessionID(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestSessionStore_IntraBatchDuplicate(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []domain.SessionRecord{
		makeRecord("s1", 0),
		makeRecord("s1", 0),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSessionStore_InvalidInput(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []domain.SessionRecord{makeRecord("", 0)})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestSessionStore_GetByTimeRange(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	var records []domain.SessionRecord
	for ms := int64(0); ms <= 100; ms += 10 {
		records = append(records, makeRecord("s1", ms))
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	result, err := store.GetByTimeRange(ctx, "s1", 20, 50)
	require.NoError(t, err)
	require.Len(t, result, 4)
	assert.Equal(t, int64(20), result[0].TimeMs)
	assert.Equal(t, int64(50), result[3].TimeMs)
}

func TestSessionStore_ListSessions(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []domain.SessionRecord{
		makeRecord("s-b", 0),
		makeRecord("s-a", 0),
		makeRecord("s-a", 10),
	}))

	ids, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-a", "s-b"}, ids)
}

func TestFeatureStore_InsertAndGet(t *testing.T) {
	store := NewFeatureStore()
	ctx := context.Background()

	rows := []domain.FeatureRow{
		{SessionID: "s1", WindowEndMs: 7000, HR: 75},
		{SessionID: "s1", WindowEndMs: 5000, HR: 72},
	}
	require.NoError(t, store.InsertBulk(ctx, rows))

	result, err := store.GetBySessionID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, int64(5000), result[0].WindowEndMs)
	assert.Equal(t, int64(7000), result[1].WindowEndMs)
}

func TestFeatureStore_DuplicateRejected(t *testing.T) {
	store := NewFeatureStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []domain.FeatureRow{
		{SessionID: "s1", WindowEndMs: 5000},
	}))

	err := store.InsertBulk(ctx, []domain.FeatureRow{
		{SessionID: "s1", WindowEndMs: 5000},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}
