// Package storage defines the persistence interfaces for session
// recordings and training feature rows, with in-memory, Postgres and
// ClickHouse implementations in subpackages. Stores are append-only: a
// recording is immutable once written.
package storage

import (
	"context"

	"pulseguard/internal/domain"
)

// SessionStore provides access to persisted session recordings. The core
// pipeline only ever reads recordings back as replay input.
type SessionStore interface {
	// InsertBulk appends records atomically. Returns ErrDuplicateKey if
	// any (session_id, time_ms) already exists.
	InsertBulk(ctx context.Context, records []domain.SessionRecord) error

	// GetBySessionID retrieves a full recording, ordered by time ASC.
	GetBySessionID(ctx context.Context, sessionID string) ([]domain.SessionRecord, error)

	// GetByTimeRange retrieves records for a session within [start, end]
	// (inclusive), ordered by time ASC.
	GetByTimeRange(ctx context.Context, sessionID string, start, end int64) ([]domain.SessionRecord, error)

	// ListSessions returns the distinct session IDs, sorted.
	ListSessions(ctx context.Context) ([]string, error)
}

// FeatureStore provides access to windowed training rows consumed by the
// external classifier trainer.
type FeatureStore interface {
	// InsertBulk appends rows. Returns ErrDuplicateKey if any
	// (session_id, window_end_ms) already exists.
	InsertBulk(ctx context.Context, rows []domain.FeatureRow) error

	// GetBySessionID retrieves all rows for a session, ordered by window
	// end ASC.
	GetBySessionID(ctx context.Context, sessionID string) ([]domain.FeatureRow, error)
}
