package clickhouse

import (
	"context"
	"fmt"

	"pulseguard/internal/domain"
	"pulseguard/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse. Training
// rows are written in batches after a session is windowed, then read back
// in bulk by the trainer export.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds multiple rows. Fails entire batch on duplicate.
// ClickHouse MergeTree does not enforce uniqueness, so duplicates are
// rejected with explicit checks before the batch insert.
func (s *FeatureStore) InsertBulk(ctx context.Context, rows []domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		sessionID   string
		windowEndMs int64
	}
	seen := make(map[key]struct{})
	for _, r := range rows {
		if r.SessionID == "" {
			return storage.ErrInvalidInput
		}
		k := key{r.SessionID, r.WindowEndMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, r := range rows {
		exists, err := s.exists(ctx, r.SessionID, r.WindowEndMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO feature_rows (
			session_id, window_end_ms,
			hr, hrv, spo2, beat_quality, label
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.SessionID, uint64(r.WindowEndMs),
			r.HR, r.HRV, r.SpO2, r.BeatQuality, int32(r.Label),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySessionID retrieves all rows for a session, ordered by window end ASC.
func (s *FeatureStore) GetBySessionID(ctx context.Context, sessionID string) ([]domain.FeatureRow, error) {
	query := `
		SELECT
			session_id, window_end_ms,
			hr, hrv, spo2, beat_quality, label
		FROM feature_rows
		WHERE session_id = ?
		ORDER BY window_end_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query by session id: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// exists checks if a row with the given key exists.
func (s *FeatureStore) exists(ctx context.Context, sessionID string, windowEndMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM feature_rows
		WHERE session_id = ? AND window_end_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, sessionID, uint64(windowEndMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanFeatureRows scans multiple rows into a slice.
func scanFeatureRows(rows chRows) ([]domain.FeatureRow, error) {
	var result []domain.FeatureRow

	for rows.Next() {
		var r domain.FeatureRow
		var windowEndMs uint64
		var label int32

		err := rows.Scan(
			&r.SessionID, &windowEndMs,
			&r.HR, &r.HRV, &r.SpO2, &r.BeatQuality, &label,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}

		r.WindowEndMs = int64(windowEndMs)
		r.Label = int(label)

		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	return result, nil
}
