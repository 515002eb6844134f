package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pulseguard/internal/domain"
	"pulseguard/internal/storage"
)

// SessionStore implements storage.SessionStore using PostgreSQL.
type SessionStore struct {
	pool *Pool
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(pool *Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SessionStore = (*SessionStore)(nil)

const sessionInsertQuery = `
	INSERT INTO session_records (
		session_id, time_ms, ir, red,
		bpm, hrv, spo2,
		finger_detected, hrv_ready, beat_quality
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7,
		$8, $9, $10
	)
`

const sessionSelectColumns = `
	session_id, time_ms, ir, red,
	bpm, hrv, spo2,
	finger_detected, hrv_ready, beat_quality
`

// InsertBulk appends records atomically. Fails entire batch on any duplicate.
func (s *SessionStore) InsertBulk(ctx context.Context, records []domain.SessionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r.SessionID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, sessionInsertQuery,
			r.SessionID, r.TimeMs, r.IR, r.Red,
			r.HR, r.HRV, r.SpO2,
			r.FingerDetected, r.HRVReady, r.BeatQuality,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert session record in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySessionID retrieves a full recording, ordered by time ASC.
func (s *SessionStore) GetBySessionID(ctx context.Context, sessionID string) ([]domain.SessionRecord, error) {
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM session_records
		WHERE session_id = $1
		ORDER BY time_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session records by session id: %w", err)
	}
	defer rows.Close()

	return scanSessionRecords(rows)
}

// GetByTimeRange retrieves records within [start, end], ordered by time ASC.
func (s *SessionStore) GetByTimeRange(ctx context.Context, sessionID string, start, end int64) ([]domain.SessionRecord, error) {
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM session_records
		WHERE session_id = $1 AND time_ms >= $2 AND time_ms <= $3
		ORDER BY time_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, sessionID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get session records by time range: %w", err)
	}
	defer rows.Close()

	return scanSessionRecords(rows)
}

// ListSessions returns the distinct session IDs, sorted.
func (s *SessionStore) ListSessions(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT session_id
		FROM session_records
		ORDER BY session_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session ids: %w", err)
	}
	return ids, nil
}

// scanSessionRecords scans multiple rows into a slice of SessionRecord.
func scanSessionRecords(rows pgx.Rows) ([]domain.SessionRecord, error) {
	var records []domain.SessionRecord

	for rows.Next() {
		var r domain.SessionRecord

		err := rows.Scan(
			&r.SessionID, &r.TimeMs, &r.IR, &r.Red,
			&r.HR, &r.HRV, &r.SpO2,
			&r.FingerDetected, &r.HRVReady, &r.BeatQuality,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session record row: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session record rows: %w", err)
	}

	return records, nil
}
