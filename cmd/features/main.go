// Command features builds windowed training rows from recorded sessions.
// Input comes from a session CSV file or Postgres; output goes to stdout as
// CSV and, optionally, to ClickHouse for the trainer export.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pulseguard/internal/domain"
	"pulseguard/internal/features"
	"pulseguard/internal/replay"
	chstore "pulseguard/internal/storage/clickhouse"
	"pulseguard/internal/storage/migrations"
	pgstore "pulseguard/internal/storage/postgres"
)

func main() {
	file := flag.String("file", "", "Session CSV file to window")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (read a stored session)")
	sessionID := flag.String("session-id", "", "Stored session ID, required with --postgres-dsn")
	label := flag.Int("label", 0, "Class label for every row (0 = baseline, 1 = strain)")
	stepMs := flag.Int64("step-ms", features.DefaultStepMs, "Window step in ms")
	hrLookbackMs := flag.Int64("hr-lookback-ms", features.DefaultHRLookbackMs, "HR/SpO2/quality lookback in ms")
	hrvLookbackMs := flag.Int64("hrv-lookback-ms", features.DefaultHRVLookbackMs, "HRV lookback in ms")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN to also store rows (empty to skip)")

	flag.Parse()

	logger := log.New(os.Stderr, "[features] ", log.LstdFlags)

	records, err := loadRecords(*file, *postgresDSN, *sessionID)
	if err != nil {
		logger.Fatalf("Error: %v", err)
	}
	logger.Printf("Loaded %d records", len(records))

	builder := &features.Builder{
		StepMs:        *stepMs,
		HRLookbackMs:  *hrLookbackMs,
		HRVLookbackMs: *hrvLookbackMs,
	}
	rows := builder.Build(records, *label)
	logger.Printf("Built %d feature rows", len(rows))

	var sb strings.Builder
	sb.WriteString("session_id,window_end_ms,hr,hrv,spo2,beat_quality,label\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%.1f,%.1f,%.1f,%.1f,%d\n",
			r.SessionID, r.WindowEndMs, r.HR, r.HRV, r.SpO2, r.BeatQuality, r.Label))
	}
	fmt.Print(sb.String())

	if *clickhouseDSN != "" && len(rows) > 0 {
		if err := storeRows(*clickhouseDSN, rows); err != nil {
			logger.Fatalf("Error: %v", err)
		}
		logger.Printf("Stored %d rows to ClickHouse", len(rows))
	}
}

func loadRecords(file, postgresDSN, sessionID string) ([]domain.SessionRecord, error) {
	switch {
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		id := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		return replay.ReadSession(f, id)

	case postgresDSN != "":
		if sessionID == "" {
			return nil, fmt.Errorf("--session-id is required with --postgres-dsn")
		}
		ctx := context.Background()
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		return pgstore.NewSessionStore(pool).GetBySessionID(ctx, sessionID)

	default:
		return nil, fmt.Errorf("either --file or --postgres-dsn is required")
	}
}

func storeRows(dsn string, rows []domain.FeatureRow) error {
	ctx := context.Background()
	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	if err != nil {
		return fmt.Errorf("clickhouse migrations: %w", err)
	}
	defer conn.Close()

	if err := chstore.NewFeatureStore(conn).InsertBulk(ctx, rows); err != nil {
		return fmt.Errorf("store feature rows: %w", err)
	}
	return nil
}
