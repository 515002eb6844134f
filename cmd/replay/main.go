// Command replay runs a recorded session (CSV file or a stored session from
// Postgres) through the analysis pipeline and prints per-step vitals and
// strain, for validating pipeline changes against known recordings.
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
	"pulseguard/internal/pipeline"
	"pulseguard/internal/replay"
	pgstore "pulseguard/internal/storage/postgres"
	"pulseguard/internal/strain"
)

func main() {
	file := flag.String("file", "", "Session CSV file to replay")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (replay a stored session)")
	sessionID := flag.String("session-id", "", "Stored session ID, required with --postgres-dsn")
	sampleRate := flag.Float64("sample-rate", 0, "Sample rate in Hz (default: estimated from timestamps)")
	lookbackMs := flag.Int64("lookback-ms", replay.DefaultLookbackMs, "Raw signal lookback per step in ms")
	stepMs := flag.Int64("step-ms", replay.DefaultStepMs, "Step interval in ms")
	masking := flag.Bool("masking", false, "Enable artifact masking and segment selection")

	flag.Parse()

	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags)

	records, err := loadRecords(*file, *postgresDSN, *sessionID)
	if err != nil {
		logger.Fatalf("Error: %v", err)
	}
	if len(records) == 0 {
		logger.Fatal("Session is empty")
	}
	logger.Printf("Loaded %d records spanning %d ms", len(records),
		records[len(records)-1].TimeMs-records[0].TimeMs)

	fs := *sampleRate
	if fs <= 0 {
		samples := make([]domain.Sample, len(records))
		for i, r := range records {
			samples[i] = domain.Sample{TimeMs: r.TimeMs, IR: r.IR}
		}
		fs = domain.EstimateSampleRate(samples)
		logger.Printf("Estimated sample rate: %.1f Hz", fs)
	}

	pipe, err := pipeline.New(pipeline.Config{
		SampleRate:     fs,
		MaskingEnabled: *masking,
		Live:           true,
	})
	if err != nil {
		logger.Fatalf("Error: %v", err)
	}

	engine := strain.NewEngine()
	runner := replay.NewRunner(pipe, engine)
	runner.SetWindow(*lookbackMs, *stepMs)

	fmt.Println("time_ms,hr,hrv_rmssd,quality,beats,strain_index,hrv_drop,irregularity,baseline_ready,status")
	steps := 0
	runner.Run(records, func(s replay.StepResult) {
		ready := 0
		if s.Features.BaselineReady {
			ready = 1
		}
		fmt.Printf("%d,%.1f,%.1f,%.0f,%d,%.3f,%.3f,%.3f,%d,%s\n",
			s.TimeMs, s.Vitals.HR, s.Vitals.HRVRMSSD, s.Vitals.Quality, s.Vitals.BeatCount,
			s.Features.StrainIndex, s.Features.HRVDrop, s.Features.Irregularity, ready, s.Status)
		steps++
	})
	logger.Printf("Replay complete: %d steps", steps)
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
