// Command ingest subscribes to the sensor sample stream on NATS and
// persists session recordings to Postgres in batches.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pulseguard/internal/domain"
	"pulseguard/internal/ingestion"
	"pulseguard/internal/observability"
	"pulseguard/internal/storage"
	"pulseguard/internal/storage/memory"
	"pulseguard/internal/storage/migrations"
	pgstore "pulseguard/internal/storage/postgres"
)

const (
	flushInterval = 2 * time.Second
	batchSize     = 500
)

func main() {
	natsURL := flag.String("nats-url", "nats://127.0.0.1:4222", "NATS server URL")
	subject := flag.String("subject", "pulseguard.samples", "NATS subject carrying sensor lines")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	sessionID := flag.String("session-id", "", "Session ID to record under (default: derived from start time)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, logger, *natsURL, *subject, *postgresDSN, *sessionID, *useMemory, *metricsAddr); err != nil && err != context.Canceled {
		logger.Fatal("ingest failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger, natsURL, subject, postgresDSN, sessionID string, useMemory bool, metricsAddr string) error {
	metrics := observability.NewMetrics("")

	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Info("metrics server listening", zap.String("addr", metricsAddr))
			if err := http.ListenAndServe(metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
	}

	if sessionID == "" {
		sessionID = "session-" + time.Now().UTC().Format("20060102-150405")
	}
	logger.Info("recording session", zap.String("session_id", sessionID))

	var store storage.SessionStore = memory.NewSessionStore()
	if !useMemory {
		if postgresDSN == "" {
			return fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
		}
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		store = pgstore.NewSessionStore(pool)
	}

	nc, err := ingestion.ConnectNATS(natsURL)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer nc.Close()
	logger.Info("connected to nats", zap.String("url", natsURL), zap.String("subject", subject))

	// Records flow from the subscription callback into a channel; the main
	// loop owns batching and flushing.
	recordCh := make(chan domain.SessionRecord, 1024)
	source := ingestion.NewNATSSource(nc, subject)
	err = source.Start(ctx, func(rec domain.SessionRecord) {
		rec.SessionID = sessionID
		metrics.SamplesIngested.Inc()
		metrics.LastSampleTimeMs.Set(float64(rec.TimeMs))
		select {
		case recordCh <- rec:
		default:
			metrics.IngestErrors.WithLabelValues("buffer_full").Inc()
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer source.Close()

	flush := func(ctx context.Context, batch []domain.SessionRecord) {
		if len(batch) == 0 {
			return
		}
		if err := store.InsertBulk(ctx, batch); err != nil {
			metrics.IngestErrors.WithLabelValues("store").Inc()
			logger.Warn("store batch", zap.Int("records", len(batch)), zap.Error(err))
			return
		}
		metrics.RecordsStored.Add(float64(len(batch)))
		logger.Debug("stored batch", zap.Int("records", len(batch)))
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]domain.SessionRecord, 0, batchSize)
	for {
		select {
		case <-ctx.Done():
			// Final flush outside the cancelled context.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			flush(flushCtx, batch)
			cancel()
			return ctx.Err()
		case rec := <-recordCh:
			batch = append(batch, rec)
			if len(batch) >= batchSize {
				flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			flush(ctx, batch)
			batch = batch[:0]
		}
	}
}
