// Command monitor is the live monitoring daemon: it ingests sensor samples
// from NATS (or a built-in synthetic demo source), runs the analysis
// pipeline on a fixed tick and publishes vitals and strain over WebSocket
// and Prometheus.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pulseguard/internal/domain"
	"pulseguard/internal/ingestion"
	"pulseguard/internal/observability"
	"pulseguard/internal/pipeline"
	"pulseguard/internal/strain"
	"pulseguard/internal/synth"
	"pulseguard/internal/telemetry"
)

const (
	tickInterval = 500 * time.Millisecond

	// lookbackSec of raw signal is analyzed per tick.
	lookbackSec = 6.0

	// holdTicks is how many low-quality ticks the last good vitals are
	// held before the display falls back to zeros. Brief finger shifts
	// should not blank the reading.
	holdTicks = 4

	minHoldQuality = 30.0
)

func main() {
	natsURL := flag.String("nats-url", "nats://127.0.0.1:4222", "NATS server URL")
	subject := flag.String("subject", "pulseguard.samples", "NATS subject carrying sensor lines")
	listen := flag.String("listen", ":8080", "HTTP listen address for /ws, /metrics and /health")
	sampleRate := flag.Float64("sample-rate", domain.DefaultSampleRate, "Sensor sample rate in Hz")
	windowSec := flag.Float64("strain-window", strain.DefaultWindowSec, "Strain feature window in seconds")
	baselineSec := flag.Float64("baseline", strain.DefaultBaselineSec, "Baseline calibration duration in seconds")
	masking := flag.Bool("masking", false, "Enable artifact masking and segment selection")
	demo := flag.Bool("demo", false, "Run against a synthetic demo source instead of NATS")
	demoDuration := flag.Float64("demo-duration", 600, "Demo scenario length in seconds")

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

	if err := run(ctx, logger, options{
		natsURL:      *natsURL,
		subject:      *subject,
		listen:       *listen,
		sampleRate:   *sampleRate,
		windowSec:    *windowSec,
		baselineSec:  *baselineSec,
		masking:      *masking,
		demo:         *demo,
		demoDuration: *demoDuration,
	}); err != nil && err != context.Canceled {
		logger.Fatal("monitor failed", zap.Error(err))
	}
}

type options struct {
	natsURL      string
	subject      string
	listen       string
	sampleRate   float64
	windowSec    float64
	baselineSec  float64
	masking      bool
	demo         bool
	demoDuration float64
}

func run(ctx context.Context, logger *zap.Logger, opts options) error {
	metrics := observability.NewMetrics("")

	pipe, err := pipeline.New(pipeline.Config{
		SampleRate:     opts.sampleRate,
		MaskingEnabled: opts.masking,
		Live:           true,
	})
	if err != nil {
		return err
	}

	engine := strain.NewEngine(
		strain.WithWindow(opts.windowSec),
		strain.WithCalibration(opts.baselineSec),
	)

	ring := ingestion.NewSampleRing(int(lookbackSec * opts.sampleRate))

	// Sample source: NATS by default, synthetic in demo mode.
	var source ingestion.RecordSource
	if opts.demo {
		logger.Info("demo mode: synthetic sensor source")
		source = ingestion.NewSyntheticSource(synth.Baseline(), opts.demoDuration)
	} else {
		nc, err := ingestion.ConnectNATS(opts.natsURL)
		if err != nil {
			return err
		}
		defer nc.Close()
		logger.Info("connected to nats", zap.String("url", opts.natsURL), zap.String("subject", opts.subject))
		source = ingestion.NewNATSSource(nc, opts.subject)
	}

	err = source.Start(ctx, func(rec domain.SessionRecord) {
		ring.Push(domain.Sample{TimeMs: rec.TimeMs, IR: rec.IR, Red: rec.Red})
		metrics.SamplesIngested.Inc()
		metrics.LastSampleTimeMs.Set(float64(rec.TimeMs))
	})
	if err != nil {
		return err
	}
	defer source.Close()

	hub := telemetry.NewHub(logger, func(n int) {
		metrics.WSClientsConnected.Set(float64(n))
	})
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: opts.listen, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info("http server listening", zap.String("addr", opts.listen))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", zap.Error(err))
		}
	}()

	runTicks(ctx, logger, metrics, pipe, engine, ring, hub)
	return ctx.Err()
}

// runTicks is the analysis loop: snapshot the ring, run the pipeline, feed
// the strain engine and broadcast.
func runTicks(ctx context.Context, logger *zap.Logger, metrics *observability.Metrics,
	pipe *pipeline.Runner, engine *strain.Engine, ring *ingestion.SampleRing, hub *telemetry.Hub) {

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var held domain.VitalsSnapshot
	heldFor := holdTicks

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			samples := ring.Snapshot()
			metrics.SampleBufferSize.Set(float64(len(samples)))
			if len(samples) == 0 {
				continue
			}

			start := time.Now()
			result := pipe.Process(ingestion.IRChannel(samples))
			vitals := result.Vitals
			metrics.RecordPipelineRun(time.Since(start).Seconds(),
				vitals.HR, vitals.HRVRMSSD, vitals.Quality, vitals.BeatCount)

			nowMs := samples[len(samples)-1].TimeMs

			// Hold the last good reading through brief signal dropouts.
			if vitals.Quality >= minHoldQuality && vitals.HR > 0 {
				held = vitals
				heldFor = 0
			} else if heldFor < holdTicks {
				heldFor++
				vitals = held
			}

			if vitals.HR > 0 {
				engine.Add(domain.StrainSample{
					TimeMs: nowMs,
					HR:     vitals.HR,
					HRV:    vitals.HRVRMSSD,
					IBI:    60000 / vitals.HR,
				})
			}

			features := engine.Features()
			status := strain.Status(features.StrainIndex)
			metrics.RecordStrain(features.StrainIndex, features.BaselineReady)

			hub.Broadcast(telemetry.NewSnapshot(nowMs, vitals, features, status))
			metrics.SnapshotsPublished.Inc()

			logger.Debug("tick",
				zap.Float64("hr", vitals.HR),
				zap.Float64("hrv", vitals.HRVRMSSD),
				zap.Float64("quality", vitals.Quality),
				zap.Float64("strain", features.StrainIndex),
				zap.String("status", string(status)),
			)
		}
	}
}
