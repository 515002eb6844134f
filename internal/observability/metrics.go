// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	SamplesIngested  prometheus.Counter
	RecordsStored    prometheus.Counter
	IngestErrors     *prometheus.CounterVec
	SampleBufferSize prometheus.Gauge
	LastSampleTimeMs prometheus.Gauge

	// Pipeline metrics
	PipelineRunsTotal prometheus.Counter
	PipelineEmpty     prometheus.Counter
	PipelineDuration  prometheus.Histogram
	BeatsDetected     prometheus.Counter
	SignalQuality     prometheus.Gauge
	HeartRate         prometheus.Gauge
	HRVRmssd          prometheus.Gauge

	// Strain metrics
	StrainIndex   prometheus.Gauge
	BaselineReady prometheus.Gauge

	// Telemetry metrics
	WSClientsConnected prometheus.Gauge
	SnapshotsPublished prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pulseguard"
	}

	return &Metrics{
		// Ingestion metrics
		SamplesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "samples_ingested_total",
			Help:      "Total number of raw PPG samples ingested",
		}),
		RecordsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_stored_total",
			Help:      "Total number of session records stored to database",
		}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by type",
		}, []string{"error_type"}),
		SampleBufferSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "sample_buffer_size",
			Help:      "Current number of samples in the rolling buffer",
		}),
		LastSampleTimeMs: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "last_sample_time_ms",
			Help:      "Timestamp of the most recently ingested sample",
		}),

		// Pipeline metrics
		PipelineRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs",
		}),
		PipelineEmpty: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "empty_results_total",
			Help:      "Total number of pipeline runs that produced no vitals",
		}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BeatsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "beats_detected_total",
			Help:      "Total number of heartbeats detected",
		}),
		SignalQuality: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "signal_quality",
			Help:      "Signal quality score of the latest pipeline run (0-100)",
		}),
		HeartRate: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "heart_rate_bpm",
			Help:      "Heart rate of the latest pipeline run in BPM",
		}),
		HRVRmssd: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "hrv_rmssd_ms",
			Help:      "RMSSD heart rate variability of the latest pipeline run in ms",
		}),

		// Strain metrics
		StrainIndex: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "strain",
			Name:      "index",
			Help:      "Current strain index (0-1)",
		}),
		BaselineReady: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "strain",
			Name:      "baseline_ready",
			Help:      "Whether the strain baseline has been frozen (0 or 1)",
		}),

		// Telemetry metrics
		WSClientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "ws_clients_connected",
			Help:      "Number of connected WebSocket clients",
		}),
		SnapshotsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "snapshots_published_total",
			Help:      "Total number of vitals snapshots broadcast to clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPipelineRun records one pipeline run and its latest vitals.
func (m *Metrics) RecordPipelineRun(durationSeconds, hr, hrv, quality float64, beats int) {
	m.PipelineRunsTotal.Inc()
	m.PipelineDuration.Observe(durationSeconds)
	if beats == 0 {
		m.PipelineEmpty.Inc()
		return
	}
	m.BeatsDetected.Add(float64(beats))
	m.SignalQuality.Set(quality)
	m.HeartRate.Set(hr)
	m.HRVRmssd.Set(hrv)
}

// RecordStrain updates the strain gauges.
func (m *Metrics) RecordStrain(index float64, baselineReady bool) {
	m.StrainIndex.Set(index)
	if baselineReady {
		m.BaselineReady.Set(1)
	} else {
		m.BaselineReady.Set(0)
	}
}
