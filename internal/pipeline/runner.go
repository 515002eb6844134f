// Package pipeline chains the conditioning and beat-extraction stages into a
// single per-buffer run: artifact mask → segment select → detrend →
// band-pass → peak detect → IBI validate → vitals.
package pipeline

import (
	"fmt"

	"pulseguard/internal/beat"
	"pulseguard/internal/domain"
	"pulseguard/internal/signal"
)

// minInput is the shortest buffer worth processing; anything below returns
// the empty result immediately.
const minInput = 30

// Config is the deployment profile for a monitoring session.
type Config struct {
	// SampleRate in Hz. Must be positive.
	SampleRate float64

	// MaskingEnabled runs artifact masking and segment selection before
	// filtering. Disabled by default for low-rate vitals streams, where
	// the flatness check misfires; enable for raw 100 Hz streams.
	MaskingEnabled bool

	// MinSegmentLen is the minimum usable run length when masking is
	// enabled. Defaults to signal.DefaultMinSegment.
	MinSegmentLen int

	// Detrend selects the baseline estimator. Defaults to DetrendEMA.
	Detrend signal.DetrendMode

	// Live switches peak detection to the adaptive variant with polarity
	// fallback and threshold relaxation.
	Live bool

	// Polarity strategy for the live variant. Defaults to count
	// preference.
	Polarity signal.PolarityPicker
}

// Runner executes the pipeline against raw buffers. One Runner per
// monitoring session; Process is not safe for concurrent use, matching the
// single-threaded session model.
type Runner struct {
	cfg    Config
	filter *signal.BandpassFilter
}

// New validates the profile and designs the band-pass filter for it.
// Invalid configuration (non-positive sample rate) is the only fatal
// condition in the package.
func New(cfg Config) (*Runner, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("pipeline: sample rate must be positive, got %v", cfg.SampleRate)
	}
	if cfg.MinSegmentLen <= 0 {
		cfg.MinSegmentLen = signal.DefaultMinSegment
	}
	if cfg.Detrend == "" {
		cfg.Detrend = signal.DetrendEMA
	}

	filter, err := signal.DesignBandpass(cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, filter: filter}, nil
}

// Config returns the profile the runner was built with.
func (r *Runner) Config() Config {
	return r.cfg
}

// Process runs the full pipeline over one raw buffer and returns a vitals
// snapshot plus the filtered waveform (placed back at its original segment
// offset, zero-padded elsewhere) and the peak indices mapped to buffer
// positions. Degraded inputs of any kind produce the empty result; Process
// never panics on data.
func (r *Runner) Process(buf []float64) *domain.PipelineResult {
	n := len(buf)
	if n < minInput {
		return domain.EmptyResult(n)
	}

	segment := buf
	segStart := 0
	if r.cfg.MaskingEnabled {
		mask := signal.MaskArtifacts(buf)
		segment, segStart = signal.BestSegment(buf, mask, r.cfg.MinSegmentLen)
		if len(segment) == 0 {
			return domain.EmptyResult(n)
		}
	}

	detrended := signal.RemoveBaseline(segment, r.cfg.Detrend)
	filtered := r.filter.Apply(detrended)

	var peaks []int
	if r.cfg.Live {
		peaks = signal.FindPeaksAdaptive(filtered, r.cfg.SampleRate, r.cfg.Polarity)
	} else {
		peaks = signal.FindPeaks(filtered, r.cfg.SampleRate)
	}

	ibi := beat.PeaksToIBI(peaks, r.cfg.SampleRate)

	result := domain.EmptyResult(n)
	copy(result.Filtered[segStart:], filtered)
	result.Peaks = make([]int, len(peaks))
	for i, p := range peaks {
		result.Peaks[i] = p + segStart
	}
	result.IBIs = ibi
	result.Vitals = domain.VitalsSnapshot{
		HR:        beat.HR(ibi),
		HRVRMSSD:  beat.RMSSD(ibi),
		HRVSDNN:   beat.SDNN(ibi),
		Quality:   beat.Quality(ibi),
		BeatCount: len(peaks),
	}
	return result
}
