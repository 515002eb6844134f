// Package strain maintains the rolling-window strain model: a bounded
// window of HR/HRV/IBI observations, a freeze-once personal baseline and a
// composite strain index derived on demand.
package strain

import (
	"pulseguard/internal/domain"
	"pulseguard/internal/stats"
)

// Engine defaults. The window capacity covers the default horizon at a
// 10 Hz vitals cadence.
const (
	DefaultWindowSec   = 60.0
	DefaultBaselineSec = 30.0
	DefaultCapacity    = 600

	// hrFloor and hrvFloor reject obviously bad observations from the
	// baseline and from hrv_mean.
	hrFloor  = 30.0
	hrvFloor = 5.0

	// cvIrregular is the IBI coefficient of variation treated as fully
	// irregular.
	cvIrregular = 0.15
)

// Strain status display bands.
const (
	relaxedBelow  = 0.3
	strainedAbove = 0.6
)

// Engine is the per-session strain state machine. All state is owned by the
// instance: concurrent monitoring sessions each get their own Engine and
// share nothing. Not safe for concurrent use; the session model is
// single-threaded by design.
type Engine struct {
	windowSec   float64
	baselineSec float64

	// rolling window as a ring buffer; samples[head] is the oldest entry
	// once the ring is full.
	samples []domain.StrainSample
	head    int
	count   int

	baseline        *domain.Baseline
	baselineStartMs int64
	started         bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithWindow sets the trailing feature window in seconds.
func WithWindow(sec float64) Option {
	return func(e *Engine) { e.windowSec = sec }
}

// WithCalibration sets the baseline calibration duration in seconds.
func WithCalibration(sec float64) Option {
	return func(e *Engine) { e.baselineSec = sec }
}

// WithCapacity bounds the rolling window's sample count.
func WithCapacity(n int) Option {
	return func(e *Engine) { e.samples = make([]domain.StrainSample, n) }
}

// NewEngine creates an engine with an uncalibrated baseline.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		windowSec:   DefaultWindowSec,
		baselineSec: DefaultBaselineSec,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.samples == nil {
		e.samples = make([]domain.StrainSample, DefaultCapacity)
	}
	return e
}

// Reset clears all state for a new monitoring session, including the frozen
// baseline. The baseline is never recomputed any other way.
func (e *Engine) Reset() {
	e.head = 0
	e.count = 0
	e.baseline = nil
	e.started = false
}

// Add appends an observation to the rolling window. Samples without a heart
// rate are rejected: they carry no information the features can use. The
// oldest sample is evicted once the window is at capacity. Add also drives
// the one-shot baseline transition.
func (e *Engine) Add(s domain.StrainSample) {
	if s.HR <= 0 {
		return
	}
	if !e.started {
		e.started = true
		e.baselineStartMs = s.TimeMs
	}

	idx := (e.head + e.count) % len(e.samples)
	e.samples[idx] = s
	if e.count < len(e.samples) {
		e.count++
	} else {
		e.head = (e.head + 1) % len(e.samples)
	}

	e.maybeFreezeBaseline()
}

// Len reports the number of samples currently in the window.
func (e *Engine) Len() int {
	return e.count
}

// Baseline returns the frozen baseline, if calibration has completed.
func (e *Engine) Baseline() (domain.Baseline, bool) {
	if e.baseline == nil {
		return domain.Baseline{}, false
	}
	return *e.baseline, true
}

// maybeFreezeBaseline performs the uncalibrated → frozen transition: once
// the elapsed time since the first sample reaches the calibration duration
// and the window holds enough plausible HR and HRV values, the medians are
// frozen for the rest of the session. Fires at most once.
func (e *Engine) maybeFreezeBaseline() {
	if e.baseline != nil || e.count == 0 {
		return
	}

	last := e.at(e.count - 1)
	if float64(last.TimeMs-e.baselineStartMs) < e.baselineSec*1000 {
		return
	}

	var hrs, hrvs []float64
	for i := 0; i < e.count; i++ {
		s := e.at(i)
		if s.HR > hrFloor {
			hrs = append(hrs, s.HR)
		}
		if s.HRV > hrvFloor {
			hrvs = append(hrvs, s.HRV)
		}
	}
	if len(hrs) < 5 || len(hrvs) < 3 {
		return
	}

	e.baseline = &domain.Baseline{
		HR:  stats.Median(hrs),
		HRV: stats.Median(hrvs),
	}
}

// at returns the i-th oldest sample in the window.
func (e *Engine) at(i int) domain.StrainSample {
	return e.samples[(e.head+i)%len(e.samples)]
}

// Features derives the strain features from the trailing window and the
// baseline state. Pure with respect to engine state: repeated calls with an
// unchanged window yield identical output.
func (e *Engine) Features() domain.StrainFeatures {
	if e.count < 3 {
		return domain.StrainFeatures{}
	}

	// Restrict to the trailing windowSec seconds.
	newest := e.at(e.count - 1).TimeMs
	oldest := e.at(0).TimeMs
	from := 0
	if float64(newest-oldest) > e.windowSec*1000 {
		cutoff := newest - int64(e.windowSec*1000)
		for from < e.count && e.at(from).TimeMs < cutoff {
			from++
		}
	}

	var hrs, hrvsValid, ibisValid []float64
	for i := from; i < e.count; i++ {
		s := e.at(i)
		hrs = append(hrs, s.HR)
		if s.HRV > hrvFloor {
			hrvsValid = append(hrvsValid, s.HRV)
		}
		if s.IBI >= 400 && s.IBI <= 1500 {
			ibisValid = append(ibisValid, s.IBI)
		}
	}

	f := domain.StrainFeatures{
		HRMean:        stats.Mean(hrs),
		HRVMean:       stats.Mean(hrvsValid),
		BaselineReady: e.baseline != nil,
	}

	if e.baseline != nil && e.baseline.HRV > 0 && f.HRVMean > 0 {
		f.HRVDrop = stats.Clamp((e.baseline.HRV-f.HRVMean)/e.baseline.HRV, 0, 1)
	}

	if len(ibisValid) >= 2 {
		if mean := stats.Mean(ibisValid); mean > 0 {
			cv := stats.StddevPop(ibisValid) / mean
			f.Irregularity = stats.Clamp(cv/cvIrregular, 0, 1)
		}
	}

	f.StrainIndex = e.strainIndex(f)
	return f
}

// strainIndex combines HR elevation, HRV suppression and irregularity.
// Calibrated: 40% HR elevation over baseline (+30 BPM = max), 40% HRV drop,
// 20% irregularity. Before calibration a population heuristic stands in:
// 60-110 BPM maps the HR term, HRV above 80 ms counts as fully relaxed.
func (e *Engine) strainIndex(f domain.StrainFeatures) float64 {
	if e.baseline != nil && e.baseline.HR > 0 {
		hrNorm := stats.Clamp((f.HRMean-e.baseline.HR)/30.0, 0, 1)
		return stats.Clamp(0.4*hrNorm+0.4*f.HRVDrop+0.2*f.Irregularity, 0, 1)
	}

	if f.HRMean <= hrFloor {
		return 0
	}
	hrSimple := stats.Clamp((f.HRMean-60)/50.0, 0, 1)
	hrvSimple := 0.0
	if f.HRVMean >= 10 {
		hrvSimple = 1 - stats.Clamp(f.HRVMean/80.0, 0, 1)
	}
	return stats.Clamp(0.5*hrSimple+0.3*hrvSimple+0.2*f.Irregularity, 0, 1)
}

// Status buckets a strain index into the display bands the live monitor
// uses.
func Status(strainIndex float64) domain.StrainStatus {
	switch {
	case strainIndex > strainedAbove:
		return domain.StatusStrained
	case strainIndex < relaxedBelow:
		return domain.StatusRelaxed
	default:
		return domain.StatusModerate
	}
}
