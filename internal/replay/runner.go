package replay

import (
	"sort"

	"pulseguard/internal/domain"
	"pulseguard/internal/pipeline"
	"pulseguard/internal/strain"
)

// Replay windowing: the pipeline sees the trailing lookback of raw signal,
// advanced in fixed steps, matching the live monitor's cadence.
const (
	DefaultLookbackMs = 6000
	DefaultStepMs     = 2000
)

// StepResult is emitted once per replay step.
type StepResult struct {
	TimeMs   int64
	Vitals   domain.VitalsSnapshot
	Features domain.StrainFeatures
	Status   domain.StrainStatus
}

// Runner drives a recorded session through the pipeline and strain engine
// deterministically: same recording in, same step results out.
type Runner struct {
	pipe       *pipeline.Runner
	engine     *strain.Engine
	lookbackMs int64
	stepMs     int64
}

// NewRunner creates a replay runner around an existing pipeline and engine.
func NewRunner(pipe *pipeline.Runner, engine *strain.Engine) *Runner {
	return &Runner{
		pipe:       pipe,
		engine:     engine,
		lookbackMs: DefaultLookbackMs,
		stepMs:     DefaultStepMs,
	}
}

// SetWindow overrides the lookback and step, in milliseconds.
func (r *Runner) SetWindow(lookbackMs, stepMs int64) {
	if lookbackMs > 0 {
		r.lookbackMs = lookbackMs
	}
	if stepMs > 0 {
		r.stepMs = stepMs
	}
}

// Run replays the records in time order, invoking emit once per step. The
// strain engine receives one sample per step in which the pipeline produced
// a heart rate, exactly as the live monitor feeds it.
func (r *Runner) Run(records []domain.SessionRecord, emit func(StepResult)) {
	if len(records) == 0 {
		return
	}

	sorted := make([]domain.SessionRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TimeMs < sorted[j].TimeMs })

	start := sorted[0].TimeMs
	end := sorted[len(sorted)-1].TimeMs

	lo := 0
	for t := start + r.lookbackMs; t <= end; t += r.stepMs {
		for lo < len(sorted) && sorted[lo].TimeMs < t-r.lookbackMs {
			lo++
		}
		var window []float64
		for i := lo; i < len(sorted) && sorted[i].TimeMs <= t; i++ {
			window = append(window, sorted[i].IR)
		}

		result := r.pipe.Process(window)
		if hr := result.Vitals.HR; hr > 0 {
			r.engine.Add(domain.StrainSample{
				TimeMs: t,
				HR:     hr,
				HRV:    result.Vitals.HRVRMSSD,
				IBI:    60000 / hr,
			})
		}

		features := r.engine.Features()
		if emit != nil {
			emit(StepResult{
				TimeMs:   t,
				Vitals:   result.Vitals,
				Features: features,
				Status:   strain.Status(features.StrainIndex),
			})
		}
	}
}
