// Package features builds windowed training rows from recorded sessions
// for the external strain classifier. Its only contract is deterministic,
// reproducible windowing; it performs no modeling.
//
// The windowing scheme (2 s step, 5 s HR lookback, 15 s HRV lookback) is
// deliberately independent from the live strain engine's 60 s window: the
// external model was fitted against exactly this scheme, and converging the
// two would silently invalidate previously trained artifacts.
package features

import (
	"sort"

	"pulseguard/internal/domain"
	"pulseguard/internal/stats"
)

// Builder defaults.
const (
	DefaultStepMs        = 2000
	DefaultHRLookbackMs  = 5000
	DefaultHRVLookbackMs = 15000

	// Input row filters: finger on sensor, a minimally trustworthy beat
	// and a plausible heart rate.
	minBeatQuality = 40.0
	minHRBpm       = 30.0
)

// Builder slides a step window over a recorded session and emits one
// feature row per step. HR, SpO2 and beat quality are medians over a short
// lookback; HRV is the median over a longer lookback restricted to rows
// where the firmware's HRV estimator was ready.
type Builder struct {
	StepMs        int64
	HRLookbackMs  int64
	HRVLookbackMs int64
}

// NewBuilder returns a builder with the default windowing scheme.
func NewBuilder() *Builder {
	return &Builder{
		StepMs:        DefaultStepMs,
		HRLookbackMs:  DefaultHRLookbackMs,
		HRVLookbackMs: DefaultHRVLookbackMs,
	}
}

// Build produces labeled feature rows from session records. Records are
// filtered (finger detected, beat quality >= 40, HR > 30 BPM) and sorted by
// time; windows with no usable HR or beat-quality data are dropped. Output
// is fully determined by the input.
func (b *Builder) Build(records []domain.SessionRecord, label int) []domain.FeatureRow {
	usable := make([]domain.SessionRecord, 0, len(records))
	for _, r := range records {
		if r.FingerDetected && r.BeatQuality >= minBeatQuality && r.HR > minHRBpm {
			usable = append(usable, r)
		}
	}
	if len(usable) == 0 {
		return nil
	}
	sort.Slice(usable, func(i, j int) bool { return usable[i].TimeMs < usable[j].TimeMs })

	start := usable[0].TimeMs
	end := usable[len(usable)-1].TimeMs

	var rows []domain.FeatureRow
	for t := start + b.HRLookbackMs; t <= end; t += b.StepMs {
		var hrs, spo2s, quals, hrvs []float64
		for _, r := range usable {
			if r.TimeMs > t {
				break
			}
			if r.TimeMs >= t-b.HRLookbackMs {
				hrs = append(hrs, r.HR)
				spo2s = append(spo2s, r.SpO2)
				quals = append(quals, r.BeatQuality)
			}
			if r.TimeMs >= t-b.HRVLookbackMs && r.HRVReady {
				hrvs = append(hrvs, r.HRV)
			}
		}
		if len(hrs) == 0 || len(quals) == 0 {
			continue
		}

		rows = append(rows, domain.FeatureRow{
			SessionID:   usable[0].SessionID,
			WindowEndMs: t,
			HR:          stats.Median(hrs),
			HRV:         stats.Median(hrvs),
			SpO2:        stats.Median(spo2s),
			BeatQuality: stats.Median(quals),
			Label:       label,
		})
	}
	return rows
}
