// Package beat converts detected peak positions into validated inter-beat
// intervals and the vitals derived from them.
package beat

import "math"

// Physiological IBI bounds: 40-150 BPM.
const (
	IBIMinMs = 400.0
	IBIMaxMs = 1500.0

	// maxBeatJumpMs rejects single-beat detection glitches without
	// smoothing true trend changes.
	maxBeatJumpMs = 300.0
)

// PeaksToIBI converts adjacent peak indices to inter-beat intervals in
// milliseconds. Returns nil for fewer than two peaks.
func PeaksToIBI(peaks []int, fs float64) []float64 {
	if len(peaks) < 2 || fs <= 0 {
		return nil
	}
	ibi := make([]float64, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		ibi[i-1] = float64(peaks[i]-peaks[i-1]) * 1000.0 / fs
	}
	return ibi
}

// ValidIBI keeps only physiologically plausible intervals. Values outside
// [400,1500] ms are dropped first; if at least three survive, intervals
// jumping more than 300 ms from their immediate predecessor are dropped
// too. With fewer than three survivors there is not enough data to judge
// continuity, so no further rejection is applied.
func ValidIBI(ibi []float64) []float64 {
	var valid []float64
	for _, v := range ibi {
		if v >= IBIMinMs && v <= IBIMaxMs {
			valid = append(valid, v)
		}
	}
	if len(valid) < 3 {
		return valid
	}

	out := valid[:1]
	for i := 1; i < len(valid); i++ {
		if math.Abs(valid[i]-valid[i-1]) <= maxBeatJumpMs {
			out = append(out, valid[i])
		}
	}
	return out
}
