package signal

import "pulseguard/internal/stats"

// DetrendMode selects the baseline-removal estimator.
type DetrendMode string

// Supported detrend modes.
const (
	// DetrendMean subtracts the segment mean. Stationary estimate, biased
	// on long segments with drifting baseline.
	DetrendMean DetrendMode = "mean"
	// DetrendEMA subtracts a running exponential baseline. Tracks slow
	// drift (finger pressure, ambient light) without lookahead, suited to
	// streaming use. Default.
	DetrendEMA DetrendMode = "ema"
)

// emaAlpha tracks baseline drift fast enough for DC steps without eating
// into the pulse band.
const emaAlpha = 0.02

// RemoveBaseline returns buf with its slow-varying DC offset removed.
// Unknown modes fall back to mean subtraction. The input is not modified.
func RemoveBaseline(buf []float64, mode DetrendMode) []float64 {
	out := make([]float64, len(buf))
	if len(buf) == 0 {
		return out
	}

	switch mode {
	case DetrendEMA:
		baseline := buf[0]
		out[0] = 0
		for i := 1; i < len(buf); i++ {
			baseline = emaAlpha*buf[i] + (1-emaAlpha)*baseline
			out[i] = buf[i] - baseline
		}
	default:
		mean := stats.Mean(buf)
		for i, v := range buf {
			out[i] = v - mean
		}
	}
	return out
}

// median3 applies a 3-point median filter, zero-padded at the ends. Knocks
// down single-sample spikes while preserving the rounded PPG peak shape.
func median3(buf []float64) []float64 {
	out := make([]float64, len(buf))
	for i := range buf {
		a, b, c := 0.0, buf[i], 0.0
		if i > 0 {
			a = buf[i-1]
		}
		if i < len(buf)-1 {
			c = buf[i+1]
		}
		out[i] = medianOf3(a, b, c)
	}
	return out
}

func medianOf3(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		b = a
	}
	return b
}
