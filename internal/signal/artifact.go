// Package signal implements the conditioning stages of the PPG pipeline:
// artifact masking, segment selection, baseline removal, band-pass filtering
// and systolic peak detection.
package signal

import (
	"math"

	"pulseguard/internal/stats"
)

// Artifact masking thresholds. The low-signal floor is sensor specific: a
// MAX3010x-class sensor reads well above 10000 counts with a finger present.
const (
	gradFloor      = 1000.0
	flatRangeFloor = 1000.0
	noFingerFloor  = 10000.0
)

// MaskArtifacts flags unreliable stretches of a raw buffer: DC jumps and
// motion (gradient check), saturation or lost contact (flatness check) and a
// global no-finger floor. Returns a mask with true = usable sample. Buffers
// shorter than 10 samples are passed through all-true. Pure function.
func MaskArtifacts(buf []float64) []bool {
	n := len(buf)
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	if n < 10 {
		return mask
	}

	// Large first differences mean a DC jump or motion artifact. Mask a
	// window around each offender so the filter never sees the edge.
	grad := make([]float64, n-1)
	for i := 1; i < n; i++ {
		grad[i-1] = math.Abs(buf[i] - buf[i-1])
	}
	gradThresh := 3 * stats.Percentile(grad, 0.95)
	if gradThresh < gradFloor {
		gradThresh = gradFloor
	}
	radius := n / 50
	if radius < 5 {
		radius = 5
	}
	for i, g := range grad {
		if g > gradThresh {
			lo := i - radius
			if lo < 0 {
				lo = 0
			}
			hi := i + radius + 1
			if hi > n {
				hi = n
			}
			for j := lo; j < hi; j++ {
				mask[j] = false
			}
		}
	}

	// A window with no pulsatile component is saturation or no contact.
	win := n / 4
	if win > 50 {
		win = 50
	}
	if win >= 10 {
		flatThresh := stats.Median(buf) * 0.005
		if flatThresh < flatRangeFloor {
			flatThresh = flatRangeFloor
		}
		for i := 0; i < n-win; i += win / 2 {
			if stats.Ptp(buf[i:i+win]) < flatThresh {
				for j := i; j < i+win; j++ {
					mask[j] = false
				}
			}
		}
	}

	// Whole buffer below the sensor's no-finger floor.
	if stats.Median(buf) < noFingerFloor {
		for i := range mask {
			mask[i] = false
		}
	}

	return mask
}
