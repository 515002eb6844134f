package beat

import (
	"math"

	"pulseguard/internal/stats"
)

// qualityPerIBI scales the count of valid intervals into a 0-100 score.
// A coarse confidence proxy, not a calibrated error bound.
const qualityPerIBI = 15.0

// HR computes heart rate in BPM from raw IBIs. The median is used over the
// mean for robustness to residual outliers. Returns 0 with no valid IBI.
func HR(ibi []float64) float64 {
	valid := ValidIBI(ibi)
	if len(valid) == 0 {
		return 0
	}
	return 60000.0 / stats.Median(valid)
}

// RMSSD computes HRV as the root mean square of successive differences,
// reflecting parasympathetic activity. Returns 0 with fewer than 2 valid
// IBIs.
func RMSSD(ibi []float64) float64 {
	valid := ValidIBI(ibi)
	if len(valid) < 2 {
		return 0
	}
	sumSq := 0.0
	for i := 1; i < len(valid); i++ {
		d := valid[i] - valid[i-1]
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(valid)-1))
}

// SDNN computes HRV as the standard deviation of valid intervals,
// reflecting overall variability. Returns 0 with fewer than 2 valid IBIs.
func SDNN(ibi []float64) float64 {
	valid := ValidIBI(ibi)
	if len(valid) < 2 {
		return 0
	}
	return stats.StddevPop(valid)
}

// Quality scores signal confidence from the valid beat count: 15 points per
// valid interval, capped at 100, and 0 below two intervals.
func Quality(ibi []float64) float64 {
	valid := ValidIBI(ibi)
	if len(valid) < 2 {
		return 0
	}
	q := qualityPerIBI * float64(len(valid))
	if q > 100 {
		q = 100
	}
	return q
}
