package signal

import (
	"sort"

	"pulseguard/internal/stats"
)

// Peak detection parameters. PPG peaks are broad and rounded, so the
// thresholds are deliberately permissive compared to ECG-style detectors.
const (
	// minPeakSpacingSec caps the detectable rate at 150 BPM.
	minPeakSpacingSec = 0.4
	prominenceRatio   = 0.05
	prominenceFloor   = 1.0
	heightRatio       = 0.05

	minPeakInput = 10
	flatEps      = 1e-6
)

// FindPeaks locates systolic peaks in a filtered segment: local maxima
// gated simultaneously by inter-peak distance (0.4s), prominence
// (max of 5% of range and 1.0) and height (median + 5% of range).
// Returned indices are strictly increasing. Buffers shorter than 10
// samples or with near-zero dynamic range yield no peaks.
func FindPeaks(seg []float64, fs float64) []int {
	if len(seg) < minPeakInput {
		return nil
	}
	ptp := stats.Ptp(seg)
	if ptp < flatEps {
		return nil
	}

	dist := int(minPeakSpacingSec * fs)
	if dist < 1 {
		dist = 1
	}
	prom := ptp * prominenceRatio
	if prom < prominenceFloor {
		prom = prominenceFloor
	}
	height := stats.Median(seg) + heightRatio*ptp

	return findPeaks(seg, dist, height, prom)
}

// FindPeaksAdaptive is the live-monitoring variant: the segment is median
// smoothed and normalized to unit variance, then peaks are detected on both
// the signal and its inversion (systolic crest vs trough depends on sensor
// orientation) with the picker choosing between polarities. If the primary
// pass finds fewer than two peaks on a signal with real dynamics, the height
// threshold is relaxed once.
func FindPeaksAdaptive(seg []float64, fs float64, picker PolarityPicker) []int {
	if len(seg) < minPeakInput {
		return nil
	}
	if picker == nil {
		picker = CountPreference{}
	}

	smoothed := median3(seg)
	mean := stats.Mean(smoothed)
	f := make([]float64, len(smoothed))
	for i, v := range smoothed {
		f[i] = v - mean
	}
	sd := stats.StddevPop(f)
	if sd < flatEps {
		return nil
	}
	inv := make([]float64, len(f))
	for i := range f {
		f[i] /= sd
		inv[i] = -f[i]
	}

	dist := int(minPeakSpacingSec * fs)
	if dist < 1 {
		dist = 1
	}

	peaks := picker.Pick(findPeaks(f, dist, 0.05, 0), findPeaks(inv, dist, 0.05, 0))
	if len(peaks) < 2 && stats.Ptp(f) > 0.5 {
		peaks = picker.Pick(findPeaks(f, dist, 0.02, 0), findPeaks(inv, dist, 0.02, 0))
	}
	return peaks
}

// findPeaks runs the detection passes in order: local maxima, height gate,
// distance gate (higher peaks evict lower neighbors), prominence gate.
// prominence <= 0 disables the prominence gate.
func findPeaks(x []float64, distance int, height, prominence float64) []int {
	peaks := localMaxima(x)

	kept := peaks[:0]
	for _, p := range peaks {
		if x[p] >= height {
			kept = append(kept, p)
		}
	}
	peaks = kept

	peaks = selectByDistance(x, peaks, distance)

	if prominence > 0 {
		kept = peaks[:0]
		for _, p := range peaks {
			if peakProminence(x, p) >= prominence {
				kept = append(kept, p)
			}
		}
		peaks = kept
	}
	return peaks
}

// localMaxima finds interior local maxima; a flat plateau counts once, at
// its midpoint.
func localMaxima(x []float64) []int {
	var peaks []int
	i := 1
	for i < len(x)-1 {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < len(x)-1 && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				peaks = append(peaks, (i+ahead-1)/2)
				i = ahead
				continue
			}
			i = ahead
		} else {
			i++
		}
	}
	return peaks
}

// selectByDistance keeps the highest peaks first, evicting any unkept peak
// closer than distance samples to a kept one. Survivors are spaced at least
// distance apart.
func selectByDistance(x []float64, peaks []int, distance int) []int {
	if len(peaks) == 0 || distance <= 1 {
		return peaks
	}

	byHeight := make([]int, len(peaks))
	for i := range byHeight {
		byHeight[i] = i
	}
	sort.Slice(byHeight, func(a, b int) bool {
		return x[peaks[byHeight[a]]] > x[peaks[byHeight[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for _, j := range byHeight {
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	out := peaks[:0]
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// peakProminence measures how far a peak stands above its surrounding
// valleys: walk out each side until a higher sample or the border, take the
// minimum seen, and use the higher of the two minima as the base.
func peakProminence(x []float64, peak int) float64 {
	leftMin := x[peak]
	for i := peak - 1; i >= 0; i-- {
		if x[i] > x[peak] {
			break
		}
		if x[i] < leftMin {
			leftMin = x[i]
		}
	}
	rightMin := x[peak]
	for i := peak + 1; i < len(x); i++ {
		if x[i] > x[peak] {
			break
		}
		if x[i] < rightMin {
			rightMin = x[i]
		}
	}

	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return x[peak] - base
}
