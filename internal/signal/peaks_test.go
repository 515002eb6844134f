package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPeaks_SineSpacing(t *testing.T) {
	// 1.2 Hz sine at 100 Hz: peaks every ~83 samples
	fs := 100.0
	seg := sine(1.2, fs, 1000)

	peaks := FindPeaks(seg, fs)
	require.GreaterOrEqual(t, len(peaks), 10)

	for i := 1; i < len(peaks); i++ {
		gap := peaks[i] - peaks[i-1]
		assert.Greater(t, peaks[i], peaks[i-1])
		assert.InDelta(t, 83, gap, 2)
	}
}

func TestFindPeaks_RespectsMinDistance(t *testing.T) {
	fs := 100.0
	// 5 Hz sine: true peaks every 20 samples, below the 40-sample gate
	seg := sine(5, fs, 1000)

	peaks := FindPeaks(seg, fs)
	for i := 1; i < len(peaks); i++ {
		assert.GreaterOrEqual(t, peaks[i]-peaks[i-1], 40)
	}
}

func TestFindPeaks_ShortOrFlat(t *testing.T) {
	assert.Nil(t, FindPeaks([]float64{1, 2, 1}, 100))

	flat := make([]float64, 100)
	assert.Nil(t, FindPeaks(flat, 100))
}

func TestFindPeaks_HeightGate(t *testing.T) {
	// Two bumps: one tall, one tiny. The tiny one sits below
	// median + 5% of range and must be rejected.
	seg := make([]float64, 200)
	for i := 40; i < 60; i++ {
		seg[i] = 10 * math.Sin(math.Pi*float64(i-40)/20)
	}
	for i := 140; i < 160; i++ {
		seg[i] = 0.3 * math.Sin(math.Pi*float64(i-140)/20)
	}

	peaks := FindPeaks(seg, 100)
	require.Len(t, peaks, 1)
	assert.InDelta(t, 50, peaks[0], 1)
}

func TestLocalMaxima_PlateauMidpoint(t *testing.T) {
	x := []float64{0, 1, 2, 2, 2, 1, 0}
	peaks := localMaxima(x)
	require.Len(t, peaks, 1)
	assert.Equal(t, 3, peaks[0])
}

func TestSelectByDistance_KeepsHighest(t *testing.T) {
	//           0  1  2    3  4   5
	x := []float64{0, 5, 0, 9, 0, 4}
	peaks := []int{1, 3, 5}

	// Distance 3: peak 3 (highest) evicts 1 and 5
	out := selectByDistance(x, peaks, 3)
	assert.Equal(t, []int{3}, out)
}

func TestPeakProminence(t *testing.T) {
	// Peak at 3 stands 4 above the higher of its two valley minima
	x := []float64{0, 1, 0.5, 4.5, 2, 0.5, 1}
	got := peakProminence(x, 3)
	assert.InDelta(t, 4.0, got, 1e-9)
}

func TestFindPeaksAdaptive_NormalPolarity(t *testing.T) {
	fs := 100.0
	seg := sine(1.2, fs, 1000)

	peaks := FindPeaksAdaptive(seg, fs, nil)
	require.GreaterOrEqual(t, len(peaks), 10)
	for i := 1; i < len(peaks); i++ {
		assert.InDelta(t, 83, peaks[i]-peaks[i-1], 3)
	}
}

func TestFindPeaksAdaptive_InvertedSignalStillFindsBeats(t *testing.T) {
	fs := 100.0
	// Inverted pulse train: narrow dips below baseline. The polarity
	// fallback should detect the dips as beats.
	n := 1000
	seg := make([]float64, n)
	for i := range seg {
		seg[i] = 100
	}
	for beat := 40; beat < n; beat += 80 {
		for i := beat - 5; i <= beat+5 && i < n; i++ {
			if i >= 0 {
				z := float64(i-beat) / 2.5
				seg[i] -= 30 * math.Exp(-0.5*z*z)
			}
		}
	}

	peaks := FindPeaksAdaptive(seg, fs, nil)
	require.GreaterOrEqual(t, len(peaks), 10)
	for i := 1; i < len(peaks); i++ {
		assert.InDelta(t, 80, peaks[i]-peaks[i-1], 2)
	}
}

func TestFindPeaksAdaptive_ShortOrFlat(t *testing.T) {
	assert.Nil(t, FindPeaksAdaptive([]float64{1, 2}, 100, nil))

	flat := make([]float64, 100)
	for i := range flat {
		flat[i] = 42
	}
	assert.Nil(t, FindPeaksAdaptive(flat, 100, nil))
}

func TestCountPreference_TieFavorsPositive(t *testing.T) {
	pos := []int{1, 2}
	neg := []int{3, 4}
	assert.Equal(t, pos, CountPreference{}.Pick(pos, neg))
	assert.Equal(t, []int{3, 4, 5}, CountPreference{}.Pick(pos, []int{3, 4, 5}))
}

func TestFixedPolarity(t *testing.T) {
	pos := []int{1}
	neg := []int{2, 3}
	assert.Equal(t, pos, FixedPolarity{}.Pick(pos, neg))
	assert.Equal(t, neg, FixedPolarity{Inverted: true}.Pick(pos, neg))
}
