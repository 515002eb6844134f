package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndTimestamps(t *testing.T) {
	samples := Generate(Baseline(), 10, 5000)
	require.Len(t, samples, 1000)
	assert.Equal(t, int64(5000), samples[0].TimeMs)
	assert.Equal(t, int64(5000+9990), samples[999].TimeMs)
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(Baseline(), 5, 0)
	b := Generate(Baseline(), 5, 0)
	assert.Equal(t, a, b)

	other := Baseline()
	other.Seed = 99
	c := Generate(other, 5, 0)
	assert.NotEqual(t, a, c)
}

func TestGenerate_SignalLevels(t *testing.T) {
	samples := Generate(Baseline(), 10, 0)

	var minIR, maxIR float64 = math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		if s.IR < minIR {
			minIR = s.IR
		}
		if s.IR > maxIR {
			maxIR = s.IR
		}
		assert.InDelta(t, s.IR*0.48, s.Red, 1e-6)
	}

	// DC level with pulses on top
	assert.Greater(t, minIR, 75000.0)
	assert.Less(t, minIR, 90000.0)
	assert.Greater(t, maxIR, 95000.0)
}

func TestBeatTimes_RateAndCount(t *testing.T) {
	cfg := Config{BaseHR: 72}
	beats := beatTimes(cfg, 60000)

	// 72 BPM over a minute
	assert.InDelta(t, 72, len(beats), 2)
	for i := 1; i < len(beats); i++ {
		assert.Greater(t, beats[i], beats[i-1])
	}
}

func TestBeatTimes_JitterSetsRMSSD(t *testing.T) {
	cfg := Config{BaseHR: 72, HRVMs: 40}
	beats := beatTimes(cfg, 120000)
	require.Greater(t, len(beats), 20)

	ibis := make([]float64, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		ibis[i-1] = beats[i] - beats[i-1]
	}

	// Alternating +/- jitter: successive IBI diffs land near +/- HRVMs
	sumSq := 0.0
	for i := 1; i < len(ibis); i++ {
		d := ibis[i] - ibis[i-1]
		sumSq += d * d
	}
	rmssd := math.Sqrt(sumSq / float64(len(ibis)-1))
	assert.InDelta(t, 40, rmssd, 8)
}

func TestBeatTimes_WanderRaisesSpreadNotRMSSD(t *testing.T) {
	flat := beatTimes(Config{BaseHR: 72, WanderMs: 0}, 120000)
	wandering := beatTimes(Config{BaseHR: 72, WanderMs: 30}, 120000)

	spread := func(beats []float64) float64 {
		var minIBI, maxIBI float64 = math.Inf(1), math.Inf(-1)
		for i := 1; i < len(beats); i++ {
			ibi := beats[i] - beats[i-1]
			if ibi < minIBI {
				minIBI = ibi
			}
			if ibi > maxIBI {
				maxIBI = ibi
			}
		}
		return maxIBI - minIBI
	}

	assert.Less(t, spread(flat), 1.0)
	assert.Greater(t, spread(wandering), 20.0)
}

func TestScenarios(t *testing.T) {
	base := Baseline()
	stress := Stress()
	assert.Greater(t, stress.BaseHR, base.BaseHR)
	assert.Less(t, stress.HRVMs, base.HRVMs)
}
