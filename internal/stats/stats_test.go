package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, -1.5, Mean([]float64{-1, -2}), 1e-9)
}

func TestStddevPop(t *testing.T) {
	assert.Equal(t, 0.0, StddevPop(nil))
	assert.Equal(t, 0.0, StddevPop([]float64{5}))
	// Population form: n denominator
	assert.InDelta(t, 2.0, StddevPop([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 0.5))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 0.95))

	values := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3.0, Percentile(values, 0.5), 1e-9)
	assert.InDelta(t, 1.0, Percentile(values, 0.0), 1e-9)
	assert.InDelta(t, 5.0, Percentile(values, 1.0), 1e-9)

	// Linear interpolation between ranks
	assert.InDelta(t, 1.5, Percentile([]float64{1, 2}, 0.5), 1e-9)
	assert.InDelta(t, 4.8, Percentile(values, 0.95), 1e-9)
}

func TestPercentile_UnsortedInput(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	assert.InDelta(t, 3.0, Percentile(values, 0.5), 1e-9)
	// Input must not be reordered
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 2.0, Median([]float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 2.5, Median([]float64{1, 2, 3, 4}), 1e-9)
}

func TestPtp(t *testing.T) {
	assert.Equal(t, 0.0, Ptp(nil))
	assert.Equal(t, 0.0, Ptp([]float64{3}))
	assert.InDelta(t, 7.0, Ptp([]float64{-2, 0, 5, 1}), 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
	assert.Equal(t, 0.0, Clamp(-2, 0, 1))
	assert.Equal(t, 1.0, Clamp(7, 0, 1))
}
