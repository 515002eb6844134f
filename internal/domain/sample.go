package domain

// Sample is a single timestamped PPG reading from the optical sensor.
// Immutable once produced.
type Sample struct {
	TimeMs int64   // monotonically increasing timestamp in milliseconds
	IR     float64 // infrared channel intensity
	Red    float64 // red channel intensity (0 when the sensor sends none)
}

// SessionRecord is one row of a persisted session recording: the flat
// time-keyed table the sensor firmware emits (raw channels plus the vitals it
// computes on-device). Recordings are strictly a replay input, not a storage
// format owned by the pipeline.
type SessionRecord struct {
	SessionID      string  // recording session identifier
	TimeMs         int64   // timestamp in milliseconds
	IR             float64 // infrared channel intensity
	Red            float64 // red channel intensity
	HR             float64 // firmware heart rate estimate (BPM, 0 = none)
	HRV            float64 // firmware HRV estimate (ms, 0 = none)
	SpO2           float64 // firmware oxygen saturation estimate (%)
	FingerDetected bool    // sensor contact flag
	HRVReady       bool    // firmware HRV estimator warmed up
	BeatQuality    float64 // firmware per-beat confidence score
}

// DefaultSampleRate is the nominal raw PPG sampling rate in Hz.
const DefaultSampleRate = 100.0

// EstimateSampleRate infers the sampling rate from sample timestamps.
// Used when the source does not declare an explicit rate, and tolerates
// rate drift by averaging over the whole span. Returns DefaultSampleRate
// when the span is too short to estimate.
func EstimateSampleRate(samples []Sample) float64 {
	if len(samples) < 2 {
		return DefaultSampleRate
	}
	elapsedMs := samples[len(samples)-1].TimeMs - samples[0].TimeMs
	if elapsedMs <= 0 {
		return DefaultSampleRate
	}
	return float64(len(samples)-1) * 1000.0 / float64(elapsedMs)
}
