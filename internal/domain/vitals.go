package domain

// VitalsSnapshot is the output of one pipeline run over a raw buffer.
// Zero values mean "insufficient data", not an error.
type VitalsSnapshot struct {
	HR        float64 // heart rate in BPM, 0 if no valid beats
	HRVRMSSD  float64 // HRV as RMSSD in ms, 0 if fewer than 2 valid IBIs
	HRVSDNN   float64 // HRV as SDNN in ms, 0 if fewer than 2 valid IBIs
	Quality   float64 // coarse confidence score in [0,100]
	BeatCount int     // number of peaks detected in the buffer
}

// PipelineResult bundles a vitals snapshot with the intermediate waveform
// products downstream display consumers need. Filtered is the band-passed
// segment placed back at its original offset and zero-padded elsewhere, so
// it aligns index-for-index with the input buffer. Peaks are indices into
// the input buffer, strictly increasing.
type PipelineResult struct {
	Vitals   VitalsSnapshot
	Filtered []float64
	Peaks    []int
	IBIs     []float64 // raw inter-beat intervals in ms, before validation
}

// EmptyResult returns the designated "insufficient signal" result for a
// buffer of length n. Every degraded condition in the pipeline resolves to
// this rather than an error.
func EmptyResult(n int) *PipelineResult {
	return &PipelineResult{Filtered: make([]float64, n)}
}
