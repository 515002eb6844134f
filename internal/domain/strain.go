package domain

// StrainSample is one observation appended to the strain engine's rolling
// window. Retained for at most the engine's time horizon.
type StrainSample struct {
	TimeMs int64   // observation timestamp in milliseconds
	HR     float64 // heart rate in BPM
	HRV    float64 // HRV (RMSSD) in ms
	IBI    float64 // inter-beat interval in ms
}

// Baseline is the per-session calibration reference. Computed once from the
// first calibration window, then frozen until the session resets.
type Baseline struct {
	HR  float64 // median resting heart rate in BPM
	HRV float64 // median resting HRV in ms
}

// StrainFeatures is derived on demand from the rolling window and baseline.
// Purely a function of current state; holds no state of its own.
type StrainFeatures struct {
	HRMean        float64 // mean HR over the trailing window
	HRVMean       float64 // mean of HRV values above the noise floor, 0 if none
	HRVDrop       float64 // HRV suppression relative to baseline, in [0,1]
	Irregularity  float64 // pulse irregularity (capped CV of valid IBIs), in [0,1]
	StrainIndex   float64 // composite strain score, in [0,1]
	BaselineReady bool    // true once the baseline froze
}

// StrainStatus buckets a strain index into display bands.
type StrainStatus string

// Strain status levels.
const (
	StatusRelaxed  StrainStatus = "relaxed"  // strain_index < 0.3
	StatusModerate StrainStatus = "moderate" // 0.3 <= strain_index <= 0.6
	StatusStrained StrainStatus = "strained" // strain_index > 0.6
)
