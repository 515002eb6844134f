package domain

// FeatureRow is one windowed training example handed off to the external
// strain classifier. One row per step window over a recorded session.
type FeatureRow struct {
	SessionID   string  // source recording
	WindowEndMs int64   // timestamp of the window's right edge
	HR          float64 // median HR over the HR lookback
	HRV         float64 // median HRV over the HRV lookback (hrv-ready rows only)
	SpO2        float64 // median SpO2 over the HR lookback
	BeatQuality float64 // median beat quality over the HR lookback
	Label       int     // supervised class label (0 = baseline, 1 = strain)
}
