// Package synth generates deterministic synthetic PPG streams for tests and
// demo sessions: a DC level with gaussian pulse waves at jittered beat
// times, respiratory modulation and sensor noise.
package synth

import (
	"math"
	"math/rand"

	"pulseguard/internal/domain"
)

// Config describes a synthetic recording scenario.
type Config struct {
	SampleRate float64 // Hz, defaults to domain.DefaultSampleRate
	BaseHR     float64 // mean heart rate in BPM
	HRVMs      float64 // target RMSSD: successive IBIs alternate +/- HRVMs/2
	WanderMs   float64 // slow sinusoidal IBI wander amplitude (raises SDNN, not RMSSD)
	DC         float64 // sensor DC level, defaults to 85000
	Amplitude  float64 // pulse amplitude, defaults to 16000
	Noise      float64 // white noise as a fraction of Amplitude, defaults to 0.02
	Seed       int64
}

// Baseline is a resting scenario (HR~72, HRV~45).
func Baseline() Config {
	return Config{BaseHR: 72, HRVMs: 45, WanderMs: 10, Seed: 1}
}

// Stress is a strained scenario (HR~94, suppressed HRV, irregular pulse).
func Stress() Config {
	return Config{BaseHR: 94, HRVMs: 10, WanderMs: 30, Seed: 2}
}

// wanderPeriodMs paces the slow IBI wander (respiratory-ish).
const wanderPeriodMs = 15000.0

// Generate produces durationSec seconds of samples starting at startMs.
// Output is fully determined by Config (including Seed).
func Generate(cfg Config, durationSec float64, startMs int64) []domain.Sample {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = domain.DefaultSampleRate
	}
	if cfg.DC == 0 {
		cfg.DC = 85000
	}
	if cfg.Amplitude == 0 {
		cfg.Amplitude = 16000
	}
	if cfg.Noise == 0 {
		cfg.Noise = 0.02
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	durMs := durationSec * 1000
	beats := beatTimes(cfg, durMs)

	n := int(durationSec * cfg.SampleRate)
	samples := make([]domain.Sample, n)

	// Pulse shape: one gaussian per systole, sigma scaled to the beat
	// period so faster rates get proportionally narrower pulses.
	sigma := 0.12 * 60000 / cfg.BaseHR
	pulse := make([]float64, n)
	for _, b := range beats {
		lo := int((b - 4*sigma) * cfg.SampleRate / 1000)
		hi := int((b + 4*sigma) * cfg.SampleRate / 1000)
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		for i := lo; i <= hi; i++ {
			t := float64(i) * 1000 / cfg.SampleRate
			z := (t - b) / sigma
			pulse[i] += math.Exp(-0.5 * z * z)
		}
	}

	stepMs := 1000 / cfg.SampleRate
	for i := 0; i < n; i++ {
		tMs := float64(i) * stepMs
		resp := 0.08 * math.Sin(2*math.Pi*0.25*tMs/1000)
		noise := cfg.Noise * rng.NormFloat64()
		ir := cfg.DC + cfg.Amplitude*(pulse[i]+resp+noise)
		samples[i] = domain.Sample{
			TimeMs: startMs + int64(tMs),
			IR:     ir,
			Red:    ir * 0.48,
		}
	}
	return samples
}

// beatTimes lays out systole timestamps (ms, relative) over the duration:
// the base interval from BaseHR, alternating +/- HRVMs/2 jitter so measured
// RMSSD lands near HRVMs, plus slow wander.
func beatTimes(cfg Config, durMs float64) []float64 {
	var beats []float64
	delta := cfg.HRVMs / 2
	base := 60000 / cfg.BaseHR

	t := base / 2
	for i := 0; t < durMs; i++ {
		beats = append(beats, t)
		jitter := delta
		if i%2 == 1 {
			jitter = -delta
		}
		wander := cfg.WanderMs * math.Sin(2*math.Pi*t/wanderPeriodMs)
		t += base + jitter + wander
	}
	return beats
}
