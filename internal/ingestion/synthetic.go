package ingestion

import (
	"context"
	"time"

	"pulseguard/internal/domain"
	"pulseguard/internal/synth"
)

// SyntheticSource paces a generated scenario out at wall-clock rate, for
// demo sessions without hardware. The full scenario is generated up front
// so beat timing stays continuous across delivery chunks.
type SyntheticSource struct {
	cfg         synth.Config
	durationSec float64
	cancel      context.CancelFunc
}

// NewSyntheticSource creates a source that plays the scenario for the given
// duration, then stops delivering.
func NewSyntheticSource(cfg synth.Config, durationSec float64) *SyntheticSource {
	if durationSec <= 0 {
		durationSec = 600
	}
	return &SyntheticSource{cfg: cfg, durationSec: durationSec}
}

// Start emits the pre-generated samples in 50 ms chunks on a ticker until
// the scenario or the context ends.
func (s *SyntheticSource) Start(ctx context.Context, deliver func(domain.SessionRecord)) error {
	ctx, s.cancel = context.WithCancel(ctx)

	samples := synth.Generate(s.cfg, s.durationSec, 0)
	const chunkMs = 50

	go func() {
		ticker := time.NewTicker(chunkMs * time.Millisecond)
		defer ticker.Stop()

		next := 0
		elapsed := int64(0)
		for next < len(samples) {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				elapsed += chunkMs
				for next < len(samples) && samples[next].TimeMs < elapsed {
					sample := samples[next]
					deliver(domain.SessionRecord{
						TimeMs:         sample.TimeMs,
						IR:             sample.IR,
						Red:            sample.Red,
						FingerDetected: true,
					})
					next++
				}
			}
		}
	}()
	return nil
}

// Close stops playback.
func (s *SyntheticSource) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

var _ RecordSource = (*SyntheticSource)(nil)
