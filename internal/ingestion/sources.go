// Package ingestion acquires sensor samples from external transports and
// buffers them for the pipeline tick. Acquisition may run on its own
// goroutine; the ring buffer is the only shared structure.
package ingestion

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pulseguard/internal/domain"
)

// RecordSource delivers sensor records as they arrive. Implementations own
// their transport; Start returns once the subscription is live and delivery
// continues until the context is cancelled or Close is called.
type RecordSource interface {
	Start(ctx context.Context, deliver func(domain.SessionRecord)) error
	Close() error
}

// ParseLine parses one CSV line of the sensor's serial protocol. Frames are
// either 3-part raw samples (time,ir,red) or 9-part vitals frames
// (time,ir,red,bpm,hrv,spo2,fingerDetected,hrvReady,beatQuality).
func ParseLine(line string) (domain.SessionRecord, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) < 3 {
		return domain.SessionRecord{}, fmt.Errorf("sensor line has %d fields, need at least 3", len(parts))
	}

	timeMs, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("parse sensor timestamp: %w", err)
	}

	num := func(i int) float64 {
		if i >= len(parts) {
			return 0
		}
		v, _ := strconv.ParseFloat(parts[i], 64)
		return v
	}

	rec := domain.SessionRecord{
		TimeMs: timeMs,
		IR:     num(1),
		Red:    num(2),
	}
	if len(parts) >= 9 {
		rec.HR = num(3)
		rec.HRV = num(4)
		rec.SpO2 = num(5)
		rec.FingerDetected = num(6) != 0
		rec.HRVReady = num(7) != 0
		rec.BeatQuality = num(8)
	}
	return rec, nil
}
