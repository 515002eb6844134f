// Package replay feeds recorded sessions back through the live pipeline at
// their original cadence. Recordings are flat time-keyed tables produced by
// the sensor firmware; this package treats them strictly as input.
package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pulseguard/internal/domain"
)

// Session table column names, as written by the firmware's CSV logger.
var sessionColumns = []string{
	"time", "ir", "red", "bpm", "hrv", "spo2",
	"fingerDetected", "hrvReady", "beatQuality",
}

// ReadSession parses a recorded session table. The header row is required;
// column order is taken from it, and the three raw columns (time, ir, red)
// must be present. Missing vitals columns read as zero.
func ReadSession(r io.Reader, sessionID string) ([]domain.SessionRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read session header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"time", "ir"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("session table missing %q column", required)
		}
	}

	var records []domain.SessionRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read session row: %w", err)
		}

		field := func(name string) float64 {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return 0
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				return 0
			}
			return v
		}

		records = append(records, domain.SessionRecord{
			SessionID:      sessionID,
			TimeMs:         int64(field("time")),
			IR:             field("ir"),
			Red:            field("red"),
			HR:             field("bpm"),
			HRV:            field("hrv"),
			SpO2:           field("spo2"),
			FingerDetected: field("fingerDetected") != 0,
			HRVReady:       field("hrvReady") != 0,
			BeatQuality:    field("beatQuality"),
		})
	}
	return records, nil
}

// WriteSession renders records back to the session table format, mostly for
// round-tripping synthetic sessions into files other tools consume.
func WriteSession(w io.Writer, records []domain.SessionRecord) error {
	var sb strings.Builder
	sb.WriteString(strings.Join(sessionColumns, ","))
	sb.WriteByte('\n')
	for _, r := range records {
		finger, ready := 0, 0
		if r.FingerDetected {
			finger = 1
		}
		if r.HRVReady {
			ready = 1
		}
		sb.WriteString(fmt.Sprintf("%d,%.0f,%.0f,%.1f,%.1f,%.1f,%d,%d,%.1f\n",
			r.TimeMs, r.IR, r.Red, r.HR, r.HRV, r.SpO2, finger, ready, r.BeatQuality))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
