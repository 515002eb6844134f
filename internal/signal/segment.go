package signal

// DefaultMinSegment is the minimum usable run length in samples.
const DefaultMinSegment = 100

// BestSegment extracts the longest contiguous run of usable samples from a
// masked buffer. On equal lengths the later-ending run wins (most recent data
// is most relevant for live monitoring). Returns (nil, 0) when no run reaches
// minLen; callers treat that as insufficient signal, not an error.
func BestSegment(buf []float64, mask []bool, minLen int) ([]float64, int) {
	if len(buf) != len(mask) || minLen <= 0 {
		return nil, 0
	}

	usable := 0
	for _, m := range mask {
		if m {
			usable++
		}
	}
	if usable < minLen {
		return nil, 0
	}

	bestStart, bestEnd := 0, 0
	runStart := -1
	for i := 0; i <= len(mask); i++ {
		inRun := i < len(mask) && mask[i]
		if inRun && runStart < 0 {
			runStart = i
		}
		if !inRun && runStart >= 0 {
			length := i - runStart
			if length >= minLen {
				if length > bestEnd-bestStart || (length == bestEnd-bestStart && i > bestEnd) {
					bestStart, bestEnd = runStart, i
				}
			}
			runStart = -1
		}
	}

	if bestEnd-bestStart < minLen {
		return nil, 0
	}
	return buf[bestStart:bestEnd], bestStart
}
