package signal

// PolarityPicker chooses between the peak sets detected on a signal and on
// its inversion. The choice is a heuristic with no principled tie-break, so
// it is a pluggable strategy rather than a fixed rule.
type PolarityPicker interface {
	// Pick receives peaks from the positive and inverted passes and
	// returns the set to use.
	Pick(pos, neg []int) []int
}

// CountPreference picks whichever polarity found more peaks. Ties go to the
// positive polarity.
type CountPreference struct{}

// Pick implements PolarityPicker.
func (CountPreference) Pick(pos, neg []int) []int {
	if len(pos) >= len(neg) {
		return pos
	}
	return neg
}

// FixedPolarity always uses one polarity, for deployments where the sensor
// orientation is known.
type FixedPolarity struct {
	// Inverted selects the trough-detection pass.
	Inverted bool
}

// Pick implements PolarityPicker.
func (f FixedPolarity) Pick(pos, neg []int) []int {
	if f.Inverted {
		return neg
	}
	return pos
}
