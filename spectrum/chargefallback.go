package spectrum

// InferChargeFallback implements spec.md §4.8's last-resort charge
// heuristic for a spectrum with no parsed Z-state: partition peaks into
// those more than 20 m/z below the precursor and those more than 20 m/z
// above it, take the ratio of their summed intensities, and compare
// against ratioThreshold (config.Config.ChargeFallbackRatio, which folds
// in the correction factor per the fix to the Open Question in spec.md
// §9(iii) — see DESIGN.md).
//
// If the ratio falls below ratioThreshold, only a z=1 hypothesis is
// returned; otherwise both z=2 and z=3 are returned. ok is false if the
// spectrum has no peaks on either side of the split and no hypothesis can
// be formed.
func InferChargeFallback(s *Spectrum, ratioThreshold float64) (zstates []ZState, ok bool) {
	const window = 20.0
	var leftSum, rightSum float64
	for _, p := range s.Peaks {
		switch {
		case p.MZ < s.PrecursorMZ-window:
			leftSum += p.Intensity
		case p.MZ > s.PrecursorMZ+window:
			rightSum += p.Intensity
		}
	}
	if leftSum == 0 && rightSum == 0 {
		return nil, false
	}
	ratio := rightSum / leftSum
	if ratio < ratioThreshold {
		return []ZState{NewZState(s.PrecursorMZ, 1)}, true
	}
	return []ZState{NewZState(s.PrecursorMZ, 2), NewZState(s.PrecursorMZ, 3)}, true
}
