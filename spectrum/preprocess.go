package spectrum

import "math"

// PreprocessConfig configures the XCorr observed-vector pipeline of
// spec.md §4.5.
type PreprocessConfig struct {
	RemovePrecursorTolerance float64 // 0 disables step 1
	BinWidth                 float64
	BinOffset                float64
	Regions                  int     // number of m/z-range partitions for step 3; 0 defaults to 10
	RegionTarget             float64 // normalised peak height target per region; 0 defaults to 50
	FlankingWindow           int     // "remove grass" running-average half-window in bins; 0 defaults to 75
}

func (cfg PreprocessConfig) withDefaults() PreprocessConfig {
	if cfg.Regions <= 0 {
		cfg.Regions = 10
	}
	if cfg.RegionTarget <= 0 {
		cfg.RegionTarget = 50.0
	}
	if cfg.FlankingWindow <= 0 {
		cfg.FlankingWindow = 75
	}
	return cfg
}

// ObservedVector is the preprocessed XCorr observed intensity vector,
// indexed by the same (mz+offset)/binWidth scheme the theoretical vector
// in score.XCorr uses.
type ObservedVector struct {
	Values   []float64
	BinWidth float64
	Offset   float64
}

// Bin maps an m/z value to its vector index under v's binning scheme.
func (v ObservedVector) Bin(mz float64) int {
	return int((mz + v.Offset) / v.BinWidth)
}

// Preprocess runs spec.md §4.5's four-step pipeline: optional precursor
// removal, binning (keeping the most intense peak per bin), square-rooted
// region normalisation, and running-background subtraction ("remove
// grass"), producing the vector the scorer dot-products against a
// theoretical ion vector.
func Preprocess(s *Spectrum, cfg PreprocessConfig) ObservedVector {
	cfg = cfg.withDefaults()

	peaks := s.Peaks
	if cfg.RemovePrecursorTolerance > 0 {
		filtered := make([]Peak, 0, len(peaks))
		for _, p := range peaks {
			if p.MZ < s.PrecursorMZ-cfg.RemovePrecursorTolerance || p.MZ > s.PrecursorMZ+cfg.RemovePrecursorTolerance {
				filtered = append(filtered, p)
			}
		}
		peaks = filtered
	}

	maxMZ := 0.0
	for _, p := range peaks {
		if p.MZ > maxMZ {
			maxMZ = p.MZ
		}
	}
	v := ObservedVector{BinWidth: cfg.BinWidth, Offset: cfg.BinOffset}
	if maxMZ <= 0 {
		return v
	}
	nBins := v.Bin(maxMZ) + 1
	v.Values = make([]float64, nBins)
	for _, p := range peaks {
		b := v.Bin(p.MZ)
		if b < 0 || b >= nBins {
			continue
		}
		if p.Intensity > v.Values[b] {
			v.Values[b] = p.Intensity
		}
	}

	for i, x := range v.Values {
		if x > 0 {
			v.Values[i] = math.Sqrt(x)
		}
	}
	normalizeRegions(v.Values, cfg.Regions, cfg.RegionTarget)
	removeGrass(v.Values, cfg.FlankingWindow)
	return v
}

// normalizeRegions partitions values into n contiguous regions and scales
// each region so its largest element equals target (spec.md §4.5 step 3).
func normalizeRegions(values []float64, n int, target float64) {
	if len(values) == 0 {
		return
	}
	regionSize := (len(values) + n - 1) / n
	for r := 0; r < n; r++ {
		lo := r * regionSize
		hi := lo + regionSize
		if lo >= len(values) {
			break
		}
		if hi > len(values) {
			hi = len(values)
		}
		max := 0.0
		for _, v := range values[lo:hi] {
			if v > max {
				max = v
			}
		}
		if max <= 0 {
			continue
		}
		scale := target / max
		for i := lo; i < hi; i++ {
			values[i] *= scale
		}
	}
}

// removeGrass subtracts, from every bin, the mean of the surrounding
// 2*window bins (excluding itself), clamping the result at zero — the
// "remove grass" background-subtraction step behind XCorr's name (spec.md
// §4.5 step 4).
func removeGrass(values []float64, window int) {
	if len(values) == 0 {
		return
	}
	original := append([]float64(nil), values...)
	for i := range values {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi >= len(original) {
			hi = len(original) - 1
		}
		sum := 0.0
		count := 0
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			sum += original[j]
			count++
		}
		background := 0.0
		if count > 0 {
			background = sum / float64(count)
		}
		values[i] -= background
		if values[i] < 0 {
			values[i] = 0
		}
	}
}
