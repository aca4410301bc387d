/*
Package score implements the scorer of spec.md §4.5: XCorr as a dot
product of the preprocessed observed vector against a theoretical ion
vector, the optional Sp fractional-intensity score, and the optional
exact-p-value histogram-convolution variant. Grounded on
original_source/src/app/xlink/xlink_search.cpp for the scoring call shape;
the arithmetic itself is closed-form over dense []float64 vectors, so this
package uses no third-party dependency (see DESIGN.md).
*/
package score

import (
	"math"

	"github.com/crux-ms/xlink/fragment"
	"github.com/crux-ms/xlink/spectrum"
)

// xcorrScale is the display-scale divisor applied to the raw dot product
// (spec.md §4.5: "divided by 10000.0 for display scale").
const xcorrScale = 10000.0

// TheoreticalVector builds a theoretical intensity vector over the same
// binning scheme as an ObservedVector, with every predicted ion
// contributing a unit peak at its nearest bin (and, when flanking is
// enabled, half-height peaks one bin to either side).
func TheoreticalVector(series fragment.Series, v spectrum.ObservedVector, useFlankingPeaks bool) []float64 {
	theo := make([]float64, len(v.Values))
	for _, ion := range series.Ions {
		b := v.Bin(ion.MZ)
		addAt(theo, b, 1.0)
		if useFlankingPeaks {
			addAt(theo, b-1, 0.5)
			addAt(theo, b+1, 0.5)
		}
	}
	return theo
}

func addAt(vec []float64, bin int, value float64) {
	if bin >= 0 && bin < len(vec) {
		vec[bin] += value
	}
}

// XCorr computes the XCorr score of a theoretical ion series against a
// preprocessed observed vector: the dot product of the two vectors,
// scaled by 1/10000 for display (spec.md §4.5).
func XCorr(series fragment.Series, v spectrum.ObservedVector, useFlankingPeaks bool) float64 {
	theo := TheoreticalVector(series, v, useFlankingPeaks)
	var dot float64
	for i, t := range theo {
		if t == 0 {
			continue
		}
		dot += t * v.Values[i]
	}
	return dot / xcorrScale
}

// Sp computes the fractional-explained-intensity score with a
// consecutive-ion bonus, per spec.md §4.5: requires s's peaks sorted by
// m/z so the nearest-peak query of the spectrum package can be used.
func Sp(series fragment.Series, s *spectrum.Spectrum, binWidth, binOffset, tolerance float64) float64 {
	if len(series.Ions) == 0 {
		return 0
	}
	s.SortByMZ()

	var totalIntensity float64
	for _, p := range s.Peaks {
		totalIntensity += p.Intensity
	}
	if totalIntensity == 0 {
		return 0
	}

	var explained float64
	matchedByType := make(map[matchKey]bool)
	for _, ion := range series.Ions {
		peak, ok := s.NearestPeak(ion.MZ, binWidth, binOffset, tolerance)
		if !ok {
			continue
		}
		explained += peak.Intensity
		matchedByType[matchKey{ion.Type, ion.Charge, ion.CleavageIndex}] = true
	}

	bonus := consecutiveIonBonus(matchedByType)
	return (explained / totalIntensity) * (1 + bonus)
}

type matchKey struct {
	t             fragment.IonType
	charge        int
	cleavageIndex int
}

// consecutiveIonBonus rewards runs of matched same-type, same-charge ions
// at adjacent cleavage indices, the way Sp's classic "n consecutive ions"
// bonus does.
func consecutiveIonBonus(matched map[matchKey]bool) float64 {
	var longestRun int
	seen := make(map[matchKey]bool)
	for k := range matched {
		if seen[k] {
			continue
		}
		run := 1
		seen[k] = true
		for {
			next := matchKey{k.t, k.charge, k.cleavageIndex + run}
			if !matched[next] {
				break
			}
			seen[next] = true
			run++
		}
		if run > longestRun {
			longestRun = run
		}
	}
	if longestRun <= 1 {
		return 0
	}
	return float64(longestRun-1) * 0.075
}

// ExactPValue computes the tail probability of score among the discrete
// score distribution obtained by convolving observed and theoretical
// histograms, bypassing the Weibull fit per spec.md §4.5's "exact-p-value
// variant". observedHist and theoreticalHist are intensity histograms
// over the same bin width as the XCorr vectors; the convolution's support
// is the product of both histograms' dynamic range, kept small by
// quantising intensities into maxLevel discrete levels before convolving.
func ExactPValue(observedHist, theoreticalHist []float64, rawScore float64, maxLevel int) float64 {
	obsLevels := quantize(observedHist, maxLevel)
	theoLevels := quantize(theoreticalHist, maxLevel)

	maxScore := maxLevel * maxLevel
	dist := make([]float64, maxScore+1)
	dist[0] = 1
	for i := range obsLevels {
		if obsLevels[i] == 0 || theoLevels[i] == 0 {
			continue
		}
		contribution := obsLevels[i] * theoLevels[i]
		shifted := make([]float64, maxScore+1)
		for s, p := range dist {
			if p == 0 {
				continue
			}
			target := s + contribution
			if target > maxScore {
				target = maxScore
			}
			shifted[target] += p
		}
		dist = shifted
		normalize(dist)
	}

	scoreLevel := int(rawScore * xcorrScale)
	if scoreLevel < 0 {
		scoreLevel = 0
	}
	if scoreLevel > maxScore {
		scoreLevel = maxScore
	}
	var tail float64
	for s := scoreLevel; s <= maxScore; s++ {
		tail += dist[s]
	}
	if math.IsNaN(tail) || tail <= 0 {
		return 1e-10 // clamp per spec.md §4.6's NaN-handling rule, reused here
	}
	return tail
}

func quantize(hist []float64, maxLevel int) []int {
	max := 0.0
	for _, v := range hist {
		if v > max {
			max = v
		}
	}
	levels := make([]int, len(hist))
	if max == 0 {
		return levels
	}
	for i, v := range hist {
		levels[i] = int((v / max) * float64(maxLevel))
	}
	return levels
}

func normalize(dist []float64) {
	var total float64
	for _, p := range dist {
		total += p
	}
	if total == 0 {
		return
	}
	for i := range dist {
		dist[i] /= total
	}
}
