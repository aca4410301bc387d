/*
Package spectrum implements the Spectrum/ZState data model of spec.md §3,
the preprocessing pipeline of §4.5, the lazy m/z-binned nearest-peak
index used by Sp, and the charge-state fallback heuristic of §4.8.
Grounded on original_source/src/model/Spectrum.cpp.
*/
package spectrum

import (
	"sort"

	"github.com/crux-ms/xlink/mass"
)

// Peak is one observed (m/z, intensity) pair.
type Peak struct {
	MZ        float64
	Intensity float64
}

// ZState is a precursor charge-mass hypothesis, produced by a spectrum
// parser or by the fallback heuristic of §4.8.
type ZState struct {
	Charge      int
	MHMass      float64
	NeutralMass float64
	MZ          float64
}

// NewZState builds a ZState from an observed precursor m/z and an assumed
// charge.
func NewZState(mz float64, charge int) ZState {
	neutral := mass.MZToNeutral(mz, charge)
	return ZState{
		Charge:      charge,
		MHMass:      mass.NeutralToMH(neutral),
		NeutralMass: neutral,
		MZ:          mz,
	}
}

// NewZStateFromMH builds a ZState from a charge and its singly-protonated
// (M+H) mass, the form MS2 "Z" lines report directly.
func NewZStateFromMH(mh float64, charge int) ZState {
	neutral := mh - mass.Proton
	return ZState{
		Charge:      charge,
		MHMass:      mh,
		NeutralMass: neutral,
		MZ:          mass.MHToMZ(mh, charge),
	}
}

// Spectrum is one MS2 scan: scan range, precursor m/z, candidate Z-states,
// and the observed peak list. Peaks may be ordered by m/z or by
// intensity; sortedBy tracks which, per spec.md §3.
type Spectrum struct {
	FirstScan, LastScan int
	PrecursorMZ         float64
	ZStates             []ZState
	Peaks               []Peak

	sortedByMZ        bool
	sortedByIntensity bool

	index *binIndex
}

// SortByMZ sorts Peaks ascending by m/z, a precondition for Sp's
// nearest-peak queries and for building the bin index.
func (s *Spectrum) SortByMZ() {
	if s.sortedByMZ {
		return
	}
	sort.Slice(s.Peaks, func(i, j int) bool { return s.Peaks[i].MZ < s.Peaks[j].MZ })
	s.sortedByMZ = true
	s.sortedByIntensity = false
	s.index = nil
}

// SortByIntensity sorts Peaks descending by intensity.
func (s *Spectrum) SortByIntensity() {
	if s.sortedByIntensity {
		return
	}
	sort.Slice(s.Peaks, func(i, j int) bool { return s.Peaks[i].Intensity > s.Peaks[j].Intensity })
	s.sortedByIntensity = true
	s.sortedByMZ = false
}

// MaxMZ returns the largest observed peak m/z, or 0 if there are no peaks.
func (s *Spectrum) MaxMZ() float64 {
	max := 0.0
	for _, p := range s.Peaks {
		if p.MZ > max {
			max = p.MZ
		}
	}
	return max
}

// RemovePeaksNear discards every peak within tolerance of mz (spec.md
// §4.5 preprocessing step 1, "remove precursor").
func (s *Spectrum) RemovePeaksNear(mz, tolerance float64) {
	kept := s.Peaks[:0]
	for _, p := range s.Peaks {
		if p.MZ < mz-tolerance || p.MZ > mz+tolerance {
			kept = append(kept, p)
		}
	}
	s.Peaks = kept
	s.index = nil
}
