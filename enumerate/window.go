/*
Package enumerate implements the candidate enumerator of spec.md §4.3:
precursor-mass-window range queries against the linear/mono-link/
self-loop catalogues, the two-pointer cross-link pair sweep over the
linkable catalogue, inter/intra/inter-intra filtering, the combined
modified-residue cap, and the optional top-N preliminary filter.
Grounded on original_source/src/app/xlink/XLinkablePeptideIteratorTopN.cpp
for the bounded-heap top-N structure and XLinkDatabase.cpp for the
two-pointer partner sweep.
*/
package enumerate

import "github.com/crux-ms/xlink/mass"

// Window is a closed precursor-mass interval [Lo, Hi].
type Window struct {
	Lo, Hi float64
}

// ComputeWindows builds one Window per configured isotope offset around
// precursorMass, per spec.md §4.3 ("for each isotope offset k ... computes
// [M_lo, M_hi] = window around M_prec + k*m_neutron"). windowType is one of
// "mass" (absolute Da), "ppm", or "mz" (width expressed in m/z units at the
// given charge).
func ComputeWindows(precursorMass float64, isotopeOffsets []int, windowType string, width float64, charge int) []Window {
	offsets := isotopeOffsets
	if len(offsets) == 0 {
		offsets = []int{0}
	}
	windows := make([]Window, 0, len(offsets))
	for _, k := range offsets {
		center := precursorMass + float64(k)*mass.Neutron
		lo, hi := windowBounds(center, windowType, width, charge)
		windows = append(windows, Window{Lo: lo, Hi: hi})
	}
	return windows
}

func windowBounds(center float64, windowType string, width float64, charge int) (lo, hi float64) {
	switch windowType {
	case "ppm":
		delta := center * width / 1e6
		return center - delta, center + delta
	case "mz":
		if charge < 1 {
			charge = 1
		}
		delta := width * float64(charge)
		return center - delta, center + delta
	default: // "mass"
		return center - width, center + width
	}
}
