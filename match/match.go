/*
Package match defines the result-row type of spec.md §3/§6 and the
deterministic ranking rule of §5: descending XCorr with a tie-break on
candidate sequence. Grounded on
original_source/src/app/xlink/XLinkMatch.h's field layout.
*/
package match

import (
	"sort"

	"github.com/crux-ms/xlink/peptide"
	"github.com/crux-ms/xlink/spectrum"
)

// Match is one scored candidate against one spectrum Z-state: spec.md §3's
// "Candidate, Z-state, preliminary score, XCorr, p-value (Weibull),
// rank(s), associated spectrum reference."
type Match struct {
	Candidate peptide.Candidate
	ZState    spectrum.ZState
	Spectrum  *spectrum.Spectrum

	PreliminaryScore float64

	XCorr float64
	// PeptideXCorrA/B hold the per-peptide XCorrs for a cross-link
	// candidate (spec.md §4.5's "the two per-peptide XCorrs"); both are
	// zero for non-cross-link candidates.
	PeptideXCorrA, PeptideXCorrB float64

	Sp float64

	PValue    float64
	LogPValue float64
	HasPValue bool

	Rank int

	Quadrant peptide.Quadrant
}

// Rank assigns Rank to every match in matches, in place, after sorting
// descending by XCorr with a deterministic tie-break on candidate
// sequence (spec.md §5: "matches are emitted in descending XCorr order
// with a deterministic tie-break on candidate sequence"). Returns the
// sorted slice.
func Rank(matches []Match) []Match {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].XCorr != matches[j].XCorr {
			return matches[i].XCorr > matches[j].XCorr
		}
		return matches[i].Candidate.SequenceString() < matches[j].Candidate.SequenceString()
	})
	for i := range matches {
		matches[i].Rank = i + 1
	}
	return matches
}

// TopN returns the first n matches of an already-ranked slice, or all of
// them if n <= 0 or n exceeds len(matches).
func TopN(matches []Match, n int) []Match {
	if n <= 0 || n > len(matches) {
		return matches
	}
	return matches[:n]
}
