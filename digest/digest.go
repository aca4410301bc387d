package digest

import "github.com/crux-ms/xlink/residue"

// Budget computes the inflated missed-cleavage budget of spec.md §4.2
// step 1: the configured base budget, plus additionalCleavages (0 for pure
// linear/mono searches, 1 if any cross-link variant is enabled, 2 if
// self-loops are enabled), plus the largest number of prevents-cleavage
// modifications attachable to a single peptide under modTable.
func Budget(baseMissedCleavages, additionalCleavages int, modTable residue.Table) int {
	return baseMissedCleavages + additionalCleavages + modTable.MaxAttachableCleavagePreventers()
}

// AdditionalCleavages returns the additionalCleavages term of Budget given
// which candidate classes are enabled, per spec.md §4.2 step 1's stated
// rule.
func AdditionalCleavages(crossLinksEnabled, selfLoopsEnabled bool) int {
	switch {
	case selfLoopsEnabled:
		return 2
	case crossLinksEnabled:
		return 1
	default:
		return 0
	}
}

// UnmodifiedPeptide is a candidate digestion product before any variable
// modification is applied: the plain residue letters, the protein it came
// from, its start offset, and its missed-cleavage count against the
// enzyme's cleavage sites within [start, start+len(Letters)).
type UnmodifiedPeptide struct {
	Letters           string
	ProteinID         string
	Start             int
	AtProteinNTerm    bool
	AtProteinCTerm    bool
	MissedCleavages   int
}

// Digest enumerates every unmodified peptide derivable from proteinSeq
// under enzyme, specificity, and a missed-cleavage budget (already
// inflated via Budget), respecting minLength/maxLength. This mirrors
// original_source/src/app/GeneratePeptides.cpp's nested-cut-site loop.
// Both ends of every peptide lie on a cleavage site or a protein terminus,
// whatever spec is; spec does not change the result.
func Digest(proteinID, proteinSeq string, enzyme Enzyme, spec Specificity, budget, minLength, maxLength int) []UnmodifiedPeptide {
	sites := enzyme.CleavageSites(proteinSeq)
	// boundaries are cleavage sites (exclusive end of a cut) plus the
	// protein's own start/end, each a valid peptide boundary.
	boundaries := make([]int, 0, len(sites)+2)
	boundaries = append(boundaries, 0)
	for _, s := range sites {
		boundaries = append(boundaries, s+1)
	}
	boundaries = append(boundaries, len(proteinSeq))

	var out []UnmodifiedPeptide
	for i := 0; i < len(boundaries); i++ {
		for j := i + 1; j < len(boundaries) && j-i-1 <= budget; j++ {
			start, end := boundaries[i], boundaries[j]
			length := end - start
			if length < minLength || (maxLength > 0 && length > maxLength) {
				continue
			}
			out = append(out, UnmodifiedPeptide{
				Letters:         proteinSeq[start:end],
				ProteinID:       proteinID,
				Start:           start,
				AtProteinNTerm:  start == 0,
				AtProteinCTerm:  end == len(proteinSeq),
				MissedCleavages: j - i - 1,
			})
		}
	}
	return out
}

// isTerminalBoundary reports whether boundaries[idx] is the protein's own
// N-/C-terminus (idx 0 or len(boundaries)-1), i.e. a boundary not produced
// by enzymatic cleavage.
func isTerminalBoundary(boundaries []int, idx int) bool {
	return idx == 0 || idx == len(boundaries)-1
}

// ModifiedCandidate is one point in the Cartesian product of variable
// modifications applied to an UnmodifiedPeptide (spec.md §4.2 step 2).
type ModifiedCandidate struct {
	Seq residue.Sequence
	// ModCounts tracks how many times each modification index has been
	// applied so far, to enforce each modification's MaxPerPeptide cap.
	ModCounts []int
}

// ApplyModifications enumerates every way modTable's modifications may be
// applied to seq respecting each modification's per-peptide cap and a
// global cap on the total number of modified residues (globalModCap; 0
// means unlimited). Modification.Allows itself judges N-/C-terminal
// restrictions from pos/length relative to the peptide, so no separate
// terminus flags are needed here.
func ApplyModifications(seq residue.Sequence, modTable residue.Table, globalModCap int) []residue.Sequence {
	results := []residue.Sequence{seq}
	counts := []ModifiedCandidate{{Seq: seq, ModCounts: make([]int, len(modTable.Mods))}}

	for modIdx, m := range modTable.Mods {
		// Every candidate so far is kept (the "don't apply" branch);
		// candidates appended below are revisited by this loop, so a
		// modification can be applied again up to its MaxPerPeptide cap.
		nextResults := append([]residue.Sequence(nil), results...)
		nextCounts := append([]ModifiedCandidate(nil), counts...)

		for ci := 0; ci < len(nextCounts); ci++ {
			cand := nextCounts[ci]
			if cand.ModCounts[modIdx] >= m.MaxPerPeptide {
				continue
			}
			for pos := 0; pos < cand.Seq.Len(); pos++ {
				cell := cand.Seq.At(pos)
				if cell.Mods().Has(modIdx) {
					continue // never apply the same modification twice to one residue
				}
				if !m.Allows(cell.Letter(), pos, cand.Seq.Len()) {
					continue
				}
				if globalModCap > 0 && totalModCount(cand.ModCounts)+1 > globalModCap {
					continue
				}
				newSeq := cand.Seq.WithMod(pos, modIdx)
				newCounts := append([]int(nil), cand.ModCounts...)
				newCounts[modIdx]++
				nextResults = append(nextResults, newSeq)
				nextCounts = append(nextCounts, ModifiedCandidate{Seq: newSeq, ModCounts: newCounts})
			}
		}
		results, counts = nextResults, nextCounts
	}
	return dedupe(results)
}

func totalModCount(counts []int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

// dedupe removes duplicate sequences that the Cartesian product may
// produce when the same final mask is reachable via more than one
// application order.
func dedupe(seqs []residue.Sequence) []residue.Sequence {
	out := seqs[:0:0]
	for _, s := range seqs {
		found := false
		for _, existing := range out {
			if existing.Equal(s) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, s)
		}
	}
	return out
}
