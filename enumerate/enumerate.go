package enumerate

import (
	"github.com/crux-ms/xlink/bondmap"
	"github.com/crux-ms/xlink/candidatedb"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/peptide"
)

// CrossLinkOptions controls which cross-link variants the enumerator
// materialises and the combined modified-residue cap (spec.md §4.2 step 3,
// §4.3).
type CrossLinkOptions struct {
	IncludeInter, IncludeIntra, IncludeInterIntra bool
	MaxXLinkMods                                  int
}

func (o CrossLinkOptions) anyEnabled() bool {
	return o.IncludeInter || o.IncludeIntra || o.IncludeInterIntra
}

// AnyEnabled reports whether any cross-link variant is enabled; exported
// for callers outside this package (search's mixed-quadrant lookup) that
// need the same check anyEnabled makes internally.
func (o CrossLinkOptions) AnyEnabled() bool {
	return o.anyEnabled()
}

func (o CrossLinkOptions) classAllowed(kind peptide.Kind) bool {
	switch kind {
	case peptide.KindCrossLinkIntra:
		return o.IncludeIntra
	case peptide.KindCrossLinkInter:
		return o.IncludeInter
	case peptide.KindCrossLinkInterIntra:
		return o.IncludeInterIntra
	default:
		return false
	}
}

// Options bundles every enumerator knob from spec.md §4.3/§6.
type Options struct {
	PrecursorWindowType string
	PrecursorWindow     float64
	IsotopeWindows      []int
	MassKind            mass.Kind
	LinkMass            float64

	IncludeLinears   bool
	IncludeDeadends  bool
	IncludeSelfloops bool
	CrossLink        CrossLinkOptions

	// TopN enables the preliminary top-N filter of spec.md §4.3 when > 0.
	TopN int
}

// Linears returns one Candidate per linear peptide in cat whose mass falls
// in any of windows, deduplicated across windows.
func Linears(cat *candidatedb.Catalogues, windows []Window, kind mass.Kind) []peptide.Candidate {
	var out []peptide.Candidate
	seen := make(map[int]bool)
	for _, w := range windows {
		begin, end := cat.RangeLinear(w.Lo, w.Hi, kind)
		for i := begin; i < end; i++ {
			if seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, peptide.NewLinear(cat.Linear[i], peptide.KindLinear))
		}
	}
	return out
}

// MonoLinks returns one Candidate per mono-link peptide in cat whose mass
// falls in any of windows.
func MonoLinks(cat *candidatedb.Catalogues, windows []Window, kind mass.Kind) []peptide.Candidate {
	var out []peptide.Candidate
	seen := make(map[int]bool)
	for _, w := range windows {
		begin, end := cat.RangeMonoLink(w.Lo, w.Hi, kind)
		for i := begin; i < end; i++ {
			if seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, peptide.NewLinear(cat.MonoLink[i], peptide.KindMonoLink))
		}
	}
	return out
}

// SelfLoops returns one Candidate per self-loop entry in cat whose mass
// falls in any of windows.
func SelfLoops(cat *candidatedb.Catalogues, windows []Window, kind mass.Kind) []peptide.Candidate {
	var out []peptide.Candidate
	seen := make(map[int]bool)
	for _, w := range windows {
		begin, end := cat.RangeSelfLoop(w.Lo, w.Hi, kind)
		for i := begin; i < end; i++ {
			if seen[i] {
				continue
			}
			seen[i] = true
			out = append(out, cat.SelfLoop[i])
		}
	}
	return out
}

// pairKey identifies one canonicalised cross-link pair for deduplication
// across overlapping isotope windows.
type pairKey struct {
	a, b   *peptide.LinkablePeptide
	sa, sb int
}

// CrossLinks implements spec.md §4.3's cross-link pair sweep: for each
// linkable peptide p1 in the outer mass range, compute p1's partner range
// and walk every p2 past it in sort order, forming a canonicalised
// CrossLink for every bond-map-admitted site pair, filtered by the
// inter/intra toggles and the combined modified-residue cap.
//
// Per-residue N-/C-terminus flags are not retained on LinkablePeptide (only
// the already-filtered link-site positions are), so the Site values built
// here approximate protein-terminus membership from position alone
// (pos==0 / pos==length-1); this only affects bond maps using explicit
// nterm/cterm tokens, which candidatedb's own site filtering has already
// applied once at build time.
func CrossLinks(cat *candidatedb.Catalogues, windows []Window, bm bondmap.BondMap, linkerMass float64, opts CrossLinkOptions, kind mass.Kind) []peptide.CrossLink {
	if !opts.anyEnabled() || len(cat.Linkable) == 0 {
		return nil
	}
	mMin := cat.Linkable[0].Mass(kind)
	seen := make(map[pairKey]bool)
	var out []peptide.CrossLink

	for _, w := range windows {
		hiBound := w.Hi - linkerMass - mMin
		if hiBound < mMin {
			continue
		}
		p1Begin := cat.XLinkableBegin(mMin, kind)
		p1End := cat.XLinkableEnd(hiBound, kind)

		for i := p1Begin; i < p1End; i++ {
			p1 := cat.Linkable[i]
			m1 := p1.Mass(kind)
			partnerLo := w.Lo - m1 - linkerMass
			partnerHi := w.Hi - m1 - linkerMass
			j1 := cat.XLinkableBegin(partnerLo, kind)
			j2 := cat.XLinkableEnd(partnerHi, kind)

			for j := j1; j < j2; j++ {
				if j <= i {
					continue // enumerate unordered pairs once
				}
				p2 := cat.Linkable[j]
				if p1.ModCount()+p2.ModCount() > opts.MaxXLinkMods {
					continue
				}
				for _, s1 := range p1.LinkSites {
					for _, s2 := range p2.LinkSites {
						if !bm.CanLinkCross(siteOf(p1, s1), siteOf(p2, s2)) {
							continue
						}
						cand := peptide.NewCrossLink(p1, s1, p2, s2, linkerMass)
						if !opts.classAllowed(cand.Type()) {
							continue
						}
						key := pairKey{cand.PeptideA, cand.PeptideB, cand.SiteA, cand.SiteB}
						if seen[key] {
							continue
						}
						seen[key] = true
						out = append(out, cand)
					}
				}
			}
		}
	}
	return out
}

func siteOf(p *peptide.LinkablePeptide, pos int) bondmap.Site {
	return bondmap.Site{
		Letter:  p.Seq.At(pos).Letter(),
		Pos:     pos,
		Length:  p.Length(),
		AtNTerm: pos == 0,
		AtCTerm: pos == p.Length()-1,
	}
}

// Candidates runs the full enumerator for one spectrum's precursor mass:
// range queries for linears/mono-links/self-loops, plus the cross-link
// pair sweep (optionally gated by a top-N preliminary filter when
// opts.TopN > 0 and topNScorer is non-nil).
func Candidates(cat *candidatedb.Catalogues, precursorMass float64, charge int, opts Options, bm bondmap.BondMap, topNScorer PrelimScorer) []peptide.Candidate {
	windows := ComputeWindows(precursorMass, opts.IsotopeWindows, opts.PrecursorWindowType, opts.PrecursorWindow, charge)

	var out []peptide.Candidate
	if opts.IncludeLinears {
		out = append(out, Linears(cat, windows, opts.MassKind)...)
	}
	if opts.IncludeDeadends {
		out = append(out, MonoLinks(cat, windows, opts.MassKind)...)
	}
	if opts.IncludeSelfloops {
		out = append(out, SelfLoops(cat, windows, opts.MassKind)...)
	}
	if opts.CrossLink.anyEnabled() {
		var crossLinks []peptide.CrossLink
		if opts.TopN > 0 && topNScorer != nil {
			crossLinks = crossLinksWithTopN(cat, windows, bm, opts, precursorMass, topNScorer)
		} else {
			crossLinks = CrossLinks(cat, windows, bm, opts.LinkMass, opts.CrossLink, opts.MassKind)
		}
		for _, cl := range crossLinks {
			out = append(out, cl)
		}
	}
	return out
}
