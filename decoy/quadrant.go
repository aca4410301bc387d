package decoy

import (
	"github.com/crux-ms/xlink/bondmap"
	"github.com/crux-ms/xlink/candidatedb"
	"github.com/crux-ms/xlink/enumerate"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/peptide"
)

// MixedCrossLinks sweeps two distinct, independently mass-sorted linkable
// catalogues (catA, catB) the way enumerate.CrossLinks sweeps one, forming
// a CrossLink candidate for every bond-map-admitted site pair (p1 in catA,
// p2 in catB) whose combined mass falls in one of windows. Unlike
// enumerate.CrossLinks, every p1/p2 pair is considered once (no j>i
// ordering restriction), since catA and catB are disjoint populations.
//
// This is the mechanism behind spec.md §4.9's target-decoy and
// decoy-target quadrants: call it with (target catalogue, decoy
// catalogue) and the reverse to get both mixed quadrants, alongside
// enumerate.CrossLinks(target) and enumerate.CrossLinks(decoy) for the
// target-target and decoy-decoy quadrants.
func MixedCrossLinks(catA, catB *candidatedb.Catalogues, windows []enumerate.Window, bm bondmap.BondMap, linkerMass float64, opts enumerate.CrossLinkOptions, kind mass.Kind) []peptide.CrossLink {
	if len(catA.Linkable) == 0 || len(catB.Linkable) == 0 {
		return nil
	}

	mMinB := catB.Linkable[0].Mass(kind)
	var out []peptide.CrossLink
	seen := make(map[pairKey]bool)

	for _, w := range windows {
		hiBoundA := w.Hi - linkerMass - mMinB
		if hiBoundA < 0 {
			continue
		}
		aBegin := catA.XLinkableBegin(0, kind)
		aEnd := catA.XLinkableEnd(hiBoundA, kind)

		for i := aBegin; i < aEnd; i++ {
			p1 := catA.Linkable[i]
			m1 := p1.Mass(kind)
			bLo := w.Lo - m1 - linkerMass
			bHi := w.Hi - m1 - linkerMass
			bBegin := catB.XLinkableBegin(bLo, kind)
			bEnd := catB.XLinkableEnd(bHi, kind)

			for j := bBegin; j < bEnd; j++ {
				p2 := catB.Linkable[j]
				if p1.ModCount()+p2.ModCount() > opts.MaxXLinkMods {
					continue
				}
				for _, s1 := range p1.LinkSites {
					for _, s2 := range p2.LinkSites {
						if !bm.CanLinkCross(siteOf(p1, s1), siteOf(p2, s2)) {
							continue
						}
						cand := peptide.NewCrossLink(p1, s1, p2, s2, linkerMass)
						if !classAllowed(opts, cand.Type()) {
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

// classAllowed mirrors enumerate.CrossLinkOptions' unexported classAllowed
// method, which this package cannot call directly from outside enumerate.
func classAllowed(opts enumerate.CrossLinkOptions, kind peptide.Kind) bool {
	switch kind {
	case peptide.KindCrossLinkIntra:
		return opts.IncludeIntra
	case peptide.KindCrossLinkInter:
		return opts.IncludeInter
	case peptide.KindCrossLinkInterIntra:
		return opts.IncludeInterIntra
	default:
		return false
	}
}

type pairKey struct {
	a, b   *peptide.LinkablePeptide
	sa, sb int
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
