package peptide

import (
	"sort"

	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/residue"
)

// Peptide is a modified amino-acid sequence with one or more protein
// sources and lazily cached masses. The mass cache is, per spec.md §3, the
// single most-accessed field; it is shared with every derived object
// (LinkablePeptide, candidates) by embedding a pointer to the same Peptide
// rather than copying mass values around.
type Peptide struct {
	Seq     residue.Sequence
	Sources []ProteinSource
	IsDecoy bool

	// DigestMissedCleavages is the number of missed cleavage sites counted
	// at digestion time (digest.UnmodifiedPeptide.MissedCleavages), carried
	// through for reporting (spec.md §6). It does not account for sites
	// later consumed by a chosen cross-link or self-loop site; callers that
	// need that adjustment use the MissedCleavages method instead.
	DigestMissedCleavages int

	modTable residue.Table

	monoMass    float64
	monoCached  bool
	avgMass     float64
	avgCached   bool
}

// Length returns the number of residues.
func (p *Peptide) Length() int { return p.Seq.Len() }

// Mass returns the peptide's mass under the given table kind, computing and
// caching it on first use. The cache includes each applied modification's
// mass delta plus one water mass for the two termini.
func (p *Peptide) Mass(kind mass.Kind) float64 {
	if kind == mass.Monoisotopic && p.monoCached {
		return p.monoMass
	}
	if kind == mass.Average && p.avgCached {
		return p.avgMass
	}
	total := mass.WaterMass(kind)
	for i := 0; i < p.Seq.Len(); i++ {
		cell := p.Seq.At(i)
		total += mass.ResidueMass(cell.Letter(), kind)
		mods := cell.Mods()
		for bit, m := range p.modTable.Mods {
			if mods.Has(bit) {
				total += m.MassDelta
			}
		}
	}
	if kind == mass.Monoisotopic {
		p.monoMass = total
		p.monoCached = true
	} else {
		p.avgMass = total
		p.avgCached = true
	}
	return total
}

// ResidueMass returns the mass of residue i alone, including any variable
// modification deltas applied at that position but excluding water. Used by
// fragment ion construction, which needs per-residue contributions to build
// prefix/suffix sums rather than the whole-peptide cached mass.
func (p *Peptide) ResidueMass(i int, kind mass.Kind) float64 {
	cell := p.Seq.At(i)
	total := mass.ResidueMass(cell.Letter(), kind)
	mods := cell.Mods()
	for bit, m := range p.modTable.Mods {
		if mods.Has(bit) {
			total += m.MassDelta
		}
	}
	return total
}

// ModifiedSequence renders the peptide's modified-sequence text
// representation.
func (p *Peptide) ModifiedSequence() string {
	return p.Seq.ModifiedString(p.modTable)
}

// ModCount returns the number of modified residues in the peptide (not the
// number of modification instances — a residue with two stacked
// modifications counts once).
func (p *Peptide) ModCount() int {
	n := 0
	for i := 0; i < p.Seq.Len(); i++ {
		if p.Seq.At(i).Mods() != 0 {
			n++
		}
	}
	return n
}

// MissedCleavages recomputes the number of missed cleavage sites in the
// peptide given the enzyme's cleavage-site predicate, skipping any position
// in skip (0-based, within this peptide) that has been "consumed" by a
// chosen link site per spec.md §3. cleaves reports whether position i is a
// cleavage site under the configured enzyme/modification rules.
func (p *Peptide) MissedCleavages(cleaves func(i int) bool, skip map[int]bool) int {
	n := 0
	for i := 0; i < p.Seq.Len()-1; i++ {
		if skip[i] {
			continue
		}
		if cleaves(i) {
			n++
		}
	}
	return n
}

// FlankingResidues returns the residue immediately before and after the
// peptide's first protein source, or '-' if the peptide reaches that
// terminus. Used for output reporting (spec.md §6).
func (p *Peptide) FlankingResidues(proteinSeq string) (before, after byte) {
	if len(p.Sources) == 0 {
		return '-', '-'
	}
	src := p.Sources[0]
	before, after = '-', '-'
	if src.Start > 0 {
		before = proteinSeq[src.Start-1]
	}
	end := src.Start + p.Length()
	if end < len(proteinSeq) {
		after = proteinSeq[end]
	}
	return before, after
}

// LinkablePeptide is a Peptide annotated with the sorted list of residue
// positions within it eligible for cross-linking, per spec.md §3. Two
// linkable peptides are equal if their modified sequences are equal;
// ordering is by cached monoisotopic mass then modified sequence.
type LinkablePeptide struct {
	*Peptide
	LinkSites []int

	// prelimXCorr caches the XCorr this linkable peptide achieved in the
	// most recent top-N preliminary scoring pass (spec.md §4.3).
	prelimXCorr    float64
	prelimXCorrSet bool

	// decoyTwin lazily caches this linkable peptide's decoy sibling.
	decoyTwin *LinkablePeptide
}

// NewLinkablePeptide builds a LinkablePeptide; sites must already be sorted
// ascending (candidatedb is responsible for calling bondmap once and
// sorting the result).
func NewLinkablePeptide(p *Peptide, sites []int) *LinkablePeptide {
	return &LinkablePeptide{Peptide: p, LinkSites: sites}
}

// Equal reports whether two linkable peptides have equal modified
// sequences.
func (lp *LinkablePeptide) Equal(other *LinkablePeptide) bool {
	return lp.Seq.Equal(other.Seq)
}

// Less orders linkable peptides by cached monoisotopic mass, then by
// modified sequence, giving candidatedb's sorted catalogues a total order.
func Less(a, b *LinkablePeptide) bool {
	am, bm := a.Mass(residueMassKindDefault), b.Mass(residueMassKindDefault)
	if am != bm {
		return am < bm
	}
	return a.ModifiedSequence() < b.ModifiedSequence()
}

// residueMassKindDefault is Monoisotopic; ordering by average mass would
// produce the same relative order for the mass differences that matter
// here (isobaric modifications aside), and spec.md only requires "cached
// monoisotopic mass" for sort order.
const residueMassKindDefault = mass.Monoisotopic

// SetPrelimXCorr records the XCorr achieved during a top-N preliminary
// scoring pass.
func (lp *LinkablePeptide) SetPrelimXCorr(x float64) {
	lp.prelimXCorr = x
	lp.prelimXCorrSet = true
}

// PrelimXCorr returns the cached preliminary XCorr and whether one has been
// set.
func (lp *LinkablePeptide) PrelimXCorr() (float64, bool) {
	return lp.prelimXCorr, lp.prelimXCorrSet
}

// SetDecoyTwin caches the lazily generated decoy sibling of this linkable
// peptide.
func (lp *LinkablePeptide) SetDecoyTwin(twin *LinkablePeptide) {
	lp.decoyTwin = twin
}

// DecoyTwin returns the cached decoy sibling, or nil if none has been
// generated yet.
func (lp *LinkablePeptide) DecoyTwin() *LinkablePeptide {
	return lp.decoyTwin
}

// SortByMass sorts a slice of linkable peptides in place per the Less
// ordering above.
func SortByMass(peptides []*LinkablePeptide) {
	sort.Slice(peptides, func(i, j int) bool {
		return Less(peptides[i], peptides[j])
	})
}

// FlattenedSite is one (peptide, single link site) pair used by the
// flattened linkable catalogue when the top-N preliminary filter is active
// (spec.md §4.2 step 5).
type FlattenedSite struct {
	Peptide *LinkablePeptide
	Site    int
}

// Mass returns the mass of the flattened site's underlying peptide (the
// linker mass is added separately by whoever forms a candidate from it).
func (f FlattenedSite) Mass(kind mass.Kind) float64 {
	return f.Peptide.Mass(kind)
}

// Flatten emits one FlattenedSite per (peptide, link site) pair across all
// of peptides, for the flattened linkable catalogue.
func Flatten(peptides []*LinkablePeptide) []FlattenedSite {
	var out []FlattenedSite
	for _, p := range peptides {
		for _, s := range p.LinkSites {
			out = append(out, FlattenedSite{Peptide: p, Site: s})
		}
	}
	return out
}

// SortFlattenedByMass sorts flattened sites by their peptide's
// monoisotopic mass.
func SortFlattenedByMass(sites []FlattenedSite) {
	sort.Slice(sites, func(i, j int) bool {
		return sites[i].Peptide.Mass(mass.Monoisotopic) < sites[j].Peptide.Mass(mass.Monoisotopic)
	})
}
