package candidatedb

import (
	"fmt"

	"github.com/crux-ms/xlink/bondmap"
	"github.com/crux-ms/xlink/digest"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/peptide"
	"github.com/crux-ms/xlink/peptidesource"
	"github.com/crux-ms/xlink/residue"
)

// DecoyGenerator produces one shuffled decoy sequence for a digested target
// peptide, preserving length, termini, and the residues a cross-linker or
// variable modification could land on (spec.md §4.4). A nil DecoyGenerator
// disables decoy generation entirely, producing a target-only database.
type DecoyGenerator interface {
	// Shuffle returns a decoy sequence for up, or ok=false if no valid decoy
	// could be produced within the generator's retry budget.
	Shuffle(up digest.UnmodifiedPeptide) (letters string, ok bool)
}

// Options configures one Build call with the subset of config.Config that
// candidatedb needs, keeping this package independent of the config package
// (the teacher's own annotate package takes explicit parameters rather than
// a config.Config, for the same reason: a library package should not import
// its caller's configuration type).
type Options struct {
	MassKind mass.Kind

	IncludeLinears    bool
	IncludeDeadends   bool
	IncludeSelfloops  bool
	IncludeInter      bool
	IncludeIntra      bool
	IncludeInterIntra bool

	MaxXLinkMods int
	LinkMass     float64

	MinMass, MaxMass float64

	Decoys DecoyGenerator
}

// anyCrossLinkEnabled reports whether any inter-peptide cross-link variant
// is enabled, mirroring config.Config.AnyCrossLinkEnabled without importing
// the config package.
func (o Options) anyCrossLinkEnabled() bool {
	return o.IncludeInter || o.IncludeIntra || o.IncludeInterIntra
}

// Build consumes every unmodified peptide from src, applies modTable's
// variable modifications, classifies the result into the linear,
// mono-link, self-loop, and linkable catalogues, optionally generates a
// matching decoy for each target peptide, and returns the finalized,
// mass-sorted Database (spec.md §4.2 steps 1-5).
func Build(src peptidesource.Source, bm bondmap.BondMap, modTable residue.Table, opts Options) (*Database, error) {
	db := &Database{MassKind: opts.MassKind}
	targetIntern := peptide.NewInternTable(modTable)
	decoyIntern := peptide.NewInternTable(modTable)

	for {
		up, ok, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("candidatedb: digest peptide source: %w", err)
		}
		if !ok {
			break
		}

		if err := addPeptide(db, targetIntern, bm, modTable, opts, up, false); err != nil {
			return nil, err
		}

		if opts.Decoys != nil {
			if letters, ok := opts.Decoys.Shuffle(up); ok {
				decoyUp := up
				decoyUp.Letters = letters
				decoyUp.ProteinID = "decoy_" + up.ProteinID
				if err := addPeptide(db, decoyIntern, bm, modTable, opts, decoyUp, true); err != nil {
					return nil, err
				}
			}
		}
	}

	db.Target.Finalize(opts.MassKind)
	db.Decoy.Finalize(opts.MassKind)
	return db, nil
}

// addPeptide applies every variable-modification combination to up and
// files the resulting peptides into cat's catalogues per spec.md §4.2
// steps 2-4.
func addPeptide(db *Database, intern *peptide.InternTable, bm bondmap.BondMap, modTable residue.Table, opts Options, up digest.UnmodifiedPeptide, isDecoy bool) error {
	cat := db.ForDecoy(isDecoy)

	baseSeq, err := residue.NewSequence(up.Letters)
	if err != nil {
		return fmt.Errorf("candidatedb: %s: %w", up.Letters, err)
	}

	// opts.MaxXLinkMods bounds the *combined* modified-residue count across
	// a cross-link pair (spec.md §4.2 step 2, §8), not variant generation
	// for a single peptide in general, so it is not passed as
	// ApplyModifications' own globalModCap here; the cross-link-specific
	// cap is enforced below, at the point a peptide is filed into
	// cat.Linkable.
	variants := digest.ApplyModifications(baseSeq, modTable, 0)
	atNTerm, atCTerm := terminalFlags(up)

	for _, seq := range variants {
		m := massOf(seq, modTable, opts.MassKind)
		if opts.MinMass > 0 && m < opts.MinMass {
			continue
		}
		if opts.MaxMass > 0 && m > opts.MaxMass {
			continue
		}

		source := peptide.ProteinSource{
			ProteinID:      up.ProteinID,
			Start:          up.Start,
			AtProteinNTerm: up.AtProteinNTerm,
			AtProteinCTerm: up.AtProteinCTerm,
		}

		if monoLinkCount(seq, modTable) > 0 {
			if !opts.IncludeDeadends {
				continue
			}
			p := intern.Intern(seq, source, isDecoy)
			p.DigestMissedCleavages = up.MissedCleavages
			cat.MonoLink = append(cat.MonoLink, p)
			continue
		}

		p := intern.Intern(seq, source, isDecoy)
		p.DigestMissedCleavages = up.MissedCleavages

		if opts.IncludeLinears {
			cat.Linear = append(cat.Linear, p)
		}

		sites := linkSites(bm, seq, modTable, up.Letters, atNTerm, atCTerm)
		if len(sites) == 0 {
			continue
		}

		if len(sites) >= 2 && opts.IncludeSelfloops {
			for i := 0; i < len(sites); i++ {
				for j := i + 1; j < len(sites); j++ {
					s1 := siteOf(seq, sites[i], up.Letters, atNTerm, atCTerm)
					s2 := siteOf(seq, sites[j], up.Letters, atNTerm, atCTerm)
					if !bm.CanLinkSelfLoop(s1, s2) {
						continue
					}
					lp := peptide.NewLinkablePeptide(p, sites)
					cat.SelfLoop = append(cat.SelfLoop, peptide.NewSelfLoop(lp, sites[i], sites[j], opts.LinkMass))
				}
			}
		}

		// MaxXLinkMods = 0 means zero modified residues are allowed on a
		// cross-linked peptide (spec.md §8), not "unlimited" as
		// digest.ApplyModifications' own globalModCap convention would
		// have it, so this is a plain <= with no zero-means-unlimited
		// short-circuit.
		if opts.anyCrossLinkEnabled() && p.ModCount() <= opts.MaxXLinkMods {
			lp := peptide.NewLinkablePeptide(p, sites)
			cat.Linkable = append(cat.Linkable, lp)
		}
	}
	return nil
}

// terminalFlags expands an UnmodifiedPeptide's protein-terminus flags into
// per-position atNTerm/atCTerm slices for bondmap.LinkableSites: only
// position 0 can be the protein N-terminus and only the last position can
// be the protein C-terminus.
func terminalFlags(up digest.UnmodifiedPeptide) (atNTerm, atCTerm []bool) {
	n := len(up.Letters)
	atNTerm = make([]bool, n)
	atCTerm = make([]bool, n)
	if n == 0 {
		return
	}
	atNTerm[0] = up.AtProteinNTerm
	atCTerm[n-1] = up.AtProteinCTerm
	return
}

// linkSites returns the bondmap-eligible link-site positions for seq,
// excluding any position carrying a PreventsXLink modification.
func linkSites(bm bondmap.BondMap, seq residue.Sequence, modTable residue.Table, letters string, atNTerm, atCTerm []bool) []int {
	candidates := bm.LinkableSites(letters, atNTerm, atCTerm)
	var out []int
	for _, pos := range candidates {
		if blocksXLink(seq.At(pos), modTable) {
			continue
		}
		out = append(out, pos)
	}
	return out
}

// siteOf builds a bondmap.Site for position pos within seq, for the
// CanLinkSelfLoop/CanLinkCross calls.
func siteOf(seq residue.Sequence, pos int, letters string, atNTerm, atCTerm []bool) bondmap.Site {
	return bondmap.Site{
		Letter:  seq.At(pos).Letter(),
		Pos:     pos,
		Length:  seq.Len(),
		AtNTerm: atNTerm[pos],
		AtCTerm: atCTerm[pos],
	}
}

// monoLinkCount returns the number of mono-link modifications applied to
// seq under modTable.
func monoLinkCount(seq residue.Sequence, modTable residue.Table) int {
	n := 0
	for i := 0; i < seq.Len(); i++ {
		mods := seq.At(i).Mods()
		for idx, m := range modTable.Mods {
			if m.IsMonoLink && mods.Has(idx) {
				n++
			}
		}
	}
	return n
}

// blocksXLink reports whether cell carries any modification flagged
// PreventsXLink under modTable.
func blocksXLink(cell residue.Cell, modTable residue.Table) bool {
	mods := cell.Mods()
	for idx, m := range modTable.Mods {
		if m.PreventsXLink && mods.Has(idx) {
			return true
		}
	}
	return false
}

// massOf computes a modified sequence's mass directly, without requiring a
// *peptide.Peptide, so mass-range filtering can happen before interning
// (and before allocating a candidate at all) for variants outside
// [MinMass, MaxMass].
func massOf(seq residue.Sequence, modTable residue.Table, kind mass.Kind) float64 {
	total := mass.WaterMass(kind)
	for i := 0; i < seq.Len(); i++ {
		cell := seq.At(i)
		total += mass.ResidueMass(cell.Letter(), kind)
		mods := cell.Mods()
		for idx, m := range modTable.Mods {
			if mods.Has(idx) {
				total += m.MassDelta
			}
		}
	}
	return total
}
