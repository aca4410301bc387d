/*
Package peptide implements the Peptide and LinkablePeptide data model of
spec.md §3: a sequence of residues with a pointer back to one or more
protein sources, lazily cached mass, and (for linkable peptides) the set of
residue positions eligible for cross-linking.

Peptide objects are interned by their modified-sequence hash so that the
same modified peptide recovered from two different proteins (or two
overlapping tryptic windows of the same protein) collapses to one arena
object, per spec.md §4.2 step 5's "duplicate peptide objects are interned
via the peptide source" invariant.
*/
package peptide

import (
	"lukechampine.com/blake3"

	"github.com/crux-ms/xlink/residue"
)

// ProteinSource identifies one occurrence of a peptide within a protein:
// the protein's identifier and the 0-based start offset of the peptide
// within that protein's sequence.
type ProteinSource struct {
	ProteinID string
	Start     int
	// AtProteinNTerm/AtProteinCTerm record whether this occurrence's first/
	// last residue reaches the protein's own N-/C-terminus, needed by
	// bondmap's terminal descriptors.
	AtProteinNTerm bool
	AtProteinCTerm bool
}

// internKey is the blake3 hash of a modified sequence's raw bytes, used as
// the key into the intern table. blake3 is used here purely for its speed
// on short keys; no cryptographic property is required.
type internKey [32]byte

func hashSequence(seq residue.Sequence, table residue.Table) internKey {
	sum := blake3.Sum256([]byte(seq.ModifiedString(table)))
	return sum
}

// InternTable collapses identical modified peptides discovered from
// different proteins (or overlapping digestion windows) into one *Peptide,
// merging their ProteinSource lists. It owns every Peptide it has produced
// for the lifetime of a candidatedb build (spec.md §4.2's "database owns all
// peptide and candidate objects").
type InternTable struct {
	modTable residue.Table
	byHash   map[internKey]*Peptide
	all      []*Peptide
}

// NewInternTable constructs an empty intern table for the given global
// variable-modification table (needed to render modified-sequence hash
// keys consistently).
func NewInternTable(modTable residue.Table) *InternTable {
	return &InternTable{modTable: modTable, byHash: make(map[internKey]*Peptide)}
}

// Intern returns the canonical *Peptide for seq, creating one if this exact
// modified sequence has not been seen before, and appends source to its
// source list either way.
func (t *InternTable) Intern(seq residue.Sequence, source ProteinSource, isDecoy bool) *Peptide {
	key := hashSequence(seq, t.modTable)
	if p, ok := t.byHash[key]; ok {
		p.Sources = append(p.Sources, source)
		return p
	}
	p := &Peptide{Seq: seq, Sources: []ProteinSource{source}, IsDecoy: isDecoy, modTable: t.modTable}
	t.byHash[key] = p
	t.all = append(t.all, p)
	return p
}

// All returns every interned peptide, in insertion order.
func (t *InternTable) All() []*Peptide {
	return t.all
}
