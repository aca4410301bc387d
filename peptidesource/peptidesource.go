/*
Package peptidesource defines the external collaborator abstraction of
spec.md §6: "FASTA parsing and in-silico digestion into unmodified peptides
(delegated to a peptide-source abstraction)". candidatedb.Build consumes
only this interface; io/fastasource provides the default FASTA-backed
implementation, but any other source (a pre-digested peptide list, a
database-backed source) can satisfy it.
*/
package peptidesource

import "github.com/crux-ms/xlink/digest"

// Source iterates over every unmodified peptide derivable from a protein
// database under a configured digestion specification, matching spec.md
// §6's "iterator over (modified-peptide, protein-source-list) pairs" —
// modification application itself happens in candidatedb via
// digest.ApplyModifications, so Source yields unmodified peptides.
type Source interface {
	// Next returns the next unmodified peptide, or ok=false when exhausted.
	// err is non-nil only on a fatal parse error (spec.md §7.2).
	Next() (peptide digest.UnmodifiedPeptide, ok bool, err error)

	// ProteinSequence returns the full sequence of a protein by ID, used by
	// xlinkwriter to compute flanking residues.
	ProteinSequence(proteinID string) (string, bool)
}
