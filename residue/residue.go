/*
Package residue defines the amino-acid alphabet, the variable-modification
table, and the bit-packed modified-residue cell used throughout the rest of
this module.

A residue is one of 26 uppercase letters (only 20 are standard amino acids;
the rest are accepted so that ambiguity codes and custom alphabets used by
some FASTA databases do not panic the digester). A modified residue is that
letter plus a bitmask recording which of up to 11 globally configured
variable modifications are applied to it. Eleven modifications fit
comfortably in a 16-bit cell: 5 bits for the letter (A-Z needs 5 bits) and
11 bits for the modification mask. This encoding is hot-path and
cache-friendly and is kept exactly as specified rather than generalised.
*/
package residue

import "fmt"

// MaxModifications is the number of distinct variable modifications
// supported globally. Chosen so a modification mask fits in the remaining
// 11 bits of a 16-bit cell alongside a 5-bit letter.
const MaxModifications = 11

// Cell is a bit-packed modified residue: bits [0:5) hold the letter as
// (letter - 'A'), bits [5:16) hold the modification mask.
type Cell uint16

// letterMask covers the 5 letter bits.
const letterMask = 0x1F

// NewCell packs a letter and a modification mask into a Cell.
func NewCell(letter byte, mods Mask) (Cell, error) {
	if letter < 'A' || letter > 'Z' {
		return 0, fmt.Errorf("residue: invalid letter %q", letter)
	}
	if mods > (1<<MaxModifications)-1 {
		return 0, fmt.Errorf("residue: modification mask %#x exceeds %d slots", mods, MaxModifications)
	}
	return Cell(letter-'A') | Cell(mods)<<5, nil
}

// Letter returns the unmodified residue letter.
func (c Cell) Letter() byte {
	return byte(c&letterMask) + 'A'
}

// Mods returns the applied modification mask.
func (c Cell) Mods() Mask {
	return Mask(c >> 5)
}

// Mask is a bitmask over the MaxModifications globally configured variable
// modifications; bit i set means modification index i is applied.
type Mask uint16

// Has reports whether modification index i is set in the mask.
func (m Mask) Has(i int) bool {
	return m&(1<<uint(i)) != 0
}

// With returns a copy of the mask with modification index i applied.
//
// The caller is responsible for the invariant that the same modification is
// never applied twice to the same residue; With is idempotent so a caller
// that accidentally re-applies one does not corrupt the mask, but digest
// callers should treat a repeat application as a bug.
func (m Mask) With(i int) Mask {
	return m | (1 << uint(i))
}

// Count returns the number of modifications set in the mask.
func (m Mask) Count() int {
	n := 0
	for m != 0 {
		m &= m - 1
		n++
	}
	return n
}

// Position restricts where a modification may be applied within a peptide.
type Position int

const (
	// PositionAny allows the modification anywhere in the peptide.
	PositionAny Position = iota
	// PositionNTerm restricts the modification to within MaxDistance
	// residues of the peptide N-terminus.
	PositionNTerm
	// PositionCTerm restricts the modification to within MaxDistance
	// residues of the peptide C-terminus.
	PositionCTerm
)

// Modification describes one of the up to MaxModifications globally
// configured variable modifications.
type Modification struct {
	// Symbol is the single character used in modified-sequence text
	// representations, e.g. '*' or '#'.
	Symbol byte
	// MassDelta is the monoisotopic mass added by this modification.
	MassDelta float64
	// Allowed is the set of residue letters this modification may attach to.
	Allowed map[byte]bool
	// MaxPerPeptide caps how many times this modification may appear in a
	// single peptide.
	MaxPerPeptide int
	// Position restricts where in the peptide the modification may land.
	Position Position
	// MaxDistance bounds the distance from the relevant terminus when
	// Position is PositionNTerm or PositionCTerm. Ignored for PositionAny.
	MaxDistance int
	// PreventsCleavage marks that a residue carrying this modification
	// cannot be a cleavage site, even if the enzyme specificity would
	// otherwise cut there.
	PreventsCleavage bool
	// PreventsXLink marks that a residue carrying this modification is not
	// eligible as a cross-link site, even if the bond map would otherwise
	// admit it.
	PreventsXLink bool
	// IsMonoLink marks this modification as a mono-link (dead-end) adduct:
	// a cross-linker attached on one side with the other end hydrolysed.
	// Representationally it is a variable modification like any other; this
	// flag only changes how candidatedb classifies the resulting peptide.
	IsMonoLink bool
}

// Allows reports whether the modification may attach to residue letter at
// position pos (0-based) in a peptide of the given length.
func (m Modification) Allows(letter byte, pos, length int) bool {
	if !m.Allowed[letter] {
		return false
	}
	switch m.Position {
	case PositionNTerm:
		return pos <= m.MaxDistance
	case PositionCTerm:
		return (length - 1 - pos) <= m.MaxDistance
	default:
		return true
	}
}

// Table holds the globally configured set of variable modifications,
// indexed by mask bit position.
type Table struct {
	Mods []Modification
}

// Index looks up a modification's slot by its symbol; ok is false if no
// modification uses that symbol.
func (t Table) Index(symbol byte) (int, bool) {
	for i, m := range t.Mods {
		if m.Symbol == symbol {
			return i, true
		}
	}
	return 0, false
}

// MaxAttachableCleavagePreventers returns the largest number of
// prevents-cleavage modifications that could simultaneously attach to one
// peptide, summing MaxPerPeptide across every prevents-cleavage
// modification. Used by digest to inflate the missed-cleavage budget
// (spec.md §4.2 step 1).
func (t Table) MaxAttachableCleavagePreventers() int {
	n := 0
	for _, m := range t.Mods {
		if m.PreventsCleavage {
			n += m.MaxPerPeptide
		}
	}
	return n
}
