package residue

import (
	"fmt"
	"strings"
)

// MaxSequenceLength bounds the fixed-capacity buffer backing Sequence. Tryptic
// peptides from a missed-cleavage budget of a handful rarely exceed this;
// NewSequence returns an error for longer input rather than truncate it
// silently.
const MaxSequenceLength = 63

// Sequence is a fixed-capacity modified amino-acid sequence, standing in for
// the original implementation's global stack of preallocated
// modified-sequence buffers (spec.md §9): instead of a process-wide mutable
// arena, each Sequence is a small value type that is cheap to copy and
// requires no synchronisation. length tracks how many of the cells array
// entries are valid.
type Sequence struct {
	cells  [MaxSequenceLength]Cell
	length int
}

// NewSequence builds a Sequence from plain residue letters with no
// modifications applied.
func NewSequence(letters string) (Sequence, error) {
	if len(letters) > MaxSequenceLength {
		return Sequence{}, fmt.Errorf("residue: sequence length %d exceeds max %d", len(letters), MaxSequenceLength)
	}
	var s Sequence
	for i := 0; i < len(letters); i++ {
		c, err := NewCell(letters[i], 0)
		if err != nil {
			return Sequence{}, err
		}
		s.cells[i] = c
	}
	s.length = len(letters)
	return s, nil
}

// Len returns the number of residues in the sequence.
func (s Sequence) Len() int { return s.length }

// At returns the modified-residue cell at position i.
func (s Sequence) At(i int) Cell { return s.cells[i] }

// WithMod returns a copy of s with modification index modIdx applied at
// position i. The invariant that the same modification is never applied
// twice to the same residue is the caller's (digest's) responsibility.
func (s Sequence) WithMod(i, modIdx int) Sequence {
	out := s
	out.cells[i] = s.cells[i] | modBit(modIdx)
	return out
}

// modBit is the Cell-shifted form of a single modification bit, kept
// separate from Mask.With so WithMod and ParseModifiedString can OR a bit
// directly into a Cell without constructing an intermediate Mask value.
func modBit(modIdx int) Cell {
	return 1 << (uint(modIdx) + 5)
}

// Letters returns the plain (unmodified) residue string.
func (s Sequence) Letters() string {
	var b strings.Builder
	b.Grow(s.length)
	for i := 0; i < s.length; i++ {
		b.WriteByte(s.cells[i].Letter())
	}
	return b.String()
}

// ModifiedString renders the sequence using each modification's Symbol
// immediately after the residue it decorates, e.g. "PEPT*IDE" for an
// oxidation marked '*' on the T. table supplies the Symbol for each mask
// bit; a residue with multiple modifications emits each symbol in mask-bit
// order.
func (s Sequence) ModifiedString(table Table) string {
	var b strings.Builder
	b.Grow(s.length + 4)
	for i := 0; i < s.length; i++ {
		cell := s.cells[i]
		b.WriteByte(cell.Letter())
		mods := cell.Mods()
		for bit, mod := range table.Mods {
			if mods.Has(bit) {
				b.WriteByte(mod.Symbol)
			}
		}
	}
	return b.String()
}

// ParseModifiedString is the round-trip inverse of ModifiedString: it parses
// a modified-sequence representation back into a Sequence, using table to
// map symbols back to mask bits. Returns an error on an unknown symbol.
func ParseModifiedString(text string, table Table) (Sequence, error) {
	var s Sequence
	pos := -1
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch >= 'A' && ch <= 'Z' {
			pos++
			if pos >= MaxSequenceLength {
				return Sequence{}, fmt.Errorf("residue: sequence too long while parsing %q", text)
			}
			c, err := NewCell(ch, 0)
			if err != nil {
				return Sequence{}, err
			}
			s.cells[pos] = c
			s.length = pos + 1
			continue
		}
		if pos < 0 {
			return Sequence{}, fmt.Errorf("residue: modification symbol %q before any residue in %q", ch, text)
		}
		idx, ok := table.Index(ch)
		if !ok {
			return Sequence{}, fmt.Errorf("residue: unknown modification symbol %q in %q", ch, text)
		}
		s.cells[pos] = s.cells[pos] | modBit(idx)
	}
	return s, nil
}

// Equal reports whether two sequences have identical letters and
// modification masks.
func (s Sequence) Equal(other Sequence) bool {
	if s.length != other.length {
		return false
	}
	for i := 0; i < s.length; i++ {
		if s.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Slice returns a new Sequence over the half-open residue range [lo, hi).
func (s Sequence) Slice(lo, hi int) Sequence {
	var out Sequence
	out.length = hi - lo
	copy(out.cells[:out.length], s.cells[lo:hi])
	return out
}
