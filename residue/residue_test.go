package residue_test

import (
	"testing"

	"github.com/crux-ms/xlink/residue"
	"github.com/stretchr/testify/assert"
)

func oxidationTable() residue.Table {
	return residue.Table{Mods: []residue.Modification{
		{
			Symbol:        '*',
			MassDelta:     15.9949,
			Allowed:       map[byte]bool{'M': true},
			MaxPerPeptide: 3,
			Position:      residue.PositionAny,
		},
	}}
}

func TestCellPackUnpack(t *testing.T) {
	c, err := residue.NewCell('K', 0b101)
	assert.NoError(t, err)
	assert.Equal(t, byte('K'), c.Letter())
	assert.Equal(t, residue.Mask(0b101), c.Mods())
}

func TestCellRejectsOutOfRangeLetter(t *testing.T) {
	_, err := residue.NewCell('a', 0)
	assert.Error(t, err)
}

func TestMaskHasWithCount(t *testing.T) {
	var m residue.Mask
	m = m.With(0).With(3)
	assert.True(t, m.Has(0))
	assert.True(t, m.Has(3))
	assert.False(t, m.Has(1))
	assert.Equal(t, 2, m.Count())
}

func TestSequenceModifiedStringRoundTrip(t *testing.T) {
	table := oxidationTable()
	seq, err := residue.NewSequence("PEPTMIDE")
	assert.NoError(t, err)

	modIdx, ok := table.Index('*')
	assert.True(t, ok)
	seq = seq.WithMod(4, modIdx)

	text := seq.ModifiedString(table)
	assert.Equal(t, "PEPTM*IDE", text)

	parsed, err := residue.ParseModifiedString(text, table)
	assert.NoError(t, err)
	assert.True(t, seq.Equal(parsed), "round-tripped sequence should equal original")
}

func TestParseModifiedStringUnknownSymbol(t *testing.T) {
	_, err := residue.ParseModifiedString("PEPT#IDE", oxidationTable())
	assert.Error(t, err)
}

func TestModificationAllowsPositionRestriction(t *testing.T) {
	mod := residue.Modification{
		Allowed:     map[byte]bool{'K': true},
		Position:    residue.PositionNTerm,
		MaxDistance: 1,
	}
	assert.True(t, mod.Allows('K', 0, 10))
	assert.True(t, mod.Allows('K', 1, 10))
	assert.False(t, mod.Allows('K', 2, 10))
}

func TestSequenceSlice(t *testing.T) {
	seq, err := residue.NewSequence("ABCDEFG")
	assert.NoError(t, err)
	sub := seq.Slice(2, 5)
	assert.Equal(t, "CDE", sub.Letters())
}
