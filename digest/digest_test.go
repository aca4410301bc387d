package digest_test

import (
	"testing"

	"github.com/crux-ms/xlink/digest"
	"github.com/crux-ms/xlink/residue"
	"github.com/stretchr/testify/assert"
)

func TestTrypsinCleavesAfterKR(t *testing.T) {
	assert.True(t, digest.Trypsin.CleavesAt("MRAPK", 1), "must cleave after R at index 1")
	assert.False(t, digest.Trypsin.CleavesAt("MRAPK", 4), "no cleavage site past the last residue")
}

func TestTrypsinRespectsProlineException(t *testing.T) {
	assert.False(t, digest.Trypsin.CleavesAt("MRPAK", 1), "K/R before P must not cleave")
}

func TestDigestFullySpecificNoMissedCleavage(t *testing.T) {
	peptides := digest.Digest("P1", "MRAPKMSTK", digest.Trypsin, digest.FullySpecific, 0, 1, 0)
	var seqs []string
	for _, p := range peptides {
		seqs = append(seqs, p.Letters)
	}
	assert.Contains(t, seqs, "MR")
	assert.Contains(t, seqs, "APK")
	assert.Contains(t, seqs, "MSTK")
}

func TestDigestBudgetInflation(t *testing.T) {
	modTable := residue.Table{Mods: []residue.Modification{
		{Allowed: map[byte]bool{'K': true}, MaxPerPeptide: 1, PreventsCleavage: true},
	}}
	budget := digest.Budget(1, digest.AdditionalCleavages(true, false), modTable)
	assert.Equal(t, 1+1+1, budget)
}

func TestApplyModificationsRespectsCapsAndNoDoubleApply(t *testing.T) {
	seq, err := residue.NewSequence("MKAKM")
	assert.NoError(t, err)

	modTable := residue.Table{Mods: []residue.Modification{
		{Symbol: '*', MassDelta: 10, Allowed: map[byte]bool{'K': true}, MaxPerPeptide: 1},
	}}

	variants := digest.ApplyModifications(seq, modTable, 0)
	// unmodified + one K modified at pos1 + one K modified at pos3 = 3 variants
	assert.Len(t, variants, 3)
	for _, v := range variants {
		count := 0
		for i := 0; i < v.Len(); i++ {
			if v.At(i).Mods() != 0 {
				count++
			}
		}
		assert.LessOrEqual(t, count, 1, "MaxPerPeptide=1 must cap modified residues at one")
	}
}

func TestApplyModificationsGlobalCapLimitsTotalModifiedResidues(t *testing.T) {
	seq, err := residue.NewSequence("MKAKM")
	assert.NoError(t, err)
	modTable := residue.Table{Mods: []residue.Modification{
		{Allowed: map[byte]bool{'K': true}, MaxPerPeptide: 2},
	}}
	variants := digest.ApplyModifications(seq, modTable, 1)
	for _, v := range variants {
		count := 0
		for i := 0; i < v.Len(); i++ {
			if v.At(i).Mods() != 0 {
				count++
			}
		}
		assert.LessOrEqual(t, count, 1, "globalModCap=1 must cap total modified residues at one")
	}
}
