package decoy_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"

	"github.com/crux-ms/xlink/decoy"
	"github.com/crux-ms/xlink/digest"
)

func TestShufflePreservesLengthAndTermini(t *testing.T) {
	g := decoy.NewGenerator(rand.NewSource(1), "K", false)
	up := digest.UnmodifiedPeptide{Letters: "MAKDEFGHIAK", ProteinID: "P1"}

	shuffled, ok := g.Shuffle(up)
	assert.True(t, ok)
	assert.Len(t, shuffled, len(up.Letters))
	assert.Equal(t, up.Letters[0], shuffled[0])
	assert.Equal(t, up.Letters[len(up.Letters)-1], shuffled[len(shuffled)-1])
}

func TestShufflePreservesFixedResiduePositions(t *testing.T) {
	g := decoy.NewGenerator(rand.NewSource(2), "K", false)
	up := digest.UnmodifiedPeptide{Letters: "MAKDEFGHIAK", ProteinID: "P1"}

	shuffled, ok := g.Shuffle(up)
	assert.True(t, ok)
	for i := range up.Letters {
		if up.Letters[i] == 'K' {
			assert.Equal(t, byte('K'), shuffled[i], "K at position %d must not move", i)
		}
	}
}

func TestShuffleOnlyTouchesInteriorResidues(t *testing.T) {
	g := decoy.NewGenerator(rand.NewSource(3), "K", false)
	up := digest.UnmodifiedPeptide{Letters: "MAKDEFGHIAK", ProteinID: "P1"}

	shuffled, ok := g.Shuffle(up)
	assert.True(t, ok)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(up.Letters, shuffled, false)

	var changedPositions []int
	pos := 0
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffEqual {
			for i := 0; i < len(d.Text); i++ {
				changedPositions = append(changedPositions, pos+i)
			}
		}
		pos += len(d.Text)
	}
	sort.Ints(changedPositions)
	for _, p := range changedPositions {
		assert.NotEqual(t, 0, p, "terminal residue must not be reported changed")
		assert.NotEqual(t, len(up.Letters)-1, p, "terminal residue must not be reported changed")
	}
}

func TestShuffleRecordsTargetMapping(t *testing.T) {
	g := decoy.NewGenerator(rand.NewSource(4), "K", false)
	up := digest.UnmodifiedPeptide{Letters: "MAKDEFGHIAK", ProteinID: "P1"}

	shuffled, ok := g.Shuffle(up)
	assert.True(t, ok)

	ref, found := g.TargetOf(shuffled)
	assert.True(t, found)
	assert.Equal(t, "P1", ref.ProteinID)
	assert.Equal(t, up.Letters, ref.TargetLetters)
}

func TestShuffleTooShortPeptideFails(t *testing.T) {
	g := decoy.NewGenerator(rand.NewSource(5), "K", false)
	_, ok := g.Shuffle(digest.UnmodifiedPeptide{Letters: "MA", ProteinID: "P1"})
	assert.False(t, ok)
}

func TestWeightedShufflePreservesLengthAndTermini(t *testing.T) {
	g := decoy.NewGenerator(rand.NewSource(6), "K", true)
	up := digest.UnmodifiedPeptide{Letters: "MAKDEFGHIAKLMNPQ", ProteinID: "P1"}

	shuffled, ok := g.Shuffle(up)
	assert.True(t, ok)
	assert.Len(t, shuffled, len(up.Letters))
	assert.Equal(t, up.Letters[0], shuffled[0])
	assert.Equal(t, up.Letters[len(up.Letters)-1], shuffled[len(shuffled)-1])
}
