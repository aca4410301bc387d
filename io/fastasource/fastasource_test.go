package fastasource_test

import (
	"strings"
	"testing"

	"github.com/crux-ms/xlink/digest"
	"github.com/crux-ms/xlink/io/fastasource"
	"github.com/stretchr/testify/assert"
)

const sample = ">sp|P1|TEST1 desc one\nMRAPK\n>sp|P2|TEST2 desc two\nMSTK\n"

func TestParseFasta(t *testing.T) {
	proteins, err := fastasource.ParseFasta(strings.NewReader(sample))
	assert.NoError(t, err)
	assert.Len(t, proteins, 2)
	assert.Equal(t, "sp|P1|TEST1", proteins[0].ID)
	assert.Equal(t, "MRAPK", proteins[0].Sequence)
}

func TestParseFastaRejectsDataBeforeHeader(t *testing.T) {
	_, err := fastasource.ParseFasta(strings.NewReader("MRAPK\n"))
	assert.Error(t, err)
}

func TestSourceDigestsAndIterates(t *testing.T) {
	src, err := fastasource.NewFromReader(strings.NewReader(sample), digest.Trypsin, digest.FullySpecific, 0, 1, 0)
	assert.NoError(t, err)

	var all []digest.UnmodifiedPeptide
	for {
		p, ok, err := src.Next()
		assert.NoError(t, err)
		if !ok {
			break
		}
		all = append(all, p)
	}
	assert.NotEmpty(t, all)

	seq, ok := src.ProteinSequence("sp|P1|TEST1")
	assert.True(t, ok)
	assert.Equal(t, "MRAPK", seq)
}
