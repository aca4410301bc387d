package bondmap_test

import (
	"testing"

	"github.com/crux-ms/xlink/bondmap"
	"github.com/stretchr/testify/assert"
)

func TestParseRejectsMalformed(t *testing.T) {
	_, err := bondmap.Parse("K-D")
	assert.Error(t, err)

	_, err = bondmap.Parse("K:1")
	assert.Error(t, err)

	_, err = bondmap.Parse("")
	assert.Error(t, err)
}

func TestSymmetry(t *testing.T) {
	bm, err := bondmap.Parse("K:D,K:nterm")
	assert.NoError(t, err)

	k := bondmap.Site{Letter: 'K', Pos: 2, Length: 5}
	d := bondmap.Site{Letter: 'D', Pos: 4, Length: 5}

	assert.True(t, bm.CanLinkCross(k, d))
	assert.True(t, bm.CanLinkCross(d, k), "bond map must be symmetric")
}

func TestTerminalTokens(t *testing.T) {
	bm, err := bondmap.Parse("K:nterm")
	assert.NoError(t, err)

	nterm := bondmap.Site{Letter: 'A', Pos: 0, Length: 5, AtNTerm: true}
	k := bondmap.Site{Letter: 'K', Pos: 3, Length: 5}
	notNterm := bondmap.Site{Letter: 'A', Pos: 0, Length: 5, AtNTerm: false}

	assert.True(t, bm.CanLinkCross(k, nterm))
	assert.False(t, bm.CanLinkCross(k, notNterm), "nterm token must require AtNTerm")
}

func TestSelfLoopKK(t *testing.T) {
	bm, err := bondmap.Parse("K:K")
	assert.NoError(t, err)
	s1 := bondmap.Site{Letter: 'K', Pos: 1, Length: 5}
	s2 := bondmap.Site{Letter: 'K', Pos: 3, Length: 5}
	assert.True(t, bm.CanLinkSelfLoop(s1, s2))
}

func TestLinkableSites(t *testing.T) {
	bm, err := bondmap.Parse("K:K")
	assert.NoError(t, err)
	letters := "MKAKM"
	atNTerm := make([]bool, len(letters))
	atCTerm := make([]bool, len(letters))
	atNTerm[0] = true
	atCTerm[len(letters)-1] = true

	sites := bm.LinkableSites(letters, atNTerm, atCTerm)
	assert.Equal(t, []int{1, 3}, sites)
}

func TestAnyToken(t *testing.T) {
	bm, err := bondmap.Parse("*:K")
	assert.NoError(t, err)
	s1 := bondmap.Site{Letter: 'Q', Pos: 0, Length: 4}
	s2 := bondmap.Site{Letter: 'K', Pos: 2, Length: 4}
	assert.True(t, bm.CanLinkCross(s1, s2))
}
