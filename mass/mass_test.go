package mass_test

import (
	"math"
	"testing"

	"github.com/crux-ms/xlink/mass"
	"github.com/stretchr/testify/assert"
)

func TestResidueMassKnownLetters(t *testing.T) {
	assert.InDelta(t, 128.09496, mass.ResidueMass('K', mass.Monoisotopic), 1e-5)
	assert.InDelta(t, 128.1741, mass.ResidueMass('K', mass.Average), 1e-4)
}

func TestResidueMassUnknownLetterIsZero(t *testing.T) {
	assert.Equal(t, 0.0, mass.ResidueMass('B', mass.Monoisotopic))
}

func TestMZRoundTrip(t *testing.T) {
	neutral := 1234.5678
	mh := mass.NeutralToMH(neutral)
	mz := mass.MHToMZ(mh, 3)
	roundTripped := mass.MZToNeutral(mz, 3)
	assert.True(t, math.Abs(roundTripped-neutral) < 1e-6)
}
