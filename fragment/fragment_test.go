package fragment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crux-ms/xlink/fragment"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/peptide"
	"github.com/crux-ms/xlink/residue"
)

func testConfig() fragment.Config {
	return fragment.Config{UseB: true, UseY: true, MaxIonCharge: 2, MassKind: mass.Monoisotopic}
}

func newPeptide(t *testing.T, letters string) *peptide.Peptide {
	t.Helper()
	table := residue.Table{}
	intern := peptide.NewInternTable(table)
	seq, err := residue.NewSequence(letters)
	assert.NoError(t, err)
	return intern.Intern(seq, peptide.ProteinSource{ProteinID: "P1"}, false)
}

func TestPredictLinearEmitsBAndYIons(t *testing.T) {
	p := newPeptide(t, "PEPTIDE")
	cand := peptide.NewLinear(p, peptide.KindLinear)
	series := fragment.Predict(cand, 2, testConfig())
	assert.NotEmpty(t, series.Ions)
	// 7 residues -> 6 cleavage sites, b/y at charge 1 and 2 => 24 ions.
	assert.Equal(t, 24, len(series.Ions))
}

func TestPredictSelfLoopSuppressesSpanningIons(t *testing.T) {
	p := newPeptide(t, "MKAKPEPTIDE")
	lp := peptide.NewLinkablePeptide(p, []int{1, 3})
	cand := peptide.NewSelfLoop(lp, 1, 3, 138.0681)
	series := fragment.Predict(cand, 1, testConfig())
	for _, ion := range series.Ions {
		if ion.Type != fragment.IonB {
			continue
		}
		// cleavage index 2 or 3 spans only one endpoint of the loop (sites
		// 1 and 3) and must be suppressed.
		assert.NotEqual(t, 2, ion.CleavageIndex)
		assert.NotEqual(t, 3, ion.CleavageIndex)
	}
}

func TestPredictCrossLinkAddsPartnerMassPastSite(t *testing.T) {
	pa := newPeptide(t, "PEPTIDEK")
	pb := newPeptide(t, "MSEQVENCEK")
	lpa := peptide.NewLinkablePeptide(pa, []int{2})
	lpb := peptide.NewLinkablePeptide(pb, []int{3})
	cand := peptide.NewCrossLink(lpa, 2, lpb, 3, 138.0681)

	series := fragment.Predict(cand, 2, testConfig())
	assert.NotEmpty(t, series.Ions)

	withoutLinker := fragment.Predict(peptide.NewLinear(pa, peptide.KindLinear), 2, testConfig())
	// A b1 ion (cleavage index <= site on peptide A) should be identical
	// whether predicted as part of the cross-link or as a plain linear
	// peptide, since the link site (index 2) has not yet been passed.
	found := false
	for _, ion := range series.Ions {
		if ion.Type == fragment.IonB && ion.CleavageIndex == 1 {
			found = true
			for _, want := range withoutLinker.Ions {
				if want.Type == fragment.IonB && want.CleavageIndex == 1 && want.Charge == ion.Charge {
					assert.InDelta(t, want.MZ, ion.MZ, 1e-6)
				}
			}
		}
	}
	assert.True(t, found)
}
