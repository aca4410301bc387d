package score_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crux-ms/xlink/fragment"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/peptide"
	"github.com/crux-ms/xlink/residue"
	"github.com/crux-ms/xlink/score"
	"github.com/crux-ms/xlink/spectrum"
)

func testConfig() fragment.Config {
	return fragment.Config{UseB: true, UseY: true, MaxIonCharge: 1, MassKind: mass.Monoisotopic}
}

func newPeptide(t *testing.T, letters string) *peptide.Peptide {
	t.Helper()
	table := residue.Table{}
	intern := peptide.NewInternTable(table)
	seq, err := residue.NewSequence(letters)
	assert.NoError(t, err)
	return intern.Intern(seq, peptide.ProteinSource{ProteinID: "P1"}, false)
}

func samplePreprocessConfig() spectrum.PreprocessConfig {
	return spectrum.PreprocessConfig{BinWidth: 1.0005, BinOffset: 0.68}
}

func TestXCorrScoresMatchingSeriesHigherThanEmptySpectrum(t *testing.T) {
	p := newPeptide(t, "PEPTIDE")
	cand := peptide.NewLinear(p, peptide.KindLinear)
	series := fragment.Predict(cand, 1, testConfig())
	assert.NotEmpty(t, series.Ions)

	var peaks []spectrum.Peak
	for _, ion := range series.Ions {
		peaks = append(peaks, spectrum.Peak{MZ: ion.MZ, Intensity: 100})
	}
	s := &spectrum.Spectrum{PrecursorMZ: 10000, Peaks: peaks}
	v := spectrum.Preprocess(s, samplePreprocessConfig())

	matched := score.XCorr(series, v, false)

	empty := &spectrum.Spectrum{PrecursorMZ: 10000}
	emptyVector := spectrum.Preprocess(empty, samplePreprocessConfig())
	unmatched := score.XCorr(series, emptyVector, false)

	assert.Greater(t, matched, unmatched)
}

func TestXCorrWithFlankingPeaksIsAtLeastAsHighAsWithout(t *testing.T) {
	p := newPeptide(t, "PEPTIDE")
	cand := peptide.NewLinear(p, peptide.KindLinear)
	series := fragment.Predict(cand, 1, testConfig())

	var peaks []spectrum.Peak
	for _, ion := range series.Ions {
		peaks = append(peaks, spectrum.Peak{MZ: ion.MZ + 1.0, Intensity: 100})
	}
	s := &spectrum.Spectrum{PrecursorMZ: 10000, Peaks: peaks}
	v := spectrum.Preprocess(s, samplePreprocessConfig())

	withFlanking := score.XCorr(series, v, true)
	without := score.XCorr(series, v, false)
	assert.GreaterOrEqual(t, withFlanking, without)
}

func TestSpReturnsZeroForEmptySpectrum(t *testing.T) {
	p := newPeptide(t, "PEPTIDE")
	cand := peptide.NewLinear(p, peptide.KindLinear)
	series := fragment.Predict(cand, 1, testConfig())

	s := &spectrum.Spectrum{PrecursorMZ: 10000}
	assert.Equal(t, 0.0, score.Sp(series, s, 1.0005, 0.68, 0.5))
}

func TestSpExplainsMatchedIntensityFraction(t *testing.T) {
	p := newPeptide(t, "PEPTIDE")
	cand := peptide.NewLinear(p, peptide.KindLinear)
	series := fragment.Predict(cand, 1, testConfig())
	assert.NotEmpty(t, series.Ions)

	var peaks []spectrum.Peak
	for _, ion := range series.Ions {
		peaks = append(peaks, spectrum.Peak{MZ: ion.MZ, Intensity: 50})
	}
	peaks = append(peaks, spectrum.Peak{MZ: 9999, Intensity: 50})
	s := &spectrum.Spectrum{PrecursorMZ: 10000, Peaks: peaks}

	sp := score.Sp(series, s, 1.0005, 0.68, 0.01)
	assert.Greater(t, sp, 0.0)
	assert.Less(t, sp, 2.0)
}

func TestExactPValueDecreasesAsScoreIncreases(t *testing.T) {
	obsHist := make([]float64, 20)
	theoHist := make([]float64, 20)
	for i := range obsHist {
		obsHist[i] = float64(20 - i)
		theoHist[i] = float64(i + 1)
	}
	low := score.ExactPValue(obsHist, theoHist, 0, 10)
	high := score.ExactPValue(obsHist, theoHist, 5, 10)
	assert.GreaterOrEqual(t, low, high)
}
