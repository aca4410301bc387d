package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crux-ms/xlink/bondmap"
	"github.com/crux-ms/xlink/candidatedb"
	"github.com/crux-ms/xlink/enumerate"
	"github.com/crux-ms/xlink/fragment"
	"github.com/crux-ms/xlink/internal/xlog"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/match"
	"github.com/crux-ms/xlink/peptide"
	"github.com/crux-ms/xlink/residue"
	"github.com/crux-ms/xlink/search"
	"github.com/crux-ms/xlink/spectrum"
	"github.com/crux-ms/xlink/weibull"
)

func newPeptide(t *testing.T, letters string, isDecoy bool) *peptide.Peptide {
	t.Helper()
	table := residue.Table{}
	intern := peptide.NewInternTable(table)
	seq, err := residue.NewSequence(letters)
	assert.NoError(t, err)
	return intern.Intern(seq, peptide.ProteinSource{ProteinID: "P1"}, isDecoy)
}

func fragmentConfig() fragment.Config {
	return fragment.Config{UseB: true, UseY: true, MaxIonCharge: 1, MassKind: mass.Monoisotopic}
}

func preprocessConfig() spectrum.PreprocessConfig {
	return spectrum.PreprocessConfig{BinWidth: 1.0005, BinOffset: 0.68}
}

// spectrumFor builds a Spectrum whose peaks exactly match cand's predicted
// b/y ion series at the given charge, so its XCorr against that candidate is
// high relative to unrelated candidates.
func spectrumFor(cand peptide.Candidate, charge int) *spectrum.Spectrum {
	series := fragment.Predict(cand, charge, fragmentConfig())
	peaks := make([]spectrum.Peak, 0, len(series.Ions))
	for _, ion := range series.Ions {
		peaks = append(peaks, spectrum.Peak{MZ: ion.MZ, Intensity: 100})
	}
	return &spectrum.Spectrum{FirstScan: 1, LastScan: 1, PrecursorMZ: 10000, Peaks: peaks}
}

func baseConfig() search.Config {
	return search.Config{
		MassKind: mass.Monoisotopic,
		Enumerate: enumerate.Options{
			PrecursorWindowType: "mass",
			PrecursorWindow:     0.5,
			IncludeLinears:      true,
			MassKind:            mass.Monoisotopic,
		},
		Fragment:   fragmentConfig(),
		Preprocess: preprocessConfig(),
		TopMatch:   10,
	}
}

// recordingWriter captures every match handed to it, in call order.
type recordingWriter struct {
	matches []match.Match
}

func (w *recordingWriter) WriteMatch(m match.Match) error {
	w.matches = append(w.matches, m)
	return nil
}

// sliceParser implements spectrum.Parser over a fixed in-memory slice, the
// way fakeSource fakes do across this module's other *_test.go files.
type sliceParser struct {
	spectra []spectrum.Spectrum
	i       int
}

func (p *sliceParser) Next() (spectrum.Spectrum, bool, error) {
	if p.i >= len(p.spectra) {
		return spectrum.Spectrum{}, false, nil
	}
	s := p.spectra[p.i]
	p.i++
	return s, true, nil
}

func buildDatabase(t *testing.T, targetLetters, decoyLetters []string) *candidatedb.Database {
	t.Helper()
	db := &candidatedb.Database{MassKind: mass.Monoisotopic}
	for _, letters := range targetLetters {
		db.Target.Linear = append(db.Target.Linear, newPeptide(t, letters, false))
	}
	for _, letters := range decoyLetters {
		db.Decoy.Linear = append(db.Decoy.Linear, newPeptide(t, letters, true))
	}
	db.Target.Finalize(mass.Monoisotopic)
	db.Decoy.Finalize(mass.Monoisotopic)
	return db
}

func TestRunScoresAndEmitsTopMatchPerSpectrum(t *testing.T) {
	db := buildDatabase(t, []string{"PEPTIDE"}, []string{"EDITPEP"})
	cand := peptide.NewLinear(db.Target.Linear[0], peptide.KindLinear)
	s := spectrumFor(cand, 1)
	z := spectrum.NewZState(s.PrecursorMZ, 1)
	z.NeutralMass = cand.Mass(mass.Monoisotopic)
	s.ZStates = []spectrum.ZState{z}

	w := &recordingWriter{}
	d := search.NewDriver(db, baseConfig(), w, xlog.NewWriter(discard{}))

	err := d.Run(&sliceParser{spectra: []spectrum.Spectrum{*s}})
	assert.NoError(t, err)
	assert.NotEmpty(t, w.matches)

	var sawTarget bool
	for _, m := range w.matches {
		if !m.Candidate.IsDecoy() {
			sawTarget = true
			assert.Equal(t, "PEPTIDE", m.Candidate.SequenceString())
		}
	}
	assert.True(t, sawTarget)
}

func TestRunRanksMatchesDescendingByXCorr(t *testing.T) {
	db := buildDatabase(t, []string{"PEPTIDE"}, nil)
	cand := peptide.NewLinear(db.Target.Linear[0], peptide.KindLinear)
	s := spectrumFor(cand, 1)
	z := spectrum.NewZState(s.PrecursorMZ, 1)
	z.NeutralMass = cand.Mass(mass.Monoisotopic)
	s.ZStates = []spectrum.ZState{z}

	w := &recordingWriter{}
	d := search.NewDriver(db, baseConfig(), w, xlog.NewWriter(discard{}))
	assert.NoError(t, d.Run(&sliceParser{spectra: []spectrum.Spectrum{*s}}))

	for i := 1; i < len(w.matches); i++ {
		assert.GreaterOrEqual(t, w.matches[i-1].XCorr, w.matches[i].XCorr)
	}
}

func TestRunSkipsSpectrumBelowMinPeaks(t *testing.T) {
	db := buildDatabase(t, []string{"PEPTIDE"}, nil)
	s := &spectrum.Spectrum{
		FirstScan: 1, LastScan: 1, PrecursorMZ: 10000,
		Peaks:   []spectrum.Peak{{MZ: 100, Intensity: 1}},
		ZStates: []spectrum.ZState{{Charge: 1, NeutralMass: 799.36}},
	}

	cfg := baseConfig()
	cfg.MinPeaks = 5

	w := &recordingWriter{}
	d := search.NewDriver(db, cfg, w, xlog.NewWriter(discard{}))
	assert.NoError(t, d.Run(&sliceParser{spectra: []spectrum.Spectrum{*s}}))
	assert.Empty(t, w.matches)
}

func TestRunSkipsSpectrumWithNoAdmissibleZState(t *testing.T) {
	db := buildDatabase(t, []string{"PEPTIDE"}, nil)
	s := &spectrum.Spectrum{FirstScan: 1, LastScan: 1, PrecursorMZ: 10000, Peaks: []spectrum.Peak{{MZ: 100, Intensity: 1}}}

	w := &recordingWriter{}
	d := search.NewDriver(db, baseConfig(), w, xlog.NewWriter(discard{}))
	assert.NoError(t, d.Run(&sliceParser{spectra: []spectrum.Spectrum{*s}}))
	assert.Empty(t, w.matches)
}

func TestRunFallsBackToInferredChargeWhenEnabled(t *testing.T) {
	db := buildDatabase(t, []string{"PEPTIDE"}, nil)
	cand := peptide.NewLinear(db.Target.Linear[0], peptide.KindLinear)
	s := spectrumFor(cand, 1)
	s.ZStates = nil
	// Put the precursor at PEPTIDE's doubly charged m/z, so the z=2
	// hypothesis the fallback infers carries the candidate's neutral mass.
	s.PrecursorMZ = mass.MHToMZ(mass.NeutralToMH(cand.Mass(mass.Monoisotopic)), 2)
	// Skew intensity so the precursor-window ratio heuristic infers a
	// plausible charge rather than bailing out with ok==false.
	s.Peaks = append(s.Peaks, spectrum.Peak{MZ: s.PrecursorMZ + 50, Intensity: 1000})

	cfg := baseConfig()
	cfg.Enumerate.PrecursorWindow = 2.0
	cfg.ChargeFallbackEnabled = true
	cfg.ChargeFallbackRatio = 0.01

	w := &recordingWriter{}
	d := search.NewDriver(db, cfg, w, xlog.NewWriter(discard{}))
	assert.NoError(t, d.Run(&sliceParser{spectra: []spectrum.Spectrum{*s}}))
	assert.NotEmpty(t, w.matches)
}

func TestRunRequireXLinkCandidateSkipsWhenNoCrossLinkFound(t *testing.T) {
	db := buildDatabase(t, []string{"PEPTIDE"}, nil)
	cand := peptide.NewLinear(db.Target.Linear[0], peptide.KindLinear)
	s := spectrumFor(cand, 1)
	z := spectrum.NewZState(s.PrecursorMZ, 1)
	z.NeutralMass = cand.Mass(mass.Monoisotopic)
	s.ZStates = []spectrum.ZState{z}

	cfg := baseConfig()
	cfg.RequireXLinkCandidate = true
	cfg.Enumerate.CrossLink = enumerate.CrossLinkOptions{IncludeIntra: true}
	cfg.BondMap = bondmap.BondMap{}

	w := &recordingWriter{}
	d := search.NewDriver(db, cfg, w, xlog.NewWriter(discard{}))
	assert.NoError(t, d.Run(&sliceParser{spectra: []spectrum.Spectrum{*s}}))
	assert.Empty(t, w.matches, "no cross-link candidates were found, so require-xlink-candidate should skip the spectrum entirely")
}

func TestRunAnnotatesWeibullPValues(t *testing.T) {
	db := buildDatabase(t, []string{"PEPTIDE"}, []string{"EDITPEP", "TIPEDEP", "PEDPIET", "TEPIDEP"})
	cand := peptide.NewLinear(db.Target.Linear[0], peptide.KindLinear)
	s := spectrumFor(cand, 1)
	z := spectrum.NewZState(s.PrecursorMZ, 1)
	z.NeutralMass = cand.Mass(mass.Monoisotopic)
	s.ZStates = []spectrum.ZState{z}

	cfg := baseConfig()
	cfg.Enumerate.PrecursorWindow = 50 // wide enough for the decoys' slightly different masses
	cfg.TrainingWindow = cfg.Enumerate
	cfg.ComputePValues = true
	cfg.Weibull = weibull.Config{MinShift: 0, MaxShift: 5, GridStep: 10, MinSurvivors: 2, CorrelationThreshold: 0}

	w := &recordingWriter{}
	d := search.NewDriver(db, cfg, w, xlog.NewWriter(discard{}))
	assert.NoError(t, d.Run(&sliceParser{spectra: []spectrum.Spectrum{*s}}))
	assert.NotEmpty(t, w.matches)
	for _, m := range w.matches {
		assert.True(t, m.HasPValue)
	}
}

func TestRunAnnotatesExactPValues(t *testing.T) {
	db := buildDatabase(t, []string{"PEPTIDE"}, []string{"EDITPEP"})
	cand := peptide.NewLinear(db.Target.Linear[0], peptide.KindLinear)
	s := spectrumFor(cand, 1)
	z := spectrum.NewZState(s.PrecursorMZ, 1)
	z.NeutralMass = cand.Mass(mass.Monoisotopic)
	s.ZStates = []spectrum.ZState{z}

	cfg := baseConfig()
	cfg.ComputePValues = true
	cfg.ExactPValue = true
	cfg.ExactPValueLevels = 10

	w := &recordingWriter{}
	d := search.NewDriver(db, cfg, w, xlog.NewWriter(discard{}))
	assert.NoError(t, d.Run(&sliceParser{spectra: []spectrum.Spectrum{*s}}))
	assert.NotEmpty(t, w.matches)
	for _, m := range w.matches {
		assert.True(t, m.HasPValue)
		assert.GreaterOrEqual(t, m.PValue, 0.0)
	}
}

func TestRunConcatCombinesTargetsAndDecoysIntoOneTopN(t *testing.T) {
	db := buildDatabase(t, []string{"PEPTIDE"}, []string{"EDITPEP"})
	cand := peptide.NewLinear(db.Target.Linear[0], peptide.KindLinear)
	s := spectrumFor(cand, 1)
	z := spectrum.NewZState(s.PrecursorMZ, 1)
	z.NeutralMass = cand.Mass(mass.Monoisotopic)
	s.ZStates = []spectrum.ZState{z}

	cfg := baseConfig()
	cfg.Concat = true
	cfg.TopMatch = 1

	w := &recordingWriter{}
	d := search.NewDriver(db, cfg, w, xlog.NewWriter(discard{}))
	assert.NoError(t, d.Run(&sliceParser{spectra: []spectrum.Spectrum{*s}}))
	assert.Len(t, w.matches, 1)
}

// discard implements io.Writer, sinking the driver's log output during tests.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
