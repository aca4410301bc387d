/*
Package search implements the per-spectrum driver loop of spec.md §4.7:
for every admissible Z-state, enumerate target and decoy candidates
(including the mixed cross-link quadrants of §4.9), score them, optionally
calibrate a Weibull fit against a wider training decoy set and annotate
p-values, rank by XCorr, and emit the top-N matches to the results writer.
Grounded on original_source/src/app/xlink/XLinkMatchCollection.cpp's
addCandidates/scoreCandidates/calcZScores sequence.
*/
package search

import (
	"fmt"
	"math"

	"github.com/crux-ms/xlink/bondmap"
	"github.com/crux-ms/xlink/candidatedb"
	"github.com/crux-ms/xlink/decoy"
	"github.com/crux-ms/xlink/enumerate"
	"github.com/crux-ms/xlink/fragment"
	"github.com/crux-ms/xlink/internal/xlog"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/match"
	"github.com/crux-ms/xlink/peptide"
	"github.com/crux-ms/xlink/score"
	"github.com/crux-ms/xlink/spectrum"
	"github.com/crux-ms/xlink/weibull"
)

// Config bundles every per-spectrum knob the driver needs, translated from
// config.Config by the caller (cmd/xlink) so this package stays independent
// of the config package, the same layering choice candidatedb.Options and
// fragment.Config make.
type Config struct {
	MassKind mass.Kind

	Enumerate      enumerate.Options
	TrainingWindow enumerate.Options // wider precursor window used for Weibull training decoys

	BondMap  bondmap.BondMap
	LinkMass float64

	Fragment fragment.Config

	Preprocess       spectrum.PreprocessConfig
	UseFlankingPeaks bool

	ComputeSp   bool
	SpTolerance float64

	RequireXLinkCandidate bool

	ComputePValues bool
	Weibull        weibull.Config

	// ExactPValue selects spec.md §4.5's histogram-convolution variant in
	// place of the Weibull fit; ExactPValueLevels is its quantisation
	// level count (0 defaults to 100).
	ExactPValue       bool
	ExactPValueLevels int

	TopMatch int
	Concat   bool

	ChargeFallbackEnabled bool
	ChargeFallbackRatio   float64

	MinPeaks      int
	SpectrumMinMz float64
	SpectrumMaxMz float64

	// ProgressEvery logs one INFO progress line every N processed
	// spectra; 0 disables progress reporting.
	ProgressEvery int
}

// Writer is the subset of xlinkwriter.Writer the driver needs, kept as an
// interface so tests can substitute a recording fake.
type Writer interface {
	WriteMatch(m match.Match) error
}

// Driver runs the search loop of spec.md §4.7 against one candidate
// database.
type Driver struct {
	DB     *candidatedb.Database
	Cfg    Config
	Writer Writer
	Log    *xlog.Logger

	// TopNScorer is passed through to the enumerator's optional top-N
	// preliminary filter (spec.md §4.3); nil disables it regardless of
	// Cfg.Enumerate.TopN.
	TopNScorer enumerate.PrelimScorer

	processed int
}

// NewDriver builds a Driver. log may be nil, in which case xlog.New() is
// used.
func NewDriver(db *candidatedb.Database, cfg Config, w Writer, log *xlog.Logger) *Driver {
	if log == nil {
		log = xlog.New()
	}
	return &Driver{DB: db, Cfg: cfg, Writer: w, Log: log}
}

// Run consumes every spectrum from source and drives spec.md §4.7's loop
// over it, per spec.md §5's "results are emitted in input spectrum order".
// Per-spectrum failures are logged and skipped (§7.3); Run itself only
// returns an error for a source I/O failure, which is fatal per §7.5.
func (d *Driver) Run(source spectrum.Parser) error {
	for {
		s, ok, err := source.Next()
		if err != nil {
			return fmt.Errorf("search: read spectrum: %w", err)
		}
		if !ok {
			break
		}
		d.processSpectrum(&s)
		d.processed++
		if d.Cfg.ProgressEvery > 0 && d.processed%d.Cfg.ProgressEvery == 0 {
			d.Log.Info("processed %d spectra", d.processed)
		}
	}
	return nil
}

// processSpectrum handles spec.md §7.3's per-spectrum recoverable
// conditions (too few peaks, no admissible Z-state) by logging and
// skipping, then drives one iteration of §4.7 per admissible Z-state.
func (d *Driver) processSpectrum(s *spectrum.Spectrum) {
	if d.Cfg.MinPeaks > 0 && len(s.Peaks) < d.Cfg.MinPeaks {
		d.Log.Info("scan %d: %d peaks below min-peaks %d, skipping", s.FirstScan, len(s.Peaks), d.Cfg.MinPeaks)
		return
	}

	zstates := d.admissibleZStates(s)
	if len(zstates) == 0 {
		d.Log.Info("scan %d: no admissible Z-state, skipping", s.FirstScan)
		return
	}

	for _, z := range zstates {
		d.processZState(s, z)
	}
}

// admissibleZStates returns s.ZStates filtered by the configured m/z
// window, falling back to spec.md §4.8's charge-inference heuristic when
// s carries no Z-state at all.
func (d *Driver) admissibleZStates(s *spectrum.Spectrum) []spectrum.ZState {
	zstates := s.ZStates
	if len(zstates) == 0 {
		if !d.Cfg.ChargeFallbackEnabled {
			return nil
		}
		inferred, ok := spectrum.InferChargeFallback(s, d.Cfg.ChargeFallbackRatio)
		if !ok {
			return nil
		}
		zstates = inferred
	}

	if d.Cfg.SpectrumMinMz <= 0 && d.Cfg.SpectrumMaxMz <= 0 {
		return zstates
	}
	var out []spectrum.ZState
	for _, z := range zstates {
		if d.Cfg.SpectrumMinMz > 0 && z.MZ < d.Cfg.SpectrumMinMz {
			continue
		}
		if d.Cfg.SpectrumMaxMz > 0 && z.MZ > d.Cfg.SpectrumMaxMz {
			continue
		}
		out = append(out, z)
	}
	return out
}

// processZState implements spec.md §4.7's six numbered steps for one
// spectrum/Z-state pair.
func (d *Driver) processZState(s *spectrum.Spectrum, z spectrum.ZState) {
	precursorMass := z.NeutralMass

	// Step 1: enumerate target and decoy candidates in the search window.
	targets := enumerate.Candidates(&d.DB.Target, precursorMass, z.Charge, d.Cfg.Enumerate, d.Cfg.BondMap, d.TopNScorer)
	decoys := enumerate.Candidates(&d.DB.Decoy, precursorMass, z.Charge, d.Cfg.Enumerate, d.Cfg.BondMap, d.TopNScorer)
	decoys = append(decoys, d.mixedCrossLinkCandidates(precursorMass, z.Charge)...)

	// Step 2: skip per original_source/XLinkMatchCollection.cpp's
	// "num_xlink_candidates == 0 && require-xlink-candidate" rule: among
	// targets, zero cross-link candidates with the option set.
	if d.Cfg.Enumerate.CrossLink.AnyEnabled() && d.Cfg.RequireXLinkCandidate && countCrossLinks(targets) == 0 {
		d.Log.Info("scan %d z=%d: no cross-link candidate, require-xlink-candidate set, skipping", s.FirstScan, z.Charge)
		return
	}
	if len(targets) == 0 && len(decoys) == 0 {
		d.Log.Info("scan %d z=%d: zero candidates, skipping", s.FirstScan, z.Charge)
		return
	}

	// Step 3: score all targets and all decoys.
	observed := spectrum.Preprocess(s, d.Cfg.Preprocess)
	targetMatches := d.scoreAll(targets, s, &observed, z)
	decoyMatches := d.scoreAll(decoys, s, &observed, z)

	// Step 5: rank targets (and, unless concatenated, decoys) by XCorr
	// descending with the deterministic sequence tie-break.
	targetMatches = match.Rank(targetMatches)
	var top []match.Match
	if d.Cfg.Concat {
		combined := match.Rank(append(append([]match.Match(nil), targetMatches...), decoyMatches...))
		top = match.TopN(combined, d.Cfg.TopMatch)
	} else {
		decoyMatches = match.Rank(decoyMatches)
		top = append(match.TopN(targetMatches, d.Cfg.TopMatch), match.TopN(decoyMatches, d.Cfg.TopMatch)...)
	}

	// Step 4 (applied here, after ranking, so only the retained top-N pay
	// for calibration): either the exact-p-value histogram-convolution
	// variant, or Weibull calibration against a (potentially wider)
	// training decoy set, annotating p-values on the emitted matches.
	if d.Cfg.ComputePValues {
		if d.Cfg.ExactPValue {
			d.annotateExactPValues(top, &observed, z)
		} else {
			trainingScores := d.trainingDecoyScores(&observed, precursorMass, z)
			fit := weibull.CalibrateFit(trainingScores, d.Cfg.Weibull)
			if !fit.Committed {
				d.Log.Warn("scan %d z=%d: weibull fit failed (correlation %.4f), using ECDF fallback", s.FirstScan, z.Charge, fit.Correlation)
			}
			annotatePValues(top, fit)
		}
	}

	// Step 6: emit the top-N matches.
	for _, m := range top {
		if err := d.Writer.WriteMatch(m); err != nil {
			d.Log.Error("scan %d z=%d: write match: %v", s.FirstScan, z.Charge, err)
		}
	}
}

// mixedCrossLinkCandidates returns the target-decoy and decoy-target
// cross-link quadrants of spec.md §4.9, wrapped as peptide.Candidate.
func (d *Driver) mixedCrossLinkCandidates(precursorMass float64, charge int) []peptide.Candidate {
	if !d.Cfg.Enumerate.CrossLink.AnyEnabled() {
		return nil
	}
	windows := enumerate.ComputeWindows(precursorMass, d.Cfg.Enumerate.IsotopeWindows, d.Cfg.Enumerate.PrecursorWindowType, d.Cfg.Enumerate.PrecursorWindow, charge)
	targetDecoy := decoy.MixedCrossLinks(&d.DB.Target, &d.DB.Decoy, windows, d.Cfg.BondMap, d.Cfg.LinkMass, d.Cfg.Enumerate.CrossLink, d.Cfg.MassKind)
	decoyTarget := decoy.MixedCrossLinks(&d.DB.Decoy, &d.DB.Target, windows, d.Cfg.BondMap, d.Cfg.LinkMass, d.Cfg.Enumerate.CrossLink, d.Cfg.MassKind)

	out := make([]peptide.Candidate, 0, len(targetDecoy)+len(decoyTarget))
	for _, cl := range targetDecoy {
		out = append(out, cl)
	}
	for _, cl := range decoyTarget {
		out = append(out, cl)
	}
	return out
}

func countCrossLinks(candidates []peptide.Candidate) int {
	n := 0
	for _, c := range candidates {
		if _, ok := c.(peptide.CrossLink); ok {
			n++
		}
	}
	return n
}

// scoreAll builds a match.Match for every candidate: XCorr (and, for
// cross-links, the two per-peptide XCorrs) against the preprocessed
// observed vector, plus the optional Sp score.
func (d *Driver) scoreAll(candidates []peptide.Candidate, s *spectrum.Spectrum, observed *spectrum.ObservedVector, z spectrum.ZState) []match.Match {
	matches := make([]match.Match, 0, len(candidates))
	for _, cand := range candidates {
		series := fragment.Predict(cand, z.Charge, d.Cfg.Fragment)
		m := match.Match{
			Candidate: cand,
			ZState:    z,
			Spectrum:  s,
			XCorr:     score.XCorr(series, *observed, d.Cfg.UseFlankingPeaks),
			Quadrant:  peptide.QuadrantOf(cand),
		}
		if cl, ok := cand.(peptide.CrossLink); ok {
			sideA, sideB := fragment.PredictCrossLinkSides(cl, z.Charge, d.Cfg.Fragment)
			m.PeptideXCorrA = score.XCorr(sideA, *observed, d.Cfg.UseFlankingPeaks)
			m.PeptideXCorrB = score.XCorr(sideB, *observed, d.Cfg.UseFlankingPeaks)
		}
		if d.Cfg.ComputeSp {
			m.Sp = score.Sp(series, s, d.Cfg.Preprocess.BinWidth, d.Cfg.Preprocess.BinOffset, d.Cfg.SpTolerance)
		}
		matches = append(matches, m)
	}
	return matches
}

// trainingDecoyScores builds the wider decoy population Weibull calibrates
// against, per spec.md §4.7 step 4 ("ask the enumerator for a (potentially
// wider) training decoy set").
func (d *Driver) trainingDecoyScores(observed *spectrum.ObservedVector, precursorMass float64, z spectrum.ZState) []float64 {
	training := enumerate.Candidates(&d.DB.Decoy, precursorMass, z.Charge, d.Cfg.TrainingWindow, d.Cfg.BondMap, nil)
	scores := make([]float64, 0, len(training))
	for _, cand := range training {
		series := fragment.Predict(cand, z.Charge, d.Cfg.Fragment)
		scores = append(scores, score.XCorr(series, *observed, d.Cfg.UseFlankingPeaks))
	}
	return scores
}

// annotateExactPValues implements spec.md §4.5's exact-p-value variant:
// for each match, recompute its theoretical ion vector and convolve it
// against the observed vector's histogram, bypassing the Weibull fit
// entirely.
func (d *Driver) annotateExactPValues(matches []match.Match, observed *spectrum.ObservedVector, z spectrum.ZState) {
	levels := d.Cfg.ExactPValueLevels
	if levels <= 0 {
		levels = 100
	}
	for i := range matches {
		series := fragment.Predict(matches[i].Candidate, z.Charge, d.Cfg.Fragment)
		theo := score.TheoreticalVector(series, *observed, d.Cfg.UseFlankingPeaks)
		p := score.ExactPValue(observed.Values, theo, matches[i].XCorr, levels)
		matches[i].PValue = p
		matches[i].LogPValue = logOf(p)
		matches[i].HasPValue = true
	}
}

// annotatePValues sets PValue/LogPValue/HasPValue on every match in place
// using fit (spec.md §4.6).
func annotatePValues(matches []match.Match, fit weibull.Fit) {
	for i := range matches {
		p := fit.PValue(matches[i].XCorr)
		matches[i].PValue = p
		matches[i].LogPValue = logOf(p)
		matches[i].HasPValue = true
	}
}

func logOf(p float64) float64 {
	if p <= 0 {
		return 0
	}
	return -math.Log10(p)
}
