/*
Package xlinkwriter implements spec.md §6's tab-delimited results writer
and the candidate-database flat-file dumps; it writes no Weibull
training-point dump. Grounded on original_source/src/io/SQTWriter.cpp's tab-delimited,
one-row-per-match shape (openFile/writeHeader/write-per-row), adapted from
SQT's fixed PSM schema to this module's match.Match rows.
*/
package xlinkwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/crux-ms/xlink/candidatedb"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/match"
	"github.com/crux-ms/xlink/peptide"
	"github.com/crux-ms/xlink/peptidesource"
)

// resultColumns is the header row of spec.md §6's results file.
var resultColumns = []string{
	"scan", "charge", "spectrum precursor mass", "rank",
	"candidate type", "decoy-type",
	"candidate peptide mass", "candidate sequence",
	"protein id(s)", "flanking residues",
	"xcorr", "xcorr peptide a", "xcorr peptide b", "sp",
	"p-value", "log(p-value)",
	"ppm error", "missed cleavages",
}

// Writer emits match.Match rows as a tab-delimited results file.
type Writer struct {
	w        *csv.Writer
	source   peptidesource.Source // optional; used to compute flanking residues
	massKind mass.Kind
}

// New builds a Writer over w, writing the header row immediately. source
// may be nil, in which case the "flanking residues" column is left blank.
func New(w io.Writer, source peptidesource.Source, kind mass.Kind) (*Writer, error) {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	cw.UseCRLF = false
	if err := cw.Write(resultColumns); err != nil {
		return nil, fmt.Errorf("xlinkwriter: write header: %w", err)
	}
	return &Writer{w: cw, source: source, massKind: kind}, nil
}

// WriteMatch writes one result row.
func (wr *Writer) WriteMatch(m match.Match) error {
	candidateMass := m.Candidate.Mass(wr.massKind)
	row := []string{
		strconv.Itoa(m.Spectrum.FirstScan),
		strconv.Itoa(m.ZState.Charge),
		formatFloat(m.ZState.NeutralMass),
		strconv.Itoa(m.Rank),
		m.Candidate.Type().String(),
		m.Quadrant.String(),
		formatFloat(candidateMass),
		m.Candidate.SequenceString(),
		wr.proteinIDs(m.Candidate),
		wr.flankingResidues(m.Candidate),
		formatFloat(m.XCorr),
		formatFloat(m.PeptideXCorrA),
		formatFloat(m.PeptideXCorrB),
		formatFloat(m.Sp),
		pValueColumn(m),
		logPValueColumn(m),
		formatFloat(ppmError(candidateMass, m.ZState.NeutralMass)),
		strconv.Itoa(missedCleavages(m.Candidate)),
	}
	if err := wr.w.Write(row); err != nil {
		return fmt.Errorf("xlinkwriter: write row: %w", err)
	}
	return nil
}

// Flush flushes any buffered output and returns the first write error
// encountered, if any.
func (wr *Writer) Flush() error {
	wr.w.Flush()
	return wr.w.Error()
}

func pValueColumn(m match.Match) string {
	if !m.HasPValue {
		return ""
	}
	return formatFloat(m.PValue)
}

func logPValueColumn(m match.Match) string {
	if !m.HasPValue {
		return ""
	}
	return formatFloat(m.LogPValue)
}

func ppmError(observed, expected float64) float64 {
	if expected == 0 {
		return 0
	}
	return (observed - expected) / expected * 1e6
}

// missedCleavages reports the digestion-time missed-cleavage count for a
// result row: the peptide's own count for linear/self-loop candidates, and
// the sum of both peptides' counts for cross-links (spec.md §6).
func missedCleavages(cand peptide.Candidate) int {
	switch c := cand.(type) {
	case peptide.Linear:
		return c.Peptide.DigestMissedCleavages
	case peptide.SelfLoop:
		return c.Peptide.Peptide.DigestMissedCleavages
	case peptide.CrossLink:
		return c.PeptideA.Peptide.DigestMissedCleavages + c.PeptideB.Peptide.DigestMissedCleavages
	}
	return 0
}

func (wr *Writer) proteinIDs(cand peptide.Candidate) string {
	var ids []string
	switch c := cand.(type) {
	case peptide.Linear:
		for _, src := range c.Peptide.Sources {
			ids = append(ids, src.ProteinID)
		}
	case peptide.SelfLoop:
		for _, src := range c.Peptide.Peptide.Sources {
			ids = append(ids, src.ProteinID)
		}
	case peptide.CrossLink:
		for _, src := range c.PeptideA.Peptide.Sources {
			ids = append(ids, "A:"+src.ProteinID)
		}
		for _, src := range c.PeptideB.Peptide.Sources {
			ids = append(ids, "B:"+src.ProteinID)
		}
	}
	return strings.Join(ids, ";")
}

// flankSource is one protein occurrence of a peptide, used to look up the
// residues immediately outside its boundaries.
type flankSource struct {
	proteinID string
	start     int
	length    int
}

func flankSourcesOf(p *peptide.Peptide) []flankSource {
	out := make([]flankSource, 0, len(p.Sources))
	for _, src := range p.Sources {
		out = append(out, flankSource{proteinID: src.ProteinID, start: src.Start, length: p.Length()})
	}
	return out
}

func (wr *Writer) flankingResidues(cand peptide.Candidate) string {
	if wr.source == nil {
		return ""
	}
	var sources []flankSource
	switch c := cand.(type) {
	case peptide.Linear:
		sources = flankSourcesOf(c.Peptide)
	case peptide.SelfLoop:
		sources = flankSourcesOf(c.Peptide.Peptide)
	case peptide.CrossLink:
		sources = append(flankSourcesOf(c.PeptideA.Peptide), flankSourcesOf(c.PeptideB.Peptide)...)
	}

	var out []string
	for _, s := range sources {
		protein, ok := wr.source.ProteinSequence(s.proteinID)
		if !ok {
			continue
		}
		left := byte('-')
		if s.start > 0 {
			left = protein[s.start-1]
		}
		right := byte('-')
		if s.start+s.length < len(protein) {
			right = protein[s.start+s.length]
		}
		out = append(out, fmt.Sprintf("%c.%c", left, right))
	}
	return strings.Join(out, ";")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// DumpCatalogues writes the optional candidate-database flat-file dumps of
// spec.md §6: one row per linear and linkable-peptide entry with mass,
// sequence, protein id(s), and (for self-loops and linkable peptides) the
// link-site list. One call writes all four catalogues of cat (linear,
// mono-link, self-loop, linkable, in that order) under a single header row;
// cmd/xlink calls it once per decoy flag.
func DumpCatalogues(w io.Writer, cat *candidatedb.Catalogues, kind mass.Kind) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write([]string{"mass", "sequence", "protein id(s)", "missed cleavages", "link sites"}); err != nil {
		return err
	}
	for _, p := range cat.Linear {
		if err := writeCatalogueRow(cw, p.Mass(kind), p.ModifiedSequence(), p.Sources, p.DigestMissedCleavages, nil); err != nil {
			return err
		}
	}
	for _, p := range cat.MonoLink {
		if err := writeCatalogueRow(cw, p.Mass(kind), p.ModifiedSequence(), p.Sources, p.DigestMissedCleavages, nil); err != nil {
			return err
		}
	}
	for _, s := range cat.SelfLoop {
		if err := writeCatalogueRow(cw, s.Mass(kind), s.SequenceString(), s.Peptide.Peptide.Sources, s.Peptide.Peptide.DigestMissedCleavages, []int{s.SiteA, s.SiteB}); err != nil {
			return err
		}
	}
	for _, p := range cat.Linkable {
		if err := writeCatalogueRow(cw, p.Mass(kind), p.ModifiedSequence(), p.Peptide.Sources, p.Peptide.DigestMissedCleavages, p.LinkSites); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeCatalogueRow(cw *csv.Writer, m float64, seq string, sources []peptide.ProteinSource, missedCleavages int, linkSites []int) error {
	var ids []string
	for _, s := range sources {
		ids = append(ids, s.ProteinID)
	}
	var sites []string
	for _, s := range linkSites {
		sites = append(sites, strconv.Itoa(s))
	}
	return cw.Write([]string{
		formatFloat(m),
		seq,
		strings.Join(ids, ";"),
		strconv.Itoa(missedCleavages),
		strings.Join(sites, ";"),
	})
}
