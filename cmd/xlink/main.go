/*
Command xlink runs the cross-link identification search of spec.md §4: it
loads a YAML run configuration, builds the target/decoy candidate database
from a FASTA protein database, searches an MS2 spectrum file against it, and
writes tab-delimited results. poly carries no cmd/ of its own, so this
follows the minimal-CLI texture of a systems-language batch tool: flag
parsing, then a straight-line call into library packages, with every
library error surfaced through internal/xlog's Fatal path per spec.md §7.1/
§7.2/§7.5.
*/
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/crux-ms/xlink/bondmap"
	"github.com/crux-ms/xlink/candidatedb"
	"github.com/crux-ms/xlink/config"
	"github.com/crux-ms/xlink/dbdump"
	"github.com/crux-ms/xlink/decoy"
	"github.com/crux-ms/xlink/digest"
	"github.com/crux-ms/xlink/enumerate"
	"github.com/crux-ms/xlink/fragment"
	"github.com/crux-ms/xlink/internal/xlog"
	"github.com/crux-ms/xlink/io/fastasource"
	"github.com/crux-ms/xlink/io/msreader"
	"github.com/crux-ms/xlink/io/xlinkwriter"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/residue"
	"github.com/crux-ms/xlink/search"
	"github.com/crux-ms/xlink/spectrum"
	"github.com/crux-ms/xlink/weibull"
)

const usageBanner = `xlink searches an MS2 spectrum file against a FASTA protein database for linear, mono-link, self-loop, and cross-linked peptide-spectrum matches, per a YAML run configuration. Results are written as a tab-delimited file under the configured output directory.`

// Weibull shift-grid bounds and correlation floor, carried over from
// Weibull.cpp's MIN_XCORR_SHIFT/MAX_XCORR_SHIFT/CORR_THRESHOLD since
// config.Config exposes no run-time knob for them.
const (
	weibullMinShift             = -3.0
	weibullMaxShift             = 3.0
	weibullCorrelationThreshold = 0.5
)

func main() {
	configPath := flag.String("config", "", "path to the YAML run configuration (required)")
	fastaPath := flag.String("fasta", "", "path to the FASTA protein database (required)")
	ms2Path := flag.String("ms2", "", "path to the MS2 spectrum file (required)")
	outputDir := flag.String("output-dir", "", "override the configuration's output-dir")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, wordwrap.WrapString(usageBanner, 80))
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	log := xlog.New()

	if *configPath == "" || *fastaPath == "" || *ms2Path == "" {
		flag.Usage()
		log.Fatal("main: -config, -fasta, and -ms2 are all required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("main: %v", err)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	bm := bondmap.BondMap{}
	if cfg.LinkSites != "" {
		bm, err = cfg.BondMap()
		if err != nil {
			log.Fatal("main: %v", err)
		}
	}

	modTable, err := cfg.ModTable()
	if err != nil {
		log.Fatal("main: %v", err)
	}

	enzyme, err := cfg.ResolveEnzyme()
	if err != nil {
		log.Fatal("main: %v", err)
	}

	massKind := massKindOf(cfg.IsotopicMass)
	fragmentMassKind := massKindOf(cfg.FragmentMass)

	db, source := buildDatabase(log, *fastaPath, bm, enzyme, modTable, massKind, cfg)
	dumpCatalogues(log, db, massKind, cfg)

	ms2File, err := os.Open(*ms2Path)
	if err != nil {
		log.Fatal("main: open %s: %w", *ms2Path, err)
	}
	defer ms2File.Close()
	spectra, err := msreader.New(ms2File)
	if err != nil {
		log.Fatal("main: parse %s: %v", *ms2Path, err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatal("main: create output dir %s: %v", cfg.OutputDir, err)
	}
	resultsPath := filepath.Join(cfg.OutputDir, "xlink.results.txt")
	resultsFile, err := os.Create(resultsPath)
	if err != nil {
		log.Fatal("main: create %s: %v", resultsPath, err)
	}
	defer resultsFile.Close()
	writer, err := xlinkwriter.New(resultsFile, source, massKind)
	if err != nil {
		log.Fatal("main: %v", err)
	}

	driver := search.NewDriver(db, searchConfigOf(cfg, bm, massKind, fragmentMassKind), writer, log)
	if err := driver.Run(spectra); err != nil {
		log.Fatal("main: %v", err)
	}
	if err := writer.Flush(); err != nil {
		log.Fatal("main: flush results: %v", err)
	}
}

// buildDatabase digests fastaPath and builds the target/decoy candidate
// database (spec.md §4.2), with a shuffle-based decoy generator seeded from
// cfg.Seed.
func buildDatabase(log *xlog.Logger, fastaPath string, bm bondmap.BondMap, enzyme digest.Enzyme, modTable residue.Table, massKind mass.Kind, cfg config.Config) (*candidatedb.Database, *fastasource.Source) {
	f, err := os.Open(fastaPath)
	if err != nil {
		log.Fatal("main: open %s: %v", fastaPath, err)
	}
	defer f.Close()

	budget := digest.Budget(cfg.MissedCleavages, digest.AdditionalCleavages(cfg.AnyCrossLinkEnabled(), cfg.IncludeSelfloops), modTable)
	source, err := fastasource.NewFromReader(f, enzyme, cfg.Specificity(), budget, cfg.MinLength, cfg.MaxLength)
	if err != nil {
		log.Fatal("main: digest %s: %v", fastaPath, err)
	}

	gen := decoy.NewGenerator(rand.NewSource(cfg.Seed), fixedResidueLetters(cfg), cfg.DecoyWeighted)

	opts := candidatedb.Options{
		MassKind:          massKind,
		IncludeLinears:    cfg.IncludeLinears,
		IncludeDeadends:   cfg.IncludeDeadends,
		IncludeSelfloops:  cfg.IncludeSelfloops,
		IncludeInter:      cfg.IncludeInter,
		IncludeIntra:      cfg.IncludeIntra,
		IncludeInterIntra: cfg.IncludeInterIntra,
		MaxXLinkMods:      cfg.MaxXLinkMods,
		LinkMass:          cfg.LinkMass,
		MinMass:           cfg.MinMass,
		MaxMass:           cfg.MaxMass,
		Decoys:            gen,
	}
	db, err := candidatedb.Build(source, bm, modTable, opts)
	if err != nil {
		log.Fatal("main: build candidate database: %v", err)
	}
	return db, source
}

// dumpCatalogues writes the optional candidate-database dumps of spec.md
// §6: either the SQLite sink (config.Config.DumpPeptidesSQLite) or one flat
// file per decoy flag holding all four catalogues.
func dumpCatalogues(log *xlog.Logger, db *candidatedb.Database, massKind mass.Kind, cfg config.Config) {
	if cfg.DumpPeptidesSQLite {
		sqlitePath := filepath.Join(cfg.OutputDir, "xlink_peptides.sqlite")
		sqlDB, err := dbdump.Open(sqlitePath)
		if err != nil {
			log.Fatal("main: %v", err)
		}
		defer sqlDB.Close()
		if err := dbdump.Dump(sqlDB, &db.Target, massKind, false); err != nil {
			log.Fatal("main: dump target catalogues: %v", err)
		}
		if err := dbdump.Dump(sqlDB, &db.Decoy, massKind, true); err != nil {
			log.Fatal("main: dump decoy catalogues: %v", err)
		}
		return
	}

	dumpOne := func(name string, cat *candidatedb.Catalogues) {
		path := filepath.Join(cfg.OutputDir, name)
		f, err := os.Create(path)
		if err != nil {
			log.Fatal("main: create %s: %v", path, err)
		}
		defer f.Close()
		if err := xlinkwriter.DumpCatalogues(f, cat, massKind); err != nil {
			log.Fatal("main: dump %s: %v", path, err)
		}
	}
	dumpOne("xlink_peptides.target.txt", &db.Target)
	dumpOne("xlink_peptides.decoy.txt", &db.Decoy)
}

// searchConfigOf translates a config.Config into the search package's
// Config, the layering split search.Config itself documents.
func searchConfigOf(cfg config.Config, bm bondmap.BondMap, massKind, fragmentMassKind mass.Kind) search.Config {
	mainEnumerate := enumerateOptionsOf(cfg, massKind, cfg.PrecursorWindowType, cfg.PrecursorWindow)
	trainingEnumerate := mainEnumerate
	if cfg.PrecursorWindowTypeWeibull != "" || cfg.PrecursorWindowWeibull > 0 {
		trainingEnumerate = enumerateOptionsOf(cfg, massKind, cfg.PrecursorWindowTypeWeibull, cfg.PrecursorWindowWeibull)
	}

	return search.Config{
		MassKind:       massKind,
		Enumerate:      mainEnumerate,
		TrainingWindow: trainingEnumerate,

		BondMap:  bm,
		LinkMass: cfg.LinkMass,

		Fragment: fragment.Config{
			UseA: cfg.UseAIons, UseB: cfg.UseBIons, UseC: cfg.UseCIons,
			UseX: cfg.UseXIons, UseY: cfg.UseYIons, UseZ: cfg.UseZIons,
			MaxIonCharge: cfg.MaxIonCharge,
			MassKind:     fragmentMassKind,
		},

		Preprocess: spectrum.PreprocessConfig{
			RemovePrecursorTolerance: cfg.RemovePrecursorTolerance,
			BinWidth:                 cfg.MzBinWidth,
			BinOffset:                cfg.MzBinOffset,
		},
		UseFlankingPeaks: cfg.UseFlankingPeaks,

		ComputeSp:   true,
		SpTolerance: cfg.MzBinWidth / 2,

		RequireXLinkCandidate: cfg.RequireXLinkCandidate,

		ComputePValues: cfg.ComputePValues,
		Weibull: weibull.Config{
			FractionToFit: cfg.FractionTopScoresToFit,
			MinSurvivors:  cfg.MinWeibullPoints,
			// config.Config carries no YAML keys for the shift grid bounds or
			// the correlation floor, so these follow Weibull.cpp's
			// MIN_XCORR_SHIFT/MAX_XCORR_SHIFT/CORR_THRESHOLD constants
			// directly rather than inventing new ones.
			MinShift:             weibullMinShift,
			MaxShift:             weibullMaxShift,
			CorrelationThreshold: weibullCorrelationThreshold,
		},
		ExactPValue:       cfg.ExactPValue,
		ExactPValueLevels: 100,

		TopMatch: cfg.TopMatch,
		Concat:   cfg.Concat,

		ChargeFallbackEnabled: cfg.ChargeFallbackEnabled,
		ChargeFallbackRatio:   cfg.ChargeFallbackRatio,

		MinPeaks:      cfg.MinPeaks,
		SpectrumMinMz: cfg.SpectrumMinMz,
		SpectrumMaxMz: cfg.SpectrumMaxMz,

		ProgressEvery: 1000,
	}
}

func enumerateOptionsOf(cfg config.Config, massKind mass.Kind, windowType string, window float64) enumerate.Options {
	return enumerate.Options{
		PrecursorWindowType: windowType,
		PrecursorWindow:     window,
		IsotopeWindows:      cfg.IsotopeWindows,
		MassKind:            massKind,
		LinkMass:            cfg.LinkMass,
		IncludeLinears:      cfg.IncludeLinears,
		IncludeDeadends:     cfg.IncludeDeadends,
		IncludeSelfloops:    cfg.IncludeSelfloops,
		CrossLink: enumerate.CrossLinkOptions{
			IncludeInter:      cfg.IncludeInter,
			IncludeIntra:      cfg.IncludeIntra,
			IncludeInterIntra: cfg.IncludeInterIntra,
			MaxXLinkMods:      cfg.MaxXLinkMods,
		},
		TopN: cfg.XLinkTopN,
	}
}

// fixedResidueLetters derives the set of residue letters a configured
// cross-linker or variable/mono-link modification could target, the
// decoy.Generator's FixedResidues input (spec.md §4.9's preservation
// requirement). link-sites tokens are parsed loosely here (single-letter
// tokens only; "nterm"/"cterm"/"*" contribute nothing since they are not
// residue letters) since bondmap itself has no letters-enumeration method.
func fixedResidueLetters(cfg config.Config) string {
	var b strings.Builder
	for _, tok := range strings.Split(cfg.LinkSites, ",") {
		for _, side := range strings.SplitN(tok, ":", 2) {
			side = strings.TrimSpace(side)
			if len(side) == 1 && side[0] >= 'A' && side[0] <= 'Z' {
				b.WriteByte(side[0])
			}
		}
	}
	for _, m := range cfg.MonoLink {
		b.WriteString(m.Residues)
	}
	for _, m := range cfg.VariableMods {
		b.WriteString(m.Residues)
	}
	return b.String()
}

func massKindOf(s string) mass.Kind {
	if s == "average" {
		return mass.Average
	}
	return mass.Monoisotopic
}
