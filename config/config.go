/*
Package config loads and validates the run configuration of spec.md §6,
plus the two keys recovered from original_source/src/util/Params.cpp and
GlobalParams.cpp (decoy-seed-reuse, output-dir; see SPEC_FULL.md §4).
Configuration is YAML-backed via gopkg.in/yaml.v3, the same library and
load-then-validate shape the teacher's annotate.LoadDatabases uses for its
own YAML config.
*/
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crux-ms/xlink/bondmap"
	"github.com/crux-ms/xlink/digest"
	"github.com/crux-ms/xlink/residue"
)

// ModificationSpec is the YAML-facing representation of a variable
// modification, decoded then converted into residue.Modification.
type ModificationSpec struct {
	Symbol           string  `yaml:"symbol"`
	MassDelta        float64 `yaml:"mass-delta"`
	Residues         string  `yaml:"residues"`
	MaxPerPeptide    int     `yaml:"max-per-peptide"`
	Position         string  `yaml:"position"` // "any", "nterm", "cterm"
	MaxDistance      int     `yaml:"max-distance"`
	PreventsCleavage bool    `yaml:"prevents-cleavage"`
	PreventsXLink    bool    `yaml:"prevents-xlink"`
	IsMonoLink       bool    `yaml:"is-mono-link"`
}

// Config is the decoded, validated run configuration. Field names mirror
// the §6 key names in camel case.
type Config struct {
	// Bond map / linker chemistry.
	LinkSites string  `yaml:"link-sites"`
	LinkMass  float64 `yaml:"link-mass"`
	MonoLink  []ModificationSpec `yaml:"mono-link"`

	// Candidate class toggles.
	IncludeLinears     bool `yaml:"xlink-include-linears"`
	IncludeDeadends    bool `yaml:"xlink-include-deadends"`
	IncludeSelfloops   bool `yaml:"xlink-include-selfloops"`
	IncludeInter       bool `yaml:"xlink-include-inter"`
	IncludeIntra       bool `yaml:"xlink-include-intra"`
	IncludeInterIntra  bool `yaml:"xlink-include-inter-intra"`

	PreventsCleavageResidues string `yaml:"xlink-prevents-cleavage"`
	RequireXLinkCandidate    bool   `yaml:"require-xlink-candidate"`
	XLinkTopN                int    `yaml:"xlink-top-n"`
	MaxXLinkMods             int    `yaml:"max-xlink-mods"`

	// Digestion.
	MissedCleavages int    `yaml:"missed-cleavages"`
	Enzyme          string `yaml:"enzyme"`
	CustomEnzyme    string `yaml:"custom-enzyme"`
	Digestion       string `yaml:"digestion"` // "full", "semi", "non"
	VariableMods    []ModificationSpec `yaml:"variable-mods"`

	MinMass   float64 `yaml:"min-mass"`
	MaxMass   float64 `yaml:"max-mass"`
	MinLength int     `yaml:"min-length"`
	MaxLength int     `yaml:"max-length"`

	// Search windows.
	PrecursorWindow         float64 `yaml:"precursor-window"`
	PrecursorWindowType     string  `yaml:"precursor-window-type"` // "mass", "mz", "ppm"
	PrecursorWindowWeibull     float64 `yaml:"precursor-window-weibull"`
	PrecursorWindowTypeWeibull string  `yaml:"precursor-window-type-weibull"`
	IsotopeWindows             []int   `yaml:"isotope-windows"`

	IsotopicMass string `yaml:"isotopic-mass"` // "mono" or "average"
	FragmentMass string `yaml:"fragment-mass"`

	MzBinWidth  float64 `yaml:"mz-bin-width"`
	MzBinOffset float64 `yaml:"mz-bin-offset"`

	UseAIons         bool `yaml:"use-a-ions"`
	UseBIons         bool `yaml:"use-b-ions"`
	UseCIons         bool `yaml:"use-c-ions"`
	UseXIons         bool `yaml:"use-x-ions"`
	UseYIons         bool `yaml:"use-y-ions"`
	UseZIons         bool `yaml:"use-z-ions"`
	MaxIonCharge     int  `yaml:"max-ion-charge"`
	UseFlankingPeaks bool `yaml:"use-flanking-peaks"`

	RemovePrecursorTolerance float64 `yaml:"remove-precursor-tolerance"`

	SpectrumCharge int     `yaml:"spectrum-charge"`
	SpectrumMinMz  float64 `yaml:"spectrum-min-mz"`
	SpectrumMaxMz  float64 `yaml:"spectrum-max-mz"`
	MinPeaks       int     `yaml:"min-peaks"`

	ChargeFallbackEnabled bool    `yaml:"spectrum-charge-fallback"`
	ChargeFallbackRatio   float64 `yaml:"charge-fallback-ratio"`

	ComputePValues         bool    `yaml:"compute-p-values"`
	MinWeibullPoints       int     `yaml:"min-weibull-points"`
	FractionTopScoresToFit float64 `yaml:"fraction-top-scores-to-fit"`
	ExactPValue            bool    `yaml:"exact-p-value"`

	TopMatch int  `yaml:"top-match"`
	Concat   bool `yaml:"concat"`

	Seed int64 `yaml:"seed"`

	// Recovered from original_source/src/util/Params.cpp (SPEC_FULL.md §4).
	DecoySeedReuse bool   `yaml:"decoy-seed-reuse"`
	OutputDir      string `yaml:"output-dir"`

	DecoyWeighted bool `yaml:"decoy-weighted"`

	DumpPeptidesSQLite bool `yaml:"dump-peptides-sqlite"`
}

// Default returns a Config populated with the spec's implied defaults.
func Default() Config {
	return Config{
		IncludeLinears:         true,
		MaxIonCharge:           2,
		UseBIons:               true,
		UseYIons:               true,
		MzBinWidth:             1.0005079,
		Digestion:              "full",
		PrecursorWindowType:    "ppm",
		PrecursorWindow:        10,
		IsotopeWindows:         []int{0},
		IsotopicMass:           "mono",
		FragmentMass:           "mono",
		ChargeFallbackEnabled:  true,
		ChargeFallbackRatio:    0.2,
		MinWeibullPoints:       100,
		FractionTopScoresToFit: 0.01,
		TopMatch:               5,
		MinPeaks:               10,
		OutputDir:              ".",
	}
}

// Load reads and validates a YAML configuration file, starting from
// Default() so unset keys keep their documented defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for the fatal errors spec.md §7.1
// describes: invalid bond-map tokens, unknown enzyme, out-of-range
// parameters.
func (c Config) Validate() error {
	if c.LinkSites != "" {
		if _, err := bondmap.Parse(c.LinkSites); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if c.Enzyme != "" && c.CustomEnzyme == "" {
		if _, ok := digest.ByName(c.Enzyme); !ok {
			return fmt.Errorf("config: unknown enzyme %q", c.Enzyme)
		}
	}
	if c.PrecursorWindow < 0 {
		return fmt.Errorf("config: precursor-window must be >= 0")
	}
	if c.MaxXLinkMods < 0 {
		return fmt.Errorf("config: max-xlink-mods must be >= 0")
	}
	if c.MaxIonCharge < 1 {
		return fmt.Errorf("config: max-ion-charge must be >= 1")
	}
	if c.FractionTopScoresToFit <= 0 || c.FractionTopScoresToFit > 1 {
		return fmt.Errorf("config: fraction-top-scores-to-fit must be in (0, 1]")
	}
	return nil
}

// BondMap parses and returns the configured bond map.
func (c Config) BondMap() (bondmap.BondMap, error) {
	return bondmap.Parse(c.LinkSites)
}

// ResolveEnzyme returns the configured Enzyme, building a custom one from
// CustomEnzyme if configured.
func (c Config) ResolveEnzyme() (digest.Enzyme, error) {
	if c.CustomEnzyme != "" {
		return digest.NewCustomEnzyme("custom", c.CustomEnzyme)
	}
	e, ok := digest.ByName(c.Enzyme)
	if !ok {
		return digest.Enzyme{}, fmt.Errorf("config: unknown enzyme %q", c.Enzyme)
	}
	return e, nil
}

// Specificity maps the digestion string key to digest.Specificity.
func (c Config) Specificity() digest.Specificity {
	switch c.Digestion {
	case "semi":
		return digest.SemiSpecific
	case "non":
		return digest.NonSpecific
	default:
		return digest.FullySpecific
	}
}

// ModTable builds the global residue.Table from the configured mono-link
// and variable-mods lists. Mono-link modifications occupy the first slots
// and carry IsMonoLink, which is how candidatedb tells them apart.
func (c Config) ModTable() (residue.Table, error) {
	var table residue.Table
	add := func(spec ModificationSpec, isMonoLink bool) error {
		if len(table.Mods) >= residue.MaxModifications {
			return fmt.Errorf("config: more than %d variable modifications configured", residue.MaxModifications)
		}
		if len(spec.Symbol) != 1 {
			return fmt.Errorf("config: modification symbol must be one character, got %q", spec.Symbol)
		}
		allowed := make(map[byte]bool, len(spec.Residues))
		for i := 0; i < len(spec.Residues); i++ {
			allowed[spec.Residues[i]] = true
		}
		pos := residue.PositionAny
		switch spec.Position {
		case "nterm":
			pos = residue.PositionNTerm
		case "cterm":
			pos = residue.PositionCTerm
		}
		maxPer := spec.MaxPerPeptide
		if maxPer <= 0 {
			maxPer = 1
		}
		table.Mods = append(table.Mods, residue.Modification{
			Symbol:           spec.Symbol[0],
			MassDelta:        spec.MassDelta,
			Allowed:          allowed,
			MaxPerPeptide:    maxPer,
			Position:         pos,
			MaxDistance:      spec.MaxDistance,
			PreventsCleavage: spec.PreventsCleavage,
			PreventsXLink:    spec.PreventsXLink,
			IsMonoLink:       isMonoLink || spec.IsMonoLink,
		})
		return nil
	}
	for _, m := range c.MonoLink {
		if err := add(m, true); err != nil {
			return residue.Table{}, err
		}
	}
	for _, m := range c.VariableMods {
		if err := add(m, false); err != nil {
			return residue.Table{}, err
		}
	}
	return table, nil
}

// AnyCrossLinkEnabled reports whether any cross-link variant (inter, intra,
// inter-intra) is enabled.
func (c Config) AnyCrossLinkEnabled() bool {
	return c.IncludeInter || c.IncludeIntra || c.IncludeInterIntra
}
