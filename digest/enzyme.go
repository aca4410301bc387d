/*
Package digest implements the enzymatic-cleavage and variable-modification
rules of spec.md §4.2: missed-cleavage budget inflation (step 1) and the
variable-modification Cartesian product over an unmodified peptide (step
2). Raw FASTA iteration itself is delegated to the peptidesource.Source
collaborator named in spec.md §6; this package is the rule engine a default
implementation (io/fastasource) or any other source plugs into.
*/
package digest

import "regexp"

// Enzyme describes a proteolytic cleavage specificity: cut after any
// residue in After unless the following residue is in Except (the classic
// trypsin "cut after K/R, not before P" rule), or, for a custom enzyme, by
// a regular expression matched against a 2-residue window.
type Enzyme struct {
	Name    string
	After   map[byte]bool
	Except  map[byte]bool
	Custom  *regexp.Regexp
}

// Trypsin is the standard trypsin specificity: cleave after K or R unless
// followed by P.
var Trypsin = Enzyme{
	Name:   "trypsin",
	After:  map[byte]bool{'K': true, 'R': true},
	Except: map[byte]bool{'P': true},
}

// LysC cleaves after K only.
var LysC = Enzyme{
	Name:  "lys-c",
	After: map[byte]bool{'K': true},
}

// ByName looks up a built-in enzyme by its configuration name.
func ByName(name string) (Enzyme, bool) {
	switch name {
	case "trypsin":
		return Trypsin, true
	case "lys-c":
		return LysC, true
	}
	return Enzyme{}, false
}

// NewCustomEnzyme builds an Enzyme whose cleavage rule is "the regular
// expression pattern matches the two-residue window [i, i+1)", per §6's
// `custom-enzyme` configuration key.
func NewCustomEnzyme(name, pattern string) (Enzyme, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Enzyme{}, err
	}
	return Enzyme{Name: name, Custom: re}, nil
}

// Specificity names how strictly digestion enforces enzyme cut sites at
// the peptide's own termini. Digest places both termini of every peptide
// on enzymatic cleavage sites (or a protein terminus) for all three values;
// semi- and non-specific start/end offsets are not generated.
type Specificity int

const (
	// FullySpecific requires both termini of every peptide to be enzymatic
	// cleavage sites (or a protein terminus).
	FullySpecific Specificity = iota
	// SemiSpecific digests exactly as FullySpecific does.
	SemiSpecific
	// NonSpecific digests exactly as FullySpecific does.
	NonSpecific
)

// CleavesAt reports whether the enzyme would cleave between residue i and
// i+1 of seq (i.e. after seq[i]).
func (e Enzyme) CleavesAt(seq string, i int) bool {
	if i < 0 || i >= len(seq)-1 {
		return false
	}
	if e.Custom != nil {
		return e.Custom.MatchString(seq[i : i+2])
	}
	if !e.After[seq[i]] {
		return false
	}
	if e.Except[seq[i+1]] {
		return false
	}
	return true
}

// CleavageSites returns every index i in seq (0-based, within [0,
// len(seq)-1)) at which the enzyme cleaves.
func (e Enzyme) CleavageSites(seq string) []int {
	var sites []int
	for i := 0; i < len(seq)-1; i++ {
		if e.CleavesAt(seq, i) {
			sites = append(sites, i)
		}
	}
	return sites
}
