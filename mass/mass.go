/*
Package mass holds the monoisotopic and average mass tables this module
needs to turn a residue sequence into a physical mass: per-residue masses,
water, the proton, and the neutron used for isotope-offset windows (spec.md
§4.3).
*/
package mass

// Kind selects which mass table to use for a computation.
type Kind int

const (
	// Monoisotopic uses the mass of the most abundant isotope of each element.
	Monoisotopic Kind = iota
	// Average uses isotope-abundance-weighted average atomic masses.
	Average
)

// Water is the mass of one water molecule, added once per peptide to
// account for the two termini.
const (
	WaterMono = 18.010565
	WaterAvg  = 18.01528
)

// Proton is the mass of a proton, used to convert between neutral mass and
// m/z at a given charge.
const Proton = 1.00727646688

// Neutron is the mass of a neutron, used to offset a precursor mass by an
// integer number of isotope envelope positions (spec.md §4.3, §6
// isotope-windows).
const Neutron = 1.00866491588

// monoTable and avgTable hold per-residue-letter masses. Index by letter-'A'.
var (
	monoTable [26]float64
	avgTable  [26]float64
)

func init() {
	// Standard monoisotopic residue masses (Unimod / ExPASy values).
	m := map[byte]float64{
		'G': 57.02146, 'A': 71.03711, 'S': 87.03203, 'P': 97.05276,
		'V': 99.06841, 'T': 101.04768, 'C': 103.00919, 'L': 113.08406,
		'I': 113.08406, 'N': 114.04293, 'D': 115.02694, 'Q': 128.05858,
		'K': 128.09496, 'E': 129.04259, 'M': 131.04049, 'H': 137.05891,
		'F': 147.06841, 'R': 156.10111, 'Y': 163.06333, 'W': 186.07931,
		'U': 150.95364, 'O': 237.14773,
	}
	a := map[byte]float64{
		'G': 57.0519, 'A': 71.0788, 'S': 87.0782, 'P': 97.1167,
		'V': 99.1326, 'T': 101.1051, 'C': 103.1388, 'L': 113.1594,
		'I': 113.1594, 'N': 114.1038, 'D': 115.0886, 'Q': 128.1307,
		'K': 128.1741, 'E': 129.1155, 'M': 131.1926, 'H': 137.1411,
		'F': 147.1766, 'R': 156.1875, 'Y': 163.1760, 'W': 186.2132,
		'U': 150.0388, 'O': 237.3018,
	}
	for letter, v := range m {
		monoTable[letter-'A'] = v
	}
	for letter, v := range a {
		avgTable[letter-'A'] = v
	}
}

// ResidueMass returns the mass of a single residue letter under the given
// table kind. Unknown letters return 0, so they add nothing to a summed
// peptide mass.
func ResidueMass(letter byte, kind Kind) float64 {
	if letter < 'A' || letter > 'Z' {
		return 0
	}
	if kind == Monoisotopic {
		return monoTable[letter-'A']
	}
	return avgTable[letter-'A']
}

// WaterMass returns the water mass for the given table kind.
func WaterMass(kind Kind) float64 {
	if kind == Monoisotopic {
		return WaterMono
	}
	return WaterAvg
}

// NeutralToMH converts a neutral peptide mass to the singly protonated
// (M+H) mass.
func NeutralToMH(neutral float64) float64 {
	return neutral + Proton
}

// MHToMZ converts a singly protonated mass to m/z at the given charge.
func MHToMZ(mh float64, charge int) float64 {
	if charge <= 0 {
		charge = 1
	}
	return (mh + float64(charge-1)*Proton) / float64(charge)
}

// MZToNeutral converts an observed m/z at a given charge back to neutral
// mass.
func MZToNeutral(mz float64, charge int) float64 {
	return mz*float64(charge) - float64(charge)*Proton
}
