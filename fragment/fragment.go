/*
Package fragment predicts the theoretical fragment-ion series for a
candidate at a given precursor charge, per spec.md §4.4. Ion construction
is closed arithmetic over the mass package's residue tables; nothing in
the example pack adds value over the standard library here, so this
package has no third-party dependency (recorded in DESIGN.md).
*/
package fragment

import (
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/peptide"
)

// IonType is one of the six standard peptide fragment-ion series.
type IonType int

const (
	IonA IonType = iota
	IonB
	IonC
	IonX
	IonY
	IonZ
)

func (t IonType) String() string {
	switch t {
	case IonA:
		return "a"
	case IonB:
		return "b"
	case IonC:
		return "c"
	case IonX:
		return "x"
	case IonY:
		return "y"
	case IonZ:
		return "z"
	default:
		return "?"
	}
}

// isForward reports whether t is an N-terminal (forward) ion series.
func (t IonType) isForward() bool {
	return t == IonA || t == IonB || t == IonC
}

// Mass offsets from the unmodified b/y neutral fragment mass, per the
// standard peptide fragmentation nomenclature.
const (
	massCO      = 27.994915
	massNH3     = 17.026549
	massXAdjust = 25.979265 // x = y + CO - 2H
	massZAdjust = -16.018724
)

// Ion is one predicted theoretical fragment ion.
type Ion struct {
	Type          IonType
	Charge        int
	CleavageIndex int
	MZ            float64
}

// Series is the full set of theoretical ions predicted for one candidate
// at one precursor charge.
type Series struct {
	Ions []Ion
}

// Config selects which ion types and charges Predict builds, mirroring
// config.Config's use-*-ions and max-ion-charge keys without importing the
// config package (see digest/peptidesource for the same layering choice).
type Config struct {
	UseA, UseB, UseC bool
	UseX, UseY, UseZ bool
	MaxIonCharge     int
	MassKind         mass.Kind
}

func (cfg Config) enabled(t IonType) bool {
	switch t {
	case IonA:
		return cfg.UseA
	case IonB:
		return cfg.UseB
	case IonC:
		return cfg.UseC
	case IonX:
		return cfg.UseX
	case IonY:
		return cfg.UseY
	case IonZ:
		return cfg.UseZ
	default:
		return false
	}
}

// Predict builds the theoretical ion series for cand at the given precursor
// charge. Unrecognised candidate types return an empty series; the five
// concrete kinds in the peptide package (Linear, SelfLoop, CrossLink) are
// the closed set this module produces (spec.md §9).
func Predict(cand peptide.Candidate, precursorCharge int, cfg Config) Series {
	switch c := cand.(type) {
	case peptide.Linear:
		return predictLinear(c.Peptide, precursorCharge, cfg)
	case peptide.SelfLoop:
		return predictSelfLoop(c, precursorCharge, cfg)
	case peptide.CrossLink:
		return predictCrossLink(c, precursorCharge, cfg)
	default:
		return Series{}
	}
}

// chargesUpTo returns 1..min(precursorCharge, maxIonCharge), always at
// least charge 1.
func chargesUpTo(precursorCharge, maxIonCharge int) []int {
	limit := precursorCharge
	if maxIonCharge > 0 && maxIonCharge < limit {
		limit = maxIonCharge
	}
	if limit < 1 {
		limit = 1
	}
	out := make([]int, 0, limit)
	for z := 1; z <= limit; z++ {
		out = append(out, z)
	}
	return out
}

// ionMZ converts a neutral fragment mass to m/z at the given charge.
func ionMZ(neutral float64, charge int) float64 {
	return (neutral + float64(charge)*mass.Proton) / float64(charge)
}

// prefixSums returns prefix[i] = sum of residue masses (excluding water) of
// the first i residues of p, for i in [0, p.Length()].
func prefixSums(p *peptide.Peptide, kind mass.Kind) []float64 {
	n := p.Length()
	prefix := make([]float64, n+1)
	for i := 0; i < n; i++ {
		prefix[i+1] = prefix[i] + p.ResidueMass(i, kind)
	}
	return prefix
}

// addFunc computes the mass delta to add to a fragment whose cleavage
// index is c (the number of residues in that fragment), and whether the
// fragment should be suppressed entirely (spec.md §4.4's self-loop rule).
type addFunc func(c int) (delta float64, suppress bool)

// noAdd is the addFunc for a plain linear/mono-link peptide: every
// fragment is normal, nothing added.
func noAdd(int) (float64, bool) { return 0, false }

// buildIons walks every cleavage index of a peptide of the given length
// and emits both the forward (a/b/c) and reverse (x/y/z) ions enabled in
// cfg, applying forwardAdd/reverseAdd to each fragment's neutral mass.
func buildIons(prefix []float64, length int, cfg Config, forwardAdd, reverseAdd addFunc, precursorCharge int) []Ion {
	charges := chargesUpTo(precursorCharge, cfg.MaxIonCharge)
	total := prefix[length]
	water := mass.WaterMass(cfg.MassKind)

	var ions []Ion
	for c := 1; c < length; c++ {
		if fDelta, suppress := forwardAdd(c); !suppress {
			neutralB := prefix[c] + fDelta
			ions = appendIon(ions, IonB, c, neutralB, charges, cfg)
			ions = appendIon(ions, IonA, c, neutralB-massCO, charges, cfg)
			ions = appendIon(ions, IonC, c, neutralB+massNH3, charges, cfg)
		}
		if rDelta, suppress := reverseAdd(c); !suppress {
			suffix := total - prefix[length-c]
			neutralY := suffix + water + rDelta
			ions = appendIon(ions, IonY, c, neutralY, charges, cfg)
			ions = appendIon(ions, IonX, c, neutralY+massXAdjust, charges, cfg)
			ions = appendIon(ions, IonZ, c, neutralY+massZAdjust, charges, cfg)
		}
	}
	return ions
}

func appendIon(ions []Ion, t IonType, cleavageIndex int, neutral float64, charges []int, cfg Config) []Ion {
	if !cfg.enabled(t) {
		return ions
	}
	for _, z := range charges {
		ions = append(ions, Ion{Type: t, Charge: z, CleavageIndex: cleavageIndex, MZ: ionMZ(neutral, z)})
	}
	return ions
}

// predictLinear builds the unmodified ion series for a linear or mono-link
// peptide; the mono-link's mass delta is already baked into the peptide's
// modified sequence, so no extra addend is needed.
func predictLinear(p *peptide.Peptide, precursorCharge int, cfg Config) Series {
	prefix := prefixSums(p, cfg.MassKind)
	return Series{Ions: buildIons(prefix, p.Length(), cfg, noAdd, noAdd, precursorCharge)}
}

// predictSelfLoop implements spec.md §4.4's self-loop suppression rule: an
// ion that would span only one endpoint of the loop is suppressed; an ion
// past both endpoints carries the linker mass.
func predictSelfLoop(s peptide.SelfLoop, precursorCharge int, cfg Config) Series {
	p := s.Peptide.Peptide
	length := p.Length()
	s1, s2 := s.SiteA, s.SiteB

	forward := func(c int) (float64, bool) {
		switch {
		case c <= s1:
			return 0, false
		case c <= s2:
			return 0, true
		default:
			return s.LinkerMass, false
		}
	}
	// Reverse rule per spec.md §4.4: "symmetric rule ... using N - s2 and
	// N - s1" in place of s1, s2.
	r1, r2 := length-s2, length-s1
	reverse := func(c int) (float64, bool) {
		switch {
		case c <= r1:
			return 0, false
		case c <= r2:
			return 0, true
		default:
			return s.LinkerMass, false
		}
	}

	prefix := prefixSums(p, cfg.MassKind)
	return Series{Ions: buildIons(prefix, length, cfg, forward, reverse, precursorCharge)}
}

// predictCrossLink implements spec.md §4.4's cross-link rule: each
// peptide's ions are predicted independently, with the partner peptide's
// mass (plus the linker mass) added to any fragment whose cleavage index
// lies past that peptide's own link site.
func predictCrossLink(c peptide.CrossLink, precursorCharge int, cfg Config) Series {
	sideA, sideB := PredictCrossLinkSides(c, precursorCharge, cfg)
	return Series{Ions: append(sideA.Ions, sideB.Ions...)}
}

// PredictCrossLinkSides builds the two per-peptide ion series of a
// cross-link candidate separately, each carrying its partner's mass as an
// addend past its own link site. search uses these (rather than the
// combined Series Predict returns) to compute the per-peptide XCorrs
// spec.md §4.5 reports alongside the combined score.
func PredictCrossLinkSides(c peptide.CrossLink, precursorCharge int, cfg Config) (sideA, sideB Series) {
	sideA = predictCrossLinkSide(c.PeptideA.Peptide, c.SiteA, c.PeptideB.Mass(cfg.MassKind)+c.LinkerMass, precursorCharge, cfg)
	sideB = predictCrossLinkSide(c.PeptideB.Peptide, c.SiteB, c.PeptideA.Mass(cfg.MassKind)+c.LinkerMass, precursorCharge, cfg)
	return sideA, sideB
}

func predictCrossLinkSide(p *peptide.Peptide, site int, partnerMass float64, precursorCharge int, cfg Config) Series {
	length := p.Length()
	forward := func(c int) (float64, bool) {
		if c <= site {
			return 0, false
		}
		return partnerMass, false
	}
	reverseSite := length - site
	reverse := func(c int) (float64, bool) {
		if c <= reverseSite {
			return 0, false
		}
		return partnerMass, false
	}
	prefix := prefixSums(p, cfg.MassKind)
	return Series{Ions: buildIons(prefix, length, cfg, forward, reverse, precursorCharge)}
}
