package peptide

import (
	"github.com/crux-ms/xlink/mass"
)

// Kind is the closed set of candidate classifications named in spec.md §3
// and §9 ("the number of kinds is closed and small"): linear, mono-link,
// self-loop, and the three cross-link flavours.
type Kind int

const (
	KindLinear Kind = iota
	KindMonoLink
	KindSelfLoop
	KindCrossLinkIntra
	KindCrossLinkInter
	KindCrossLinkInterIntra
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindMonoLink:
		return "dead-link"
	case KindSelfLoop:
		return "self-loop"
	case KindCrossLinkIntra:
		return "xlink-intra"
	case KindCrossLinkInter:
		return "xlink-inter"
	case KindCrossLinkInterIntra:
		return "xlink-inter-intra"
	default:
		return "unknown"
	}
}

// Quadrant labels a candidate's target/decoy composition, per spec.md §3.
type Quadrant int

const (
	QuadrantTarget Quadrant = iota
	QuadrantDecoy
	QuadrantTargetTarget
	QuadrantTargetDecoy
	QuadrantDecoyTarget
	QuadrantDecoyDecoy
)

func (q Quadrant) String() string {
	switch q {
	case QuadrantTarget:
		return "target"
	case QuadrantDecoy:
		return "decoy"
	case QuadrantTargetTarget:
		return "target-target"
	case QuadrantTargetDecoy:
		return "target-decoy"
	case QuadrantDecoyTarget:
		return "decoy-target"
	case QuadrantDecoyDecoy:
		return "decoy-decoy"
	default:
		return "unknown"
	}
}

// Candidate is the tagged-variant interface shared by all five candidate
// kinds (spec.md §9): mass, a rendered sequence string, and classification.
// predictIons is intentionally left off this interface — fragment.Predict
// takes a Candidate and type-switches on its concrete type, since ion construction needs
// access to kind-specific fields (link sites, partner peptide) that would
// otherwise leak into this package's public surface.
type Candidate interface {
	Mass(kind mass.Kind) float64
	SequenceString() string
	Type() Kind
	IsDecoy() bool
}

// Linear wraps a single peptide with the KindLinear or KindMonoLink tag;
// representationally these are identical (spec.md §3: "Mono-link ... is
// representationally identical to a linear peptide with a particular
// variable modification"), distinguished only by Kind.
type Linear struct {
	Peptide *Peptide
	kind    Kind
}

// NewLinear builds a Linear candidate; kind must be KindLinear or
// KindMonoLink.
func NewLinear(p *Peptide, kind Kind) Linear {
	return Linear{Peptide: p, kind: kind}
}

func (l Linear) Mass(kind mass.Kind) float64 { return l.Peptide.Mass(kind) }
func (l Linear) SequenceString() string      { return l.Peptide.ModifiedSequence() }
func (l Linear) Type() Kind                  { return l.kind }
func (l Linear) IsDecoy() bool               { return l.Peptide.IsDecoy }

// SelfLoop is a linkable peptide with exactly two chosen link-site indices
// on the same peptide (spec.md §3).
type SelfLoop struct {
	Peptide    *LinkablePeptide
	SiteA      int
	SiteB      int
	LinkerMass float64
}

// NewSelfLoop builds a SelfLoop candidate with siteA < siteB.
func NewSelfLoop(p *LinkablePeptide, siteA, siteB int, linkerMass float64) SelfLoop {
	if siteA > siteB {
		siteA, siteB = siteB, siteA
	}
	return SelfLoop{Peptide: p, SiteA: siteA, SiteB: siteB, LinkerMass: linkerMass}
}

func (s SelfLoop) Mass(kind mass.Kind) float64 {
	return s.Peptide.Mass(kind) + s.LinkerMass
}
func (s SelfLoop) SequenceString() string { return s.Peptide.ModifiedSequence() }
func (s SelfLoop) Type() Kind             { return KindSelfLoop }
func (s SelfLoop) IsDecoy() bool          { return s.Peptide.IsDecoy }

// CrossLink is an ordered pair of linkable peptides plus one chosen link
// site on each, canonicalised so PeptideA's modified sequence is
// lexicographically <= PeptideB's (spec.md §3).
type CrossLink struct {
	PeptideA, PeptideB *LinkablePeptide
	SiteA, SiteB       int
	LinkerMass         float64
}

// NewCrossLink builds a canonicalised CrossLink candidate from two linkable
// peptides and their chosen link sites (siteA on pA, siteB on pB).
func NewCrossLink(pA *LinkablePeptide, siteA int, pB *LinkablePeptide, siteB int, linkerMass float64) CrossLink {
	if pA.ModifiedSequence() > pB.ModifiedSequence() {
		pA, pB = pB, pA
		siteA, siteB = siteB, siteA
	}
	return CrossLink{PeptideA: pA, PeptideB: pB, SiteA: siteA, SiteB: siteB, LinkerMass: linkerMass}
}

func (c CrossLink) Mass(kind mass.Kind) float64 {
	return c.PeptideA.Mass(kind) + c.PeptideB.Mass(kind) + c.LinkerMass
}

func (c CrossLink) SequenceString() string {
	return c.PeptideA.ModifiedSequence() + "--" + c.PeptideB.ModifiedSequence()
}

// Type classifies the cross-link as intra/inter/inter-intra by comparing
// the two peptides' protein-source ID sets, per spec.md §3. The original
// implementation used a bitwise AND where logical AND was intended (spec.md
// §9(ii)); this implementation uses logical conjunction throughout.
func (c CrossLink) Type() Kind {
	someShared, someDistinct := false, false
	for _, sa := range c.PeptideA.Sources {
		for _, sb := range c.PeptideB.Sources {
			if sa.ProteinID == sb.ProteinID {
				someShared = true
			} else {
				someDistinct = true
			}
		}
	}
	switch {
	case someShared && someDistinct:
		return KindCrossLinkInterIntra
	case someShared:
		return KindCrossLinkIntra
	default:
		return KindCrossLinkInter
	}
}

func (c CrossLink) IsDecoy() bool {
	return c.PeptideA.IsDecoy || c.PeptideB.IsDecoy
}

// ClassifyQuadrant returns the target/decoy quadrant label for a cross-link
// candidate.
func (c CrossLink) ClassifyQuadrant() Quadrant {
	switch {
	case !c.PeptideA.IsDecoy && !c.PeptideB.IsDecoy:
		return QuadrantTargetTarget
	case !c.PeptideA.IsDecoy && c.PeptideB.IsDecoy:
		return QuadrantTargetDecoy
	case c.PeptideA.IsDecoy && !c.PeptideB.IsDecoy:
		return QuadrantDecoyTarget
	default:
		return QuadrantDecoyDecoy
	}
}

// ModCount returns the combined number of modified residues across both
// peptides, used to enforce spec.md §4.3's combined modified-residue cap.
func (c CrossLink) ModCount() int {
	return c.PeptideA.ModCount() + c.PeptideB.ModCount()
}

// QuadrantOf returns cand's target/decoy quadrant: CrossLink uses its own
// four-way ClassifyQuadrant, every other candidate kind is either
// QuadrantTarget or QuadrantDecoy.
func QuadrantOf(cand Candidate) Quadrant {
	if cl, ok := cand.(CrossLink); ok {
		return cl.ClassifyQuadrant()
	}
	if cand.IsDecoy() {
		return QuadrantDecoy
	}
	return QuadrantTarget
}
