/*
Package bondmap implements the cross-linker chemistry predicate of
spec.md §4.1: given a textual bond-map specification of the form
"A:B,C:D,...", answer whether two link-site descriptors may be joined by
the configured cross-linker.

A descriptor is one of: a specific residue letter, the N-terminus, the
C-terminus, or "any residue" (token "*"). The relation is always
interpreted symmetrically: "A:B" implies "B:A". Construction and lookup
follow original_source/src/c/xlink/XLinkBondMap.cpp's token vocabulary so
existing bond-map config strings are drop-in compatible.
*/
package bondmap

import (
	"fmt"
	"strings"
)

// Descriptor is one endpoint of a configured bond, e.g. "K", NTerm, CTerm,
// or Any.
type Descriptor struct {
	// Letter is the residue letter this descriptor matches, or 0 if this
	// descriptor is not a specific-letter descriptor.
	Letter byte
	// Kind distinguishes a specific letter from the terminal/any tokens.
	Kind DescriptorKind
}

// DescriptorKind enumerates the token vocabulary a bond-map spec may use.
type DescriptorKind int

const (
	// KindLetter matches a specific residue letter.
	KindLetter DescriptorKind = iota
	// KindNTerm matches position 0 of a peptide.
	KindNTerm
	// KindCTerm matches the last residue of a peptide that reaches its
	// protein's C-terminus.
	KindCTerm
	// KindAny matches any residue, including the termini.
	KindAny
)

func (d Descriptor) String() string {
	switch d.Kind {
	case KindNTerm:
		return "nterm"
	case KindCTerm:
		return "cterm"
	case KindAny:
		return "*"
	default:
		return string(d.Letter)
	}
}

// matches reports whether d matches a residue at position pos within a
// peptide of length with atNTerm/atCTerm telling d whether that position is
// the peptide's protein-level N-/C-terminus.
func (d Descriptor) matches(letter byte, pos, length int, atNTerm, atCTerm bool) bool {
	switch d.Kind {
	case KindAny:
		return true
	case KindNTerm:
		return pos == 0 && atNTerm
	case KindCTerm:
		return pos == length-1 && atCTerm
	default:
		return letter == d.Letter
	}
}

// parseDescriptor parses a single bond-map token.
func parseDescriptor(tok string) (Descriptor, error) {
	tok = strings.TrimSpace(tok)
	switch strings.ToLower(tok) {
	case "nterm":
		return Descriptor{Kind: KindNTerm}, nil
	case "cterm":
		return Descriptor{Kind: KindCTerm}, nil
	case "*":
		return Descriptor{Kind: KindAny}, nil
	}
	if len(tok) != 1 || tok[0] < 'A' || tok[0] > 'Z' {
		return Descriptor{}, fmt.Errorf("bondmap: invalid descriptor token %q", tok)
	}
	return Descriptor{Kind: KindLetter, Letter: tok[0]}, nil
}

// pair is an unordered pair of descriptors forming one configured bond.
type pair struct {
	a, b Descriptor
}

// BondMap is the symmetric relation over link-site descriptors described in
// spec.md §4.1.
type BondMap struct {
	pairs []pair
}

// Parse builds a BondMap from a spec string like "K:K,K:D,*:nterm". Returns
// an error on any malformed token — per spec.md §7.1 this is a fatal
// configuration error at startup.
func Parse(spec string) (BondMap, error) {
	bm := BondMap{}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return bm, fmt.Errorf("bondmap: empty spec")
	}
	for _, tok := range strings.Split(spec, ",") {
		sides := strings.SplitN(tok, ":", 2)
		if len(sides) != 2 {
			return BondMap{}, fmt.Errorf("bondmap: malformed token %q, expected A:B", tok)
		}
		a, err := parseDescriptor(sides[0])
		if err != nil {
			return BondMap{}, err
		}
		b, err := parseDescriptor(sides[1])
		if err != nil {
			return BondMap{}, err
		}
		bm.pairs = append(bm.pairs, pair{a, b})
	}
	return bm, nil
}

// Site is a residue position inside a peptide, carrying enough context for
// Descriptor.matches to evaluate terminal tokens.
type Site struct {
	Letter         byte
	Pos, Length    int
	AtNTerm        bool
	AtCTerm        bool
}

// linked reports whether descriptors a and b (in either order, since the
// relation is symmetric) jointly admit sites s1 and s2.
func (bm BondMap) linked(s1, s2 Site) bool {
	for _, p := range bm.pairs {
		f1 := p.a.matches(s1.Letter, s1.Pos, s1.Length, s1.AtNTerm, s1.AtCTerm) &&
			p.b.matches(s2.Letter, s2.Pos, s2.Length, s2.AtNTerm, s2.AtCTerm)
		f2 := p.b.matches(s1.Letter, s1.Pos, s1.Length, s1.AtNTerm, s1.AtCTerm) &&
			p.a.matches(s2.Letter, s2.Pos, s2.Length, s2.AtNTerm, s2.AtCTerm)
		if f1 || f2 {
			return true
		}
	}
	return false
}

// CanLinkMono reports whether site s is eligible for a mono-link adduct: it
// must match at least one descriptor of some configured bond (either side),
// since a mono-link occupies one reactive end of the cross-linker with the
// other end hydrolysed.
func (bm BondMap) CanLinkMono(s Site) bool {
	for _, p := range bm.pairs {
		if p.a.matches(s.Letter, s.Pos, s.Length, s.AtNTerm, s.AtCTerm) ||
			p.b.matches(s.Letter, s.Pos, s.Length, s.AtNTerm, s.AtCTerm) {
			return true
		}
	}
	return false
}

// CanLinkSelfLoop reports whether sites s1 and s2 within the same peptide
// may be joined by a self-loop cross-link.
func (bm BondMap) CanLinkSelfLoop(s1, s2 Site) bool {
	return bm.linked(s1, s2)
}

// CanLinkCross reports whether site s1 on one peptide and s2 on another may
// be joined by an inter-peptide cross-link. The predicate is identical to
// CanLinkSelfLoop's — the bond map does not distinguish intra- from
// inter-peptide chemistry, only the sites' descriptors — but is exposed
// under its own name to match spec.md §4.1's three named overloads.
func (bm BondMap) CanLinkCross(s1, s2 Site) bool {
	return bm.linked(s1, s2)
}

// LinkableSites returns, in ascending position order, every position in
// letters (with the given N-/C-terminal flags per position) that is
// eligible as a link site on its own, i.e. CanLinkMono holds and the caller
// has already excluded positions blocked by a PreventsXLink modification.
func (bm BondMap) LinkableSites(letters string, atNTerm, atCTerm []bool) []int {
	var sites []int
	for i := 0; i < len(letters); i++ {
		s := Site{Letter: letters[i], Pos: i, Length: len(letters), AtNTerm: atNTerm[i], AtCTerm: atCTerm[i]}
		if bm.CanLinkMono(s) {
			sites = append(sites, i)
		}
	}
	return sites
}
