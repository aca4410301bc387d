/*
Package decoy implements the decoy generator of spec.md §4.9: per-peptide
shuffles that preserve length, terminal residues, and every residue a
cross-linker or variable modification could land on, plus the three
cross-link decoy quadrants (decoy-decoy, target-decoy, decoy-target) and
the decoy->target mapping used for reporting. Grounded on
original_source/src/app/xlink/SelfLoopPeptide.cpp and LinearPeptide.h's
shuffle() methods (interior-only shuffle, target remembered for
reporting) and XLinkMatch.cpp's quadrant dispatch.
*/
package decoy

import (
	"math/rand"

	"github.com/mroth/weightedrand"

	"github.com/crux-ms/xlink/digest"
)

// aminoAcidFrequency gives the approximate background frequency of each of
// the twenty standard residues, used by the weighted shuffle mode so that
// rare residues are not systematically over- or under-represented in
// decoy interiors relative to the uniform Fisher-Yates shuffle.
var aminoAcidFrequency = map[byte]uint{
	'A': 825, 'R': 553, 'N': 406, 'D': 545, 'C': 137,
	'Q': 393, 'E': 675, 'G': 707, 'H': 227, 'I': 596,
	'L': 966, 'K': 584, 'M': 242, 'F': 386, 'P': 470,
	'S': 656, 'T': 534, 'W': 108, 'Y': 292, 'V': 687,
}

// Generator produces shuffled decoy sequences. It implements
// candidatedb.DecoyGenerator.
type Generator struct {
	rng *rand.Rand

	// FixedResidues holds every residue letter that must keep its position
	// in the shuffle: the set of letters a configured cross-linker or
	// variable modification can target (spec.md §4.9's "link-site
	// positions" and "modification pattern" preservation requirements).
	FixedResidues map[byte]bool

	// Weighted selects the frequency-weighted shuffle mode over the
	// default uniform Fisher-Yates permutation.
	Weighted bool

	// MaxRetries bounds how many times Shuffle retries after producing a
	// decoy identical to its target (possible for short or low-diversity
	// interiors).
	MaxRetries int

	// targets records every decoy sequence this generator has produced,
	// keyed by the decoy sequence itself, mapping back to its target's
	// protein ID and original letters (spec.md §4.9: "record the mapping
	// from decoy back to its target for reporting").
	targets map[string]TargetRef
}

// TargetRef identifies the target peptide a decoy sequence was derived
// from.
type TargetRef struct {
	ProteinID     string
	TargetLetters string
}

// NewGenerator builds a Generator seeded from source, treating every
// letter in fixedResidues as immovable during shuffling.
func NewGenerator(source rand.Source, fixedResidues string, weighted bool) *Generator {
	fixed := make(map[byte]bool, len(fixedResidues))
	for i := 0; i < len(fixedResidues); i++ {
		fixed[fixedResidues[i]] = true
	}
	return &Generator{
		rng:           rand.New(source),
		FixedResidues: fixed,
		Weighted:      weighted,
		MaxRetries:    10,
		targets:       make(map[string]TargetRef),
	}
}

// Shuffle implements candidatedb.DecoyGenerator: it permutes every
// interior residue of up.Letters that is not in g.FixedResidues, leaving
// the two terminal residues and every fixed residue exactly where they
// were, per spec.md §4.9's (a)-(d) preservation requirements.
func (g *Generator) Shuffle(up digest.UnmodifiedPeptide) (string, bool) {
	letters := up.Letters
	if len(letters) < 3 {
		return "", false
	}

	movable := make([]int, 0, len(letters)-2)
	for i := 1; i < len(letters)-1; i++ {
		if !g.FixedResidues[letters[i]] {
			movable = append(movable, i)
		}
	}
	if len(movable) < 2 {
		return "", false
	}

	buf := []byte(letters)
	for attempt := 0; attempt <= g.MaxRetries; attempt++ {
		if g.Weighted {
			g.weightedShuffle(buf, movable)
		} else {
			g.fisherYatesShuffle(buf, movable)
		}
		shuffled := string(buf)
		if shuffled != letters {
			g.targets[shuffled] = TargetRef{ProteinID: up.ProteinID, TargetLetters: letters}
			return shuffled, true
		}
	}
	return "", false
}

// TargetOf looks up the target a previously produced decoy sequence was
// derived from.
func (g *Generator) TargetOf(decoyLetters string) (TargetRef, bool) {
	ref, ok := g.targets[decoyLetters]
	return ref, ok
}

// fisherYatesShuffle permutes the letters at the movable positions of buf
// uniformly at random (Knuth shuffle), mirroring
// original_source/src/util/crux-utils.cpp's shuffle_floats.
func (g *Generator) fisherYatesShuffle(buf []byte, movable []int) {
	for i := len(movable) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		pi, pj := movable[i], movable[j]
		buf[pi], buf[pj] = buf[pj], buf[pi]
	}
}

// weightedShuffle draws a frequency-weighted permutation of the letters at
// the movable positions: each position is filled, in random order, by
// sampling without replacement from the pool of movable letters weighted
// by amino-acid background frequency. This biases away from overweighting
// rare residues at any one position relative to a uniform shuffle, the
// decoy-quality mode selected via config.Config.DecoyWeighted.
func (g *Generator) weightedShuffle(buf []byte, movable []int) {
	pool := make([]byte, len(movable))
	for i, pos := range movable {
		pool[i] = buf[pos]
	}

	order := append([]int(nil), movable...)
	g.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, pos := range order {
		choices := make([]weightedrand.Choice, len(pool))
		for i, letter := range pool {
			w := aminoAcidFrequency[letter]
			if w == 0 {
				w = 1
			}
			choices[i] = weightedrand.Choice{Item: i, Weight: w}
		}
		chooser, err := weightedrand.NewChooser(choices...)
		if err != nil {
			// Every weight was zero (should not happen given the w==0
			// fallback above); fall back to picking the first remaining letter.
			buf[pos] = pool[0]
			pool = pool[1:]
			continue
		}
		idx := chooser.Pick().(int)
		buf[pos] = pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
	}
}
