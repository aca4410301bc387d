package enumerate

import (
	"container/heap"

	"github.com/crux-ms/xlink/bondmap"
	"github.com/crux-ms/xlink/candidatedb"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/peptide"
)

// PrelimScorer computes a cheap approximate XCorr for a single-site
// linkable peptide, pretending the unseen partner contributes exactly
// massShift of additional mass attached at that site (spec.md §4.3's
// top-N pre-filter; see the "Top-N correctness caveat" there for why this
// is a deliberate approximation rather than a bug).
type PrelimScorer func(site peptide.FlattenedSite, massShift float64) float64

// scoredSite pairs a flattened linkable site with its preliminary score,
// for the bounded min-heap below.
type scoredSite struct {
	site  peptide.FlattenedSite
	score float64
}

// siteMinHeap is a container/heap min-heap over scoredSite, kept at size
// TopN so the lowest-scoring entry is always evictable in O(log N).
type siteMinHeap []scoredSite

func (h siteMinHeap) Len() int           { return len(h) }
func (h siteMinHeap) Less(i, j int) bool { return h[i].score < h[j].score }
func (h siteMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *siteMinHeap) Push(x interface{}) { *h = append(*h, x.(scoredSite)) }
func (h *siteMinHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopNLinkableSites scans cat's flattened linkable catalogue for entries
// whose peptide mass falls in [lo, hi], scores each with scorer using a
// mass shift of precursorMass-m, and returns the n highest-scoring sites
// (in descending score order), per spec.md §4.3's top-N pre-filter.
func TopNLinkableSites(cat *candidatedb.Catalogues, precursorMass, lo, hi float64, n int, kind mass.Kind, scorer PrelimScorer) []peptide.FlattenedSite {
	if n <= 0 {
		return nil
	}
	begin := cat.FlattenedBegin(lo, kind)
	end := cat.FlattenedEnd(hi, kind)

	h := &siteMinHeap{}
	heap.Init(h)
	for i := begin; i < end; i++ {
		site := cat.FlattenedLinkable[i]
		massShift := precursorMass - site.Mass(kind)
		score := scorer(site, massShift)
		if h.Len() < n {
			heap.Push(h, scoredSite{site, score})
			continue
		}
		if score > (*h)[0].score {
			heap.Pop(h)
			heap.Push(h, scoredSite{site, score})
		}
	}

	out := make([]peptide.FlattenedSite, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(scoredSite).site
	}
	return out
}

// siteKey identifies one (peptide, link-site) pair for top-N membership
// tests.
type siteKey struct {
	p    *peptide.LinkablePeptide
	site int
}

// crossLinksWithTopN restricts CrossLinks' output to pairs where at least
// one side was selected by the top-N preliminary filter in its own
// partner window, per spec.md §4.3: "only form cross-link candidates
// among those N".
func crossLinksWithTopN(cat *candidatedb.Catalogues, windows []Window, bm bondmap.BondMap, opts Options, precursorMass float64, scorer PrelimScorer) []peptide.CrossLink {
	if len(cat.Linkable) == 0 {
		return nil
	}
	mMin := cat.Linkable[0].Mass(opts.MassKind)
	allowed := make(map[siteKey]bool)
	for _, w := range windows {
		hiBound := w.Hi - opts.LinkMass - mMin
		if hiBound < mMin {
			continue
		}
		top := TopNLinkableSites(cat, precursorMass, mMin, hiBound, opts.TopN, opts.MassKind, scorer)
		for _, s := range top {
			allowed[siteKey{s.Peptide, s.Site}] = true
		}
	}

	all := CrossLinks(cat, windows, bm, opts.LinkMass, opts.CrossLink, opts.MassKind)
	out := all[:0:0]
	for _, cl := range all {
		if allowed[siteKey{cl.PeptideA, cl.SiteA}] || allowed[siteKey{cl.PeptideB, cl.SiteB}] {
			out = append(out, cl)
		}
	}
	return out
}
