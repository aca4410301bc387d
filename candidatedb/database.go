package candidatedb

import (
	"sort"

	"golang.org/x/exp/slices"

	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/peptide"
)

// Catalogues holds the five mass-sorted candidate lists for one decoy flag
// (target or decoy), per spec.md §4.2.
type Catalogues struct {
	Linear           []*peptide.Peptide
	MonoLink         []*peptide.Peptide
	SelfLoop         []peptide.SelfLoop
	Linkable         []*peptide.LinkablePeptide
	FlattenedLinkable []peptide.FlattenedSite
}

// Database is the full candidate database: target and decoy catalogues,
// plus the mass kind (monoisotopic/average) used for sorting and range
// queries.
type Database struct {
	Target Catalogues
	Decoy  Catalogues

	MassKind mass.Kind
}

// sortAll sorts every catalogue in c by cached mass (ascending), using
// golang.org/x/exp/slices' generic SortFunc the way candidatedb's spec
// calls for an allocation-light binary-searchable order.
func (c *Catalogues) sortAll(kind mass.Kind) {
	slices.SortFunc(c.Linear, func(a, b *peptide.Peptide) bool { return a.Mass(kind) < b.Mass(kind) })
	slices.SortFunc(c.MonoLink, func(a, b *peptide.Peptide) bool { return a.Mass(kind) < b.Mass(kind) })
	slices.SortFunc(c.SelfLoop, func(a, b peptide.SelfLoop) bool { return a.Mass(kind) < b.Mass(kind) })
	peptide.SortByMass(c.Linkable)
	peptide.SortFlattenedByMass(c.FlattenedLinkable)
}

// Finalize sorts every catalogue and builds the flattened linkable list.
// Called once after construction, per spec.md §4.2 step 5.
func (c *Catalogues) Finalize(kind mass.Kind) {
	c.FlattenedLinkable = peptide.Flatten(c.Linkable)
	c.sortAll(kind)
}

// RangeLinear returns the half-open index range [begin, end) into
// c.Linear whose mass falls within [lo, hi], via binary search (spec.md
// §4.2 "Query contract").
func (c Catalogues) RangeLinear(lo, hi float64, kind mass.Kind) (begin, end int) {
	return massRange(len(c.Linear), lo, hi, func(i int) float64 { return c.Linear[i].Mass(kind) })
}

// RangeMonoLink returns the half-open index range into c.MonoLink.
func (c Catalogues) RangeMonoLink(lo, hi float64, kind mass.Kind) (begin, end int) {
	return massRange(len(c.MonoLink), lo, hi, func(i int) float64 { return c.MonoLink[i].Mass(kind) })
}

// RangeSelfLoop returns the half-open index range into c.SelfLoop.
func (c Catalogues) RangeSelfLoop(lo, hi float64, kind mass.Kind) (begin, end int) {
	return massRange(len(c.SelfLoop), lo, hi, func(i int) float64 { return c.SelfLoop[i].Mass(kind) })
}

// XLinkableBegin returns the first index in c.Linkable whose mass is >= lo
// (spec.md §4.2 "getXLinkableBegin(lo)").
func (c Catalogues) XLinkableBegin(lo float64, kind mass.Kind) int {
	return sort.Search(len(c.Linkable), func(i int) bool {
		return c.Linkable[i].Mass(kind) >= lo
	})
}

// XLinkableEnd returns the first index in c.Linkable whose mass is > hi
// (spec.md §4.2 "getXLinkableEnd(hi)").
func (c Catalogues) XLinkableEnd(hi float64, kind mass.Kind) int {
	return sort.Search(len(c.Linkable), func(i int) bool {
		return c.Linkable[i].Mass(kind) > hi
	})
}

// FlattenedBegin/FlattenedEnd are the flattened-linkable-list analogues of
// XLinkableBegin/XLinkableEnd, used by the top-N pre-filter.
func (c Catalogues) FlattenedBegin(lo float64, kind mass.Kind) int {
	return sort.Search(len(c.FlattenedLinkable), func(i int) bool {
		return c.FlattenedLinkable[i].Mass(kind) >= lo
	})
}

func (c Catalogues) FlattenedEnd(hi float64, kind mass.Kind) int {
	return sort.Search(len(c.FlattenedLinkable), func(i int) bool {
		return c.FlattenedLinkable[i].Mass(kind) > hi
	})
}

// massRange is the shared binary-search helper behind the Range* methods.
func massRange(n int, lo, hi float64, at func(int) float64) (begin, end int) {
	begin = sort.Search(n, func(i int) bool { return at(i) >= lo })
	end = sort.Search(n, func(i int) bool { return at(i) > hi })
	return begin, end
}

// ForDecoy returns the catalogues for the given decoy flag.
func (db *Database) ForDecoy(isDecoy bool) *Catalogues {
	if isDecoy {
		return &db.Decoy
	}
	return &db.Target
}

// CheckSorted verifies the sort invariant of spec.md §8 ("For every
// mass-sorted list in the database, adjacent elements satisfy mass[i] <=
// mass[i+1]") — used by tests and by an optional startup self-check.
func (c Catalogues) CheckSorted(kind mass.Kind) bool {
	sortedPeptides := func(list []*peptide.Peptide) bool {
		for i := 1; i < len(list); i++ {
			if list[i-1].Mass(kind) > list[i].Mass(kind) {
				return false
			}
		}
		return true
	}
	if !sortedPeptides(c.Linear) || !sortedPeptides(c.MonoLink) {
		return false
	}
	for i := 1; i < len(c.SelfLoop); i++ {
		if c.SelfLoop[i-1].Mass(kind) > c.SelfLoop[i].Mass(kind) {
			return false
		}
	}
	for i := 1; i < len(c.Linkable); i++ {
		if c.Linkable[i-1].Mass(kind) > c.Linkable[i].Mass(kind) {
			return false
		}
	}
	for i := 1; i < len(c.FlattenedLinkable); i++ {
		if c.FlattenedLinkable[i-1].Mass(kind) > c.FlattenedLinkable[i].Mass(kind) {
			return false
		}
	}
	return true
}
