package enumerate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crux-ms/xlink/bondmap"
	"github.com/crux-ms/xlink/candidatedb"
	"github.com/crux-ms/xlink/digest"
	"github.com/crux-ms/xlink/enumerate"
	"github.com/crux-ms/xlink/io/fastasource"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/peptide"
	"github.com/crux-ms/xlink/residue"
)

func buildDB(t *testing.T, proteins []fastasource.Protein, opts candidatedb.Options) (*candidatedb.Database, bondmap.BondMap) {
	t.Helper()
	src := fastasource.New(proteins, digest.Trypsin, digest.FullySpecific, 0, 4, 30)
	bm, err := bondmap.Parse("K:K")
	assert.NoError(t, err)
	db, err := candidatedb.Build(src, bm, residue.Table{}, opts)
	assert.NoError(t, err)
	return db, bm
}

func TestComputeWindowsMassType(t *testing.T) {
	windows := enumerate.ComputeWindows(1000, []int{0, 1}, "mass", 2, 2)
	assert.Len(t, windows, 2)
	assert.InDelta(t, 998, windows[0].Lo, 1e-9)
	assert.InDelta(t, 1002, windows[0].Hi, 1e-9)
}

func TestComputeWindowsPPMType(t *testing.T) {
	windows := enumerate.ComputeWindows(1000000, []int{0}, "ppm", 10, 2)
	assert.InDelta(t, 999990, windows[0].Lo, 1e-6)
	assert.InDelta(t, 1000010, windows[0].Hi, 1e-6)
}

func TestLinearsRangeQueryFindsCandidateAtExactMass(t *testing.T) {
	proteins := []fastasource.Protein{{ID: "P1", Sequence: "MKAKPEPTIDEKMSEQVENCEK"}}
	db, _ := buildDB(t, proteins, candidatedb.Options{MassKind: mass.Monoisotopic, IncludeLinears: true})
	if len(db.Target.Linear) == 0 {
		t.Skip("no linear candidates generated for this fixture")
	}
	m := db.Target.Linear[0].Mass(mass.Monoisotopic)
	windows := []enumerate.Window{{Lo: m - 0.01, Hi: m + 0.01}}
	cands := enumerate.Linears(&db.Target, windows, mass.Monoisotopic)
	assert.NotEmpty(t, cands)
	for _, c := range cands {
		assert.Equal(t, peptide.KindLinear, c.Type())
	}
}

func TestCrossLinksRespectsInterIntraToggle(t *testing.T) {
	proteins := []fastasource.Protein{
		{ID: "P1", Sequence: "MKAKDEK"},
		{ID: "P2", Sequence: "MKAKDEK"},
	}
	db, bm := buildDB(t, proteins, candidatedb.Options{
		MassKind:     mass.Monoisotopic,
		IncludeIntra: true,
		LinkMass:     138.0681,
	})
	if len(db.Target.Linkable) < 2 {
		t.Skip("not enough linkable peptides generated for this fixture")
	}
	windows := enumerate.ComputeWindows(db.Target.Linkable[0].Mass(mass.Monoisotopic)*2+138.0681, []int{0}, "mass", 5, 2)
	opts := enumerate.CrossLinkOptions{IncludeIntra: true}
	crossLinks := enumerate.CrossLinks(&db.Target, windows, bm, 138.0681, opts, mass.Monoisotopic)
	for _, cl := range crossLinks {
		assert.Equal(t, peptide.KindCrossLinkIntra, cl.Type())
	}

	optsInterOnly := enumerate.CrossLinkOptions{IncludeInter: true}
	noneAllowed := enumerate.CrossLinks(&db.Target, windows, bm, 138.0681, optsInterOnly, mass.Monoisotopic)
	assert.Empty(t, noneAllowed)
}

func TestTopNLinkableSitesReturnsAtMostN(t *testing.T) {
	proteins := []fastasource.Protein{{ID: "P1", Sequence: "MKAKDEKMSEQVENCEKAKDEK"}}
	db, _ := buildDB(t, proteins, candidatedb.Options{MassKind: mass.Monoisotopic, IncludeIntra: true})
	if len(db.Target.FlattenedLinkable) == 0 {
		t.Skip("no flattened linkable sites generated for this fixture")
	}
	scorer := func(site peptide.FlattenedSite, massShift float64) float64 { return massShift }
	top := enumerate.TopNLinkableSites(&db.Target, 1000, 0, 1e9, 1, mass.Monoisotopic, scorer)
	assert.LessOrEqual(t, len(top), 1)
}
