package decoy_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crux-ms/xlink/bondmap"
	"github.com/crux-ms/xlink/candidatedb"
	"github.com/crux-ms/xlink/decoy"
	"github.com/crux-ms/xlink/digest"
	"github.com/crux-ms/xlink/enumerate"
	"github.com/crux-ms/xlink/io/fastasource"
	"github.com/crux-ms/xlink/mass"
	"github.com/crux-ms/xlink/peptide"
	"github.com/crux-ms/xlink/residue"
)

func buildMixedDatabase(t *testing.T) (*candidatedb.Database, bondmap.BondMap) {
	t.Helper()
	proteins := []fastasource.Protein{
		{ID: "P1", Sequence: "MKAKDEK"},
		{ID: "P2", Sequence: "MKAKDEK"},
	}
	src := fastasource.New(proteins, digest.Trypsin, digest.FullySpecific, 0, 4, 30)
	bm, err := bondmap.Parse("K:K")
	assert.NoError(t, err)

	gen := decoy.NewGenerator(rand.NewSource(7), "K", false)
	opts := candidatedb.Options{
		MassKind:     mass.Monoisotopic,
		IncludeIntra: true,
		LinkMass:     138.0681,
		Decoys:       gen,
	}
	db, err := candidatedb.Build(src, bm, residue.Table{}, opts)
	assert.NoError(t, err)
	return db, bm
}

func TestMixedCrossLinksReturnsOnlyMixedQuadrant(t *testing.T) {
	db, bm := buildMixedDatabase(t)
	if len(db.Target.Linkable) == 0 || len(db.Decoy.Linkable) == 0 {
		t.Skip("not enough linkable peptides generated for this fixture")
	}

	totalMass := db.Target.Linkable[0].Mass(mass.Monoisotopic) + db.Decoy.Linkable[0].Mass(mass.Monoisotopic) + 138.0681
	windows := enumerate.ComputeWindows(totalMass, []int{0}, "mass", 50, 2)
	opts := enumerate.CrossLinkOptions{IncludeIntra: true, IncludeInter: true, IncludeInterIntra: true}

	targetDecoy := decoy.MixedCrossLinks(&db.Target, &db.Decoy, windows, bm, 138.0681, opts, mass.Monoisotopic)
	for _, cl := range targetDecoy {
		assert.Equal(t, peptide.QuadrantTargetDecoy, cl.ClassifyQuadrant())
	}

	decoyTarget := decoy.MixedCrossLinks(&db.Decoy, &db.Target, windows, bm, 138.0681, opts, mass.Monoisotopic)
	for _, cl := range decoyTarget {
		assert.Equal(t, peptide.QuadrantDecoyTarget, cl.ClassifyQuadrant())
	}
}
