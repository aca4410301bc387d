package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crux-ms/xlink/config"
	"github.com/stretchr/testify/assert"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, "link-sites: \"K:K\"\nenzyme: trypsin\n")
	cfg, err := config.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxIonCharge)
	assert.True(t, cfg.UseBIons)
	assert.True(t, cfg.UseYIons)
}

func TestLoadRejectsBadBondMap(t *testing.T) {
	path := writeTemp(t, "link-sites: \"K-K\"\n")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownEnzyme(t *testing.T) {
	path := writeTemp(t, "enzyme: made-up-enzyme\n")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestModTableOrdersMonoLinkFirst(t *testing.T) {
	cfg := config.Default()
	cfg.MonoLink = []config.ModificationSpec{
		{Symbol: "m", MassDelta: 156.0786, Residues: "K", MaxPerPeptide: 1},
	}
	cfg.VariableMods = []config.ModificationSpec{
		{Symbol: "*", MassDelta: 15.9949, Residues: "M", MaxPerPeptide: 3},
	}
	table, err := cfg.ModTable()
	assert.NoError(t, err)
	assert.Len(t, table.Mods, 2)
	assert.True(t, table.Mods[0].IsMonoLink)
	assert.False(t, table.Mods[1].IsMonoLink)
}

func TestMaxXLinkModsZeroIsValid(t *testing.T) {
	cfg := config.Default()
	cfg.MaxXLinkMods = 0
	assert.NoError(t, cfg.Validate())
}
