package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/SARSIM/internal/search"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10000, cfg.Simulation.Trials)
	assert.Equal(t, 10000, cfg.Simulation.MaxRounds)
	assert.Equal(t, 256, cfg.Sessions.MaxActive)
	require.NotNil(t, cfg.Scenario)
	assert.Equal(t, search.CapePython(), cfg.Scenario.Specs())
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: two-bays
regions:
  - upper_left: {x: 0, y: 0}
    height: 10
    width: 20
    prior: 0.6
  - upper_left: {x: 30, y: 0}
    height: 5
    width: 5
    prior: 0.4
`), 0o644))

	t.Setenv("SIM_TRIALS", "250")
	t.Setenv("SIM_SEED", "77")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SIM_SCENARIO_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Simulation.Trials)
	assert.Equal(t, uint64(77), cfg.Simulation.Seed)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "two-bays", cfg.Scenario.Name)

	specs := cfg.Scenario.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, search.Coord{X: 30, Y: 0}, specs[1].UpperLeft)
	assert.Equal(t, 20, specs[0].Width)
	assert.Equal(t, 0.4, specs[1].Prior)
}

func TestLoadMissingScenarioFile(t *testing.T) {
	t.Setenv("SIM_SCENARIO_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "no regions", doc: "name: empty\nregions: []\n"},
		{name: "no name", doc: "regions:\n  - {height: 1, width: 1, prior: 0.5}\n"},
		{name: "zero height", doc: "name: x\nregions:\n  - {height: 0, width: 1, prior: 0.5}\n"},
		{name: "prior above one", doc: "name: x\nregions:\n  - {height: 1, width: 1, prior: 1.2}\n"},
		{name: "negative prior", doc: "name: x\nregions:\n  - {height: 1, width: 1, prior: -0.2}\n"},
		{name: "bad yaml", doc: "name: [unterminated\n"},
		{name: "area overflows int", doc: "name: x\nregions:\n  - {height: 4294967296, width: 4294967296, prior: 0.5}\n"},
		{name: "area above cap", doc: "name: x\nregions:\n  - {height: 5000, width: 5000, prior: 0.5}\n"},
		{name: "all priors zero", doc: "name: x\nregions:\n  - {height: 2, width: 2, prior: 0}\n  - {height: 2, width: 2, prior: 0}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := ParseScenario([]byte(tt.doc))
			assert.Error(t, err)
			assert.Nil(t, sc)
		})
	}
}

func TestDefaultScenarioValid(t *testing.T) {
	sc := DefaultScenario()
	require.NoError(t, sc.Validate())
	assert.Len(t, sc.Regions, 3)
}
