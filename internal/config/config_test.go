package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowline/internal/projector"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, projector.DefaultLayout(), cfg.Layout)
	assert.Equal(t, "Action Node", cfg.DefaultLabel)
	assert.Equal(t, StrategySequential, cfg.IDs.Strategy)
	assert.Equal(t, "node-", cfg.IDs.Prefix)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestParse_PartialOverride(t *testing.T) {
	src := `
layout: vertical_spacing: 80
default_label: "New step"
ids: strategy: "uuid"
`
	cfg, err := Parse([]byte(src), "flowline.cue")
	require.NoError(t, err)

	assert.Equal(t, projector.Layout{X: 250, TopMargin: 50, VerticalSpacing: 80}, cfg.Layout)
	assert.Equal(t, "New step", cfg.DefaultLabel)
	assert.Equal(t, StrategyUUID, cfg.IDs.Strategy)
	assert.Equal(t, "node-", cfg.IDs.Prefix)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", `colour: "red"`},
		{"zero spacing", `layout: vertical_spacing: 0`},
		{"negative margin", `layout: top_margin: -1`},
		{"empty label", `default_label: ""`},
		{"blank label", `default_label: "   "`},
		{"unknown strategy", `ids: strategy: "random"`},
		{"bad level", `log: level: "verbose"`},
		{"syntax error", `layout: {`},
		{"wrong type", `layout: x: "left"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.cue")
			require.Error(t, err)
			var le *LoadError
			assert.ErrorAs(t, err, &le)
		})
	}
}

func TestLoad_FileAndPositions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flowline.cue")
	require.NoError(t, os.WriteFile(path, []byte("layout: x: 400\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(400), cfg.Layout.X)

	_, err = Load(filepath.Join(dir, "missing.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.cue")
	require.NoError(t, os.WriteFile(path, []byte(`default_label: "From env"`), 0644))

	t.Setenv(EnvConfigPath, "")
	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "Action Node", cfg.DefaultLabel)

	t.Setenv(EnvConfigPath, path)
	cfg, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "From env", cfg.DefaultLabel)

	flagPath := filepath.Join(dir, "flag.cue")
	require.NoError(t, os.WriteFile(flagPath, []byte(`default_label: "From flag"`), 0644))
	cfg, err = Resolve(flagPath)
	require.NoError(t, err)
	assert.Equal(t, "From flag", cfg.DefaultLabel)
}
