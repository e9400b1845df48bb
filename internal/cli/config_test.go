package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowline/internal/config"
)

func TestConfigCommandDefaults(t *testing.T) {
	out, _, err := executeCommand(t, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "layout.x                250")
	assert.Contains(t, out, `default_label           "Action Node"`)
	assert.Contains(t, out, "ids.strategy            sequential")
}

func TestConfigCommandJSON(t *testing.T) {
	out, _, err := executeCommand(t, "--format", "json", "--config", "../../testdata/configs/compact.cue", "config")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   config.Config `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(100), resp.Data.Layout.X)
	assert.Equal(t, "Task", resp.Data.DefaultLabel)
	assert.Equal(t, "task-", resp.Data.IDs.Prefix)
	assert.Equal(t, config.StrategySequential, resp.Data.IDs.Strategy)
}

func TestConfigCommandFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "../../testdata/configs/compact.cue")

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `ids.prefix              "task-"`)
}
