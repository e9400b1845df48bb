package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowline/internal/store"
)

func TestJournal_RunThenInspect(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "journal.db")

	_, _, err := executeCommand(t, "--journal", db, "run", "../../testdata/scenarios/delete_middle_step.yaml")
	require.NoError(t, err)

	out, _, err := executeCommand(t, "journal", "list", db)
	require.NoError(t, err)
	assert.Contains(t, out, "delete_middle_step")
	assert.Contains(t, out, "4 gesture(s)")

	out, _, err = executeCommand(t, "journal", "show", db, "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "insert(edge-start-end)")
	assert.Contains(t, out, "edit(node-0)")
	assert.Contains(t, out, "delete")

	out, _, err = executeCommand(t, "journal", "replay", db, "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "4 gesture(s) replayed identically")
}

func TestJournal_ListJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	scenario := writeFile(t, t.TempDir(), "insert_once.yaml", passingScenario)

	for i := 0; i < 2; i++ {
		_, _, err := executeCommand(t, "--journal", db, "run", scenario)
		require.NoError(t, err)
	}

	out, _, err := executeCommand(t, "--format", "json", "journal", "list", db)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   []store.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "insert_once", resp.Data[0].Name)
	assert.Equal(t, 1, resp.Data[1].Entries)
}

func TestJournal_ShellSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")

	runShellInput(t, "insert 1\nedit node-0\nsubmit Review\nedit node-0\ndelete\nn\ncancel\nquit\n", "--journal", db)

	out, _, err := executeCommand(t, "--format", "json", "journal", "show", db, "latest")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Session store.Session `json:"session"`
			Entries []store.Entry `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "shell", resp.Data.Session.Name)
	// The declined delete is not journaled.
	require.Len(t, resp.Data.Entries, 5)
	assert.Equal(t, "Review", resp.Data.Entries[2].Label)

	_, _, err = executeCommand(t, "journal", "replay", db, resp.Data.Session.ID)
	require.NoError(t, err)
}

func TestJournal_ReplayMismatch(t *testing.T) {
	db := filepath.Join(t.TempDir(), "journal.db")
	_, _, err := executeCommand(t, "--journal", db, "run", "../../testdata/scenarios/insert_on_start_end.yaml")
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE entries SET frame_seq = 7`)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := executeCommand(t, "journal", "replay", db, "latest")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "frame_seq: want 7, got 1")
}

func TestJournal_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCommand(t, "journal", "list", filepath.Join(dir, "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	db := filepath.Join(dir, "journal.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := executeCommand(t, "journal", "list", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions.")

	_, _, err = executeCommand(t, "journal", "show", db, "latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sessions")

	_, _, err = executeCommand(t, "journal", "replay", db, "0192d6a0-0000-7000-8000-000000000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}
