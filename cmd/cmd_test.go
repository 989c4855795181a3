package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/neuroveil/internal/narrative"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	t.Setenv("NEUROVEIL_DB", "")
	return filepath.Join(t.TempDir(), "neuroveil.db")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "neuroveil")
	assert.Contains(t, out, "story pack v1.1.0")
}

func TestScenesValidate(t *testing.T) {
	out, err := execute(t, "scenes", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "10 scenes OK")
	assert.NotContains(t, out, "warning")
}

func TestScenesShow(t *testing.T) {
	out, err := execute(t, "scenes", "show", "calibration")
	require.NoError(t, err)
	assert.Contains(t, out, "Calibration • Limbic Gate Online")
	assert.Contains(t, out, "1. Start Session (Pomodoro + Knowledge Check) [startSession]")
	assert.Contains(t, out, "3. Visit the memory archive -> archive_gate")
}

func TestScenesShow_Unknown(t *testing.T) {
	_, err := execute(t, "scenes", "show", "nowhere")
	require.Error(t, err)
	assert.ErrorIs(t, err, narrative.ErrUnknownScene)
}

func TestScenesList(t *testing.T) {
	out, err := execute(t, "scenes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "boot")
	assert.Contains(t, out, "10 scenes")
}

func TestResetAndRestore(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "reset", "--db", db, "--restore=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile reset.")

	// The first reset wrote a profile, so the second one has something to back up.
	_, err = execute(t, "reset", "--db", db, "--restore=false")
	require.NoError(t, err)

	out, err = execute(t, "reset", "--db", db, "--restore")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored profile from")
	assert.Contains(t, out, "cli reset")
}

func TestReset_RestoreWithoutSnapshot(t *testing.T) {
	db := tempDB(t)

	_, err := execute(t, "reset", "--db", db, "--restore")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no snapshot")
}

func TestLog(t *testing.T) {
	db := tempDB(t)

	_, err := execute(t, "reset", "--db", db, "--restore=false")
	require.NoError(t, err)

	out, err := execute(t, "log", "--db", db, "--limit", "0", "--severity", "")
	require.NoError(t, err)
	assert.Contains(t, out, "System reset.")
}

func TestLog_Empty(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "log", "--db", db, "--limit", "50", "--severity", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Log is empty.")
}

func TestStats_FreshProfile(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "stats", "--db", db, "--limit", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Stability:  50")
	assert.Contains(t, out, "Last score: —")
	assert.Contains(t, out, "No answers recorded yet.")
	assert.Contains(t, out, "No knowledge checks completed yet.")
}

func TestMigrateVersion(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, "migrate", "version", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: none")

	out, err = execute(t, "migrate", "up", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 2")

	out, err = execute(t, "migrate", "up", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date.")

	out, err = execute(t, "migrate", "down", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 1")
}
