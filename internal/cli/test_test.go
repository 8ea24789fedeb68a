package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: cli-suppress
description: a scoped panic stays silent
steps:
  - op: acquire
  - op: panic
    value: "quiet"
    expect: silent
  - op: release
assertions:
  - type: suppressed_count
    count: 1
  - type: emitted_count
    count: 0
`

const failingScenario = `name: cli-wrong-expect
description: expects a scoped panic to print, which it will not
steps:
  - op: acquire
  - op: panic
    value: "quiet"
    expect: printed
  - op: release
`

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestTestCommand_AllPass(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "suppress.yaml", passingScenario)

	_, stderr, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "PASS  cli-suppress")
	assert.Contains(t, stderr, "1 scenarios: 1 passed, 0 failed")
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	_, stderr, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailures, GetExitCode(err))
	assert.Contains(t, stderr, "FAIL  cli-wrong-expect")
}

func TestTestCommand_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "suppress.yaml", passingScenario)

	stdout, _, err := execute(t, "--format", "json", "test", dir)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TestSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "cli-suppress", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[0].RunID)
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "suppress.yaml", passingScenario)
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	_, stderr, err := execute(t, "test", dir, "--filter", "suppress*")
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 scenarios: 1 passed, 0 failed")
}

func TestTestCommand_JournalFlag(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "suppress.yaml", passingScenario)
	dbPath := filepath.Join(t.TempDir(), "decisions.db")

	_, _, err := execute(t, "test", dir, "--journal", dbPath)
	require.NoError(t, err)

	// The journal should now be inspectable with the trace command.
	_, stderr, err := execute(t, "trace", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "suppressed")
	assert.Contains(t, stderr, "quiet")
}

func TestTestCommand_EmptyDir(t *testing.T) {
	_, _, err := execute(t, "test", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no scenarios found")
}

func TestTestCommand_InvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\nsteps: []\n")

	_, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitError, GetExitCode(err))
}

func TestCollectScenarios(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "b.yaml", passingScenario)
	writeScenario(t, dir, "a.yml", passingScenario)
	writeScenario(t, dir, "notes.txt", "not a scenario")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	paths, err := collectScenarios(dir, "")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "a.yml"), paths[0])
	assert.Equal(t, filepath.Join(dir, "b.yaml"), paths[1])

	filtered, err := collectScenarios(dir, "b.*")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, filepath.Join(dir, "b.yaml"), filtered[0])

	_, err = collectScenarios(dir, "[")
	require.Error(t, err)
}
