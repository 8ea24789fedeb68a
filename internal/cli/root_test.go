package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and captured output.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "trace", "nowhere.db")
	require.Error(t, err)
	assert.Equal(t, ExitError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "test")
	assert.Contains(t, stdout, "trace")
	assert.Contains(t, stdout, "crash")
}

func TestRootCommand_UnknownSubcommand(t *testing.T) {
	_, _, err := execute(t, "bogus")
	require.Error(t, err)
	assert.Equal(t, ExitError, GetExitCode(err))
}

func TestValidFormat(t *testing.T) {
	assert.True(t, validFormat("text"))
	assert.True(t, validFormat("json"))
	assert.False(t, validFormat("yaml"))
	assert.False(t, validFormat(""))
}
