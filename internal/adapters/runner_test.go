package adapters

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunnerCapturesOutput(t *testing.T) {
	runner := NewCommandRunnerAdapter(false)
	output, err := runner.Run(t.Context(), "", "echo", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", strings.TrimSpace(output))
}

func TestRunnerHonorsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	runner := NewCommandRunnerAdapter(false)
	output, err := runner.Run(t.Context(), dir, "pwd")
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(output))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestRunnerFailureWrapsOutput(t *testing.T) {
	runner := NewCommandRunnerAdapter(false)
	_, err := runner.Run(t.Context(), "", "sh", "-c", "echo doomed >&2; exit 3")
	require.Error(t, err)
	require.Contains(t, err.Error(), "command failed")
}
