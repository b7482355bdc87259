package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{"build", "update", "check", "index", "sync", "rollback"}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestPersistentPreRunAttachesContextLogger(t *testing.T) {
	root := newRootCommand()
	root.SetContext(context.Background())
	require.NoError(t, root.PersistentPreRunE(root, nil))

	// Without the attachment, zerolog.Ctx resolves to the disabled logger
	// and every log.Ctx call down the stack is a no-op.
	logger := zerolog.Ctx(root.Context())
	assert.NotEqual(t, zerolog.Disabled, logger.GetLevel())
}

func TestRootCommandPersistentFlags(t *testing.T) {
	root := newRootCommand()
	flags := []string{
		"config", "log-level", "output", "db-name", "arch",
		"registry-url", "source-url", "targets-file", "remote-marker",
		"ledger-file", "check-remote", "stream-output", "keep-installed",
	}
	for _, name := range flags {
		flag := root.PersistentFlags().Lookup(name)
		assert.NotNil(t, flag, "missing flag: %s", name)
	}
}

func TestBuildCommandFlags(t *testing.T) {
	cmd := newBuildCommand()
	assert.NotNil(t, cmd.Flags().Lookup("force"))
	assert.NotNil(t, cmd.Flags().Lookup("docker"))
	assert.NotNil(t, cmd.Flags().ShorthandLookup("f"))
}

func TestBuildCommandRequiresArgs(t *testing.T) {
	cmd := newBuildCommand()
	require.Error(t, cmd.Args(cmd, nil))
	require.NoError(t, cmd.Args(cmd, []string{"yay"}))
}

func TestUpdateCommandFlags(t *testing.T) {
	cmd := newUpdateCommand()
	assert.NotNil(t, cmd.Flags().Lookup("force"))
	assert.NotNil(t, cmd.Flags().Lookup("docker"))
	require.Error(t, cmd.Args(cmd, []string{"unexpected"}))
}

func TestRollbackCommandFlags(t *testing.T) {
	cmd := newRollbackCommand()
	assert.NotNil(t, cmd.Flags().Lookup("yes"))
	assert.NotNil(t, cmd.Flags().ShorthandLookup("y"))
}

// ---------- Helper function tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "failed precondition",
			err:      errbuilder.New().WithCode(errbuilder.CodeFailedPrecondition).WithMsg("remote marker missing"),
			expected: 3,
		},
		{
			name:     "not found",
			err:      errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("no such package"),
			expected: 5,
		},
		{
			name:     "usage error",
			err:      errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg("no packages given"),
			expected: 1,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCodeForError(tt.err))
		})
	}
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "", joinNames(nil))
	assert.Equal(t, "yay", joinNames([]string{"yay"}))
	assert.Equal(t, "yay, paru", joinNames([]string{"yay", "paru"}))
}
