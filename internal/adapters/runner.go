package adapters

import (
	"context"
	"os"
	"os/exec"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"aurdist/internal/ports"
	"aurdist/internal/shared"
)

// CommandRunnerAdapter executes external commands as blocking calls. With
// Stream set, child stdio is wired straight to the terminal and the returned
// output is empty; otherwise combined output is captured for parsing.
type CommandRunnerAdapter struct {
	Stream bool
}

func NewCommandRunnerAdapter(stream bool) CommandRunnerAdapter {
	return CommandRunnerAdapter{Stream: stream}
}

func (r CommandRunnerAdapter) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	log.Ctx(ctx).Debug().Str("dir", dir).Str("cmd", shared.CommandLine(name, args...)).Msg("running command")
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	if r.Stream {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("command failed: " + shared.CommandLine(name, args...)).
				WithCause(err)
		}
		return "", nil
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("command failed: " + shared.CommandLine(name, args...)).
			WithCause(shared.CommandError(output, err))
	}
	return string(output), nil
}

var _ ports.CommandRunnerPort = CommandRunnerAdapter{}
