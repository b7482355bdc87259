package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"aurdist/internal/ports"
	"aurdist/internal/shared"
	"aurdist/internal/types"
)

// RsyncAdapter mirrors the artifact directory to a remote destination over
// the rsync/ssh transport.
type RsyncAdapter struct {
	Runner ports.CommandRunnerPort
}

func NewRsyncAdapter(runner ports.CommandRunnerPort) RsyncAdapter {
	return RsyncAdapter{Runner: runner}
}

// sshCommand assembles the -e transport argument from the configured
// options. Options left unset are omitted so ssh falls back to its own
// defaults; the port defaults to 22.
func sshCommand(opts types.SyncOptions) string {
	parts := []string{"ssh"}
	port := opts.Port
	if port == 0 {
		port = 22
	}
	parts = append(parts, "-p", fmt.Sprintf("%d", port))
	if opts.User != "" {
		parts = append(parts, "-l", opts.User)
	}
	if opts.StrictHostKeyCheck != "" {
		parts = append(parts, "-o", "StrictHostKeyChecking="+opts.StrictHostKeyCheck)
	}
	if opts.ConnectTimeoutSec > 0 {
		parts = append(parts, "-o", fmt.Sprintf("ConnectTimeout=%d", opts.ConnectTimeoutSec))
	}
	if opts.ServerAliveInterval > 0 {
		parts = append(parts, "-o", fmt.Sprintf("ServerAliveInterval=%d", opts.ServerAliveInterval))
	}
	return strings.Join(parts, " ")
}

func (a RsyncAdapter) Sync(ctx context.Context, localDir string, remoteSpec string, opts types.SyncOptions) error {
	if strings.TrimSpace(remoteSpec) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("remote spec is empty")
	}
	args := []string{"-avc", "-e", sshCommand(opts), localDir + "/", remoteSpec}
	if _, err := a.Runner.Run(ctx, "", "rsync", args...); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("sync to " + remoteSpec + " failed").
			WithCause(err)
	}
	log.Ctx(ctx).Info().Str("remote", remoteSpec).Msg("packages synced")
	return nil
}

// ListRemote names the artifacts already published at remoteSpec. The
// listing runs captured even when builds stream, since the output is parsed.
func (a RsyncAdapter) ListRemote(ctx context.Context, remoteSpec string, opts types.SyncOptions) ([]string, error) {
	if strings.TrimSpace(remoteSpec) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("remote spec is empty")
	}
	runner := NewCommandRunnerAdapter(false)
	output, err := runner.Run(ctx, "", "rsync", "--list-only", "-e", sshCommand(opts), remoteSpec+"/")
	if err != nil {
		return nil, err
	}
	return parseRsyncListing(output), nil
}

// parseRsyncListing extracts artifact filenames from `rsync --list-only`
// output: permissions, size, date, time, then the name.
func parseRsyncListing(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		name := fields[len(fields)-1]
		if strings.HasSuffix(name, shared.ArtifactSuffix) {
			names = append(names, name)
		}
	}
	return names
}

var _ ports.SyncPort = RsyncAdapter{}
