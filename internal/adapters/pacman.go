package adapters

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"aurdist/internal/ports"
)

// PacmanAdapter drives the system package manager. Install and uninstall run
// through sudo; queries run unprivileged with exit status interpreted as a
// boolean, never as an error.
type PacmanAdapter struct {
	Runner ports.CommandRunnerPort
}

func NewPacmanAdapter(runner ports.CommandRunnerPort) PacmanAdapter {
	return PacmanAdapter{Runner: runner}
}

func (a PacmanAdapter) HasPackage(ctx context.Context, name string) bool {
	// Captured query regardless of the configured runner mode: the output is
	// parsed, not shown.
	output, err := NewCommandRunnerAdapter(false).Run(ctx, "", "pacman", "-Si", name)
	if err != nil {
		return false
	}
	return strings.Contains(output, "Repository")
}

func (a PacmanAdapter) IsInstalled(ctx context.Context, name string) bool {
	_, err := NewCommandRunnerAdapter(false).Run(ctx, "", "pacman", "-Q", name)
	return err == nil
}

func (a PacmanAdapter) InstallBatch(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	args := append([]string{"pacman", "-S", "--noconfirm"}, names...)
	if _, err := a.Runner.Run(ctx, "", "sudo", args...); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("system install failed: " + strings.Join(names, " ")).
			WithCause(err)
	}
	log.Ctx(ctx).Info().Strs("packages", names).Msg("installed from system repos")
	return nil
}

func (a PacmanAdapter) UninstallBatch(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	args := append([]string{"pacman", "-Rns", "--noconfirm"}, names...)
	if _, err := a.Runner.Run(ctx, "", "sudo", args...); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("system uninstall failed: " + strings.Join(names, " ")).
			WithCause(err)
	}
	return nil
}

var _ ports.SystemPackagePort = PacmanAdapter{}
