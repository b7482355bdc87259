package adapters

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"aurdist/internal/ports"
	"aurdist/internal/shared"
)

// MakepkgAdapter invokes the external build tool in a fetched working
// directory. Builds have no timeout; they block until the tool exits.
type MakepkgAdapter struct {
	Runner ports.CommandRunnerPort
}

func NewMakepkgAdapter(runner ports.CommandRunnerPort) MakepkgAdapter {
	return MakepkgAdapter{Runner: runner}
}

// Build runs a force build with dependency syncing and returns the artifact
// paths the tool produced in dir.
func (a MakepkgAdapter) Build(ctx context.Context, dir string) ([]string, error) {
	if _, err := a.Runner.Run(ctx, dir, "makepkg", "-sf", "--noconfirm"); err != nil {
		return nil, err
	}
	artifacts, err := filepath.Glob(filepath.Join(dir, "*"+shared.ArtifactSuffix))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list build artifacts").
			WithCause(err)
	}
	if len(artifacts) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("build produced no artifacts in " + dir)
	}
	sort.Strings(artifacts)
	return artifacts, nil
}

// BuildAndInstall builds and installs in one step, as used for third-party
// dependencies pulled in during resolution.
func (a MakepkgAdapter) BuildAndInstall(ctx context.Context, dir string) error {
	_, err := a.Runner.Run(ctx, dir, "makepkg", "-si", "--noconfirm")
	return err
}

var _ ports.BuildToolPort = MakepkgAdapter{}
