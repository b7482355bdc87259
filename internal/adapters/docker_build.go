package adapters

import (
	"context"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"aurdist/internal/ports"
)

const builderImage = "aur-builder"

// DockerBuildAdapter builds a package inside a container image that carries
// the full build environment, bind-mounting the artifact directory. The
// container entrypoint resolves dependencies itself, so this path bypasses
// the host-side resolver entirely.
type DockerBuildAdapter struct {
	ContextDir string
	OutputDir  string
	Runner     ports.CommandRunnerPort
}

func NewDockerBuildAdapter(contextDir string, outputDir string, runner ports.CommandRunnerPort) DockerBuildAdapter {
	return DockerBuildAdapter{ContextDir: contextDir, OutputDir: outputDir, Runner: runner}
}

func (a DockerBuildAdapter) BuildPackage(ctx context.Context, name string) error {
	if _, err := a.Runner.Run(ctx, a.ContextDir, "docker", "build", "-t", builderImage, "."); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to build the builder image").
			WithCause(err)
	}
	absOutput, err := filepath.Abs(a.OutputDir)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to resolve output directory").
			WithCause(err)
	}
	log.Ctx(ctx).Info().Str("package", name).Msg("building in container")
	if _, err := a.Runner.Run(ctx, a.ContextDir, "docker", "run", "--rm",
		"-v", absOutput+":/packages", builderImage, name); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("container build failed for " + name).
			WithCause(err)
	}
	return nil
}

var _ ports.ContainerBuildPort = DockerBuildAdapter{}
