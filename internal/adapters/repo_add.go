package adapters

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"aurdist/internal/ports"
	"aurdist/internal/shared"
)

// RepoAddAdapter rebuilds the repository database from the artifacts present
// in the output directory.
type RepoAddAdapter struct {
	DBName string
	Runner ports.CommandRunnerPort
}

func NewRepoAddAdapter(dbName string, runner ports.CommandRunnerPort) RepoAddAdapter {
	return RepoAddAdapter{DBName: dbName, Runner: runner}
}

func (a RepoAddAdapter) RebuildIndex(ctx context.Context, artifactDir string) error {
	artifacts, err := filepath.Glob(filepath.Join(artifactDir, "*"+shared.ArtifactSuffix))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list artifacts").
			WithCause(err)
	}
	if len(artifacts) == 0 {
		log.Ctx(ctx).Warn().Str("dir", artifactDir).Msg("no artifacts found, skipping index rebuild")
		return nil
	}
	sort.Strings(artifacts)
	args := []string{"-n", a.DBName}
	for _, artifact := range artifacts {
		args = append(args, filepath.Base(artifact))
	}
	if _, err := a.Runner.Run(ctx, artifactDir, "repo-add", args...); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to rebuild repository index").
			WithCause(err)
	}
	log.Ctx(ctx).Info().Int("artifacts", len(artifacts)).Msg("repository index rebuilt")
	return nil
}

var _ ports.RepoIndexPort = RepoAddAdapter{}
