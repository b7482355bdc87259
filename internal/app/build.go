package app

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"aurdist/internal/core"
	"aurdist/internal/types"
)

type BuildRequest struct {
	Packages []string
	Force    bool
	Docker   bool
}

type BuildResult struct {
	Built   []string
	Skipped []string
	Failed  []string
}

// BuildPackages builds the named packages sequentially. Up-to-date packages
// are skipped unless forced; one package's failure does not stop the rest.
// After the loop the repository index is rebuilt and the artifacts are
// synced whenever anything was built.
func (s *Service) BuildPackages(ctx context.Context, req BuildRequest) (BuildResult, error) {
	if len(req.Packages) == 0 {
		return BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no packages given")
	}
	for _, name := range req.Packages {
		if err := types.ValidatePackageName(name); err != nil {
			return BuildResult{}, err
		}
	}

	checker := s.staleness()
	result := BuildResult{}
	for _, name := range req.Packages {
		if !req.Force {
			local := s.currentVersion(ctx, checker, name)
			remote := checker.RemoteVersion(ctx, name)
			if !core.Outdated(local, remote) {
				log.Ctx(ctx).Info().Str("package", name).Str("version", local).Msg("up to date, skipping")
				result.Skipped = append(result.Skipped, name)
				continue
			}
		}
		log.Ctx(ctx).Info().Str("package", name).Msg("building package")
		if err := s.buildOne(ctx, name, req.Docker); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("package", name).Msg("build failed")
			result.Failed = append(result.Failed, name)
			continue
		}
		result.Built = append(result.Built, name)
	}

	if len(result.Built) > 0 {
		if err := s.UpdateRepository(ctx); err != nil {
			return result, err
		}
		if err := s.SyncPackages(ctx); err != nil {
			return result, err
		}
	}
	return result, nil
}

// currentVersion picks the staleness baseline: the local artifact directory
// or, in remote-checking mode, the artifacts published on the mirror.
func (s *Service) currentVersion(ctx context.Context, checker core.StalenessChecker, name string) string {
	if s.Config.CheckRemote {
		return checker.PublishedVersion(ctx, name)
	}
	return checker.LocalVersion(name)
}

// buildOne runs the full lifecycle for a single target: fetch, resolve
// dependencies, build, collect artifacts. In docker mode the container does
// all of that internally.
func (s *Service) buildOne(ctx context.Context, name string, docker bool) error {
	if docker {
		if err := os.MkdirAll(s.Config.OutputDir, 0755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create output directory").
				WithCause(err)
		}
		if err := s.Container.BuildPackage(ctx, name); err != nil {
			s.Failures.Record(name, "docker run "+name, err)
			return err
		}
		return nil
	}

	resolver := s.resolver()
	visited := core.NewVisitedSet(name)
	dir, err := resolver.PrepareTarget(ctx, name, visited)
	if err != nil {
		return err
	}

	var artifacts []string
	if err := resolver.InDir(dir, func() error {
		built, err := s.Build.Build(ctx, dir)
		if err != nil {
			s.Failures.Record(name, "makepkg -sf --noconfirm", err)
			return err
		}
		artifacts = built
		return nil
	}); err != nil {
		return err
	}

	if err := s.collectArtifacts(name, artifacts); err != nil {
		s.Failures.Record(name, "collect artifacts", err)
		return err
	}
	return nil
}

func (s *Service) collectArtifacts(name string, artifacts []string) error {
	if err := os.MkdirAll(s.Config.OutputDir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	for _, artifact := range artifacts {
		dest := filepath.Join(s.Config.OutputDir, filepath.Base(artifact))
		if err := copyArtifact(artifact, dest); err != nil {
			return err
		}
	}
	log.Info().Str("package", name).Int("artifacts", len(artifacts)).Str("dir", s.Config.OutputDir).Msg("artifacts collected")
	return nil
}

func copyArtifact(srcPath string, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open artifact").
			WithCause(err)
	}
	defer srcFile.Close()
	destFile, err := os.Create(destPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create destination artifact").
			WithCause(err)
	}
	if _, err := io.Copy(destFile, srcFile); err != nil {
		destFile.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to copy artifact").
			WithCause(err)
	}
	// Close errors matter here: a failed flush would publish a truncated
	// artifact.
	if err := destFile.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to finalize destination artifact").
			WithCause(err)
	}
	return nil
}
