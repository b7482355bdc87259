package core

import (
	"context"
	"os"
	"path/filepath"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"aurdist/internal/ports"
)

// RecipeFileName is the build recipe every fetched source tree must contain.
const RecipeFileName = "PKGBUILD"

// VisitedSet tracks the live recursion stack during one top-level
// resolution. It is not an "ever seen" cache: names are inserted on entry
// and removed on exit, so siblings sharing a dependency each resolve it
// independently while a true cycle back to an ancestor is caught.
type VisitedSet map[string]struct{}

func NewVisitedSet(names ...string) VisitedSet {
	visited := VisitedSet{}
	for _, name := range names {
		visited[name] = struct{}{}
	}
	return visited
}

// Resolver is the recursive dependency resolver and installer. All run-wide
// mutable state (ledger, failure log, canonical root directory) lives here
// so the recursion can be exercised in isolation.
type Resolver struct {
	System     ports.SystemPackagePort
	Registry   ports.RegistryPort
	Source     ports.SourceFetchPort
	Build      ports.BuildToolPort
	Classifier Classifier
	Ledger     *Ledger
	Failures   *FailureLog

	// RootDir is the canonical directory recorded at startup. Every
	// operation that changes directory restores it on the way out, success
	// or failure; relative parent navigation breaks under deep recursion.
	RootDir string
}

func NewResolver(system ports.SystemPackagePort, registry ports.RegistryPort, source ports.SourceFetchPort, build ports.BuildToolPort, ledger *Ledger, failures *FailureLog, rootDir string) *Resolver {
	return &Resolver{
		System:     system,
		Registry:   registry,
		Source:     source,
		Build:      build,
		Classifier: NewClassifier(system, registry),
		Ledger:     ledger,
		Failures:   failures,
		RootDir:    rootDir,
	}
}

// InDir runs fn with dir as the working directory and unconditionally
// returns to the canonical root afterward, on every exit path. A directory
// that cannot be entered counts as a build failure for its package.
func (r *Resolver) InDir(dir string, fn func() error) error {
	if err := os.Chdir(dir); err != nil {
		err = errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to enter " + dir).
			WithCause(err)
		r.Failures.Record(filepath.Base(dir), "enter "+dir, err)
		return err
	}
	defer func() {
		if err := os.Chdir(r.RootDir); err != nil {
			log.Error().Err(err).Str("root", r.RootDir).Msg("failed to restore root directory")
		}
	}()
	return fn()
}

// ResolveAndInstall ensures name and its whole dependency tree are
// installed, building name from its third-party source. Cycle edges are
// dropped silently: AUR-style graphs can be cyclic through build tool
// chains, and failing hard would make large graphs unbuildable.
func (r *Resolver) ResolveAndInstall(ctx context.Context, name string, visited VisitedSet) error {
	assert.NotEmpty(ctx, name, "package name must be set")
	if _, ok := visited[name]; ok {
		log.Ctx(ctx).Debug().Str("package", name).Msg("dependency cycle detected, skipping")
		return nil
	}
	if r.System.IsInstalled(ctx, name) {
		log.Ctx(ctx).Debug().Str("package", name).Msg("already installed")
		return nil
	}

	visited[name] = struct{}{}
	defer delete(visited, name)

	dir, err := r.Source.Fetch(ctx, name)
	if err != nil {
		r.Failures.Record(name, "fetch "+name, err)
		return err
	}

	return r.InDir(dir, func() error {
		if err := r.resolveDependencies(ctx, name, dir, visited); err != nil {
			return err
		}
		if err := r.Build.BuildAndInstall(ctx, dir); err != nil {
			r.Failures.Record(name, "makepkg -si --noconfirm", err)
			return err
		}
		r.Ledger.Record(name)
		return nil
	})
}

// PrepareTarget fetches a top-level target and satisfies its dependency
// tree without building the target itself. The returned directory is ready
// for the build driver. visited must already contain name so a dependency
// chain looping back to the target is treated as a cycle.
func (r *Resolver) PrepareTarget(ctx context.Context, name string, visited VisitedSet) (string, error) {
	assert.NotEmpty(ctx, name, "package name must be set")
	dir, err := r.Source.Fetch(ctx, name)
	if err != nil {
		r.Failures.Record(name, "fetch "+name, err)
		return "", err
	}
	if err := r.InDir(dir, func() error {
		return r.resolveDependencies(ctx, name, dir, visited)
	}); err != nil {
		return "", err
	}
	return dir, nil
}

// resolveDependencies parses the fetched recipe, classifies each
// non-optional dependency and satisfies it: system-repo dependencies in one
// batch install, third-party dependencies by recursion. Unresolvable names
// are reported and skipped; the build tool fails later if they are truly
// required, so nothing is pre-emptively aborted here.
func (r *Resolver) resolveDependencies(ctx context.Context, name string, dir string, visited VisitedSet) error {
	recipePath := filepath.Join(dir, RecipeFileName)
	if _, err := os.Stat(recipePath); err != nil {
		err = errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(RecipeFileName + " not found for " + name).
			WithCause(err)
		r.Failures.Record(name, "parse "+RecipeFileName, err)
		return err
	}
	deps, err := ParseRecipe(recipePath)
	if err != nil {
		err = errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read " + RecipeFileName + " for " + name).
			WithCause(err)
		r.Failures.Record(name, "parse "+RecipeFileName, err)
		return err
	}

	analysis := r.Classifier.Analyze(ctx, deps)
	log.Ctx(ctx).Info().
		Str("package", name).
		Int("total", analysis.TotalCount).
		Int("system", len(analysis.SystemRepo)).
		Int("third_party", len(analysis.ThirdParty)).
		Int("not_found", len(analysis.Unresolvable)).
		Msg("dependency analysis")
	if len(analysis.Unresolvable) > 0 {
		log.Ctx(ctx).Warn().Strs("packages", analysis.Unresolvable).Msg("dependencies not found in any source")
	}

	if len(analysis.SystemRepo) > 0 {
		if err := r.System.InstallBatch(ctx, analysis.SystemRepo); err != nil {
			r.Failures.Record(name, "install system dependencies", err)
			return err
		}
		for _, dep := range analysis.SystemRepo {
			r.Ledger.Record(dep)
		}
	}

	for _, dep := range analysis.ThirdParty {
		if err := r.ResolveAndInstall(ctx, dep, visited); err != nil {
			r.Failures.Record(name, "resolve "+dep, err)
			return err
		}
	}
	return nil
}
