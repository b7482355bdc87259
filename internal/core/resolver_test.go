package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"aurdist/internal/types"
)

// ---------- fake ports ----------

type fakeSystem struct {
	repo       map[string]bool
	installed  map[string]bool
	installs   [][]string
	uninstalls [][]string
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{repo: map[string]bool{}, installed: map[string]bool{}}
}

func (f *fakeSystem) HasPackage(_ context.Context, name string) bool {
	return f.repo[name]
}

func (f *fakeSystem) IsInstalled(_ context.Context, name string) bool {
	return f.installed[name]
}

func (f *fakeSystem) InstallBatch(_ context.Context, names []string) error {
	f.installs = append(f.installs, names)
	for _, name := range names {
		f.installed[name] = true
	}
	return nil
}

func (f *fakeSystem) UninstallBatch(_ context.Context, names []string) error {
	f.uninstalls = append(f.uninstalls, names)
	for _, name := range names {
		delete(f.installed, name)
	}
	return nil
}

type fakeRegistry struct {
	infos map[string]types.RegistryInfo
	err   error
}

func (f *fakeRegistry) Lookup(_ context.Context, name string) (types.RegistryInfo, error) {
	if f.err != nil {
		return types.RegistryInfo{}, f.err
	}
	return f.infos[name], nil
}

// fakeSource materializes a working directory per package, writing the
// configured recipe into it. Packages absent from recipes get a directory
// with no recipe file at all.
type fakeSource struct {
	base    string
	recipes map[string]string
	fetched []string
}

func (f *fakeSource) Fetch(_ context.Context, name string) (string, error) {
	dir := filepath.Join(f.base, name)
	if err := os.RemoveAll(dir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if content, ok := f.recipes[name]; ok {
		if err := os.WriteFile(filepath.Join(dir, RecipeFileName), []byte(content), 0644); err != nil {
			return "", err
		}
	}
	f.fetched = append(f.fetched, name)
	return dir, nil
}

type fakeBuild struct {
	system   *fakeSystem
	builds   map[string]int
	installs map[string]int
	failOn   map[string]bool
}

func newFakeBuild(system *fakeSystem) *fakeBuild {
	return &fakeBuild{system: system, builds: map[string]int{}, installs: map[string]int{}, failOn: map[string]bool{}}
}

func (f *fakeBuild) Build(_ context.Context, dir string) ([]string, error) {
	name := filepath.Base(dir)
	f.builds[name]++
	if f.failOn[name] {
		return nil, os.ErrPermission
	}
	artifact := filepath.Join(dir, name+"-1.0-1-x86_64.pkg.tar.zst")
	if err := os.WriteFile(artifact, []byte(name), 0644); err != nil {
		return nil, err
	}
	return []string{artifact}, nil
}

func (f *fakeBuild) BuildAndInstall(_ context.Context, dir string) error {
	name := filepath.Base(dir)
	f.installs[name]++
	if f.failOn[name] {
		return os.ErrPermission
	}
	f.system.installed[name] = true
	return nil
}

// ---------- helpers ----------

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func requireCwd(t *testing.T, want string) {
	t.Helper()
	got, err := os.Getwd()
	require.NoError(t, err)
	wantReal, err := filepath.EvalSymlinks(want)
	require.NoError(t, err)
	gotReal, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	require.Equal(t, wantReal, gotReal)
}

type resolverFixture struct {
	system   *fakeSystem
	registry *fakeRegistry
	source   *fakeSource
	build    *fakeBuild
	resolver *Resolver
	root     string
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	root := t.TempDir()
	chdir(t, root)
	system := newFakeSystem()
	registry := &fakeRegistry{infos: map[string]types.RegistryInfo{}}
	source := &fakeSource{base: root, recipes: map[string]string{}}
	build := newFakeBuild(system)
	return &resolverFixture{
		system:   system,
		registry: registry,
		source:   source,
		build:    build,
		resolver: NewResolver(system, registry, source, build, NewLedger(""), NewFailureLog(), root),
		root:     root,
	}
}

// ---------- tests ----------

func TestResolverCycleTerminatesAndInstallsOnce(t *testing.T) {
	f := newResolverFixture(t)
	f.registry.infos["pkga"] = types.RegistryInfo{Found: true, Version: "1.0-1"}
	f.registry.infos["pkgb"] = types.RegistryInfo{Found: true, Version: "1.0-1"}
	f.source.recipes["pkga"] = "depends=('pkgb')\n"
	f.source.recipes["pkgb"] = "depends=('pkga')\n"

	err := f.resolver.ResolveAndInstall(t.Context(), "pkga", NewVisitedSet())
	require.NoError(t, err)

	require.Equal(t, 1, f.build.installs["pkga"])
	require.Equal(t, 1, f.build.installs["pkgb"])
	require.True(t, f.resolver.Failures.Empty())
	require.ElementsMatch(t, []string{"pkga", "pkgb"}, f.resolver.Ledger.Names())
	requireCwd(t, f.root)
}

func TestResolverAlreadyInstalledShortCircuits(t *testing.T) {
	f := newResolverFixture(t)
	f.system.installed["pkgx"] = true

	err := f.resolver.ResolveAndInstall(t.Context(), "pkgx", NewVisitedSet())
	require.NoError(t, err)
	require.Empty(t, f.source.fetched)
	require.Zero(t, f.resolver.Ledger.Len())
}

func TestResolverSystemDepsInstalledInOneBatch(t *testing.T) {
	f := newResolverFixture(t)
	f.system.repo["glibc"] = true
	f.system.repo["zlib"] = true
	f.registry.infos["pkga"] = types.RegistryInfo{Found: true, Version: "1.0-1"}
	f.source.recipes["pkga"] = "depends=('glibc' 'zlib')\n"

	err := f.resolver.ResolveAndInstall(t.Context(), "pkga", NewVisitedSet())
	require.NoError(t, err)

	require.Len(t, f.system.installs, 1)
	require.Equal(t, []string{"glibc", "zlib"}, f.system.installs[0])
	require.ElementsMatch(t, []string{"glibc", "zlib", "pkga"}, f.resolver.Ledger.Names())
	requireCwd(t, f.root)
}

func TestResolverUnresolvableDependencyProceeds(t *testing.T) {
	f := newResolverFixture(t)
	f.source.recipes["pkga"] = "depends=('ghost')\n"

	err := f.resolver.ResolveAndInstall(t.Context(), "pkga", NewVisitedSet())
	require.NoError(t, err)
	require.Equal(t, 1, f.build.installs["pkga"])
	require.True(t, f.resolver.Failures.Empty())
}

func TestResolverWarningsReachContextLogger(t *testing.T) {
	f := newResolverFixture(t)
	f.source.recipes["pkga"] = "depends=('ghost')\n"

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	ctx := logger.WithContext(t.Context())

	require.NoError(t, f.resolver.ResolveAndInstall(ctx, "pkga", NewVisitedSet()))
	require.Contains(t, buf.String(), "dependencies not found in any source")
	require.Contains(t, buf.String(), "ghost")
	require.Contains(t, buf.String(), "dependency analysis")
}

func TestInDirUnenterableDirectoryIsRecorded(t *testing.T) {
	f := newResolverFixture(t)

	err := f.resolver.InDir(filepath.Join(f.root, "missing"), func() error {
		t.Fatal("callback must not run")
		return nil
	})
	require.Error(t, err)
	require.False(t, f.resolver.Failures.Empty())
	require.Equal(t, "missing", f.resolver.Failures.Records()[0].Package)
	requireCwd(t, f.root)
}

func TestResolverMissingRecipeFailsSubtree(t *testing.T) {
	f := newResolverFixture(t)
	// pkga is fetched but its directory carries no recipe file.

	err := f.resolver.ResolveAndInstall(t.Context(), "pkga", NewVisitedSet())
	require.Error(t, err)
	require.False(t, f.resolver.Failures.Empty())
	require.Equal(t, "parse "+RecipeFileName, f.resolver.Failures.Records()[0].Command)
	requireCwd(t, f.root)
}

func TestResolverBuildFailureRestoresRootAndVisited(t *testing.T) {
	f := newResolverFixture(t)
	f.source.recipes["pkga"] = "depends=()\n"
	f.build.failOn["pkga"] = true

	visited := NewVisitedSet()
	err := f.resolver.ResolveAndInstall(t.Context(), "pkga", visited)
	require.Error(t, err)
	require.False(t, f.resolver.Failures.Empty())
	require.Empty(t, visited)
	requireCwd(t, f.root)
}

func TestResolverNestedFailurePropagates(t *testing.T) {
	f := newResolverFixture(t)
	f.registry.infos["pkga"] = types.RegistryInfo{Found: true, Version: "1.0-1"}
	f.registry.infos["dep"] = types.RegistryInfo{Found: true, Version: "1.0-1"}
	f.source.recipes["pkga"] = "depends=('dep')\n"
	f.source.recipes["dep"] = "depends=()\n"
	f.build.failOn["dep"] = true

	err := f.resolver.ResolveAndInstall(t.Context(), "pkga", NewVisitedSet())
	require.Error(t, err)

	// Both the failing dependency and the package waiting on it record
	// failures; the target itself is never built.
	packages := []string{}
	for _, record := range f.resolver.Failures.Records() {
		packages = append(packages, record.Package)
	}
	require.Contains(t, packages, "dep")
	require.Contains(t, packages, "pkga")
	require.Zero(t, f.build.installs["pkga"])
	requireCwd(t, f.root)
}

func TestPrepareTargetResolvesDepsWithoutBuildingTarget(t *testing.T) {
	f := newResolverFixture(t)
	f.registry.infos["target"] = types.RegistryInfo{Found: true, Version: "2.0-1"}
	f.registry.infos["helper"] = types.RegistryInfo{Found: true, Version: "1.0-1"}
	f.source.recipes["target"] = "depends=('helper')\n"
	f.source.recipes["helper"] = "depends=()\n"

	dir, err := f.resolver.PrepareTarget(t.Context(), "target", NewVisitedSet("target"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(f.root, "target"), dir)

	require.Equal(t, 1, f.build.installs["helper"])
	require.Zero(t, f.build.installs["target"])
	require.Zero(t, f.build.builds["target"])
	require.ElementsMatch(t, []string{"helper"}, f.resolver.Ledger.Names())
	requireCwd(t, f.root)
}

func TestSharedDependencyResolvedPerBranch(t *testing.T) {
	f := newResolverFixture(t)
	for _, name := range []string{"top", "left", "right", "common"} {
		f.registry.infos[name] = types.RegistryInfo{Found: true, Version: "1.0-1"}
	}
	f.source.recipes["top"] = "depends=('left' 'right')\n"
	f.source.recipes["left"] = "depends=('common')\n"
	f.source.recipes["right"] = "depends=('common')\n"
	f.source.recipes["common"] = "depends=()\n"

	err := f.resolver.ResolveAndInstall(t.Context(), "top", NewVisitedSet())
	require.NoError(t, err)

	// The first branch installs common; the second branch short-circuits on
	// the installed check instead of rebuilding it.
	require.Equal(t, 1, f.build.installs["common"])
	require.Equal(t, 1, f.build.installs["left"])
	require.Equal(t, 1, f.build.installs["right"])
}
