package app

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"aurdist/internal/core"
	"aurdist/internal/shared"
	"aurdist/internal/types"
)

type CheckResult struct {
	Package  string
	Outdated bool
	Status   string
}

// CheckPackages reports the staleness of each named package without
// building anything.
func (s *Service) CheckPackages(ctx context.Context, names []string) ([]CheckResult, error) {
	for _, name := range names {
		if err := types.ValidatePackageName(name); err != nil {
			return nil, err
		}
	}
	checker := s.staleness()
	results := make([]CheckResult, 0, len(names))

	var bar *progressbar.ProgressBar
	if len(names) > 1 {
		bar = progressbar.Default(int64(len(names)), "checking")
	}
	for _, name := range names {
		local := s.currentVersion(ctx, checker, name)
		remote := checker.RemoteVersion(ctx, name)
		results = append(results, CheckResult{
			Package:  name,
			Outdated: core.Outdated(local, remote),
			Status:   core.StatusLine(local, remote),
		})
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return results, nil
}

// Targets resolves the package list for a no-argument run: the target list
// file when present, otherwise the names of artifacts already in the output
// directory. An empty result is a usage error.
func (s *Service) Targets(ctx context.Context) ([]string, error) {
	targets, err := s.targetsFromFile()
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		targets = s.targetsFromArtifacts()
	}
	if len(targets) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no packages found in " + s.Config.TargetsFile + " or " + s.Config.OutputDir + "/; pass a package name or create a target list")
	}
	log.Ctx(ctx).Info().Int("count", len(targets)).Msg("targets resolved")
	return targets, nil
}

// targetsFromFile reads the newline-delimited target list, skipping blank
// lines and # comments. A missing file is not an error.
func (s *Service) targetsFromFile() ([]string, error) {
	content, err := os.ReadFile(s.Config.TargetsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read target list").
			WithCause(err)
	}
	var targets []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	return targets, nil
}

// artifactNameRe recovers the package name from an artifact filename:
// name-VERSION-RELEASE-ARCH.pkg.tar.zst, where the name itself may contain
// hyphens.
func artifactNameRe(arch string) *regexp.Regexp {
	return regexp.MustCompile(`^([^-]+(?:-[^-]+)*)-[^-]+-[^-]+-` + regexp.QuoteMeta(arch) + regexp.QuoteMeta(shared.ArtifactSuffix) + `$`)
}

func (s *Service) targetsFromArtifacts() []string {
	matches, err := filepath.Glob(filepath.Join(s.Config.OutputDir, "*"+shared.ArtifactSuffix))
	if err != nil {
		return nil
	}
	re := artifactNameRe(s.Config.Arch)
	seen := map[string]struct{}{}
	var targets []string
	for _, match := range matches {
		submatch := re.FindStringSubmatch(filepath.Base(match))
		if submatch == nil {
			continue
		}
		if _, ok := seen[submatch[1]]; ok {
			continue
		}
		seen[submatch[1]] = struct{}{}
		targets = append(targets, submatch[1])
	}
	sort.Strings(targets)
	return targets
}

// Update is the no-target mode: check every target and rebuild the outdated
// ones (all of them when forced), then refresh the index and sync.
func (s *Service) Update(ctx context.Context, force bool, docker bool) (BuildResult, error) {
	targets, err := s.Targets(ctx)
	if err != nil {
		return BuildResult{}, err
	}

	results, err := s.CheckPackages(ctx, targets)
	if err != nil {
		return BuildResult{}, err
	}
	var toBuild []string
	for _, result := range results {
		log.Ctx(ctx).Info().Str("package", result.Package).Msg(result.Status)
		if result.Outdated || force {
			toBuild = append(toBuild, result.Package)
		}
	}
	if len(toBuild) == 0 {
		log.Ctx(ctx).Info().Msg("all packages are up to date")
		return BuildResult{Skipped: targets}, nil
	}
	return s.BuildPackages(ctx, BuildRequest{Packages: toBuild, Force: true, Docker: docker})
}
