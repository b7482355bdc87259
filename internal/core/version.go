package core

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog/log"

	"aurdist/internal/ports"
	"aurdist/internal/shared"
)

// SentinelVersion means "no known version". It compares unequal to every
// real version string, so a missing local artifact always forces a build.
const SentinelVersion = "0"

// StalenessChecker compares the version of the newest published artifact
// against the remote registry. The comparison is strict string inequality,
// not version ordering: a remote version that is actually older than the
// local one still triggers a rebuild.
type StalenessChecker struct {
	OutputDir  string
	Arch       string
	Registry   ports.RegistryPort
	RemoteList func(ctx context.Context) ([]string, error)
}

// versionRe builds the artifact filename matcher for one package:
// name-VERSION-RELEASE-ARCH.pkg.tar.zst, with an optional sub-package
// suffix after the name. VERSION-RELEASE is captured as one string.
func versionRe(name string, arch string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `(?:-[a-zA-Z0-9]+)?-(.+)-` + regexp.QuoteMeta(arch) + regexp.QuoteMeta(shared.ArtifactSuffix) + `$`)
}

// LocalVersion extracts the version of the newest matching artifact in the
// output directory, or the sentinel when none exists.
func (c StalenessChecker) LocalVersion(name string) string {
	matches, err := filepath.Glob(filepath.Join(c.OutputDir, name+"-*"+shared.ArtifactSuffix))
	if err != nil || len(matches) == 0 {
		return SentinelVersion
	}
	newest := ""
	var newestMod int64
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().UnixNano() > newestMod {
			newest = match
			newestMod = info.ModTime().UnixNano()
		}
	}
	if newest == "" {
		return SentinelVersion
	}
	return versionFromFilename(name, c.Arch, filepath.Base(newest))
}

// PublishedVersion is LocalVersion against the remote-published directory,
// listed over the sync transport. Used when the mirror is checked instead of
// the local artifact directory; the two modes are mutually exclusive.
func (c StalenessChecker) PublishedVersion(ctx context.Context, name string) string {
	if c.RemoteList == nil {
		return SentinelVersion
	}
	names, err := c.RemoteList(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("remote listing failed, treating as no artifact")
		return SentinelVersion
	}
	// Remote listings carry no usable mtime ordering; the last match wins,
	// which for a maintained mirror is the most recently added file.
	version := SentinelVersion
	for _, filename := range names {
		if v := versionFromFilename(name, c.Arch, filename); v != SentinelVersion {
			version = v
		}
	}
	return version
}

func versionFromFilename(name string, arch string, filename string) string {
	if match := versionRe(name, arch).FindStringSubmatch(filename); match != nil {
		return match[1]
	}
	return SentinelVersion
}

// RemoteVersion asks the registry for the package's current version.
// Transport failures degrade to the sentinel.
func (c StalenessChecker) RemoteVersion(ctx context.Context, name string) string {
	info, err := c.Registry.Lookup(ctx, name)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("package", name).Msg("registry version lookup failed")
		return SentinelVersion
	}
	if !info.Found || info.Version == "" {
		return SentinelVersion
	}
	return info.Version
}

// Outdated implements the staleness policy:
//   - no local artifact: always outdated, whatever the remote says;
//   - local artifact but unreachable/unknown remote: not outdated (fails open);
//   - otherwise: outdated iff the strings differ.
func Outdated(localVersion string, remoteVersion string) bool {
	if localVersion == SentinelVersion {
		return true
	}
	if remoteVersion == SentinelVersion {
		return false
	}
	return localVersion != remoteVersion
}

// StatusLine renders the human-readable check result for one package.
func StatusLine(localVersion string, remoteVersion string) string {
	switch {
	case localVersion == SentinelVersion:
		return "not found locally (remote: " + remoteVersion + ")"
	case remoteVersion == SentinelVersion:
		return "not found in registry (local: " + localVersion + ")"
	case localVersion != remoteVersion:
		return "outdated (local: " + localVersion + ", remote: " + remoteVersion + ")"
	default:
		return "up to date (version: " + localVersion + ")"
	}
}
