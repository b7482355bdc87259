package adapters

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"aurdist/internal/ports"
)

// DefaultSourceBaseURL is the community registry's git hosting root.
const DefaultSourceBaseURL = "https://aur.archlinux.org"

// GitSourceAdapter fetches build recipes by cloning the package's registry
// repository into BaseDir/<name>. Any prior clone is removed first, so a
// fetch always yields a pristine working directory.
type GitSourceAdapter struct {
	BaseURL string
	BaseDir string
	Runner  ports.CommandRunnerPort
}

func NewGitSourceAdapter(baseURL string, baseDir string, runner ports.CommandRunnerPort) GitSourceAdapter {
	if baseURL == "" {
		baseURL = DefaultSourceBaseURL
	}
	return GitSourceAdapter{BaseURL: baseURL, BaseDir: baseDir, Runner: runner}
}

func (a GitSourceAdapter) Fetch(ctx context.Context, name string) (string, error) {
	dir := filepath.Join(a.BaseDir, name)
	if err := os.RemoveAll(dir); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to clear working directory for " + name).
			WithCause(err)
	}
	cloneURL := a.BaseURL + "/" + name + ".git"
	if _, err := a.Runner.Run(ctx, a.BaseDir, "git", "clone", cloneURL, dir); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to fetch source for " + name).
			WithCause(err)
	}
	log.Ctx(ctx).Debug().Str("package", name).Str("dir", dir).Msg("source fetched")
	return dir, nil
}

var _ ports.SourceFetchPort = GitSourceAdapter{}
