package ports

import "context"

// BuildToolPort invokes the external package build tool in a fetched working
// directory. One attempt, no retries; build commands may run indefinitely.
type BuildToolPort interface {
	// Build produces artifacts in dir and returns their paths.
	Build(ctx context.Context, dir string) ([]string, error)

	// BuildAndInstall builds and installs the package in one step, as used
	// for dependencies pulled in during resolution.
	BuildAndInstall(ctx context.Context, dir string) error
}
