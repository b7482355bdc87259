package ports

import (
	"context"

	"aurdist/internal/types"
)

// RepoIndexPort rebuilds the local repository database from the artifacts
// present in a directory.
type RepoIndexPort interface {
	RebuildIndex(ctx context.Context, artifactDir string) error
}

// SyncPort mirrors the artifact directory to a remote destination and lists
// what is already published there. remoteSpec is an rsync-style destination
// (host:path), read from the remote marker file.
type SyncPort interface {
	Sync(ctx context.Context, localDir string, remoteSpec string, opts types.SyncOptions) error

	// ListRemote returns the artifact filenames present at remoteSpec.
	ListRemote(ctx context.Context, remoteSpec string, opts types.SyncOptions) ([]string, error)
}
