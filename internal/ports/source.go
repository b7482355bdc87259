package ports

import "context"

// SourceFetchPort fetches a package's build recipe and sources into a local
// working directory named after the package. Fetch is idempotent: any prior
// directory contents are destroyed and replaced.
type SourceFetchPort interface {
	Fetch(ctx context.Context, name string) (dir string, err error)
}
