package ports

import "context"

// ContainerBuildPort builds a package inside a self-contained builder image
// instead of on the host. The container resolves dependencies itself.
type ContainerBuildPort interface {
	BuildPackage(ctx context.Context, name string) error
}
