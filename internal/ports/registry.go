package ports

import (
	"context"

	"aurdist/internal/types"
)

// RegistryPort looks a package up in the remote community registry.
// Transport failures are returned as errors; callers are expected to degrade
// them to "not found" rather than propagate.
type RegistryPort interface {
	Lookup(ctx context.Context, name string) (types.RegistryInfo, error)
}
