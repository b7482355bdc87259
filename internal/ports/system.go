package ports

import "context"

// SystemPackagePort wraps the system package manager's query, install and
// uninstall primitives. Implementations must treat the tool as a black box:
// a non-zero exit from a query means "no", not an error.
type SystemPackagePort interface {
	// HasPackage reports whether the official repositories carry name.
	HasPackage(ctx context.Context, name string) bool

	// IsInstalled reports whether name is currently installed.
	IsInstalled(ctx context.Context, name string) bool

	// InstallBatch installs the given packages in one invocation.
	InstallBatch(ctx context.Context, names []string) error

	// UninstallBatch removes the given packages in one invocation.
	UninstallBatch(ctx context.Context, names []string) error
}
