// Package shared provides common utility functions used across multiple
// packages in the aurdist codebase.
package shared

import (
	"fmt"
	"strings"
)

// ArtifactSuffix is the filename suffix every built package artifact carries.
const ArtifactSuffix = ".pkg.tar.zst"

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return err
	}
	return fmt.Errorf("%s: %w", trimmed, err)
}

// CommandLine renders an argv vector the way it is logged and recorded in
// failure reports.
func CommandLine(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
