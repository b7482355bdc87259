package ports

import "context"

// CommandRunnerPort executes one external command to completion. Exactly one
// of the two modes applies per call: captured output for parsing, or output
// streamed to the terminal for visibility.
type CommandRunnerPort interface {
	// Run executes name with args in dir (empty dir means the current
	// directory) and returns combined output when capturing.
	Run(ctx context.Context, dir string, name string, args ...string) (string, error)
}
