package core

import (
	"time"

	"aurdist/internal/types"
)

// FailureLog accumulates build failures across a run. Records are appended,
// never removed; the CLI prints them once as a consolidated report and the
// process exit code reflects whether any exist.
type FailureLog struct {
	records []types.BuildFailureRecord
	clock   func() time.Time
}

func NewFailureLog() *FailureLog {
	return &FailureLog{clock: time.Now}
}

func (f *FailureLog) Record(pkg string, command string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	f.records = append(f.records, types.BuildFailureRecord{
		Package:   pkg,
		Command:   command,
		Detail:    detail,
		Timestamp: f.clock(),
	})
}

func (f *FailureLog) Records() []types.BuildFailureRecord {
	out := make([]types.BuildFailureRecord, len(f.records))
	copy(out, f.records)
	return out
}

func (f *FailureLog) Empty() bool {
	return len(f.records) == 0
}
