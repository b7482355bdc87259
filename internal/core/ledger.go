package core

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"aurdist/internal/ports"
)

// rollbackBatchSize bounds one uninstall invocation so the assembled command
// line stays well under the kernel's argument length limit.
const rollbackBatchSize = 50

// Ledger is the run-scoped record of every package installed as a side
// effect of dependency resolution. Recording is idempotent and
// insertion-ordered. When Path is set, the ledger is written through to a
// newline-delimited state file so a later process can still roll back.
type Ledger struct {
	Path    string
	entries []string
	seen    map[string]struct{}
}

func NewLedger(path string) *Ledger {
	return &Ledger{Path: path, seen: map[string]struct{}{}}
}

// LoadLedger restores a persisted ledger. A missing file yields an empty
// ledger.
func LoadLedger(path string) (*Ledger, error) {
	ledger := NewLedger(path)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledger, nil
		}
		return nil, err
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			ledger.Record(line)
		}
	}
	return ledger, nil
}

func (l *Ledger) Record(name string) {
	if _, ok := l.seen[name]; ok {
		return
	}
	l.seen[name] = struct{}{}
	l.entries = append(l.entries, name)
	l.persist()
}

func (l *Ledger) Names() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// Rollback uninstalls everything recorded during the run, in fixed-size
// batches. A failed batch falls back to removing its members one at a time;
// a package that still fails to uninstall is left installed and logged. The
// ledger is always cleared afterward, regardless of partial failure.
func (l *Ledger) Rollback(ctx context.Context, system ports.SystemPackagePort) {
	defer l.clear()
	if len(l.entries) == 0 {
		return
	}
	log.Ctx(ctx).Info().Int("count", len(l.entries)).Msg("rolling back transient installations")
	for start := 0; start < len(l.entries); start += rollbackBatchSize {
		end := min(start+rollbackBatchSize, len(l.entries))
		batch := l.entries[start:end]
		if err := system.UninstallBatch(ctx, batch); err == nil {
			continue
		}
		// Best effort: retry the batch members individually so one stubborn
		// package does not pin the rest.
		for _, name := range batch {
			if err := system.UninstallBatch(ctx, []string{name}); err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("package", name).Msg("failed to uninstall, leaving installed")
			}
		}
	}
}

func (l *Ledger) clear() {
	l.entries = nil
	l.seen = map[string]struct{}{}
	if l.Path != "" {
		if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", l.Path).Msg("failed to remove ledger file")
		}
	}
}

func (l *Ledger) persist() {
	if l.Path == "" {
		return
	}
	data := strings.Join(l.entries, "\n") + "\n"
	if err := os.WriteFile(l.Path, []byte(data), 0644); err != nil {
		log.Warn().Err(err).Str("path", l.Path).Msg("failed to persist ledger")
	}
}
