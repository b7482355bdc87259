package app

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Rollback uninstalls every package the run installed as a side effect.
// Best effort: individual uninstall failures are logged and skipped, and
// the ledger is cleared regardless.
func (s *Service) Rollback(ctx context.Context) {
	if s.Ledger.Len() == 0 {
		log.Ctx(ctx).Debug().Msg("installation ledger is empty, nothing to roll back")
		return
	}
	s.Ledger.Rollback(ctx, s.System)
}

// PendingRollback lists what a rollback would uninstall.
func (s *Service) PendingRollback() []string {
	return s.Ledger.Names()
}
