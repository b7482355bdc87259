package app

import (
	"context"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// UpdateRepository rebuilds the repository database from the artifacts in
// the output directory.
func (s *Service) UpdateRepository(ctx context.Context) error {
	if _, err := os.Stat(s.Config.OutputDir); err != nil {
		if os.IsNotExist(err) {
			log.Ctx(ctx).Warn().Str("dir", s.Config.OutputDir).Msg("no output directory, skipping index rebuild")
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to stat output directory").
			WithCause(err)
	}
	return s.Index.RebuildIndex(ctx, s.Config.OutputDir)
}

// remoteSpec reads the one-line remote destination marker. An absent marker
// means syncing is not configured; that is not an error.
func (s *Service) remoteSpec() (string, error) {
	content, err := os.ReadFile(s.Config.RemoteMarker)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read remote marker").
			WithCause(err)
	}
	return strings.TrimSpace(string(content)), nil
}

// SyncPackages mirrors the output directory to the remote destination named
// by the marker file, when one is configured.
func (s *Service) SyncPackages(ctx context.Context) error {
	remoteSpec, err := s.remoteSpec()
	if err != nil {
		return err
	}
	if remoteSpec == "" {
		log.Ctx(ctx).Debug().Msg("no remote marker, skipping sync")
		return nil
	}
	log.Ctx(ctx).Info().Str("remote", remoteSpec).Msg("syncing packages")
	return s.Syncer.Sync(ctx, s.Config.OutputDir, remoteSpec, s.Config.Sync)
}
