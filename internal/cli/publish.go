package cli

import (
	"github.com/spf13/cobra"
)

func newIndexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the repository database from on-disk artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := newService()
			if err != nil {
				return err
			}
			return service.UpdateRepository(cmd.Context())
		},
	}
}

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Mirror the artifact directory to the configured remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := newService()
			if err != nil {
				return err
			}
			if err := service.UpdateRepository(cmd.Context()); err != nil {
				return err
			}
			return service.SyncPackages(cmd.Context())
		},
	}
}
