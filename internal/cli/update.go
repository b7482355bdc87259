package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newUpdateCommand() *cobra.Command {
	force := false
	docker := false
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check all targets and rebuild the outdated ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := newService()
			if err != nil {
				return err
			}
			result, updateErr := service.Update(cmd.Context(), force, docker)
			if finishErr := finishRun(cmd, service); finishErr != nil {
				return finishErr
			}
			if updateErr != nil {
				return updateErr
			}
			printBuildResult(result)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rebuild every target, up to date or not")
	cmd.Flags().BoolVar(&docker, "docker", false, "Build inside the container image instead of natively")
	return cmd
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
