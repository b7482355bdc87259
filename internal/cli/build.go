package cli

import (
	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"aurdist/internal/app"
)

func newBuildCommand() *cobra.Command {
	force := false
	docker := false
	cmd := &cobra.Command{
		Use:   "build <package>...",
		Short: "Build specific packages and publish their artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService()
			if err != nil {
				return err
			}
			result, buildErr := service.BuildPackages(cmd.Context(), app.BuildRequest{
				Packages: args,
				Force:    force,
				Docker:   docker,
			})
			if finishErr := finishRun(cmd, service); finishErr != nil {
				return finishErr
			}
			if buildErr != nil {
				return buildErr
			}
			printBuildResult(result)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Build even if up to date")
	cmd.Flags().BoolVar(&docker, "docker", false, "Build inside the container image instead of natively")
	return cmd
}

func printBuildResult(result app.BuildResult) {
	if len(result.Built) > 0 {
		color.Green.Printf("built: %s\n", joinNames(result.Built))
	}
	if len(result.Skipped) > 0 {
		color.Gray.Printf("up to date: %s\n", joinNames(result.Skipped))
	}
}
