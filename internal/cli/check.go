package cli

import (
	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [package]...",
		Short: "Report which packages are outdated without building",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := newService()
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names, err = service.Targets(cmd.Context())
				if err != nil {
					return err
				}
			}
			results, err := service.CheckPackages(cmd.Context(), names)
			if err != nil {
				return err
			}
			for _, result := range results {
				if result.Outdated {
					color.Yellow.Printf("%s: %s\n", result.Package, result.Status)
				} else {
					color.Green.Printf("%s: %s\n", result.Package, result.Status)
				}
			}
			return nil
		},
	}
	return cmd
}
