package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

func newRollbackCommand() *cobra.Command {
	yes := false
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Uninstall everything recorded in the installation ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := newService()
			if err != nil {
				return err
			}
			pending := service.PendingRollback()
			if len(pending) == 0 {
				fmt.Println("installation ledger is empty, nothing to roll back")
				return nil
			}
			color.Warn.Printf("the following %d package(s) will be uninstalled:\n", len(pending))
			for _, name := range pending {
				fmt.Printf("  %s\n", name)
			}
			if !yes && !askForConfirmation("proceed with rollback?") {
				fmt.Println("aborted")
				return nil
			}
			service.Rollback(cmd.Context())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func askForConfirmation(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	for {
		color.Warn.Printf("%s [y/N]: ", prompt)
		response, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(response)) {
		case "y", "yes":
			return true
		case "n", "no", "":
			return false
		}
		fmt.Println("invalid input")
	}
}
