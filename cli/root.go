package cli

import (
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "patchflow",
		Short:         "Turn patch-bearing text streams into live document snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	root.AddCommand(
		ProcessCmd(),
		BuildCmd(),
	)

	return root
}
