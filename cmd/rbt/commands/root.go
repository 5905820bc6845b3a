package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command, which prints the API root.
func NewRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "root [URL]",
		Short: "Display the API root",
		Long:  "Fetch the Review Board API root and display its fields and links",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd.Context(), cmd, args, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			root, err := client.Navigate(cmd.Context(), nil)
			if err != nil {
				return err
			}

			return renderComponent(cmd.OutOrStdout(), root)
		},
	}
}
