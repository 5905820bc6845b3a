package commands

import (
	"github.com/spf13/cobra"
)

// NewFollowCommand creates the follow command, which walks a chain of links
// starting at the API root.
func NewFollowCommand() *cobra.Command {
	var (
		url    string
		params []string
	)

	cmd := &cobra.Command{
		Use:   "follow LINK [LINK...]",
		Short: "Follow links from the API root",
		Long: `Fetch the API root, then invoke each named link of the previous result in
turn and display the last one. Parameters are sent with the last link only.`,
		Example: `  rbt follow info
  rbt follow review_requests --param counts-only=1
  rbt follow review_requests create --param repository=1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callParams, err := parseParams(params)
			if err != nil {
				return err
			}

			client, cleanup, err := createClient(cmd.Context(), cmd, []string{url}, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			component, err := client.Navigate(cmd.Context(), callParams, args...)
			if err != nil {
				return err
			}

			return renderComponent(cmd.OutOrStdout(), component)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Review Board server URL")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "request parameter as key=value (repeatable)")

	return cmd
}
