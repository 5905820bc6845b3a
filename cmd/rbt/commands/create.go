package commands

import (
	"github.com/fivetwenty-io/rbt/pkg/rbt"
	"github.com/spf13/cobra"
)

// NewCreateCommand creates the create command, which opens a new review
// request through the create link of the review request listing.
func NewCreateCommand() *cobra.Command {
	var (
		username   string
		password   string
		repository string
		submitAs   string
		params     []string
	)

	cmd := &cobra.Command{
		Use:     "create [URL]",
		Aliases: []string{"post"},
		Short:   "Create a review request",
		Long: `Log in, fetch the review request listing and invoke its create link.
A configured token or saved session is used instead of logging in.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			createParams, err := parseParams(params)
			if err != nil {
				return err
			}

			if createParams == nil {
				createParams = rbt.Params{}
			}

			if repository != "" {
				createParams["repository"] = repository
			}

			if submitAs != "" {
				createParams["submit_as"] = submitAs
			}

			var creds *credentials

			config := loadConfig()
			if config.Token == "" && config.SessionID == "" {
				creds, err = promptCredentials(cmd, username, password)
				if err != nil {
					return err
				}
			}

			client, cleanup, err := createClient(cmd.Context(), cmd, args, creds)
			if err != nil {
				return err
			}
			defer cleanup()

			created, err := client.Navigate(cmd.Context(), createParams, "review_requests", "create")
			if err != nil {
				return err
			}

			return renderComponent(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Review Board username")
	cmd.Flags().StringVar(&password, "password", "", "Review Board password (prompted when omitted)")
	cmd.Flags().StringVar(&repository, "repository", "", "repository name, path or ID")
	cmd.Flags().StringVar(&submitAs, "submit-as", "", "user the review request is submitted on behalf of")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "extra request parameter as key=value (repeatable)")

	return cmd
}
