package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login [URL]",
		Short: "Login to Review Board",
		Long: `Log in through the Review Board login form and save the session cookie
to the configuration file so later commands reuse it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := promptCredentials(cmd, username, password)
			if err != nil {
				return err
			}

			// A stale saved session must not be sent along with the new login.
			viper.Set("session_id", "")

			client, cleanup, err := createClient(cmd.Context(), cmd, args, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			// The session store writes the username along with the session.
			viper.Set("username", creds.username)

			_, err = client.Login(cmd.Context(), creds.username, creds.password)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", client.BaseURL(), creds.username)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Review Board username")
	cmd.Flags().StringVar(&password, "password", "", "Review Board password (prompted when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Long:  "Remove the saved session cookie from the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.SessionID = ""

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}
