package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/rbt/cmd/rbt/commands"
	"github.com/fivetwenty-io/rbt/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "rbt",
	Short: "Review Board Web API CLI",
	Long: `A command-line interface for the Review Board Web API.

Every command starts at the API root and follows the links the server
returns, so any resource the server advertises can be reached with follow.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.rbt/config.yml)")
	rootCmd.PersistentFlags().StringP("token", "t", "", "API token")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatJSON, "output format (json, yaml, table)")
	rootCmd.PersistentFlags().Bool("debug", false, "log every HTTP exchange")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("link-search", "first", "nested link discovery (first, all)")
	rootCmd.PersistentFlags().String("collision", "reject", "field name collision policy (reject, last-wins)")
	rootCmd.PersistentFlags().Duration("timeout", constants.DefaultHTTPTimeout, "timeout of a single HTTP exchange")
	rootCmd.PersistentFlags().Int("retry-max", constants.DefaultRetryMax, "retries for connection errors, 429 and 5xx")
	rootCmd.PersistentFlags().String("nats-url", "", "publish every HTTP exchange to this NATS server")
	rootCmd.PersistentFlags().String("nats-subject", constants.DefaultEventSubject, "NATS subject for exchange records")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"config":       "config",
		"token":        "token",
		"output":       "output",
		"debug":        "debug",
		"log_level":    "log-level",
		"link_search":  "link-search",
		"collision":    "collision",
		"timeout":      "timeout",
		"retry_max":    "retry-max",
		"nats_url":     "nats-url",
		"nats_subject": "nats-subject",
	} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewRootCommand())
	rootCmd.AddCommand(commands.NewReviewRequestsCommand())
	rootCmd.AddCommand(commands.NewFollowCommand())
	rootCmd.AddCommand(commands.NewCreateCommand())
	rootCmd.AddCommand(commands.NewContentTypesCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.rbt/config.yml
		viper.AddConfigPath(filepath.Join(home, ".rbt"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match, e.g. RBT_URL and RBT_PASSWORD
	viper.SetEnvPrefix("RBT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("debug") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
