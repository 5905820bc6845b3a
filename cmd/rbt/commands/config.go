package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/rbt/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	URL       string `json:"url,omitempty"        yaml:"url,omitempty"`
	Token     string `json:"token,omitempty"      yaml:"token,omitempty"`
	Username  string `json:"username,omitempty"   yaml:"username,omitempty"`
	SessionID string `json:"session_id,omitempty" yaml:"session_id,omitempty"`

	Output   string `json:"output,omitempty"    yaml:"output,omitempty"`
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	Debug    bool   `json:"debug,omitempty"     yaml:"debug,omitempty"`

	LinkSearch   string            `json:"link_search,omitempty"   yaml:"link_search,omitempty"`
	Collision    string            `json:"collision,omitempty"     yaml:"collision,omitempty"`
	ContentTypes map[string]string `json:"content_types,omitempty" yaml:"content_types,omitempty"`

	Timeout  time.Duration `json:"timeout,omitempty"   yaml:"timeout,omitempty"`
	RetryMax int           `json:"retry_max,omitempty" yaml:"retry_max,omitempty"`

	NATSURL     string `json:"nats_url,omitempty"     yaml:"nats_url,omitempty"`
	NATSSubject string `json:"nats_subject,omitempty" yaml:"nats_subject,omitempty"`

	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// headerKeyPrefix selects an extra request header in "config set", e.g.
// "headers.X-Team".
const headerKeyPrefix = "headers."


// configSetters maps the keys accepted by "config set" to their field.
var configSetters = map[string]func(*Config, string) error{
	"url":          func(c *Config, v string) error { c.URL = v; return nil },
	"token":        func(c *Config, v string) error { c.Token = v; return nil },
	"username":     func(c *Config, v string) error { c.Username = v; return nil },
	"session_id":   func(c *Config, v string) error { c.SessionID = v; return nil },
	"output":       func(c *Config, v string) error { c.Output = v; return nil },
	"log_level":    func(c *Config, v string) error { c.LogLevel = v; return nil },
	"link_search":  func(c *Config, v string) error { c.LinkSearch = v; return nil },
	"collision":    func(c *Config, v string) error { c.Collision = v; return nil },
	"nats_url":     func(c *Config, v string) error { c.NATSURL = v; return nil },
	"nats_subject": func(c *Config, v string) error { c.NATSSubject = v; return nil },
	"debug": func(c *Config, v string) error {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing debug: %w", err)
		}

		c.Debug = parsed

		return nil
	},
	"timeout": func(c *Config, v string) error {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}

		c.Timeout = parsed

		return nil
	},
	"retry_max": func(c *Config, v string) error {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing retry_max: %w", err)
		}

		c.RetryMax = parsed

		return nil
	},
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the rbt configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := maskSecrets(loadConfig())
			out := cmd.OutOrStdout()

			switch viper.GetString("output") {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(out)

				return encoder.Encode(config)
			default:
				return displayConfigTable(out, config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value and write it to the configuration file",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			config := loadConfig()

			if header, ok := strings.CutPrefix(key, headerKeyPrefix); ok && header != "" {
				if config.Headers == nil {
					config.Headers = make(map[string]string)
				}

				config.Headers[strings.ToLower(header)] = value
			} else {
				setter, ok := configSetters[key]
				if !ok {
					return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
				}

				err := setter(config, value)
				if err != nil {
					return err
				}
			}

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		URL:          viper.GetString("url"),
		Token:        viper.GetString("token"),
		Username:     viper.GetString("username"),
		SessionID:    viper.GetString("session_id"),
		Output:       viper.GetString("output"),
		LogLevel:     viper.GetString("log_level"),
		Debug:        viper.GetBool("debug"),
		LinkSearch:   viper.GetString("link_search"),
		Collision:    viper.GetString("collision"),
		ContentTypes: viper.GetStringMapString("content_types"),
		Timeout:      viper.GetDuration("timeout"),
		RetryMax:     viper.GetInt("retry_max"),
		NATSURL:      viper.GetString("nats_url"),
		NATSSubject:  viper.GetString("nats_subject"),
		Headers:      viper.GetStringMapString("headers"),
	}
}

// configFilePath returns the file in use, or $HOME/.rbt/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".rbt", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Later reads in the same process see the saved values.
	for key, value := range map[string]interface{}{
		"url":        config.URL,
		"token":      config.Token,
		"username":   config.Username,
		"session_id": config.SessionID,
		"headers":    config.Headers,
	} {
		viper.Set(key, value)
	}

	return nil
}

func maskSecrets(config *Config) *Config {
	masked := *config

	if masked.Token != "" {
		masked.Token = constants.MaskedSecret
	}

	if masked.SessionID != "" {
		masked.SessionID = constants.MaskedSecret
	}

	return &masked
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append([]string{"URL", formatConfigValue(config.URL)})
	_ = table.Append([]string{"Token", formatConfigValue(config.Token)})
	_ = table.Append([]string{"Username", formatConfigValue(config.Username)})
	_ = table.Append([]string{"Session", formatConfigValue(config.SessionID)})
	_ = table.Append([]string{"Output", formatConfigValue(config.Output)})
	_ = table.Append([]string{"Log Level", formatConfigValue(config.LogLevel)})
	_ = table.Append([]string{"Link Search", formatConfigValue(config.LinkSearch)})
	_ = table.Append([]string{"Collision", formatConfigValue(config.Collision)})
	_ = table.Append([]string{"NATS URL", formatConfigValue(config.NATSURL)})

	names := make([]string, 0, len(config.ContentTypes))
	for name := range config.ContentTypes {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		_ = table.Append([]string{"Content Type " + name, config.ContentTypes[name]})
	}

	headers := make([]string, 0, len(config.Headers))
	for name := range config.Headers {
		headers = append(headers, name)
	}

	sort.Strings(headers)

	for _, name := range headers {
		_ = table.Append([]string{"Header " + name, config.Headers[name]})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return "-"
	}

	return value
}
