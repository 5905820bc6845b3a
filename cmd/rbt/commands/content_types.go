package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/rbt/internal/constants"
	"github.com/fivetwenty-io/rbt/pkg/rbt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewContentTypesCommand creates the content-types command, which lists the
// media type expected for each resource name.
func NewContentTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "content-types",
		Short: "List expected media types",
		Long:  "List the media type each resource must answer with, including overrides from the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := rbt.DefaultContentTypes().With(loadConfig().ContentTypes)

			types := make(map[string]string, registry.Len())
			for _, name := range registry.Names() {
				types[name], _ = registry.Lookup(name)
			}

			out := cmd.OutOrStdout()

			switch format := outputFormat(); format {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(types)
			case constants.FormatYAML:
				return yaml.NewEncoder(out).Encode(types)
			case constants.FormatTable:
				table := tablewriter.NewWriter(out)
				table.Header("Resource", "Media Type")

				for _, name := range registry.Names() {
					_ = table.Append([]string{name, types[name]})
				}

				err := table.Render()
				if err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			default:
				return fmt.Errorf("%w: %s", constants.ErrUnknownFormat, format)
			}
		},
	}
}
