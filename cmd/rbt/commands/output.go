package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/rbt/internal/constants"
	"github.com/fivetwenty-io/rbt/pkg/rbt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// renderComponent writes a component in the configured output format. JSON
// and YAML print the payload as received; the table lists the fields and
// the links.
func renderComponent(out io.Writer, component *rbt.Component) error {
	switch format := outputFormat(); format {
	case constants.FormatJSON:
		data, err := json.MarshalIndent(component.JSON(), "", strings.Repeat(" ", constants.JSONIndentSize))
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}

		_, err = fmt.Fprintln(out, string(data))

		return err
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(constants.JSONIndentSize)

		err := encoder.Encode(yamlValue(component.JSON()))
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	case constants.FormatTable:
		return renderComponentTable(out, component)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownFormat, format)
	}
}

func outputFormat() string {
	format := strings.ToLower(viper.GetString("output"))
	if format == "" {
		return constants.FormatJSON
	}

	return format
}

func renderComponentTable(out io.Writer, component *rbt.Component) error {
	table := tablewriter.NewWriter(out)
	table.Header("Field", "Value")

	for _, name := range component.Fields() {
		if name == "links" {
			continue
		}

		value, err := component.Get(name)
		if err != nil {
			return err
		}

		_ = table.Append([]string{name, truncate(describe(value))})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	links := component.Links()
	if len(links) == 0 {
		return nil
	}

	table = tablewriter.NewWriter(out)
	table.Header("Link", "Method", "Href")

	for _, name := range links {
		resource, err := component.Link(name)
		if err != nil {
			return err
		}

		_ = table.Append([]string{name, string(resource.Method()), resource.Href()})
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func describe(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return constants.NotAvailable
	case *rbt.Component:
		return fmt.Sprintf("{%d fields}", len(v.Fields()))
	case rbt.List:
		return fmt.Sprintf("[%d items]", len(v))
	case *rbt.Resource:
		return fmt.Sprintf("%s %s", v.Method(), v.Href())
	default:
		return fmt.Sprint(v)
	}
}

func truncate(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	if len(value) <= constants.ValueDisplayLength {
		return value
	}

	return value[:constants.ValueDisplayLength-3] + "..."
}

// yamlValue replaces json.Number values so YAML prints them unquoted.
func yamlValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		converted := make(map[string]interface{}, len(v))
		for key, item := range v {
			converted[key] = yamlValue(item)
		}

		return converted
	case []interface{}:
		converted := make([]interface{}, len(v))
		for i, item := range v {
			converted[i] = yamlValue(item)
		}

		return converted
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}

		if f, err := v.Float64(); err == nil {
			return f
		}

		return v.String()
	default:
		return v
	}
}
