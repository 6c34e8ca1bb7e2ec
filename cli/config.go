package cli

import (
	"fmt"
	"reflect"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/compozy/normorder/pkg/config"
)

// ConfigCmd returns the config command group.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	cmd.AddCommand(
		configShowCmd(),
		configValidateCmd(),
	)
	return cmd
}

func configShowCmd() *cobra.Command {
	var showSources bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Display the effective configuration after merging defaults, environment,
the YAML file and command line flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, showSources)
		},
	}
	cmd.Flags().BoolVarP(&showSources, "sources", "s", false, "Show the source of each value")
	return cmd
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// SetupGlobalConfig already rejected an invalid configuration.
			manager := config.ManagerFromContext(cmd.Context())
			if err := manager.Service.Validate(manager.Get()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return err
		},
	}
}

// configEntry is one leaf of the configuration tree.
type configEntry struct {
	Key    string            `json:"key"              yaml:"key"`
	Value  any               `json:"value"            yaml:"value"`
	Source config.SourceType `json:"source,omitempty" yaml:"source,omitempty"`
	Env    string            `json:"env,omitempty"    yaml:"env,omitempty"`
}

func runConfigShow(cmd *cobra.Command, showSources bool) error {
	manager := config.ManagerFromContext(cmd.Context())
	cfg := manager.Get()
	if cfg == nil {
		cfg = config.Default()
	}
	entries := collectEntries("", reflect.ValueOf(cfg).Elem(), nil)
	for i := range entries {
		entries[i].Env = config.GetEnvVarForConfigPath(entries[i].Key)
		if showSources {
			entries[i].Source = manager.Service.GetSource(entries[i].Key)
		}
	}
	r := newRenderer(cmd, cfg)
	if r.structured() {
		values := make(map[string]any, len(entries))
		for _, e := range entries {
			values[e.Key] = e.Value
		}
		output := map[string]any{"config": values}
		if showSources {
			output["sources"] = entries
		}
		return r.encode(output)
	}
	return outputTable(r, entries, showSources)
}

// collectEntries walks the koanf-tagged fields of val in declaration order.
func collectEntries(prefix string, val reflect.Value, entries []configEntry) []configEntry {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("koanf")
		if tag == "" || tag == "-" {
			continue
		}
		key := buildFieldKey(prefix, tag)
		fieldVal := val.Field(i)
		if shouldRecurse(fieldVal, &field) {
			entries = collectEntries(key, fieldVal, entries)
			continue
		}
		entries = append(entries, configEntry{Key: key, Value: fieldVal.Interface()})
	}
	return entries
}

// buildFieldKey builds the full key path for a field
func buildFieldKey(prefix, tag string) string {
	if prefix != "" {
		return prefix + "." + tag
	}
	return tag
}

// shouldRecurse determines if a field should be recursively processed
func shouldRecurse(fieldVal reflect.Value, field *reflect.StructField) bool {
	return fieldVal.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Duration(0))
}

func outputTable(r *renderer, entries []configEntry, showSources bool) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	if showSources {
		fmt.Fprintln(w, "KEY\tVALUE\tSOURCE\tENV")
		fmt.Fprintln(w, "---\t-----\t------\t---")
	} else {
		fmt.Fprintln(w, "KEY\tVALUE")
		fmt.Fprintln(w, "---\t-----")
	}
	for _, e := range entries {
		if showSources {
			fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", e.Key, e.Value, e.Source, e.Env)
		} else {
			fmt.Fprintf(w, "%s\t%v\n", e.Key, e.Value)
		}
	}
	return w.Flush()
}
