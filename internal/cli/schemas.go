package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/partdb/internal/schema"
)

// SchemaInfo describes one schema in the schemas output.
type SchemaInfo struct {
	Name       string      `json:"name"`
	Source     string      `json:"source"` // "builtin" | "config"
	Delimiter  string      `json:"delimiter"`
	Fields     []FieldInfo `json:"fields"`
	Searchable []string    `json:"searchable"`
}

// FieldInfo describes one field of a schema.
type FieldInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// NewSchemasCommand creates the schemas command.
func NewSchemasCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List available record schemas",
		Long: `List the builtin record schemas and any declared in the config file.
Select one with --schema.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemas(rootOpts, cmd)
		},
	}

	return cmd
}

func runSchemas(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts, cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	custom, err := cfg.Custom()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid schema in config", err)
	}

	var infos []SchemaInfo
	for _, s := range custom {
		infos = append(infos, describeSchema(s, "config"))
	}
	for _, s := range schema.Builtins() {
		infos = append(infos, describeSchema(s, "builtin"))
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s (%s, delimiter %s)\n", info.Name, info.Source, info.Delimiter)
		parts := make([]string, len(info.Fields))
		for i, f := range info.Fields {
			parts[i] = f.Name + ":" + f.Kind
		}
		fmt.Fprintf(formatter.Writer, "  fields:     %s\n", strings.Join(parts, " "))
		fmt.Fprintf(formatter.Writer, "  searchable: %s\n", strings.Join(info.Searchable, " "))
	}
	return nil
}

func describeSchema(s *schema.Schema, source string) SchemaInfo {
	info := SchemaInfo{
		Name:       s.Name,
		Source:     source,
		Delimiter:  fmt.Sprintf("%q", s.Delimiter),
		Fields:     make([]FieldInfo, len(s.Fields)),
		Searchable: s.SearchableNames(),
	}
	for i, f := range s.Fields {
		info.Fields[i] = FieldInfo{Name: f.Name, Kind: f.Kind.String()}
	}
	return info
}
