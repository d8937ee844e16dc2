package show

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/djdep/cmd/show/formatters"
	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/internal/analysis"
)

type showOptions struct {
	analysis.Options
	outputFormat string
	generateURL  bool
	betweenUnits []string
}

// Cmd represents the show command
var Cmd = NewCommand()

// NewCommand returns a new show command instance.
func NewCommand() *cobra.Command {
	opts := &showOptions{
		outputFormat: formatters.OutputFormatJSON.String(),
	}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the dependency graph between apps of a Python project",
		Long: `Scans every Python package below the project root, resolves its import
statements and prints which apps depend on which other apps.

Only directories that contain an __init__.py are read. Imports of modules
outside the project are dropped, modules are collapsed to the requested
granularity and imports inside the same module are removed unless
--allow-internal is given.

Example usage:
  djdep show
  djdep show -p ./src -g 2
  djdep show --ignore-tests -f dot
  djdep show -g max --allow-internal -f mermaid
  djdep show -c HEAD~3
  djdep show -w accounts,billing -f dot --url`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts)
		},
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().StringVarP(
		&opts.outputFormat,
		"format",
		"f",
		opts.outputFormat,
		fmt.Sprintf("Output format (%s)", formatters.SupportedFormats()))
	cmd.Flags().BoolVarP(&opts.generateURL, "url", "u", false, "Generate visualization URL (supported formats: dot, mermaid)")
	cmd.Flags().StringSliceVarP(&opts.betweenUnits, "between", "w", nil, "Keep only modules on paths between the given modules (comma-separated)")

	return cmd
}

func runShow(cmd *cobra.Command, opts *showOptions) error {
	settings, err := opts.Resolve(cmd)
	if err != nil {
		return err
	}

	formatter, err := formatters.NewFormatter(settings.Config.Format)
	if err != nil {
		return err
	}

	graph, err := settings.Build(nil)
	if err != nil {
		return err
	}

	graph, err = applyBetweenFilter(opts, settings, graph)
	if err != nil {
		return err
	}

	slog.Debug("rendering graph", "format", settings.Config.Format, "modules", len(graph))

	output, err := formatter.Format(graph, formatters.RenderOptions{
		Label:       settings.Label(),
		Granularity: settings.Config.Granularity,
	})
	if err != nil {
		return fmt.Errorf("failed to format graph: %w", err)
	}

	return emitOutput(cmd, opts, settings.Config.Format, formatter, output)
}

func applyBetweenFilter(opts *showOptions, settings analysis.Settings, graph depgraph.DependencyGraph) (depgraph.DependencyGraph, error) {
	if len(opts.betweenUnits) == 0 {
		return graph, nil
	}
	if len(opts.betweenUnits) < 2 {
		return nil, fmt.Errorf("at least 2 modules required for --between, got %d", len(opts.betweenUnits))
	}

	filtered, missing := depgraph.FilterBetween(graph, settings.Config.Granularity, opts.betweenUnits)
	if len(missing) > 0 {
		return nil, fmt.Errorf("modules not found in graph: %v", missing)
	}
	return filtered, nil
}

func emitOutput(cmd *cobra.Command, opts *showOptions, format string, formatter formatters.Formatter, output string) error {
	if !opts.generateURL {
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	}

	generator, ok := formatter.(formatters.URLGenerator)
	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: URL generation is not supported for %s format\n\n", format)
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	}

	urlStr, err := generator.GenerateURL(output)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), urlStr)
	return nil
}
