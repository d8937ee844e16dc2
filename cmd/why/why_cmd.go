package why

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/internal/analysis"
)

const (
	formatText    = "text"
	formatJSON    = "json"
	formatDOT     = "dot"
	formatMermaid = "mermaid"
)

type whyOptions struct {
	analysis.Options
	outputFormat string
}

type directConnection struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Imports []moduleImport `json:"imports"`
}

// moduleImport lists the targets one module imports from the other unit.
type moduleImport struct {
	Module  string   `json:"module"`
	Targets []string `json:"targets"`
}

// Cmd represents the why command.
var Cmd = NewCommand()

// NewCommand returns a new why command instance.
func NewCommand() *cobra.Command {
	opts := &whyOptions{
		outputFormat: formatText,
	}

	cmd := &cobra.Command{
		Use:   "why <from> <to>",
		Short: "Show the imports behind the dependency between two modules",
		Long: `Lists the modules of <from> that import something from <to>, and the
other way around, together with the imported names. <from> and <to> are
module paths at the selected granularity.

Example usage:
  djdep why accounts billing
  djdep why -g 2 shop.orders shop.catalog -f json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhy(cmd, opts, args[0], args[1])
		},
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().StringVarP(
		&opts.outputFormat,
		"format",
		"f",
		opts.outputFormat,
		fmt.Sprintf("Output format (%s)", supportedFormats()))

	return cmd
}

func runWhy(cmd *cobra.Command, opts *whyOptions, fromUnit, toUnit string) error {
	if !isSupportedFormat(opts.outputFormat) {
		return fmt.Errorf("unknown format: %s (valid options: %s)", opts.outputFormat, supportedFormats())
	}
	if fromUnit == toUnit {
		return fmt.Errorf("<from> and <to> must be different modules, got %s twice", fromUnit)
	}

	settings, err := opts.Resolve(cmd)
	if err != nil {
		return err
	}

	raw, err := settings.BuildRaw(nil)
	if err != nil {
		return err
	}

	granularity := settings.Config.Granularity
	known := knownUnits(raw, granularity)
	if !known[fromUnit] {
		return fmt.Errorf("from module not found in dependency graph: %s", fromUnit)
	}
	if !known[toUnit] {
		return fmt.Errorf("to module not found in dependency graph: %s", toUnit)
	}

	// Module-level detail is kept so each edge can name the importing module.
	detailed, err := depgraph.ApplyPipeline(raw, depgraph.PipelineOptions{
		Granularity:   depgraph.MaxGranularity,
		AllowInternal: true,
		IgnoreTests:   settings.Config.IgnoreTests,
	})
	if err != nil {
		return err
	}

	connections := findDirectConnections(detailed, granularity, fromUnit, toUnit)

	output, err := formatOutput(opts.outputFormat, fromUnit, toUnit, connections)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

// knownUnits collapses every discovered module, including modules without imports.
func knownUnits(raw depgraph.DependencyGraph, granularity int) map[string]bool {
	units := make(map[string]bool, len(raw))
	for module := range raw {
		units[depgraph.CollapseModulePath(module, granularity)] = true
	}
	return units
}

func findDirectConnections(g depgraph.DependencyGraph, granularity int, fromUnit, toUnit string) []directConnection {
	var connections []directConnection
	if c, ok := connectionBetween(g, granularity, fromUnit, toUnit); ok {
		connections = append(connections, c)
	}
	if c, ok := connectionBetween(g, granularity, toUnit, fromUnit); ok {
		connections = append(connections, c)
	}
	return connections
}

func connectionBetween(g depgraph.DependencyGraph, granularity int, fromUnit, toUnit string) (directConnection, bool) {
	connection := directConnection{From: fromUnit, To: toUnit}

	for _, module := range g.Nodes() {
		if depgraph.CollapseModulePath(module, granularity) != fromUnit {
			continue
		}

		var targets []string
		for _, dep := range g[module] {
			if depgraph.CollapseModulePath(dep, granularity) == toUnit {
				targets = append(targets, dep)
			}
		}
		if len(targets) > 0 {
			sort.Strings(targets)
			connection.Imports = append(connection.Imports, moduleImport{Module: module, Targets: targets})
		}
	}

	return connection, len(connection.Imports) > 0
}

func formatOutput(format, fromUnit, toUnit string, connections []directConnection) (string, error) {
	switch strings.ToLower(format) {
	case formatText:
		return formatTextOutput(fromUnit, toUnit, connections), nil
	case formatJSON:
		return formatJSONOutput(connections)
	case formatDOT:
		return formatDOTOutput(fromUnit, toUnit, connections), nil
	case formatMermaid:
		return formatMermaidOutput(fromUnit, toUnit, connections), nil
	default:
		return "", fmt.Errorf("unknown format: %s (valid options: %s)", format, supportedFormats())
	}
}

func formatTextOutput(fromUnit, toUnit string, connections []directConnection) string {
	if len(connections) == 0 {
		return fmt.Sprintf("No immediate dependency between %s and %s.", fromUnit, toUnit)
	}

	lines := []string{
		fmt.Sprintf("Direct connection(s) between %s and %s:", fromUnit, toUnit),
	}
	for _, c := range connections {
		lines = append(lines, fmt.Sprintf("- %s depends on %s", c.From, c.To))
		for _, imp := range c.Imports {
			lines = append(lines, fmt.Sprintf("    %s: %s", imp.Module, strings.Join(imp.Targets, ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

func formatJSONOutput(connections []directConnection) (string, error) {
	if connections == nil {
		connections = []directConnection{}
	}
	data, err := json.MarshalIndent(connections, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode connections: %w", err)
	}
	return string(data), nil
}

func formatDOTOutput(fromUnit, toUnit string, connections []directConnection) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString(fmt.Sprintf("  %q [shape=box];\n", fromUnit))
	b.WriteString(fmt.Sprintf("  %q [shape=box];\n", toUnit))
	for _, c := range connections {
		b.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", c.From, c.To, importCountLabel(c)))
	}
	b.WriteString("}")
	return b.String()
}

func formatMermaidOutput(fromUnit, toUnit string, connections []directConnection) string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")
	b.WriteString(fmt.Sprintf("  n0[%q]\n", fromUnit))
	b.WriteString(fmt.Sprintf("  n1[%q]\n", toUnit))

	for _, c := range connections {
		fromNode, toNode := "n0", "n1"
		if c.From == toUnit {
			fromNode, toNode = "n1", "n0"
		}
		b.WriteString(fmt.Sprintf("  %s -->|%q| %s\n", fromNode, importCountLabel(c), toNode))
	}
	return b.String()
}

func importCountLabel(c directConnection) string {
	count := 0
	for _, imp := range c.Imports {
		count += len(imp.Targets)
	}
	if count == 1 {
		return "1 import"
	}
	return fmt.Sprintf("%d imports", count)
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case formatText, formatJSON, formatDOT, formatMermaid:
		return true
	default:
		return false
	}
}

func supportedFormats() string {
	return strings.Join([]string{formatText, formatJSON, formatDOT, formatMermaid}, ", ")
}
