package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/djdep/internal/analysis"
	"github.com/LegacyCodeHQ/djdep/internal/config"
)

const defaultBatchSize = 500

type exportOptions struct {
	analysis.Options
	clean         bool
	dryRun        bool
	batchSize     int
	projectName   string
	neo4jURI      string
	neo4jUser     string
	neo4jPassword string
	neo4jDatabase string
}

// openLoader is replaced in tests.
var openLoader = newNeo4jLoader

// Cmd represents the export command.
var Cmd = NewCommand()

// NewCommand returns a new export command instance.
func NewCommand() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the module graph to Neo4j",
		Long: `Builds the same graph as 'djdep show' and writes it to Neo4j as PyModule
nodes connected by IMPORTS relationships. Each relationship carries the
imported targets that were collapsed into it.

Connection settings default to the DJDEP_NEO4J_* environment variables and the
neo4j section of .djdep.yaml.

Example usage:
  djdep export --clean
  djdep export -g 2 --neo4j-uri neo4j://db:7687 --neo4j-password secret
  djdep export --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "Remove modules previously exported for this project")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the rows that would be written instead of connecting")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", defaultBatchSize, "Rows per UNWIND query")
	cmd.Flags().StringVar(&opts.projectName, "project-name", "", "Project property stored on nodes (default: project directory name)")
	cmd.Flags().StringVar(&opts.neo4jURI, "neo4j-uri", "", "Neo4j connection URI")
	cmd.Flags().StringVar(&opts.neo4jUser, "neo4j-user", "", "Neo4j username")
	cmd.Flags().StringVar(&opts.neo4jPassword, "neo4j-password", "", "Neo4j password")
	cmd.Flags().StringVar(&opts.neo4jDatabase, "neo4j-database", "", "Neo4j database name")

	return cmd
}

func runExport(cmd *cobra.Command, opts *exportOptions) error {
	if opts.batchSize < 1 {
		return fmt.Errorf("--batch-size must be positive, got %d", opts.batchSize)
	}

	settings, err := opts.Resolve(cmd)
	if err != nil {
		return err
	}

	graph, err := settings.Build(nil)
	if err != nil {
		return err
	}

	granularity := settings.Config.Granularity
	if opts.dryRun {
		return printRows(cmd, moduleRows(graph, granularity), importRows(graph, granularity))
	}

	project := opts.projectName
	if project == "" {
		project = filepath.Base(settings.ProjectDir)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loader, err := openLoader(ctx, opts.neo4jConfig(settings.Config.Neo4j), project, opts.batchSize)
	if err != nil {
		return err
	}
	defer loader.Close(ctx)

	if err := loader.exportGraph(ctx, graph, granularity, opts.clean); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d modules from %s\n", len(graph), settings.Label())
	return nil
}

// neo4jConfig overlays the connection flags that were set on base.
func (o *exportOptions) neo4jConfig(base config.Neo4jConfig) config.Neo4jConfig {
	if o.neo4jURI != "" {
		base.URI = o.neo4jURI
	}
	if o.neo4jUser != "" {
		base.Username = o.neo4jUser
	}
	if o.neo4jPassword != "" {
		base.Password = o.neo4jPassword
	}
	if o.neo4jDatabase != "" {
		base.Database = o.neo4jDatabase
	}
	return base
}

func printRows(cmd *cobra.Command, modules, imports []map[string]any) error {
	if modules == nil {
		modules = []map[string]any{}
	}
	if imports == nil {
		imports = []map[string]any{}
	}
	data, err := json.MarshalIndent(map[string]any{
		"modules": modules,
		"imports": imports,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
