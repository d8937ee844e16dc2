package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/internal/config"
)

// cypherRunner runs a single Cypher statement with optional parameters.
type cypherRunner func(ctx context.Context, cypher string, params map[string]any) error

// neo4jLoader writes a module graph into Neo4j using batched UNWIND queries.
type neo4jLoader struct {
	run       cypherRunner
	close     func(ctx context.Context) error
	project   string
	batchSize int
}

// newNeo4jLoader connects to Neo4j and returns a ready-to-use loader.
func newNeo4jLoader(ctx context.Context, cfg config.Neo4jConfig, project string, batchSize int) (*neo4jLoader, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", cfg.URI, err)
	}

	run := func(ctx context.Context, cypher string, params map[string]any) error {
		_, err := neo4j.ExecuteQuery(ctx, driver, cypher, params, neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(cfg.Database))
		return err
	}

	return &neo4jLoader{
		run:       run,
		close:     driver.Close,
		project:   project,
		batchSize: batchSize,
	}, nil
}

// Close releases the underlying Neo4j driver resources.
func (l *neo4jLoader) Close(ctx context.Context) error {
	if l.close == nil {
		return nil
	}
	return l.close(ctx)
}

// cleanGraph removes the modules previously exported for the project.
func (l *neo4jLoader) cleanGraph(ctx context.Context) error {
	slog.Debug("cleaning exported modules", "project", l.project)
	return l.run(ctx,
		"MATCH (n:PyModule {project: $project}) DETACH DELETE n",
		map[string]any{"project": l.project})
}

// createIndexes ensures the lookup index for module nodes exists.
func (l *neo4jLoader) createIndexes(ctx context.Context) error {
	return l.run(ctx,
		"CREATE INDEX py_module_key IF NOT EXISTS FOR (n:PyModule) ON (n.project, n.path)",
		nil)
}

// loadModules upserts PyModule nodes.
func (l *neo4jLoader) loadModules(ctx context.Context, rows []map[string]any) error {
	slog.Debug("loading modules", "count", len(rows))
	return l.runBatches(ctx, `UNWIND $batch AS row
		 MERGE (n:PyModule {project: $project, path: row.path})
		 SET n.name = row.name, n.app = row.app, n.has_imports = row.has_imports, n.is_test = row.is_test`,
		rows)
}

// loadImports upserts IMPORTS relationships between PyModule nodes.
func (l *neo4jLoader) loadImports(ctx context.Context, rows []map[string]any) error {
	slog.Debug("loading imports", "count", len(rows))
	return l.runBatches(ctx, `UNWIND $batch AS row
		 MATCH (from:PyModule {project: $project, path: row.from}),
		       (to:PyModule {project: $project, path: row.to})
		 MERGE (from)-[r:IMPORTS]->(to)
		 SET r.targets = row.targets, r.count = row.count`,
		rows)
}

func (l *neo4jLoader) runBatches(ctx context.Context, cypher string, rows []map[string]any) error {
	for _, batch := range chunkRows(rows, l.batchSize) {
		params := map[string]any{"batch": batch, "project": l.project}
		if err := l.run(ctx, cypher, params); err != nil {
			return err
		}
	}
	return nil
}

// exportGraph writes g to Neo4j. Existing modules of the project are removed
// first when clean is set.
func (l *neo4jLoader) exportGraph(ctx context.Context, g depgraph.DependencyGraph, granularity int, clean bool) error {
	if clean {
		if err := l.cleanGraph(ctx); err != nil {
			return fmt.Errorf("failed to clean graph: %w", err)
		}
	}
	if err := l.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	if err := l.loadModules(ctx, moduleRows(g, granularity)); err != nil {
		return fmt.Errorf("failed to load modules: %w", err)
	}
	if err := l.loadImports(ctx, importRows(g, granularity)); err != nil {
		return fmt.Errorf("failed to load imports: %w", err)
	}
	return nil
}
