package watch

import (
	"fmt"
	"io"
	"sync"

	"github.com/LegacyCodeHQ/djdep/cmd/show/formatters"
	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/internal/analysis"
)

// graphBuilder rebuilds and renders the project graph, reusing parsed imports
// of unchanged files across rebuilds.
type graphBuilder struct {
	settings  analysis.Settings
	formatter formatters.Formatter
	cache     *depgraph.ImportCache
}

func newGraphBuilder(settings analysis.Settings, cacheSize int) (*graphBuilder, error) {
	formatter, err := formatters.NewFormatter(settings.Config.Format)
	if err != nil {
		return nil, err
	}
	cache, err := depgraph.NewImportCache(cacheSize)
	if err != nil {
		return nil, err
	}
	return &graphBuilder{settings: settings, formatter: formatter, cache: cache}, nil
}

func (g *graphBuilder) render() (string, error) {
	graph, err := g.settings.Build(g.cache)
	if err != nil {
		return "", err
	}

	output, err := g.formatter.Format(graph, formatters.RenderOptions{
		Label:       g.settings.Label(),
		Granularity: g.settings.Config.Granularity,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format graph: %w", err)
	}
	return output, nil
}

func (g *graphBuilder) skippedDirs() map[string]bool {
	skipped := make(map[string]bool)
	for _, name := range depgraph.DefaultSkippedDirs {
		skipped[name] = true
	}
	for _, name := range g.settings.Config.ExcludeDirs {
		skipped[name] = true
	}
	return skipped
}

type graphRenderer interface {
	render() (string, error)
}

// graphPublisher prints and broadcasts the graph whenever its rendering changes.
type graphPublisher struct {
	builder graphRenderer
	broker  *broker
	out     io.Writer
	errOut  io.Writer

	mu   sync.Mutex
	last string
}

func (p *graphPublisher) publish() error {
	output, err := p.builder.render()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if output == p.last {
		return nil
	}
	p.last = output

	fmt.Fprintln(p.out, output)
	p.broker.publish(output)
	return nil
}

func (p *graphPublisher) rebuild() {
	if err := p.publish(); err != nil {
		fmt.Fprintf(p.errOut, "graph rebuild error: %v\n", err)
	}
}
