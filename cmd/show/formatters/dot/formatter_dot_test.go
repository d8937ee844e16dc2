package dot_test

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/LegacyCodeHQ/djdep/cmd/show/formatters/dot"
	"github.com/LegacyCodeHQ/djdep/depgraph"
)

func dotGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t, goldie.WithNameSuffix(".gold.txt"))
}

func appGraph() depgraph.DependencyGraph {
	return depgraph.DependencyGraph{
		"accounts": {"billing.models.Invoice"},
		"billing":  {"accounts.models.User", "reports.pdf.render"},
		"tests":    {"accounts.views"},
	}
}

func TestFormat_AppGraph(t *testing.T) {
	output := dot.Format(appGraph(), dot.Options{
		Granularity: 1,
		Cycles:      [][]string{{"accounts", "billing"}},
	})

	dotGoldie(t).Assert(t, t.Name(), []byte(output))
}

func TestFormat_WithLabel(t *testing.T) {
	output := dot.Format(depgraph.DependencyGraph{"app": {"otherapp.m.f"}}, dot.Options{
		Label:       "project",
		Granularity: 1,
	})

	dotGoldie(t).Assert(t, t.Name(), []byte(output))
}

func TestFormat_MaxGranularity(t *testing.T) {
	output := dot.Format(depgraph.DependencyGraph{"app.views": {"app.models.Post"}}, dot.Options{
		Granularity: depgraph.MaxGranularity,
	})

	dotGoldie(t).Assert(t, t.Name(), []byte(output))
}

func TestFormat_EmptyGraph(t *testing.T) {
	output := dot.Format(depgraph.DependencyGraph{}, dot.Options{Granularity: 1})

	dotGoldie(t).Assert(t, t.Name(), []byte(output))
}

func TestGenerateURL(t *testing.T) {
	url := dot.GenerateURL("digraph dependencies {}")

	assert.True(t, strings.HasPrefix(url, "https://dreampuf.github.io/GraphvizOnline/?engine=dot#"))
	assert.Contains(t, url, "digraph%20dependencies%20%7B%7D")
}
