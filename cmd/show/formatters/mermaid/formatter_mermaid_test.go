package mermaid_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/djdep/cmd/show/formatters/mermaid"
	"github.com/LegacyCodeHQ/djdep/depgraph"
)

func mermaidGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t, goldie.WithNameSuffix(".gold.txt"))
}

func TestFormat_AppGraph(t *testing.T) {
	g := depgraph.DependencyGraph{
		"accounts": {"billing.models.Invoice"},
		"billing":  {"accounts.models.User", "reports.pdf.render"},
		"tests":    {"accounts.views"},
	}

	output := mermaid.Format(g, mermaid.Options{
		Granularity: 1,
		Cycles:      [][]string{{"accounts", "billing"}},
	})

	mermaidGoldie(t).Assert(t, t.Name(), []byte(output))
}

func TestFormat_WithLabel(t *testing.T) {
	output := mermaid.Format(depgraph.DependencyGraph{"app": {"otherapp.m.f"}}, mermaid.Options{
		Label:       "project",
		Granularity: 1,
	})

	mermaidGoldie(t).Assert(t, t.Name(), []byte(output))
}

func TestGenerateURL(t *testing.T) {
	url, err := mermaid.GenerateURL("flowchart LR")
	require.NoError(t, err)

	encoded, ok := strings.CutPrefix(url, "https://mermaid.live/edit#base64:")
	require.True(t, ok)
	decoded, err := base64.URLEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), `"code":"flowchart LR"`)
}
