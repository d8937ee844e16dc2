package export

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LegacyCodeHQ/djdep/depgraph"
)

func sampleGraph() depgraph.DependencyGraph {
	return depgraph.DependencyGraph{
		"accounts": {"billing.models.Invoice", "billing.tasks.send", "reports.pdf"},
		"billing":  {"accounts.models.User"},
		"tests":    {"accounts.models.User"},
	}
}

func TestModuleRows(t *testing.T) {
	rows := moduleRows(sampleGraph(), 1)

	assert.Equal(t, []map[string]any{
		{"path": "accounts", "name": "accounts", "app": "accounts", "has_imports": true, "is_test": false},
		{"path": "billing", "name": "billing", "app": "billing", "has_imports": true, "is_test": false},
		{"path": "reports", "name": "reports", "app": "reports", "has_imports": false, "is_test": false},
		{"path": "tests", "name": "tests", "app": "tests", "has_imports": true, "is_test": true},
	}, rows)
}

func TestModuleRows_NestedUnits(t *testing.T) {
	g := depgraph.DependencyGraph{
		"shop.orders": {"shop.catalog.models.Product"},
	}

	rows := moduleRows(g, 2)

	assert.Equal(t, []map[string]any{
		{"path": "shop.catalog", "name": "catalog", "app": "shop", "has_imports": false, "is_test": false},
		{"path": "shop.orders", "name": "orders", "app": "shop", "has_imports": true, "is_test": false},
	}, rows)
}

func TestImportRows_GroupsTargetsByUnit(t *testing.T) {
	rows := importRows(sampleGraph(), 1)

	assert.Equal(t, []map[string]any{
		{"from": "accounts", "to": "billing", "targets": []string{"billing.models.Invoice", "billing.tasks.send"}, "count": 2},
		{"from": "accounts", "to": "reports", "targets": []string{"reports.pdf"}, "count": 1},
		{"from": "billing", "to": "accounts", "targets": []string{"accounts.models.User"}, "count": 1},
		{"from": "tests", "to": "accounts", "targets": []string{"accounts.models.User"}, "count": 1},
	}, rows)
}

func TestImportRows_EmptyGraph(t *testing.T) {
	assert.Empty(t, importRows(depgraph.DependencyGraph{}, 1))
	assert.Empty(t, moduleRows(depgraph.DependencyGraph{}, 1))
}

func TestChunkRows(t *testing.T) {
	rows := make([]map[string]any, 5)

	chunks := chunkRows(rows, 2)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[2], 1)

	assert.Len(t, chunkRows(rows, 0), 1)
	assert.Empty(t, chunkRows(nil, 2))
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, "models", lastSegment("accounts.models"))
	assert.Equal(t, "accounts", lastSegment("accounts"))
}
