package why

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/djdep/depgraph"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func createProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "accounts/__init__.py", "")
	writeFile(t, root, "accounts/models.py", "from billing.models import Invoice\nfrom .forms import UserForm\n")
	writeFile(t, root, "accounts/views.py", "from billing.tasks import send, retry\nimport os\n")
	writeFile(t, root, "accounts/forms.py", "")
	writeFile(t, root, "billing/__init__.py", "")
	writeFile(t, root, "billing/models.py", "from accounts.models import User\n")
	writeFile(t, root, "billing/tasks.py", "")
	writeFile(t, root, "reports/__init__.py", "")
	writeFile(t, root, "reports/pdf.py", "")
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	cmd.SetArgs(args)

	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	return stdout.String(), err
}

func TestWhyCommand_TextBothDirections(t *testing.T) {
	stdout, err := execute(t, "-p", createProject(t), "accounts", "billing")
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"Direct connection(s) between accounts and billing:",
		"- accounts depends on billing",
		"    accounts.models: billing.models.Invoice",
		"    accounts.views: billing.tasks.retry, billing.tasks.send",
		"- billing depends on accounts",
		"    billing.models: accounts.models.User",
	}, "\n")+"\n", stdout)
}

func TestWhyCommand_TextNoDirectDependency(t *testing.T) {
	stdout, err := execute(t, "-p", createProject(t), "reports", "billing")
	require.NoError(t, err)

	assert.Equal(t, "No immediate dependency between reports and billing.\n", stdout)
}

func TestWhyCommand_JSONFormat(t *testing.T) {
	stdout, err := execute(t, "-p", createProject(t), "-f", "json", "billing", "accounts")
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"from": "billing", "to": "accounts", "imports": [
			{"module": "billing.models", "targets": ["accounts.models.User"]}
		]},
		{"from": "accounts", "to": "billing", "imports": [
			{"module": "accounts.models", "targets": ["billing.models.Invoice"]},
			{"module": "accounts.views", "targets": ["billing.tasks.retry", "billing.tasks.send"]}
		]}
	]`, stdout)
}

func TestWhyCommand_DOTFormat(t *testing.T) {
	stdout, err := execute(t, "-p", createProject(t), "-f", "dot", "accounts", "billing")
	require.NoError(t, err)

	assert.Contains(t, stdout, "digraph G {")
	assert.Contains(t, stdout, `"accounts" -> "billing" [label="3 imports"];`)
	assert.Contains(t, stdout, `"billing" -> "accounts" [label="1 import"];`)
}

func TestWhyCommand_MermaidFormat(t *testing.T) {
	stdout, err := execute(t, "-p", createProject(t), "-f", "mermaid", "billing", "accounts")
	require.NoError(t, err)

	assert.Contains(t, stdout, "flowchart LR\n")
	assert.Contains(t, stdout, `n0 -->|"1 import"| n1`)
	assert.Contains(t, stdout, `n1 -->|"3 imports"| n0`)
}

func TestWhyCommand_FinerGranularity(t *testing.T) {
	stdout, err := execute(t, "-p", createProject(t), "-g", "2", "accounts.views", "billing.tasks")
	require.NoError(t, err)

	assert.Contains(t, stdout, "- accounts.views depends on billing.tasks\n")
	assert.Contains(t, stdout, "    accounts.views: billing.tasks.retry, billing.tasks.send\n")
}

func TestWhyCommand_Errors(t *testing.T) {
	root := createProject(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown from", args: []string{"-p", root, "payments", "billing"}, wantErr: "from module not found in dependency graph: payments"},
		{name: "unknown to", args: []string{"-p", root, "billing", "payments"}, wantErr: "to module not found in dependency graph: payments"},
		{name: "same module", args: []string{"-p", root, "billing", "billing"}, wantErr: "must be different modules"},
		{name: "bad format", args: []string{"-p", root, "-f", "svg", "accounts", "billing"}, wantErr: "unknown format: svg"},
		{name: "missing args", args: []string{"-p", root, "accounts"}, wantErr: "accepts 2 arg(s)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConnectionBetween_SkipsOtherUnits(t *testing.T) {
	g := depgraph.DependencyGraph{
		"accounts.models": {"billing.models.Invoice", "reports.pdf"},
	}

	c, ok := connectionBetween(g, 1, "accounts", "reports")

	require.True(t, ok)
	assert.Equal(t, []moduleImport{{Module: "accounts.models", Targets: []string{"reports.pdf"}}}, c.Imports)

	_, ok = connectionBetween(g, 1, "reports", "accounts")
	assert.False(t, ok)
}
