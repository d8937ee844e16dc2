package analysis

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/internal/config"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	opts.RegisterFlags(cmd)
	cmd.Flags().StringP("format", "f", "json", "Output format")
	return cmd
}

func resolveWithArgs(t *testing.T, args ...string) (Settings, error) {
	t.Helper()
	opts := &Options{}
	cmd := newTestCommand(opts)
	require.NoError(t, cmd.ParseFlags(args))
	return opts.Resolve(cmd)
}

func TestResolve_FlagsOverrideConfigFile(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, config.FileName, "granularity: 3\nignore_tests: true\nformat: dot\nexclude_dirs: [vendor]\n")

	settings, err := resolveWithArgs(t, "--project", project, "-g", "max", "--exclude-dir", "build", "-f", "mermaid")
	require.NoError(t, err)

	assert.Equal(t, project, settings.ProjectDir)
	assert.Equal(t, depgraph.MaxGranularity, settings.Config.Granularity)
	assert.True(t, settings.Config.IgnoreTests)
	assert.Equal(t, "mermaid", settings.Config.Format)
	assert.Equal(t, []string{"vendor", "build"}, settings.Config.ExcludeDirs)
}

func TestResolve_UnsetFlagsKeepConfigFile(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, config.FileName, "granularity: 2\nallow_internal: true\n")

	settings, err := resolveWithArgs(t, "--project", project)
	require.NoError(t, err)

	assert.Equal(t, 2, settings.Config.Granularity)
	assert.True(t, settings.Config.AllowInternal)
	assert.Equal(t, "json", settings.Config.Format)
}

func TestResolve_InvalidGranularityFlag(t *testing.T) {
	_, err := resolveWithArgs(t, "--project", t.TempDir(), "--granularity", "0")

	assert.ErrorIs(t, err, depgraph.ErrInvalidGranularity)
}

func TestSettings_Build(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "app/__init__.py", "")
	writeFile(t, project, "app/a.py", "from otherapp.m import f\n")
	writeFile(t, project, "otherapp/__init__.py", "")
	writeFile(t, project, "otherapp/m.py", "")

	settings, err := resolveWithArgs(t, "--project", project)
	require.NoError(t, err)

	graph, err := settings.Build(nil)
	require.NoError(t, err)

	assert.Equal(t, depgraph.DependencyGraph{"app": {"otherapp.m.f"}}, graph)
	assert.Equal(t, filepath.Base(project)+" (granularity 1)", settings.Label())
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))
}

func TestSettings_BuildAtCommit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	project := t.TempDir()
	runGit(t, project, "init")
	runGit(t, project, "config", "user.email", "test@example.com")
	runGit(t, project, "config", "user.name", "Test User")

	writeFile(t, project, "app/__init__.py", "")
	writeFile(t, project, "app/a.py", "from otherapp.m import f\n")
	writeFile(t, project, "otherapp/__init__.py", "")
	writeFile(t, project, "otherapp/m.py", "")
	runGit(t, project, "add", ".")
	runGit(t, project, "commit", "-m", "initial")

	writeFile(t, project, "app/a.py", "from billing.m import f\n")
	writeFile(t, project, "billing/__init__.py", "")

	settings, err := resolveWithArgs(t, "--project", project, "--commit", "HEAD")
	require.NoError(t, err)

	graph, err := settings.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, depgraph.DependencyGraph{"app": {"otherapp.m.f"}}, graph)

	settings.CommitID = ""
	graph, err = settings.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, depgraph.DependencyGraph{"app": {"billing.m.f"}}, graph)
}
