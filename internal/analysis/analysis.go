// Package analysis wires project flags, configuration and the dependency graph
// pipeline together for the djdep commands.
package analysis

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/internal/config"
	"github.com/LegacyCodeHQ/djdep/vcs"
	"github.com/LegacyCodeHQ/djdep/vcs/git"
)

// Options holds the project flags shared by every analysis command.
type Options struct {
	ProjectDir    string
	Granularity   string
	AllowInternal bool
	IgnoreTests   bool
	Strict        bool
	ExcludeDirs   []string
	CommitID      string
}

// Settings is the resolved form of Options layered over the project configuration.
type Settings struct {
	ProjectDir string
	CommitID   string
	Config     config.Config
}

// RegisterFlags adds the project flags to cmd.
func (o *Options) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.ProjectDir, "project", "p", ".", "Project root directory")
	cmd.Flags().StringVarP(&o.Granularity, "granularity", "g", "1", "Number of module path segments to keep (or \"max\")")
	cmd.Flags().BoolVar(&o.AllowInternal, "allow-internal", false, "Keep imports that point inside the same module")
	cmd.Flags().BoolVar(&o.IgnoreTests, "ignore-tests", false, "Drop test modules from the graph")
	cmd.Flags().BoolVar(&o.Strict, "strict", false, "Parse sources with a Python grammar instead of line matching")
	cmd.Flags().StringSliceVar(&o.ExcludeDirs, "exclude-dir", nil, "Additional directory names to skip (comma-separated)")
	cmd.Flags().StringVarP(&o.CommitID, "commit", "c", "", "Analyze the project as of a git commit (e.g., HEAD~3, f0459ec)")
}

// Resolve loads the project configuration and applies the flags that were set
// explicitly on cmd.
func (o *Options) Resolve(cmd *cobra.Command) (Settings, error) {
	projectDir := o.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}
	absProjectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to resolve project path: %w", err)
	}

	cfg, err := config.Load(absProjectDir)
	if err != nil {
		return Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("granularity") {
		granularity, err := config.ParseGranularity(o.Granularity)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid --granularity: %w", err)
		}
		cfg.Granularity = granularity
	}
	if flags.Changed("allow-internal") {
		cfg.AllowInternal = o.AllowInternal
	}
	if flags.Changed("ignore-tests") {
		cfg.IgnoreTests = o.IgnoreTests
	}
	if flags.Changed("strict") {
		cfg.Strict = o.Strict
	}
	if flags.Changed("exclude-dir") {
		cfg.ExcludeDirs = append(cfg.ExcludeDirs, o.ExcludeDirs...)
	}
	if flags.Changed("format") {
		format, err := flags.GetString("format")
		if err != nil {
			return Settings{}, err
		}
		cfg.Format = format
	}

	return Settings{
		ProjectDir: absProjectDir,
		CommitID:   o.CommitID,
		Config:     cfg,
	}, nil
}

// BuildRaw builds the unfiltered dependency graph of the project.
func (s Settings) BuildRaw(cache *depgraph.ImportCache) (depgraph.DependencyGraph, error) {
	opts := depgraph.BuildOptions{
		ExtraSkippedDirs: s.Config.ExcludeDirs,
		Strict:           s.Config.Strict,
		Cache:            cache,
	}

	if s.CommitID != "" {
		tree, err := git.NewCommitTree(s.ProjectDir, s.CommitID)
		if err != nil {
			return nil, fmt.Errorf("failed to read commit %s: %w", s.CommitID, err)
		}
		opts.Walker = tree.Walker()
		opts.ContentReader = tree.ContentReader()
	} else {
		opts.Walker = vcs.FilesystemTreeWalker()
		opts.ContentReader = vcs.FilesystemContentReader()
	}

	graph, err := depgraph.BuildDependencyGraph(s.ProjectDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	return graph, nil
}

// Build builds the project graph and runs it through the pipeline.
func (s Settings) Build(cache *depgraph.ImportCache) (depgraph.DependencyGraph, error) {
	raw, err := s.BuildRaw(cache)
	if err != nil {
		return nil, err
	}
	return depgraph.ApplyPipeline(raw, s.Config.PipelineOptions())
}

// Label describes the analyzed project for graph titles.
func (s Settings) Label() string {
	label := fmt.Sprintf("%s (granularity %s)", filepath.Base(s.ProjectDir), config.FormatGranularity(s.Config.Granularity))
	if s.CommitID == "" {
		return label
	}
	if short, err := git.GetShortCommitHash(s.ProjectDir, s.CommitID); err == nil {
		return fmt.Sprintf("%s @ %s", label, short)
	}
	return fmt.Sprintf("%s @ %s", label, s.CommitID)
}
