package diff

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/internal/analysis"
	"github.com/LegacyCodeHQ/djdep/vcs/git"
)

type diffMode string

const (
	diffModeWorkingTree diffMode = "working-tree"
	diffModeCommit      diffMode = "commit"
)

const workingTreeLabel = "working tree"

type diffOptions struct {
	analysis.Options
	summary bool
	asJSON  bool
}

// commitComparison names the two snapshots to compare. An empty ref is the
// working tree.
type commitComparison struct {
	baseRef   string
	targetRef string
	mode      diffMode
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type graphDiff struct {
	Base    string `json:"base"`
	Target  string `json:"target"`
	Added   []edge `json:"added"`
	Removed []edge `json:"removed"`
}

// Cmd represents the diff command.
var Cmd = NewCommand()

// NewCommand returns a new diff command instance.
func NewCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show dependency changes between snapshots",
		Long: `Compares the dependency graph of two snapshots of the project and lists the
dependencies that were added or removed.

Without --commit, HEAD is compared with the working tree. A single commit is
compared with the working tree, and <A>,<B> compares commit A with commit B.

Example usage:
  djdep diff
  djdep diff -c HEAD~5
  djdep diff -c v1.2.0,v1.3.0 -g 2 --summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, opts)
		},
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print text summary only")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print changes as JSON")

	return cmd
}

func runDiff(cmd *cobra.Command, opts *diffOptions) error {
	settings, err := opts.Resolve(cmd)
	if err != nil {
		return err
	}

	comparison, err := resolveModeAndCommitComparison(settings.ProjectDir, opts.CommitID)
	if err != nil {
		return err
	}

	base, err := buildSnapshot(settings, comparison.baseRef)
	if err != nil {
		return err
	}
	target, err := buildSnapshot(settings, comparison.targetRef)
	if err != nil {
		return err
	}

	granularity := settings.Config.Granularity
	result := diffGraphs(unitEdgeSet(base, granularity), unitEdgeSet(target, granularity))
	result.Base = snapshotLabel(comparison.baseRef)
	result.Target = snapshotLabel(comparison.targetRef)

	return printDiff(cmd, opts, result)
}

func resolveModeAndCommitComparison(repoPath, commitSpec string) (commitComparison, error) {
	trimmedCommit := strings.TrimSpace(commitSpec)
	if trimmedCommit == "" {
		if err := git.ValidateCommit(repoPath, "HEAD"); err != nil {
			return commitComparison{}, err
		}
		return commitComparison{baseRef: "HEAD", mode: diffModeWorkingTree}, nil
	}

	baseRef, targetRef, err := parseCommitSpec(trimmedCommit)
	if err != nil {
		return commitComparison{}, err
	}

	if baseRef == "" {
		if err := git.ValidateCommit(repoPath, targetRef); err != nil {
			return commitComparison{}, err
		}
		return commitComparison{baseRef: targetRef, mode: diffModeWorkingTree}, nil
	}

	if err := git.ValidateCommit(repoPath, baseRef); err != nil {
		return commitComparison{}, err
	}
	if err := git.ValidateCommit(repoPath, targetRef); err != nil {
		return commitComparison{}, err
	}

	return commitComparison{baseRef: baseRef, targetRef: targetRef, mode: diffModeCommit}, nil
}

func parseCommitSpec(commitSpec string) (baseRef string, targetRef string, err error) {
	if commitSpec == "" {
		return "", "", fmt.Errorf("--commit requires a value")
	}

	commaCount := strings.Count(commitSpec, ",")
	if commaCount == 0 {
		return "", commitSpec, nil
	}
	if commaCount != 1 {
		return "", "", fmt.Errorf("invalid --commit value %q: expected <commit> or <A>,<B>", commitSpec)
	}

	parts := strings.SplitN(commitSpec, ",", 2)
	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])
	if left == "" || right == "" {
		return "", "", fmt.Errorf("invalid --commit value %q: both refs are required in <A>,<B>", commitSpec)
	}

	return left, right, nil
}

func buildSnapshot(settings analysis.Settings, ref string) (depgraph.DependencyGraph, error) {
	settings.CommitID = ref
	return settings.Build(nil)
}

func snapshotLabel(ref string) string {
	if ref == "" {
		return workingTreeLabel
	}
	return ref
}

func unitEdgeSet(g depgraph.DependencyGraph, granularity int) map[edge]bool {
	edges := make(map[edge]bool)
	for from, targets := range depgraph.UnitEdges(g, granularity) {
		for _, to := range targets {
			edges[edge{From: from, To: to}] = true
		}
	}
	return edges
}

func diffGraphs(base, target map[edge]bool) graphDiff {
	result := graphDiff{Added: []edge{}, Removed: []edge{}}
	for e := range target {
		if !base[e] {
			result.Added = append(result.Added, e)
		}
	}
	for e := range base {
		if !target[e] {
			result.Removed = append(result.Removed, e)
		}
	}
	sortEdges(result.Added)
	sortEdges(result.Removed)
	return result
}

func sortEdges(edges []edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
}

func printDiff(cmd *cobra.Command, opts *diffOptions, result graphDiff) error {
	out := cmd.OutOrStdout()

	if opts.asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode diff: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if opts.summary {
		fmt.Fprintf(out, "%s..%s: %d added, %d removed\n", result.Base, result.Target, len(result.Added), len(result.Removed))
		return nil
	}

	if len(result.Added) == 0 && len(result.Removed) == 0 {
		fmt.Fprintf(out, "No dependency changes between %s and %s.\n", result.Base, result.Target)
		return nil
	}

	fmt.Fprintf(out, "Dependency changes between %s and %s:\n", result.Base, result.Target)
	for _, e := range result.Added {
		fmt.Fprintf(out, "+ %s -> %s\n", e.From, e.To)
	}
	for _, e := range result.Removed {
		fmt.Fprintf(out, "- %s -> %s\n", e.From, e.To)
	}
	return nil
}
