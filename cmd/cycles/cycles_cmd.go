package cycles

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/internal/analysis"
)

// ErrCyclesFound is returned with --fail when at least one cycle exists.
var ErrCyclesFound = errors.New("import cycles found")

type cyclesOptions struct {
	analysis.Options
	asJSON bool
	fail   bool
}

// Cmd represents the cycles command.
var Cmd = NewCommand()

// NewCommand returns a new cycles command instance.
func NewCommand() *cobra.Command {
	opts := &cyclesOptions{}

	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "List import cycles between apps",
		Long: `Builds the same graph as 'djdep show' and lists groups of modules that
import each other, directly or through other modules. With --allow-internal a
module that imports itself is reported as a cycle of one.

Example usage:
  djdep cycles
  djdep cycles -g 2 --ignore-tests
  djdep cycles --json --fail`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycles(cmd, opts)
		},
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print cycles as a JSON array")
	cmd.Flags().BoolVar(&opts.fail, "fail", false, "Exit with an error when cycles are found")

	return cmd
}

func runCycles(cmd *cobra.Command, opts *cyclesOptions) error {
	settings, err := opts.Resolve(cmd)
	if err != nil {
		return err
	}

	graph, err := settings.Build(nil)
	if err != nil {
		return err
	}

	cycles, err := depgraph.FindCycles(graph, settings.Config.Granularity)
	if err != nil {
		return fmt.Errorf("failed to find cycles: %w", err)
	}

	if err := printCycles(cmd, opts, cycles); err != nil {
		return err
	}

	if opts.fail && len(cycles) > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("%w: %d", ErrCyclesFound, len(cycles))
	}
	return nil
}

func printCycles(cmd *cobra.Command, opts *cyclesOptions, cycles [][]string) error {
	out := cmd.OutOrStdout()

	if opts.asJSON {
		if cycles == nil {
			cycles = [][]string{}
		}
		data, err := json.MarshalIndent(cycles, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(cycles) == 0 {
		fmt.Fprintln(out, "No import cycles found.")
		return nil
	}

	for i, cycle := range cycles {
		fmt.Fprintf(out, "C%d: %s\n", i+1, strings.Join(cycle, ", "))
	}
	return nil
}
