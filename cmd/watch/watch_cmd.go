package watch

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/djdep/cmd/show/formatters"
	"github.com/LegacyCodeHQ/djdep/internal/analysis"
)

const importCacheSize = 4096

type watchOptions struct {
	analysis.Options
	outputFormat string
	port         int
}

// Cmd represents the watch command.
var Cmd = NewCommand()

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{
		outputFormat: formatters.OutputFormatJSON.String(),
		port:         4900,
	}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a project and rebuild the dependency graph on changes",
		Long: `Watches the project for changes to Python files, rebuilds the dependency
graph and prints it whenever it changes. The latest graph is also streamed
over server-sent events at localhost unless --port is 0.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	opts.RegisterFlags(cmd)
	cmd.Flags().StringVarP(
		&opts.outputFormat,
		"format",
		"f",
		opts.outputFormat,
		fmt.Sprintf("Output format (%s)", formatters.SupportedFormats()))
	cmd.Flags().IntVarP(&opts.port, "port", "P", opts.port, "HTTP server port (0 disables the server)")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	if opts.CommitID != "" {
		return fmt.Errorf("--commit cannot be used with watch")
	}

	settings, err := opts.Resolve(cmd)
	if err != nil {
		return err
	}

	builder, err := newGraphBuilder(settings, importCacheSize)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b := newBroker()
	if opts.port > 0 {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", opts.port))
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", opts.port, err)
		}
		srv := newServer(b, opts.port)
		go srv.Serve(ln)
		defer srv.Close()
	}

	publisher := &graphPublisher{
		builder: builder,
		broker:  b,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}
	if err := publisher.publish(); err != nil {
		return fmt.Errorf("initial graph build failed: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n", settings.ProjectDir)
	if opts.port > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Serving at http://localhost:%d\n", opts.port)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Press Ctrl+C to stop\n")

	return watchAndRebuild(ctx, settings.ProjectDir, builder.skippedDirs(), publisher.rebuild)
}
