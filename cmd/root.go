package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/djdep/cmd/cycles"
	"github.com/LegacyCodeHQ/djdep/cmd/diff"
	"github.com/LegacyCodeHQ/djdep/cmd/export"
	initcmd "github.com/LegacyCodeHQ/djdep/cmd/init"
	"github.com/LegacyCodeHQ/djdep/cmd/show"
	"github.com/LegacyCodeHQ/djdep/cmd/watch"
	"github.com/LegacyCodeHQ/djdep/cmd/why"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// debug enables debug logging on stderr
var debug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "djdep",
	Short: "Analyze import dependencies between the apps of a Python project",
	Long: `djdep reads the import statements of a Python project and reports which
of its apps depend on which other apps. Imports of the standard library and
third-party packages are left out.

Use 'djdep --help' to see all available commands, or 'djdep <command> --help'
for detailed information about a specific command.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(cmd, debug))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func init() {
	// Register subcommands
	rootCmd.AddCommand(show.Cmd)
	rootCmd.AddCommand(cycles.Cmd)
	rootCmd.AddCommand(watch.Cmd)
	rootCmd.AddCommand(why.Cmd)
	rootCmd.AddCommand(diff.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(initcmd.Cmd)

	// Initialize annotations for version template
	if rootCmd.Annotations == nil {
		rootCmd.Annotations = make(map[string]string)
	}
	rootCmd.Annotations["buildDate"] = buildDate
	rootCmd.Annotations["commit"] = commit

	// Update version field dynamically (in case it was set via ldflags)
	rootCmd.Version = version

	// Customize version template to show additional build info
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug information to stderr")
}
