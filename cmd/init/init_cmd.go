package init

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LegacyCodeHQ/djdep/internal/config"
)

type initOptions struct {
	projectDir string
	force      bool
	quiet      bool
}

// Cmd represents the init command
var Cmd = NewCommand()

// NewCommand returns a new init command instance.
func NewCommand() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .djdep.yaml in the project directory",
		Long: `Writes a .djdep.yaml with the current settings to the project directory.
Values already set through DJDEP_* environment variables or a .env file are
written as well, except the Neo4j password.

With --force: Overwrites an existing .djdep.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.projectDir, "project", "p", ".", "Project root directory")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing configuration file")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress output")

	return cmd
}

func runInit(cmd *cobra.Command, opts *initOptions) error {
	projectDir, err := filepath.Abs(opts.projectDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(projectDir)
	if err != nil {
		return fmt.Errorf("failed to read project directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project path is not a directory: %s", projectDir)
	}

	path := filepath.Join(projectDir, config.FileName)
	_, err = os.Stat(path)
	fileExists := !errors.Is(err, fs.ErrNotExist)
	if fileExists && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	// An existing file is ignored so --force starts over from defaults and env.
	cfg := config.Default()
	if !fileExists {
		cfg, err = config.Load(projectDir)
		if err != nil {
			return err
		}
	}

	content, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if !opts.quiet {
		out := cmd.OutOrStdout()
		if fileExists {
			fmt.Fprintf(out, "Overwrote %s\n", path)
		} else {
			fmt.Fprintf(out, "Created %s\n", path)
		}
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Next steps:")
		fmt.Fprintln(out, "  - Run 'djdep show' to print the app dependency graph")
		fmt.Fprintln(out, "  - Run 'djdep cycles' to look for import cycles")
	}

	return nil
}
