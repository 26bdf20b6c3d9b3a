// Package cli implements the sourcebridge command-line surface: migrate,
// validate, info, and regenerate, matching spec.md §6's CLI surface and
// exit codes on top of pkg/engine's capability-driven core.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourcebridge/sourcebridge/pkg/console"
)

// Exit codes per spec.md §6.
const (
	ExitSuccess          = 0
	ExitCommandLineError = 1
	ExitConfigError      = 2
	ExitEnvironmentError = 3
	ExitRepositoryError  = 4
	ExitInterrupted      = 5
	ExitInternalError    = 6
)

var versionInfo = "dev"

// SetVersionInfo sets the version string shown by `sourcebridge version`.
func SetVersionInfo(v string) { versionInfo = v }

// NewRootCommand builds the sourcebridge root command with every
// subcommand attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sourcebridge",
		Short: "One-way source-code migration engine",
		Long: `sourcebridge migrates source code from an origin to a destination along
a named workflow defined in a YAML configuration file.

Common tasks:
  sourcebridge migrate config.yaml my-workflow     # run a migration
  sourcebridge validate config.yaml                # check a config file
  sourcebridge info config.yaml my-workflow        # show pending changes
  sourcebridge regenerate config.yaml my-workflow   # rebuild patch artifacts`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("verbose", false, "accepted for CLI compatibility; has no effect (debug logging is enabled with the DEBUG environment variable)")

	root.AddCommand(newMigrateCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newInfoCommand())
	root.AddCommand(newRegenerateCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(console.FormatInfoMessage(fmt.Sprintf("sourcebridge version %s", versionInfo)))
			return nil
		},
	}
}

// exitWithCode prints err (if non-nil) and terminates the process with
// code, following the teacher's convention of rendering CLI errors through
// pkg/console rather than cobra's default error formatting.
func exitWithCode(err error, code int) {
	if err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
	}
	os.Exit(code)
}
