package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sourcebridge/sourcebridge/pkg/console"
	"github.com/sourcebridge/sourcebridge/pkg/engine/model"
	"github.com/sourcebridge/sourcebridge/pkg/engine/runner"
	"github.com/sourcebridge/sourcebridge/pkg/logger"
)

var migrateLog = logger.New("cli:migrate_command")

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate <config-path> [workflow-name] [source-ref...]",
		Short: "Run a migration workflow",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMigrate,
	}
	addMigrateFlags(cmd)
	return cmd
}

// addMigrateFlags registers every flag spec.md §6 says the core recognizes,
// shared by migrate and (where applicable) regenerate.
func addMigrateFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("force", false, "force the migration even if the resolved revision looks already migrated")
	cmd.Flags().String("last-revision", "", "override the last-migrated revision used to compute the batch")
	cmd.Flags().Bool("check-last-rev-state", false, "accepted and stored in the workflow config; has no effect on the migration")
	cmd.Flags().Bool("init-history", false, "allow a migration when the destination has no rev-id label, starting from the origin's first change")
	cmd.Flags().Bool("dry-run", false, "run the full pipeline and writer dry-run path without persisting")
	cmd.Flags().Bool("squash", false, "force SQUASH mode regardless of the workflow's configured mode")
	cmd.Flags().Int("iterative-limit-changes", 0, "cap the number of changes migrated in one ITERATIVE run")
	cmd.Flags().Bool("ignore-noop", false, "do not fail a change whose transformations produced no changes")
	cmd.Flags().Bool("migrate-noop-changes", false, "migrate changes with no effect on destination_files")
	cmd.Flags().Bool("smart-prune", false, "restrict a CHANGE_REQUEST checkout to files that differ from the labeled baseline")
	cmd.Flags().Bool("no-smart-prune", false, "disable smart-prune even if the workflow enables it")
	cmd.Flags().String("change-request-parent", "", "override the baseline ref a CHANGE_REQUEST diffs against")
	cmd.Flags().Int("change-request-from-sot-limit", 0, "cap retry attempts for CHANGE_REQUEST_FROM_SOT")
	cmd.Flags().String("change-request-from-sot-retry", "", "retry schedule, e.g. \"10s,30s,1m,exponential\"")
	cmd.Flags().String("expected-fixed-ref", "", "fail as a no-op unless the resolved revision's fixed ref matches")
	cmd.Flags().String("pinned-fixed-ref", "", "fail validation unless an ancestor's fixed ref matches")
	cmd.Flags().Bool("same-version", false, "accepted for CLI compatibility; has no effect on the migration")
	cmd.Flags().Bool("diff-in-origin", false, "compute the destination diff against the origin instead of the prior import")
	cmd.Flags().String("force-author", "", "override the author recorded on the destination change")
	cmd.Flags().String("force-message", "", "override the message recorded on the destination change")
	cmd.Flags().String("to-folder", "", "write the migrated tree to a local folder destination instead of the configured one")
	cmd.Flags().StringSlice("labels", nil, "K=V pairs exposed to after-migration/after-workflow actions as ctx.cli_labels")
	cmd.Flags().StringSlice("temporary-features", nil, "K:bool pairs; accepted for CLI compatibility, has no effect on the migration")
	cmd.Flags().String("workflow-identity-user", "", "accepted for CLI compatibility; has no effect on the migration")
	cmd.Flags().Bool("disable-consistency-merge-import", false, "skip consistency-file reconstruction during merge-import")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	workflowName := ""
	sourceRefs := args[1:]
	if len(sourceRefs) > 0 {
		workflowName = sourceRefs[0]
		sourceRefs = sourceRefs[1:]
	}

	built, err := loadWorkflow(configPath, workflowName)
	if err != nil {
		exitWithCode(err, ExitConfigError)
		return nil
	}

	if v, _ := cmd.Flags().GetString("to-folder"); v != "" {
		built.DestName = "folder:" + v
	}

	if err := applyFlagOverrides(cmd, &built.Config); err != nil {
		exitWithCode(err, ExitCommandLineError)
		return nil
	}

	origin, err := buildOrigin(built.OriginName)
	if err != nil {
		exitWithCode(err, ExitConfigError)
		return nil
	}
	dest, err := buildDestination(built.DestName)
	if err != nil {
		exitWithCode(err, ExitConfigError)
		return nil
	}

	labels, err := parseLabels(cmd)
	if err != nil {
		exitWithCode(err, ExitCommandLineError)
		return nil
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	r := runner.New(origin, dest, built.Config)
	r.CLILabels = labels
	r.Console = func(level, msg string) { printConsoleLine(level, msg) }

	migrateLog.Printf("running workflow %q (mode=%s, dry_run=%v)", built.Config.Name, built.Config.Mode, dryRun)

	result, err := r.Run(context.Background(), runner.RunOptions{SourceRefs: sourceRefs, DryRun: dryRun})
	if err != nil {
		code := exitCodeForError(err)
		exitWithCode(err, code)
		return nil
	}

	printEffects(result.Effects)
	if anyFailed(result.Effects) {
		exitWithCode(nil, ExitRepositoryError)
	}
	return nil
}

func parseLabels(cmd *cobra.Command) (map[string]string, error) {
	raw, _ := cmd.Flags().GetStringSlice("labels")
	out := make(map[string]string, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--labels entry %q is not in K=V form", kv)
		}
		out[name] = value
	}
	return out, nil
}

func printConsoleLine(level, msg string) {
	switch level {
	case "error":
		fmt.Println(console.FormatErrorMessage(msg))
	case "warning":
		fmt.Println(console.FormatWarningMessage(msg))
	default:
		fmt.Println(console.FormatProgressMessage(msg))
	}
}

func printEffects(effects []model.Effect) {
	if len(effects) == 0 {
		return
	}
	rows := make([][]string, 0, len(effects))
	for _, e := range effects {
		rows = append(rows, []string{string(e.Type), e.Summary, e.DestinationRef})
	}
	fmt.Print(console.RenderTable(console.TableConfig{
		Title:   "Effects",
		Headers: []string{"Type", "Summary", "Destination"},
		Rows:    rows,
	}))
}

func anyFailed(effects []model.Effect) bool {
	for _, e := range effects {
		if e.IsFailure() {
			return true
		}
	}
	return false
}

// exitCodeForError maps a runner error to the exit code table in spec.md §7.
func exitCodeForError(err error) int {
	switch err.(type) {
	case *model.CannotResolveRevisionError, *model.RepoError:
		return ExitRepositoryError
	case *model.ValidationError, *model.NotADestinationFileError:
		return ExitConfigError
	case *model.CancelledError:
		return ExitInterrupted
	case *model.ChangeRejectedError:
		return ExitCommandLineError
	default:
		return ExitInternalError
	}
}
