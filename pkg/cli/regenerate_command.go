package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourcebridge/sourcebridge/pkg/console"
	"github.com/sourcebridge/sourcebridge/pkg/engine/baseline"
	"github.com/sourcebridge/sourcebridge/pkg/engine/runner"
)

func newRegenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate <config-path> [workflow-name] [source-ref]",
		Short: "Re-create patch and consistency-file artifacts after destination-side edits",
		Args:  cobra.RangeArgs(1, 3),
		RunE:  runRegenerate,
	}
	cmd.Flags().String("regen-target", "", "destination ref whose tree is the new truth")
	cmd.Flags().String("regen-baseline", "", "destination ref whose tree is reversed to the pristine origin")
	cmd.Flags().Bool("regen-import-baseline", false, "fall back to a fresh origin import when no baseline can be inferred")
	return cmd
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	workflowName := ""
	sourceRef := ""
	if len(args) > 1 {
		workflowName = args[1]
	}
	if len(args) > 2 {
		sourceRef = args[2]
	}

	built, err := loadWorkflow(configPath, workflowName)
	if err != nil {
		exitWithCode(err, ExitConfigError)
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

	regenTarget, _ := cmd.Flags().GetString("regen-target")
	regenBaseline, _ := cmd.Flags().GetString("regen-baseline")
	regenImportBaseline, _ := cmd.Flags().GetBool("regen-import-baseline")

	r := runner.New(origin, dest, built.Config)
	plan, err := r.Regenerate(context.Background(), baseline.Options{
		RegenTarget:         regenTarget,
		RegenBaseline:       regenBaseline,
		RegenImportBaseline: regenImportBaseline,
		SourceRef:           sourceRef,
	})
	if err != nil {
		exitWithCode(err, exitCodeForError(err))
		return nil
	}

	fmt.Println(console.FormatSuccessMessage(fmt.Sprintf(
		"regenerated artifacts: target=%s baseline=%s (from_import=%v)",
		plan.Target.Canonical, plan.Baseline.Canonical, plan.BaselineIsImport)))
	return nil
}
