package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourcebridge/sourcebridge/pkg/console"
	"github.com/sourcebridge/sourcebridge/pkg/engine/runner"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <config-path> [workflow-name]",
		Short: "Show the origin head, last-imported revision, and pending changes",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runInfo,
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	workflowName := ""
	if len(args) > 1 {
		workflowName = args[1]
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

	r := runner.New(origin, dest, built.Config)
	result, err := r.Info(context.Background(), "")
	if err != nil {
		exitWithCode(err, exitCodeForError(err))
		return nil
	}

	fmt.Println(console.FormatInfoMessage(fmt.Sprintf("origin head: %s", result.OriginHead.Canonical)))
	if result.LastImported != nil {
		fmt.Println(console.FormatInfoMessage(fmt.Sprintf("last imported: %s", result.LastImported.Canonical)))
	} else {
		fmt.Println(console.FormatInfoMessage("last imported: (none)"))
	}

	if len(result.PendingChanges) == 0 {
		fmt.Println(console.FormatInfoMessage("no pending changes"))
		return nil
	}

	rows := make([][]string, 0, len(result.PendingChanges))
	for _, c := range result.PendingChanges {
		rows = append(rows, []string{c.Revision.Canonical, c.Author.String(), c.Message})
	}
	fmt.Print(console.RenderTable(console.TableConfig{
		Title:   "Pending changes",
		Headers: []string{"Revision", "Author", "Message"},
		Rows:    rows,
	}))
	return nil
}
