package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourcebridge/sourcebridge/pkg/config"
	"github.com/sourcebridge/sourcebridge/pkg/console"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-path>",
		Short: "Check a workflow definition file for errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows, err := config.Load(args[0])
			if err != nil {
				exitWithCode(err, ExitConfigError)
				return nil
			}
			names := make([]string, 0, len(workflows))
			for name := range workflows {
				names = append(names, name)
			}
			fmt.Println(console.FormatSuccessMessage(fmt.Sprintf("%s is valid (%d workflow(s))", args[0], len(names))))
			for _, name := range names {
				fmt.Println(console.FormatListItem(name))
			}
			return nil
		},
	}
}
