package main

import (
	"os"

	"github.com/sourcebridge/sourcebridge/pkg/cli"
	"github.com/sourcebridge/sourcebridge/pkg/console"
)

var version = "dev"

func main() {
	cli.SetVersionInfo(version)

	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Stderr.WriteString(console.FormatErrorMessage(err.Error()) + "\n")
		os.Exit(cli.ExitCommandLineError)
	}
}
