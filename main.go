package main

import (
	"fmt"
	"os"

	"github.com/Filatest/sync-your-cookie/cmd"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

var osExit = os.Exit

func main() {
	osExit(runMain(os.Args, func(args []string) error {
		return cmd.Execute(args, cmd.BuildArgs{
			Version:   version,
			Commit:    commit,
			Date:      date,
			BuildType: buildType,
		})
	}))
}

// runMain returns the process exit code. Errors the commands already
// printed carry an empty message.
func runMain(args []string, execute func([]string) error) int {
	err := execute(args)
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Printf("sycd: %s\n", msg)
	}
	return 1
}
