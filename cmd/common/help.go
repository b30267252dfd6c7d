package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
)

// VersionCmdStr is printed by the version command. Execute fills it in
// from the build arguments.
var VersionCmdStr string

// Replaced in tests; the cli versions exit the process.
var (
	showAppHelpAndExit = cli.ShowAppHelpAndExit
	showCommandHelp    = cli.ShowCommandHelp
)

// Help is the action of the help command: "help" alone prints the app
// help, "help <command>" prints that command's help.
func Help(ctx *cli.Context) error {
	topic := ctx.Args().First()
	if topic == "" || topic == "help" {
		fmt.Printf("%s %s\n", ctx.App.Name, ctx.App.Version)
		showAppHelpAndExit(ctx, 0)
		return nil
	}
	if err := showCommandHelp(ctx, topic); err != nil {
		return PrintErrWithHelp(ctx, err)
	}
	return nil
}

// GetVersion prints VersionCmdStr.
func GetVersion(*cli.Context) error {
	fmt.Println(VersionCmdStr)
	return nil
}

// PrintRuntimeErr prints a failed daemon call as
// "<app>: <cmd>[<action>]: <message>". ctx may be nil.
func PrintRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		return
	}
	fmt.Printf("%s: %s[%s]: %s\n", AppName(ctx), cmd, action, err)
}

// AppName returns the root program name. Subcommand apps carry the
// parent path in HelpName ("sycd account"), so only its first word is kept.
func AppName(ctx *cli.Context) string {
	if ctx != nil && ctx.App != nil {
		if f := strings.Fields(ctx.App.HelpName); len(f) > 0 {
			return f[0]
		}
	}
	return filepath.Base(os.Args[0])
}

// PrintErrWithCmdHelp prints err followed by the current command's help.
func PrintErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printUsageErr(ctx, err, func() {
		if herr := showCommandHelp(ctx, ctx.Command.Name); herr != nil {
			fmt.Println(herr)
		}
	})
}

// PrintErrWithHelp prints err followed by the app help and exits with 1.
func PrintErrWithHelp(ctx *cli.Context, err error) error {
	return printUsageErr(ctx, err, func() { showAppHelpAndExit(ctx, 1) })
}

// UsageErrorCallback is the OnUsageError hook of the app and its commands.
func UsageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name == "" {
		return PrintErrWithHelp(ctx, err)
	}
	return PrintErrWithCmdHelp(ctx, err)
}

func printUsageErr(ctx *cli.Context, err error, showHelp func()) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch lower := strings.ToLower(msg); {
	case lower == "flag: help requested":
		return Help(ctx)
	case strings.Contains(lower, "-v"):
		// -v and -version are not registered as flags.
		return GetVersion(ctx)
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, msg)
	showHelp()
	return nil
}
