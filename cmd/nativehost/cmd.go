// Package nativehost provides the CLI commands that register sycd as the
// extension's native messaging host and run the host when a browser
// launches it.
package nativehost

import "github.com/urfave/cli"

// Commands contains all native-host related subcommands.
var Commands = []cli.Command{
	{
		Name:   "install",
		Action: install,
		Usage:  "install native messaging manifest for browsers",
		Flags:  installFlags,
	},
	{
		Name:   "uninstall",
		Action: uninstall,
		Usage:  "remove native messaging manifest from browsers",
		Flags:  browserFlags,
	},
	{
		Name:   "run",
		Action: run,
		Usage:  "run native messaging host (called by browser)",
		Hidden: true,
	},
	{
		Name:   "status",
		Action: status,
		Usage:  "show installation status for all browsers",
	},
}

var browserFlag = cli.StringFlag{
	Name:  "browser",
	Usage: "browser to use (chrome, firefox, chromium, edge, brave, all)",
	Value: "all",
}

var browserFlags = []cli.Flag{browserFlag}

var installFlags = []cli.Flag{
	browserFlag,
	cli.StringFlag{
		Name:   "chrome-extension-id",
		Usage:  "Chrome extension ID (required)",
		EnvVar: "SYC_CHROME_EXTENSION_ID",
	},
	cli.StringFlag{
		Name:   "firefox-extension-id",
		Usage:  "Firefox extension ID (required for Firefox)",
		EnvVar: "SYC_FIREFOX_EXTENSION_ID",
	},
}
