//go:build !windows

package cmd

import "github.com/urfave/cli"

// getDaemonAction returns the action of the daemon command.
func getDaemonAction() cli.ActionFunc {
	return daemon
}
