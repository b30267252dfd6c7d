//go:build !windows

package cmd

import "github.com/urfave/cli"

// getPlatformCommands returns the commands only available on this
// platform. There are none outside Windows.
func getPlatformCommands() []cli.Command {
	return nil
}
