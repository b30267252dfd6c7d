//go:build windows

package cmd

import "github.com/urfave/cli"

// getPlatformCommands adds the service management commands.
func getPlatformCommands() []cli.Command {
	return []cli.Command{serviceCommand()}
}
