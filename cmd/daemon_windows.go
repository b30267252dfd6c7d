//go:build windows

package cmd

import (
	"github.com/Filatest/sync-your-cookie/cmd/common"
	daemonpkg "github.com/Filatest/sync-your-cookie/internal/daemon"
	"github.com/Filatest/sync-your-cookie/internal/service"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/urfave/cli"
)

// isWindowsService reports whether the SCM started the process. Tests
// replace it.
var isWindowsService = service.IsWindowsService

// getDaemonAction returns the action of the daemon command. Under the SCM
// the daemon runs as a service and also logs to the Event Log.
func getDaemonAction() cli.ActionFunc {
	return daemonWindows
}

func daemonWindows(ctx *cli.Context) error {
	isService, err := isWindowsService()
	if err != nil {
		return err
	}
	if !isService {
		return daemon(ctx)
	}
	return runAsWindowsService(ctx)
}

// runAsWindowsService runs the daemon under the service handler. Logs go
// to the console and, when the event source is registered, the Event Log.
func runAsWindowsService(ctx *cli.Context) error {
	cfg, err := daemonConfig(ctx)
	if err != nil {
		return err
	}
	console, err := consoleLogger(ctx)
	if err != nil {
		return err
	}
	var l logger.Logger = console
	if el, err := logger.NewEventLogger(daemonpkg.DefaultServiceName); err == nil {
		defer el.Close()
		l = logger.NewMultiLogger(l, el)
	}
	runner := daemonpkg.New(cfg, &daemonpkg.Dependencies{Logger: l, WatchSettings: true})
	if err := service.Run(daemonpkg.DefaultServiceName, service.NewHandler(runner, l)); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "service", err)
		return errExit
	}
	return nil
}
