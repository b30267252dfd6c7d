package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	sycommon "github.com/Filatest/sync-your-cookie/common"
	daemonpkg "github.com/Filatest/sync-your-cookie/internal/daemon"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/urfave/cli"
)

const killTimeout = 5 * time.Second

// stop asks the daemon to shut down over RPC. When it cannot be reached
// the process recorded in the pid file is terminated instead.
func stop(ctx *cli.Context) error {
	uri := ctx.GlobalString("uri")
	client, err := connect(&syncclient.Options{URI: uri})
	if err == nil {
		defer client.Close()
		rctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		if err = client.StopDaemon(rctx); err == nil {
			fmt.Println("Daemon stopped")
			return nil
		}
	}
	if uri != "" {
		return fail(ctx, "stop", "request", err)
	}
	return stopByPid(ctx, sycommon.ConfigDir())
}

func stopByPid(ctx *cli.Context, configDir string) error {
	pid, err := daemonpkg.ReadPidFile(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("Daemon is not running")
			return nil
		}
		return fail(ctx, "stop", "read_pid", err)
	}
	if !daemonpkg.IsProcessRunning(pid) {
		daemonpkg.RemovePidFile(configDir)
		fmt.Println("Daemon is not running (removed stale pid file)")
		return nil
	}
	fmt.Printf("Stopping daemon (PID %d)...\n", pid)
	if err := daemonpkg.KillProcess(pid, killTimeout); err != nil {
		return fail(ctx, "stop", "kill", err)
	}
	fmt.Println("Daemon stopped")
	return nil
}
