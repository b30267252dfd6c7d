package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Filatest/sync-your-cookie/cmd/common"
	sycommon "github.com/Filatest/sync-your-cookie/common"
	daemonpkg "github.com/Filatest/sync-your-cookie/internal/daemon"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/urfave/cli"
)

var daemonFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "config-dir",
		Usage:  "directory holding settings.yaml, the mirror and the account vault",
		EnvVar: sycommon.ConfigDirEnv,
	},
	cli.StringFlag{
		Name:   "socket",
		Usage:  "unix socket path of the local RPC endpoint",
		EnvVar: sycommon.SocketPathEnv,
	},
	cli.IntFlag{
		Name:   "tcp-port",
		Usage:  "local TCP port used when the socket is unavailable",
		EnvVar: sycommon.TCPPortEnv,
	},
	cli.IntFlag{
		Name:   "rpc-port",
		Usage:  "HTTP port of the extension endpoint and /metrics",
		Value:  sycommon.DefaultRPCPort,
		EnvVar: sycommon.RPCPortEnv,
	},
	cli.StringFlag{
		Name:   "rpc-secret",
		Usage:  "token the extension authenticates with; the endpoint is off without it",
		EnvVar: sycommon.RPCSecretEnv,
	},
	cli.StringFlag{
		Name:  "browser",
		Usage: "browser backend: extension or cdp",
		Value: daemonpkg.BrowserExtension,
	},
	cli.StringFlag{
		Name:   "cdp-url",
		Usage:  "DevTools WebSocket URL of the browser (cdp backend)",
		EnvVar: sycommon.CDPURLEnv,
	},
	cli.StringFlag{
		Name:   "kv-endpoint",
		Usage:  "Cloudflare API root",
		EnvVar: sycommon.KVEndpointEnv,
	},
	cli.DurationFlag{
		Name:  "debounce",
		Usage: "quiet period after a cookie change before pushing",
	},
	cli.DurationFlag{
		Name:  "watchdog",
		Usage: "longest a burst of cookie changes can delay a push",
	},
	cli.StringFlag{
		Name:   "log-level",
		Usage:  "lowest severity to log: info, warning or error",
		Value:  "info",
		EnvVar: sycommon.LogLevelEnv,
	},
	cli.DurationFlag{
		Name:  "shutdown-timeout",
		Usage: "how long to wait for a graceful shutdown",
		Value: 10 * time.Second,
	},
}

// daemonConfig builds the runner configuration from the daemon flags.
func daemonConfig(ctx *cli.Context) (*daemonpkg.Config, error) {
	mode := ctx.String("browser")
	switch mode {
	case daemonpkg.BrowserExtension:
	case daemonpkg.BrowserCDP:
		if ctx.String("cdp-url") == "" {
			return nil, fmt.Errorf("--browser %s needs --cdp-url", mode)
		}
	default:
		return nil, fmt.Errorf("unknown browser backend %q, want %s or %s", mode, daemonpkg.BrowserExtension, daemonpkg.BrowserCDP)
	}
	if sock := ctx.String("socket"); sock != "" {
		// The server resolves its socket from the environment.
		if err := os.Setenv(sycommon.SocketPathEnv, sock); err != nil {
			return nil, err
		}
	}
	return &daemonpkg.Config{
		ConfigDir:       ctx.String("config-dir"),
		TCPPort:         ctx.Int("tcp-port"),
		RPCPort:         ctx.Int("rpc-port"),
		RPCSecret:       ctx.String("rpc-secret"),
		BrowserMode:     mode,
		CDPURL:          ctx.String("cdp-url"),
		KVEndpoint:      ctx.String("kv-endpoint"),
		Debounce:        ctx.Duration("debounce"),
		Watchdog:        ctx.Duration("watchdog"),
		ShutdownTimeout: ctx.Duration("shutdown-timeout"),
		Version:         currentBuildArgs.Version,
		Commit:          currentBuildArgs.Commit,
		BuildType:       currentBuildArgs.BuildType,
	}, nil
}

func daemon(ctx *cli.Context) error {
	l, err := consoleLogger(ctx)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	return runDaemon(ctx, l)
}

// consoleLogger logs to stderr at the level given by --log-level.
func consoleLogger(ctx *cli.Context) (*logger.StandardLogger, error) {
	lv, err := logger.ParseLevel(ctx.String("log-level"))
	if err != nil {
		return nil, err
	}
	l := logger.NewStandardLogger(log.Default())
	l.SetLevel(lv)
	return l, nil
}

// runDaemon runs the daemon in the foreground until it is stopped by a
// signal or by "sycd stop".
func runDaemon(ctx *cli.Context, l logger.Logger) error {
	cfg, err := daemonConfig(ctx)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	runner := daemonpkg.New(cfg, &daemonpkg.Dependencies{Logger: l, WatchSettings: true})

	sctx, cancel := setupShutdownHandler()
	defer cancel()
	if err := runner.Start(sctx); err != nil {
		return fail(ctx, "daemon", "start", err)
	}
	return nil
}
