package nativehost

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	nh "github.com/Filatest/sync-your-cookie/internal/nativehost"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/urfave/cli"
)

// connect is replaced in tests.
var connect = func(opts *syncclient.Options) (nh.Client, error) {
	return syncclient.Connect(opts)
}

// run is started by the browser. Stdout carries the native messaging
// protocol, so diagnostics go to stderr.
func run(c *cli.Context) error {
	l := logger.NewStandardLogger(log.New(os.Stderr, "sycd-host: ", log.LstdFlags))
	host := nh.NewHost(l)

	client, err := connect(&syncclient.Options{
		AutoStart:  true,
		OnLog:      host.Log,
		OnCallback: host.Callback,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to daemon: %v\n", err)
		return cli.NewExitError("failed to connect to daemon", 1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := host.Run(ctx, client); err != nil {
		fmt.Fprintf(os.Stderr, "native host error: %v\n", err)
		return cli.NewExitError("native host error", 1)
	}
	return nil
}
