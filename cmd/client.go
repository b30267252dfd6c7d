package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Filatest/sync-your-cookie/cmd/common"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
	"github.com/urfave/cli"
)

// errExit ends a command whose failure was already printed.
var errExit = cli.NewExitError("", 1)

// connect dials the daemon. Tests replace it.
var connect = syncclient.Connect

// newClient connects to the daemon given by --uri, or to the local daemon,
// starting it when it is not running.
func newClient(ctx *cli.Context) (*syncclient.Client, error) {
	uri := ctx.GlobalString("uri")
	client, err := connect(&syncclient.Options{URI: uri, AutoStart: uri == ""})
	if err != nil {
		return nil, err
	}
	vctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client.CheckVersionMismatch(vctx, currentBuildArgs.Version, os.Stderr)
	return client, nil
}

// call runs one request against the daemon. Connection errors and failed
// responses are printed and turned into errExit.
func call[T any](ctx *cli.Context, cmd string, fn func(context.Context, *syncclient.Client) (*syncclient.Response[T], error)) (*syncclient.Response[T], error) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, fail(ctx, cmd, "new_client", err)
	}
	defer client.Close()

	rctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := fn(rctx, client)
	if err != nil {
		return nil, fail(ctx, cmd, "request", err)
	}
	if err := resp.Err(); err != nil {
		printFailure(ctx, cmd, err)
		return nil, errExit
	}
	return resp, nil
}

// fail prints err in the runtime error format and returns errExit.
func fail(ctx *cli.Context, cmd, action string, err error) error {
	common.PrintRuntimeErr(ctx, cmd, action, err)
	return errExit
}

func printFailure(ctx *cli.Context, cmd string, err error) {
	common.PrintRuntimeErr(ctx, cmd, string(syncerr.CodeOf(err)), err)
	if syncerr.NeedsSettings(err) {
		fmt.Printf("Configure your Cloudflare account with \"%s account set\".\n", common.AppName(ctx))
	}
}

// printMsg prints the message of a successful response.
func printMsg(msg string) {
	if msg != "" {
		fmt.Println(msg)
	}
}
