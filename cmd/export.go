package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	sycommon "github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/cookies"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/urfave/cli"
)

var exportFlags = []cli.Flag{
	incognitoFlag,
	cli.StringFlag{
		Name:  "output, o",
		Usage: "file to write (default: stdout)",
	},
}

// exportOutput is where export writes without --output.
var exportOutput io.Writer = os.Stdout

func export(ctx *cli.Context) error {
	args, ok := requireArgs(ctx, "domain")
	if !ok {
		return nil
	}
	resp, err := call(ctx, "export", func(c context.Context, client *syncclient.Client) (*syncclient.Response[cookiemap.DomainEntry], error) {
		return client.Get(c, &sycommon.GetParams{Domain: args[0], IsIncognito: ctx.Bool("incognito")})
	})
	if err != nil {
		return err
	}

	out := ctx.String("output")
	if out == "" {
		return cookies.WriteNetscape(exportOutput, resp.Result.Cookies)
	}
	f, err := os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("error: cannot create %s: %w", out, err)
	}
	if err := cookies.WriteNetscape(f, resp.Result.Cookies); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Exported %d cookies for %s to %s\n", len(resp.Result.Cookies), args[0], out)
	return nil
}
