package cmd

import (
	"context"
	"fmt"

	"github.com/Filatest/sync-your-cookie/internal/incognito"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/urfave/cli"
)

func syncIncognito(ctx *cli.Context) error {
	resp, err := call(ctx, "sync-incognito", func(c context.Context, client *syncclient.Client) (*syncclient.Response[incognito.Report], error) {
		return client.IncognitoSync(c)
	})
	if err != nil {
		return err
	}
	rep := resp.Result
	printMsg(resp.Msg)
	fmt.Printf("%d domains: %d set, %d repaired, %d dropped, %d failed\n",
		rep.Domains, rep.Set, rep.Repaired, rep.Dropped, rep.Failed)
	return nil
}

func clearIncognito(ctx *cli.Context) error {
	resp, err := call(ctx, "clear-incognito", func(c context.Context, client *syncclient.Client) (*syncclient.Response[int], error) {
		return client.IncognitoClear(c)
	})
	if err != nil {
		return err
	}
	fmt.Printf("Cleared %d cookies from incognito store\n", resp.Result)
	return nil
}

func copyToIncognito(ctx *cli.Context) error {
	resp, err := call(ctx, "copy-to-incognito", func(c context.Context, client *syncclient.Client) (*syncclient.Response[int], error) {
		return client.IncognitoCopy(c)
	})
	if err != nil {
		return err
	}
	printMsg(resp.Msg)
	return nil
}
