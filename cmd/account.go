package cmd

import (
	"context"
	"fmt"

	sycommon "github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/urfave/cli"
)

func accountCommand() cli.Command {
	return cli.Command{
		Name:  "account",
		Usage: "manage the Cloudflare account the cookies are stored in",
		Subcommands: []cli.Command{
			{
				Name:      "set",
				Usage:     "store the account credentials",
				UsageText: "sycd account set --account-id ID --namespace-id NS --token TOKEN",
				Action:    accountSet,
				Flags: []cli.Flag{
					cli.StringFlag{Name: "account-id", Usage: "Cloudflare account id", EnvVar: "SYC_ACCOUNT_ID"},
					cli.StringFlag{Name: "namespace-id", Usage: "Workers KV namespace id", EnvVar: "SYC_NAMESPACE_ID"},
					cli.StringFlag{Name: "token", Usage: "API token with Workers KV edit permission", EnvVar: "SYC_API_TOKEN"},
				},
			},
			{
				Name:   "show",
				Usage:  "print the stored credentials with the token redacted",
				Action: accountShow,
			},
			{
				Name:   "check",
				Usage:  "verify the credentials against the remote store",
				Action: accountCheck,
			},
			{
				Name:   "clear",
				Usage:  "delete the stored credentials",
				Action: accountClear,
			},
		},
	}
}

func accountSet(ctx *cli.Context) error {
	acct := kv.Account{
		AccountID:   ctx.String("account-id"),
		NamespaceID: ctx.String("namespace-id"),
		Token:       ctx.String("token"),
	}
	// Checked here too so a typo never reaches the daemon.
	if err := acct.Check(); err != nil {
		printFailure(ctx, "account", err)
		return errExit
	}
	resp, err := call(ctx, "account", func(c context.Context, client *syncclient.Client) (*syncclient.Response[kv.Account], error) {
		return client.SetAccount(c, acct)
	})
	if err != nil {
		return err
	}
	printMsg(resp.Msg)
	return nil
}

func accountShow(ctx *cli.Context) error {
	client, err := newClient(ctx)
	if err != nil {
		return fail(ctx, "account", "new_client", err)
	}
	defer client.Close()
	rctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := client.Account(rctx)
	if err != nil {
		return fail(ctx, "account", "request", err)
	}
	a := resp.Result
	fmt.Printf("Account ID:   %s\n", orDash(a.AccountID))
	fmt.Printf("Namespace ID: %s\n", orDash(a.NamespaceID))
	fmt.Printf("Token:        %s\n", orDash(a.Token))
	if !resp.IsOk {
		fmt.Printf("Not configured: %s\n", resp.Msg)
	}
	return nil
}

func accountCheck(ctx *cli.Context) error {
	resp, err := call(ctx, "account", func(c context.Context, client *syncclient.Client) (*syncclient.Response[[]sycommon.DomainSummary], error) {
		acct, err := client.Account(c)
		if err != nil {
			return nil, err
		}
		if !acct.IsOk {
			return &syncclient.Response[[]sycommon.DomainSummary]{Msg: acct.Msg, Code: acct.Code}, nil
		}
		return client.List(c, &sycommon.ListParams{Remote: true})
	})
	if err != nil {
		return err
	}
	fmt.Printf("Account OK: %d domains stored\n", len(resp.Result))
	return nil
}

func accountClear(ctx *cli.Context) error {
	resp, err := call(ctx, "account", func(c context.Context, client *syncclient.Client) (*syncclient.Response[struct{}], error) {
		return client.ClearAccount(c)
	})
	if err != nil {
		return err
	}
	printMsg(resp.Msg)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
