package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Filatest/sync-your-cookie/cmd/common"
	sycommon "github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/urfave/cli"
)

var lsFlags = []cli.Flag{
	incognitoFlag,
	cli.BoolFlag{
		Name:  "remote, r",
		Usage: "read the remote store instead of the local mirror",
	},
}

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	resp, err := call(ctx, "list", func(c context.Context, client *syncclient.Client) (*syncclient.Response[[]sycommon.DomainSummary], error) {
		return client.List(c, &sycommon.ListParams{
			IsIncognito: ctx.Bool("incognito"),
			Remote:      ctx.Bool("remote"),
		})
	})
	if err != nil {
		return err
	}
	if len(resp.Result) == 0 {
		fmt.Println("sycd: no domains stored")
		return nil
	}
	fmt.Print(renderList(resp.Result))
	return nil
}

func renderList(rows []sycommon.DomainSummary) string {
	txt := "Here are your domains:"
	txt += "\n\n-------------------------------------------------------------------------"
	txt += "\n|Num|            Domain            | Cookies | Storage |     Updated     | Auto |"
	txt += "\n|---|------------------------------|---------|---------|-----------------|------|"
	for i, r := range rows {
		domain := r.Domain
		if len(domain) > 28 {
			domain = domain[:25] + "..."
		}
		txt += fmt.Sprintf("\n| %d |%s|%s|%s|%s|%s|",
			i+1,
			common.Center(domain, 30),
			common.Center(fmt.Sprint(r.Cookies), 9),
			common.Center(fmt.Sprint(r.StorageItems), 9),
			common.Center(formatTime(r.UpdateTime), 17),
			common.Center(autoFlags(r.AutoPush, r.AutoPull), 6),
		)
	}
	txt += "\n-------------------------------------------------------------------------\n"
	return txt
}

// formatTime renders a millisecond timestamp.
func formatTime(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func autoFlags(push, pull bool) string {
	switch {
	case push && pull:
		return "P/L"
	case push:
		return "P"
	case pull:
		return "L"
	}
	return "-"
}
