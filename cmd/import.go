package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/Filatest/sync-your-cookie/cmd/common"
	sycommon "github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/cookies"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
)

var importFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "from, f",
		Usage: "cookie file to read (Chrome or Firefox SQLite, Netscape text)",
	},
	cli.StringFlag{
		Name:  "browser, b",
		Usage: "browser profile to read: chrome, chromium, edge, brave, firefox or auto",
		Value: cookies.Auto,
	},
	incognitoFlag,
}

type cookieImporter interface {
	FromFile(path, domain string) ([]cookiemap.Cookie, *cookies.CookieSource, error)
	FromBrowser(browser, domain string) ([]cookiemap.Cookie, *cookies.CookieSource, error)
}

var (
	newImporter = func(l logger.Logger) cookieImporter { return cookies.NewImporter(l) }

	// progressOutput receives the import progress bar.
	progressOutput io.Writer = os.Stdout
)

type importResult struct {
	domain string
	count  int
	source string
	err    error
}

func importCookies(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	domains := ctx.Args()
	if len(domains) == 0 {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("missing argument: domain"))
	}
	imp := newImporter(logger.NewStandardLogger(log.New(os.Stderr, "", 0)))

	client, err := newClient(ctx)
	if err != nil {
		return fail(ctx, "import", "new_client", err)
	}
	defer client.Close()

	p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(progressOutput))
	bar, current := common.InitImportBar(p, len(domains))
	results := make([]importResult, 0, len(domains))
	for _, domain := range domains {
		current.Set(domain)
		results = append(results, importDomain(ctx, client, imp, domain))
		bar.Increment()
	}
	p.Wait()

	failed := false
	for _, r := range results {
		if r.err != nil {
			failed = true
			fmt.Printf("%s: %v\n", r.domain, r.err)
			continue
		}
		fmt.Printf("%s: pushed %d cookies from %s\n", r.domain, r.count, r.source)
	}
	if failed {
		return errExit
	}
	return nil
}

func importDomain(ctx *cli.Context, client *syncclient.Client, imp cookieImporter, domain string) importResult {
	res := importResult{domain: domain}
	var (
		found  []cookiemap.Cookie
		source *cookies.CookieSource
		err    error
	)
	if from := ctx.String("from"); from != "" {
		found, source, err = imp.FromFile(from, domain)
	} else {
		found, source, err = imp.FromBrowser(ctx.String("browser"), domain)
	}
	if err != nil {
		res.err = err
		return res
	}
	res.source = source.Browser
	if len(found) == 0 {
		res.err = fmt.Errorf("no cookies found in %s", source.Path)
		return res
	}

	rctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	resp, err := client.Push(rctx, &sycommon.PushParams{
		Domain:      domain,
		SourceURL:   "https://" + strings.TrimPrefix(domain, "."),
		IsIncognito: ctx.Bool("incognito"),
		Cookies:     found,
	})
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		res.err = err
		return res
	}
	res.count = len(found)
	return res
}
