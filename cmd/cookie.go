package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Filatest/sync-your-cookie/cmd/common"
	sycommon "github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/urfave/cli"
)

var (
	incognitoFlag = cli.BoolFlag{
		Name:  "incognito, i",
		Usage: "use the incognito map and cookie store",
	}

	planeFlags = []cli.Flag{incognitoFlag}

	pushFlags = []cli.Flag{
		incognitoFlag,
		cli.StringFlag{
			Name:  "source-url",
			Usage: "page the cookies belong to, remembered in the domain config",
		},
		cli.StringFlag{
			Name:  "favicon-url",
			Usage: "icon shown for the domain by the extension",
		},
	}

	pullFlags = []cli.Flag{
		incognitoFlag,
		cli.StringFlag{
			Name:  "url",
			Usage: "url of the tab to refresh (default: https://<domain>)",
		},
		cli.BoolFlag{
			Name:  "reload, r",
			Usage: "reload the tabs showing the domain",
		},
	}

	editFlags = []cli.Flag{
		incognitoFlag,
		cli.StringFlag{Name: "name", Usage: "new cookie name"},
		cli.StringFlag{Name: "value", Usage: "new cookie value"},
		cli.StringFlag{Name: "domain", Usage: "new cookie domain"},
		cli.StringFlag{Name: "path", Usage: "new cookie path"},
		cli.StringFlag{Name: "same-site", Usage: "no_restriction, lax, strict or unspecified"},
		cli.StringFlag{Name: "secure", Usage: "true or false"},
		cli.StringFlag{Name: "http-only", Usage: "true or false"},
		cli.DurationFlag{Name: "expires-in", Usage: "expire the cookie after this duration"},
		cli.BoolFlag{Name: "session", Usage: "turn the cookie into a session cookie"},
	}
)

// requireArgs returns the first n arguments, or prints the command help
// when some are missing.
func requireArgs(ctx *cli.Context, names ...string) ([]string, bool) {
	args := ctx.Args()
	if args.First() == "help" {
		_ = cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return nil, false
	}
	if len(args) < len(names) {
		_ = common.PrintErrWithCmdHelp(ctx, fmt.Errorf("missing argument: %s", names[len(args)]))
		return nil, false
	}
	return args[:len(names)], true
}

func push(ctx *cli.Context) error {
	args, ok := requireArgs(ctx, "domain")
	if !ok {
		return nil
	}
	resp, err := call(ctx, "push", func(c context.Context, client *syncclient.Client) (*syncclient.Response[kv.WriteResult], error) {
		return client.Push(c, &sycommon.PushParams{
			Domain:      args[0],
			SourceURL:   ctx.String("source-url"),
			FavIconURL:  ctx.String("favicon-url"),
			IsIncognito: ctx.Bool("incognito"),
		})
	})
	if err != nil {
		return err
	}
	printMsg(resp.Msg)
	return nil
}

func pull(ctx *cli.Context) error {
	args, ok := requireArgs(ctx, "domain")
	if !ok {
		return nil
	}
	url := ctx.String("url")
	if url == "" {
		url = "https://" + strings.TrimPrefix(args[0], ".")
	}
	resp, err := call(ctx, "pull", func(c context.Context, client *syncclient.Client) (*syncclient.Response[cookiemap.DomainEntry], error) {
		return client.Pull(c, &sycommon.PullParams{
			ActiveTabURL: url,
			Domain:       args[0],
			Reload:       ctx.Bool("reload"),
			IsIncognito:  ctx.Bool("incognito"),
		})
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d cookies, %d localStorage items\n", resp.Msg, len(resp.Result.Cookies), len(resp.Result.LocalStorageItems))
	return nil
}

func remove(ctx *cli.Context) error {
	args, ok := requireArgs(ctx, "domain")
	if !ok {
		return nil
	}
	resp, err := call(ctx, "remove", func(c context.Context, client *syncclient.Client) (*syncclient.Response[struct{}], error) {
		return client.Remove(c, args[0], ctx.Bool("incognito"))
	})
	if err != nil {
		return err
	}
	printMsg(resp.Msg)
	return nil
}

func removeItem(ctx *cli.Context) error {
	args, ok := requireArgs(ctx, "domain", "cookie-id")
	if !ok {
		return nil
	}
	resp, err := call(ctx, "remove-item", func(c context.Context, client *syncclient.Client) (*syncclient.Response[struct{}], error) {
		return client.RemoveItem(c, &sycommon.RemoveItemParams{
			Domain:      args[0],
			ID:          args[1],
			IsIncognito: ctx.Bool("incognito"),
		})
	})
	if err != nil {
		return err
	}
	printMsg(resp.Msg)
	return nil
}

func editItem(ctx *cli.Context) error {
	args, ok := requireArgs(ctx, "domain", "cookie-id")
	if !ok {
		return nil
	}
	old, err := parseCookieID(args[1])
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	patch, err := patchFromFlags(ctx, time.Now())
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	resp, err := call(ctx, "edit-item", func(c context.Context, client *syncclient.Client) (*syncclient.Response[struct{}], error) {
		return client.EditItem(c, &sycommon.EditItemParams{
			Domain:      args[0],
			OldItem:     old,
			NewItem:     patch,
			IsIncognito: ctx.Bool("incognito"),
		})
	})
	if err != nil {
		return err
	}
	printMsg(resp.Msg)
	return nil
}

// parseCookieID splits "<cookie domain>_<name>". Cookie domains never
// contain an underscore, names may.
func parseCookieID(id string) (cookiemap.Cookie, error) {
	domain, name, ok := strings.Cut(id, "_")
	if !ok || domain == "" || name == "" {
		return cookiemap.Cookie{}, fmt.Errorf("invalid cookie id %q, want <cookie domain>_<name>", id)
	}
	return cookiemap.Cookie{Domain: domain, Name: name}, nil
}

var errEmptyPatch = errors.New("nothing to edit, pass at least one field flag")

// patchFromFlags builds a patch holding only the flags that were set.
func patchFromFlags(ctx *cli.Context, now time.Time) (cookiemap.CookiePatch, error) {
	var p cookiemap.CookiePatch
	set := false
	str := func(flag string, dst **string) {
		if ctx.IsSet(flag) {
			v := ctx.String(flag)
			*dst = &v
			set = true
		}
	}
	str("name", &p.Name)
	str("value", &p.Value)
	str("domain", &p.Domain)
	str("path", &p.Path)
	str("same-site", &p.SameSite)

	for flag, dst := range map[string]**bool{"secure": &p.Secure, "http-only": &p.HTTPOnly} {
		if !ctx.IsSet(flag) {
			continue
		}
		v, err := parseBool(ctx.String(flag))
		if err != nil {
			return p, fmt.Errorf("--%s: %w", flag, err)
		}
		*dst = &v
		set = true
	}

	if ctx.Bool("session") {
		session := true
		p.Session = &session
		set = true
	} else if ctx.IsSet("expires-in") {
		exp := float64(now.Add(ctx.Duration("expires-in")).UnixMilli())
		session := false
		p.ExpirationDate = &exp
		p.Session = &session
		set = true
	}
	if !set {
		return p, errEmptyPatch
	}
	return p, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
