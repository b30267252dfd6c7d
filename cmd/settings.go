package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Filatest/sync-your-cookie/cmd/common"
	"github.com/Filatest/sync-your-cookie/internal/settings"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

// settingKeys maps the names accepted by "config set" to the field they
// change.
var settingKeys = map[string]func(*settings.Settings, string) error{
	"storage-key": func(s *settings.Settings, v string) error {
		s.StorageKey = v
		return nil
	},
	"incognito-storage-key": func(s *settings.Settings, v string) error {
		s.IncognitoStorageKey = v
		return nil
	},
	"protobuf-encoding":     boolSetting(func(s *settings.Settings) *bool { return &s.ProtobufEncoding }),
	"include-local-storage": boolSetting(func(s *settings.Settings) *bool { return &s.IncludeLocalStorage }),
	"enable-incognito-sync": boolSetting(func(s *settings.Settings) *bool { return &s.EnableIncognitoSync }),
	"force-incognito-sync":  boolSetting(func(s *settings.Settings) *bool { return &s.ForceIncognitoSync }),
	"context-menu":          boolSetting(func(s *settings.Settings) *bool { return &s.ContextMenu }),
}

func boolSetting(field func(*settings.Settings) *bool) func(*settings.Settings, string) error {
	return func(s *settings.Settings, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		*field(s) = b
		return nil
	}
}

func settingNames() string {
	names := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func configCommand() cli.Command {
	return cli.Command{
		Name:  "config",
		Usage: "show or change the daemon settings",
		Subcommands: []cli.Command{
			{
				Name:   "get",
				Usage:  "print the settings as YAML",
				Action: configGet,
			},
			{
				Name:      "set",
				Usage:     "change one setting",
				ArgsUsage: "<key> <value>",
				UsageText: "sycd config set <key> <value>\n\nKeys: " + settingNames(),
				Action:    configSet,
			},
			{
				Name:      "domain",
				Usage:     "change the auto push and auto pull rules of a domain",
				ArgsUsage: "<domain>",
				Action:    configDomain,
				Flags: []cli.Flag{
					cli.StringFlag{Name: "auto-push", Usage: "true or false"},
					cli.StringFlag{Name: "auto-pull", Usage: "true or false"},
					cli.BoolFlag{Name: "delete", Usage: "forget the rules of the domain"},
				},
			},
		},
	}
}

func configGet(ctx *cli.Context) error {
	resp, err := call(ctx, "config", func(c context.Context, client *syncclient.Client) (*syncclient.Response[settings.Settings], error) {
		return client.Settings(c)
	})
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(resp.Result)
}

func configSet(ctx *cli.Context) error {
	args, ok := requireArgs(ctx, "key", "value")
	if !ok {
		return nil
	}
	apply, found := settingKeys[args[0]]
	if !found {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("unknown setting %q", args[0]))
	}
	return updateSettings(ctx, func(s *settings.Settings) error {
		return apply(s, args[1])
	})
}

func configDomain(ctx *cli.Context) error {
	args, ok := requireArgs(ctx, "domain")
	if !ok {
		return nil
	}
	domain := args[0]
	return updateSettings(ctx, func(s *settings.Settings) error {
		if ctx.Bool("delete") {
			delete(s.Domains, domain)
			return nil
		}
		dc := s.Domains[domain]
		for flag, dst := range map[string]*bool{"auto-push": &dc.AutoPush, "auto-pull": &dc.AutoPull} {
			if !ctx.IsSet(flag) {
				continue
			}
			v, err := parseBool(ctx.String(flag))
			if err != nil {
				return fmt.Errorf("--%s: %w", flag, err)
			}
			*dst = v
		}
		if s.Domains == nil {
			s.Domains = make(map[string]settings.DomainConfig)
		}
		s.Domains[domain] = dc
		return nil
	})
}

// updateSettings reads the settings, applies fn and writes them back in
// one connection.
func updateSettings(ctx *cli.Context, fn func(*settings.Settings) error) error {
	resp, err := call(ctx, "config", func(c context.Context, client *syncclient.Client) (*syncclient.Response[settings.Settings], error) {
		cur, err := client.Settings(c)
		if err != nil || !cur.IsOk {
			return cur, err
		}
		next := cur.Result.Clone()
		if err := fn(&next); err != nil {
			return &syncclient.Response[settings.Settings]{Msg: err.Error()}, nil
		}
		return client.UpdateSettings(c, next)
	})
	if err != nil {
		return err
	}
	printMsg(resp.Msg)
	return nil
}
