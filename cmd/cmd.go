package cmd

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Filatest/sync-your-cookie/cmd/common"
	"github.com/Filatest/sync-your-cookie/cmd/nativehost"
	nh "github.com/Filatest/sync-your-cookie/internal/nativehost"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "uri",
		Usage:  "daemon address: unix:///path, tcp://host:port or pipe://name",
		EnvVar: "SYC_DAEMON_URI",
	},
}

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "sycd",
		HelpName:              "sycd",
		Usage:                 "Keeps browser cookies in sync through Cloudflare Workers KV.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "sycd <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: append([]cli.Command{
			{
				Name:               "daemon",
				Usage:              "run the sync daemon in the foreground",
				Description:        DaemonDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             getDaemonAction(),
				Flags:              daemonFlags,
			},
			{
				Name:               "push",
				Aliases:            []string{"p"},
				Usage:              "upload the cookies of a domain",
				ArgsUsage:          "<domain>",
				Description:        PushDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             push,
				Flags:              pushFlags,
			},
			{
				Name:               "pull",
				Usage:              "write the stored cookies of a domain into the browser",
				ArgsUsage:          "<domain>",
				Description:        PullDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             pull,
				Flags:              pullFlags,
			},
			{
				Name:               "remove",
				Aliases:            []string{"rm"},
				Usage:              "delete a domain from the remote store",
				ArgsUsage:          "<domain>",
				Description:        RemoveDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             remove,
				Flags:              planeFlags,
			},
			{
				Name:               "remove-item",
				Usage:              "delete one stored cookie",
				ArgsUsage:          "<domain> <cookie-id>",
				Description:        RemoveItemDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             removeItem,
				Flags:              planeFlags,
			},
			{
				Name:               "edit-item",
				Usage:              "change the fields of one stored cookie",
				ArgsUsage:          "<domain> <cookie-id>",
				Description:        EditItemDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             editItem,
				Flags:              editFlags,
			},
			{
				Name:                   "list",
				Aliases:                []string{"l"},
				Usage:                  "display the stored domains",
				Description:            ListDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				UseShortOptionHandling: true,
				Action:                 list,
				Flags:                  lsFlags,
			},
			{
				Name:               "sync-incognito",
				Usage:              "write the incognito map into the browser's incognito store",
				Description:        SyncIncognitoDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             syncIncognito,
			},
			{
				Name:               "clear-incognito",
				Usage:              "remove every cookie from the browser's incognito store",
				Description:        ClearIncognitoDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             clearIncognito,
			},
			{
				Name:               "copy-to-incognito",
				Usage:              "copy the normal map to the incognito key",
				Description:        CopyIncognitoDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             copyToIncognito,
			},
			{
				Name:               "import",
				Usage:              "push cookies read from a browser profile or cookie file",
				ArgsUsage:          "<domain>...",
				Description:        ImportDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             importCookies,
				Flags:              importFlags,
			},
			{
				Name:               "export",
				Usage:              "write the stored cookies of a domain as a Netscape cookie file",
				ArgsUsage:          "<domain>",
				Description:        ExportDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             export,
				Flags:              exportFlags,
			},
			accountCommand(),
			configCommand(),
			{
				Name:        "native-host",
				Usage:       "manage the native messaging host of the extension",
				Subcommands: nativehost.Commands,
			},
			{
				Name:   "stop",
				Usage:  "stop the running daemon",
				Action: stop,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of sycd",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		}, getPlatformCommands()...),
		Action:      common.Help,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(nativeHostArgs(args))
}

// nativeHostArgs rewrites the arguments browsers launch a native
// messaging host with into "native-host run". Chrome passes the caller's
// origin, Firefox the manifest path and the extension id.
func nativeHostArgs(args []string) []string {
	if len(args) < 2 {
		return args
	}
	first := args[1]
	if strings.HasPrefix(first, "chrome-extension://") ||
		filepath.Base(first) == nh.HostName+".json" {
		return []string{args[0], "native-host", "run"}
	}
	return args
}
