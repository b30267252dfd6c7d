package cmd

import "time"

// defaultTimeout bounds a single request to the daemon. Pushes and pulls
// include the remote round trip.
const defaultTimeout = 30 * time.Second

const DESCRIPTION = `
sycd keeps the cookies and localStorage of your websites in sync
between browsers and machines. Cookies are stored per domain in a
single Cloudflare Workers KV value, with a separate map for incognito
windows. The daemon listens for cookie changes and pushes them, and
pulls stored cookies back into the browser on demand.
`

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}

Global Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}{{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const (
	DaemonDescription = `The daemon command runs the sync daemon in the foreground.
Other commands start it in the background when it is not
running. It serves the CLI on a local socket and the
extension on a token protected WebSocket endpoint.

Example:
        sycd daemon --rpc-secret s3cret
        sycd daemon --browser cdp --cdp-url ws://127.0.0.1:9222/devtools/browser/...

`
	PushDescription = `The push command reads the cookies of a domain from the
browser and stores them in the remote map. With
--incognito the incognito map and store are used.

Example:
        sycd push github.com

`
	PullDescription = `The pull command writes the stored cookies and
localStorage of a domain into the browser.

Example:
        sycd pull github.com --reload

`
	RemoveDescription = `The remove command deletes a domain and all of its
cookies from the remote map.

Example:
        sycd remove github.com

`
	RemoveItemDescription = `The remove-item command deletes one stored cookie. The
cookie id is "<cookie domain>_<name>" as shown by
"sycd export".

Example:
        sycd remove-item github.com .github.com_logged_in

`
	EditItemDescription = `The edit-item command changes the fields of one stored
cookie. Only the given flags are changed.

Example:
        sycd edit-item github.com .github.com_tz --value Europe%2FBerlin

`
	ListDescription = `The list command displays the stored domains with their
cookie counts. It answers from the local mirror unless
--remote is given.

Example:
        sycd list
        sycd list -i

`
	SyncIncognitoDescription = `The sync-incognito command writes the incognito map into
the browser's incognito cookie store, repairing expired
or undecodable cookies.

Example:
        sycd sync-incognito

`
	ClearIncognitoDescription = `The clear-incognito command removes every cookie from the
browser's incognito cookie store.

Example:
        sycd clear-incognito

`
	CopyIncognitoDescription = `The copy-to-incognito command copies the normal remote map
to the incognito key.

Example:
        sycd copy-to-incognito

`
	ImportDescription = `The import command reads the cookies of one or more domains
from a local browser profile or a cookie file and pushes
them. Chrome, Chromium, Edge, Brave, Firefox and Netscape
cookie files are supported.

Example:
        sycd import --browser firefox github.com gitlab.com
        sycd import --from cookies.txt example.com

`
	ExportDescription = `The export command writes the stored cookies of a domain in
the Netscape format read by curl and wget.

Example:
        sycd export github.com -o cookies.txt

`
)
