// Package syncclient is the Go client of the sync daemon's JSON-RPC API.
// The CLI and the native messaging host use it to reach the daemon over
// its unix socket, named pipe or TCP fallback.
package syncclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
)

// Options configures a Client. The zero value is usable.
type Options struct {
	// URI selects the transport explicitly: unix:///path, tcp://host:port
	// or pipe://name. Empty uses the default socket with TCP fallback.
	URI string
	// AutoStart spawns the daemon when none is running. Ignored with URI.
	AutoStart bool
	// OnLog receives the log events the daemon broadcasts.
	OnLog func(common.LogEvent)
	// OnCallback answers browser callbacks once AttachBrowser was called.
	OnCallback func(ctx context.Context, req *jrpc2.Request) (any, error)
}

// Client is a connection to the daemon.
type Client struct {
	conn net.Conn
	rpc  *jrpc2.Client
}

// Connect dials the daemon as configured by opts.
func Connect(opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	var (
		conn net.Conn
		err  error
	)
	if opts.URI != "" {
		uri, perr := ParseDaemonURI(opts.URI)
		if perr != nil {
			return nil, perr
		}
		conn, err = dialURI(uri)
	} else {
		if opts.AutoStart {
			if err := ensureDaemon(); err != nil {
				return nil, err
			}
		}
		conn, err = dial()
	}
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %w", err)
	}
	return New(conn, opts), nil
}

// New wraps an established connection.
func New(conn net.Conn, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	co := &jrpc2.ClientOptions{}
	if opts.OnLog != nil {
		onLog := opts.OnLog
		co.OnNotify = func(req *jrpc2.Request) {
			if req.Method() != common.NotifyLog {
				return
			}
			var ev common.LogEvent
			if err := req.UnmarshalParams(&ev); err != nil {
				debugLog("syncclient: bad log notification: %v", err)
				return
			}
			onLog(ev)
		}
	}
	if opts.OnCallback != nil {
		co.OnCallback = opts.OnCallback
	}
	return &Client{
		conn: conn,
		rpc:  jrpc2.NewClient(channel.Line(conn, conn), co),
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// Raw calls method with already encoded params and returns the encoded
// result. JSON-RPC errors are returned as *jrpc2.Error.
func (c *Client) Raw(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	var p any
	if len(params) > 0 {
		p = params
	}
	var out json.RawMessage
	if err := c.rpc.CallResult(ctx, method, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}
