package syncclient

import (
	"context"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/incognito"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/internal/settings"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
)

// Response is a decoded common.SendResponse.
type Response[T any] struct {
	IsOk   bool         `json:"isOk"`
	Msg    string       `json:"msg,omitempty"`
	Code   syncerr.Code `json:"code,omitempty"`
	Result T            `json:"result,omitempty"`
}

// Err returns the failure carried by r as a *syncerr.Error, or nil.
func (r *Response[T]) Err() error {
	if r.IsOk {
		return nil
	}
	code := r.Code
	if code == "" {
		code = syncerr.Internal
	}
	return syncerr.New(code, r.Msg)
}

// invoke calls method. The error reports transport and protocol failures
// only; a decoded envelope with isOk false is returned as is and its
// failure read with Response.Err.
func invoke[T any](ctx context.Context, c *Client, method string, params any) (*Response[T], error) {
	var r Response[T]
	if err := c.rpc.CallResult(ctx, method, params, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Push(ctx context.Context, p *common.PushParams) (*Response[kv.WriteResult], error) {
	return invoke[kv.WriteResult](ctx, c, common.MethodPush, p)
}

func (c *Client) Pull(ctx context.Context, p *common.PullParams) (*Response[cookiemap.DomainEntry], error) {
	return invoke[cookiemap.DomainEntry](ctx, c, common.MethodPull, p)
}

func (c *Client) Remove(ctx context.Context, domain string, incognito bool) (*Response[struct{}], error) {
	return invoke[struct{}](ctx, c, common.MethodRemove, &common.RemoveParams{Domain: domain, IsIncognito: incognito})
}

func (c *Client) RemoveItem(ctx context.Context, p *common.RemoveItemParams) (*Response[struct{}], error) {
	return invoke[struct{}](ctx, c, common.MethodRemoveItem, p)
}

func (c *Client) EditItem(ctx context.Context, p *common.EditItemParams) (*Response[struct{}], error) {
	return invoke[struct{}](ctx, c, common.MethodEditItem, p)
}

func (c *Client) List(ctx context.Context, p *common.ListParams) (*Response[[]common.DomainSummary], error) {
	return invoke[[]common.DomainSummary](ctx, c, common.MethodList, p)
}

// Get returns the stored entry of a domain without touching the browser.
func (c *Client) Get(ctx context.Context, p *common.GetParams) (*Response[cookiemap.DomainEntry], error) {
	return invoke[cookiemap.DomainEntry](ctx, c, common.MethodGet, p)
}

func (c *Client) IncognitoSync(ctx context.Context) (*Response[incognito.Report], error) {
	return invoke[incognito.Report](ctx, c, common.MethodIncSync, nil)
}

func (c *Client) IncognitoClear(ctx context.Context) (*Response[int], error) {
	return invoke[int](ctx, c, common.MethodIncClear, nil)
}

func (c *Client) IncognitoCopy(ctx context.Context) (*Response[int], error) {
	return invoke[int](ctx, c, common.MethodIncCopy, nil)
}

func (c *Client) IncognitoRemove(ctx context.Context, domain, id string) (*Response[struct{}], error) {
	return invoke[struct{}](ctx, c, common.MethodIncRemove, &common.RemoveItemParams{Domain: domain, ID: id, IsIncognito: true})
}

// SetAccount stores and validates the remote store credentials.
func (c *Client) SetAccount(ctx context.Context, a kv.Account) (*Response[kv.Account], error) {
	return invoke[kv.Account](ctx, c, common.MethodAccountSet, &a)
}

// Account returns the stored credentials with the token redacted.
func (c *Client) Account(ctx context.Context) (*Response[kv.Account], error) {
	return invoke[kv.Account](ctx, c, common.MethodAccountGet, nil)
}

func (c *Client) ClearAccount(ctx context.Context) (*Response[struct{}], error) {
	return invoke[struct{}](ctx, c, common.MethodAccountDel, nil)
}

func (c *Client) Settings(ctx context.Context) (*Response[settings.Settings], error) {
	return invoke[settings.Settings](ctx, c, common.MethodSettingsGet, nil)
}

func (c *Client) UpdateSettings(ctx context.Context, s settings.Settings) (*Response[settings.Settings], error) {
	return invoke[settings.Settings](ctx, c, common.MethodSettingsSet, &s)
}

// Version returns the daemon's build information.
func (c *Client) Version(ctx context.Context) (*common.VersionResult, error) {
	var v common.VersionResult
	if err := c.rpc.CallResult(ctx, common.MethodVersion, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// StopDaemon asks the daemon to shut down.
func (c *Client) StopDaemon(ctx context.Context) error {
	return c.rpc.CallResult(ctx, common.MethodStop, nil, &common.Empty{})
}

// AttachBrowser makes this connection the daemon's browser. Options.OnCallback
// must be set.
func (c *Client) AttachBrowser(ctx context.Context) error {
	return c.rpc.CallResult(ctx, common.MethodBrowserAttach, nil, &common.Empty{})
}
