package browser

import (
	"context"
	"sync"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/creachadair/jrpc2"
)

// Caller issues a server-to-client call on a JSON-RPC connection.
// *jrpc2.Server satisfies it.
type Caller interface {
	Callback(ctx context.Context, method string, params any) (*jrpc2.Response, error)
}

// Bridge implements Browser by calling back into the most recently
// attached browser extension connection.
type Bridge struct {
	mu     sync.RWMutex
	caller Caller
}

// NewBridge returns a Bridge with no extension attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach makes c the connection every call is forwarded to.
func (b *Bridge) Attach(c Caller) {
	b.mu.Lock()
	b.caller = c
	b.mu.Unlock()
}

// Detach forgets c if it is still the attached connection.
func (b *Bridge) Detach(c Caller) {
	b.mu.Lock()
	if b.caller == c {
		b.caller = nil
	}
	b.mu.Unlock()
}

// Connected reports whether an extension is attached.
func (b *Bridge) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.caller != nil
}

func (b *Bridge) call(ctx context.Context, method string, params, result any) error {
	b.mu.RLock()
	c := b.caller
	b.mu.RUnlock()
	if c == nil {
		return ErrDisconnected
	}
	rsp, err := c.Callback(ctx, method, params)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return rsp.UnmarshalResult(result)
}

type cookieQuery struct {
	Domain  string `json:"domain,omitempty"`
	StoreID string `json:"storeId,omitempty"`
}

type removeQuery struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	StoreID string `json:"storeId,omitempty"`
}

type tabQuery struct {
	TabID string                       `json:"tabId"`
	Items []cookiemap.LocalStorageItem `json:"items,omitempty"`
}

func (b *Bridge) Cookies(ctx context.Context, domain, storeID string) ([]cookiemap.Cookie, error) {
	var out []cookiemap.Cookie
	err := b.call(ctx, common.CallbackGetCookies, cookieQuery{Domain: domain, StoreID: storeID}, &out)
	return out, err
}

func (b *Bridge) SetCookie(ctx context.Context, c SetCookie) error {
	return b.call(ctx, common.CallbackSetCookie, c, nil)
}

func (b *Bridge) RemoveCookie(ctx context.Context, url, name, storeID string) error {
	return b.call(ctx, common.CallbackRemoveCookie, removeQuery{URL: url, Name: name, StoreID: storeID}, nil)
}

func (b *Bridge) CookieStores(ctx context.Context) ([]Store, error) {
	var out []Store
	err := b.call(ctx, common.CallbackCookieStores, nil, &out)
	return out, err
}

func (b *Bridge) Tabs(ctx context.Context) ([]Tab, error) {
	var out []Tab
	err := b.call(ctx, common.CallbackQueryTabs, nil, &out)
	return out, err
}

func (b *Bridge) ReloadTab(ctx context.Context, tabID string) error {
	return b.call(ctx, common.CallbackReloadTab, tabQuery{TabID: tabID}, nil)
}

func (b *Bridge) ReadLocalStorage(ctx context.Context, tabID string) ([]cookiemap.LocalStorageItem, error) {
	var out []cookiemap.LocalStorageItem
	err := b.call(ctx, common.CallbackReadStorage, tabQuery{TabID: tabID}, &out)
	return out, err
}

func (b *Bridge) WriteLocalStorage(ctx context.Context, tabID string, items []cookiemap.LocalStorageItem) error {
	return b.call(ctx, common.CallbackWriteStorage, tabQuery{TabID: tabID, Items: items}, nil)
}

var (
	_ Browser = (*Bridge)(nil)
	_ Caller  = (*jrpc2.Server)(nil)
)
