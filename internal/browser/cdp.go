package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// CDP drives a running Chromium over the DevTools protocol. Cookie stores
// map to browser contexts: the default context is DefaultStoreID and
// every context created with Target.createBrowserContext is treated as a
// private browsing store.
type CDP struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logger.Logger
}

// DialCDP connects to the DevTools endpoint at wsURL, for example
// "ws://127.0.0.1:9222/devtools/browser/<id>" or "http://127.0.0.1:9222".
func DialCDP(ctx context.Context, wsURL string, l logger.Logger) (*CDP, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, wsURL)
	bctx, bcancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(bctx); err != nil {
		bcancel()
		allocCancel()
		return nil, fmt.Errorf("browser: connect %s: %w", wsURL, err)
	}
	return &CDP{
		ctx: bctx,
		cancel: func() {
			bcancel()
			allocCancel()
		},
		log: logger.Or(l),
	}, nil
}

// Close detaches from the browser.
func (b *CDP) Close() error {
	b.cancel()
	b.log.Info("browser: detached from devtools endpoint")
	return nil
}

// browserExec runs fn with a context whose executor is the browser
// connection rather than a page target.
func (b *CDP) browserExec(ctx context.Context, fn func(ctx context.Context) error) error {
	return chromedp.Run(b.ctx, chromedp.ActionFunc(func(bctx context.Context) error {
		c := chromedp.FromContext(bctx)
		if c == nil || c.Browser == nil {
			return ErrDisconnected
		}
		ectx := cdp.WithExecutor(ctx, c.Browser)
		return fn(ectx)
	}))
}

func contextID(storeID string) cdp.BrowserContextID {
	if storeID == "" || storeID == DefaultStoreID {
		return ""
	}
	return cdp.BrowserContextID(storeID)
}

func (b *CDP) Cookies(ctx context.Context, domain, storeID string) ([]cookiemap.Cookie, error) {
	var raw []*network.Cookie
	err := b.browserExec(ctx, func(ctx context.Context) error {
		p := storage.GetCookies()
		if id := contextID(storeID); id != "" {
			p = p.WithBrowserContextID(id)
		}
		var err error
		raw, err = p.Do(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]cookiemap.Cookie, 0, len(raw))
	for _, c := range raw {
		if !DomainMatches(c.Domain, domain) {
			continue
		}
		out = append(out, fromNetwork(c))
	}
	return out, nil
}

func fromNetwork(c *network.Cookie) cookiemap.Cookie {
	out := cookiemap.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: sameSiteFromCDP(c.SameSite),
		Session:  c.Session,
	}
	if !c.Session && c.Expires > 0 {
		out.ExpirationDate = math.Floor(c.Expires * 1000)
	}
	return out
}

// The extension API spells sameSite as no_restriction/lax/strict.
func sameSiteFromCDP(s network.CookieSameSite) string {
	switch s {
	case network.CookieSameSiteStrict:
		return "strict"
	case network.CookieSameSiteLax:
		return "lax"
	case network.CookieSameSiteNone:
		return "no_restriction"
	}
	return "unspecified"
}

func sameSiteToCDP(s string) network.CookieSameSite {
	switch strings.ToLower(s) {
	case "strict":
		return network.CookieSameSiteStrict
	case "lax":
		return network.CookieSameSiteLax
	case "no_restriction", "none":
		return network.CookieSameSiteNone
	}
	return ""
}

func (b *CDP) SetCookie(ctx context.Context, sc SetCookie) error {
	p := &network.CookieParam{
		Name:     sc.Name,
		Value:    sc.Value,
		URL:      sc.URL,
		Domain:   sc.Domain,
		Path:     sc.Path,
		Secure:   sc.Secure,
		HTTPOnly: sc.HTTPOnly,
		SameSite: sameSiteToCDP(sc.SameSite),
	}
	if sc.ExpirationDate > 0 {
		exp := cdp.TimeSinceEpoch(time.Unix(sc.ExpirationDate, 0))
		p.Expires = &exp
	}
	return b.setCookies(ctx, sc.StoreID, p)
}

func (b *CDP) setCookies(ctx context.Context, storeID string, params ...*network.CookieParam) error {
	return b.browserExec(ctx, func(ctx context.Context) error {
		p := storage.SetCookies(params)
		if id := contextID(storeID); id != "" {
			p = p.WithBrowserContextID(id)
		}
		return p.Do(ctx)
	})
}

// RemoveCookie overwrites the cookie with an already expired copy, which
// is how the storage domain deletes cookies of a given browser context.
func (b *CDP) RemoveCookie(ctx context.Context, rawURL, name, storeID string) error {
	exp := cdp.TimeSinceEpoch(time.Unix(1, 0))
	return b.setCookies(ctx, storeID, &network.CookieParam{
		Name:    name,
		Value:   "",
		URL:     rawURL,
		Expires: &exp,
	})
}

func (b *CDP) CookieStores(ctx context.Context) ([]Store, error) {
	var res target.GetBrowserContextsReturns
	err := b.browserExec(ctx, func(ctx context.Context) error {
		return cdp.Execute(ctx, target.CommandGetBrowserContexts, nil, &res)
	})
	if err != nil {
		return nil, err
	}
	tabs, err := b.Tabs(ctx)
	if err != nil {
		return nil, err
	}
	stores := []Store{{ID: DefaultStoreID}}
	for _, id := range res.BrowserContextIDs {
		stores = append(stores, Store{ID: string(id), Incognito: true})
	}
	for _, t := range tabs {
		for i := range stores {
			if stores[i].ID == t.StoreID {
				stores[i].TabIDs = append(stores[i].TabIDs, t.ID)
			}
		}
	}
	return stores, nil
}

func (b *CDP) Tabs(ctx context.Context) ([]Tab, error) {
	var res target.GetBrowserContextsReturns
	err := b.browserExec(ctx, func(ctx context.Context) error {
		return cdp.Execute(ctx, target.CommandGetBrowserContexts, nil, &res)
	})
	if err != nil {
		return nil, err
	}
	private := make(map[cdp.BrowserContextID]bool, len(res.BrowserContextIDs))
	for _, id := range res.BrowserContextIDs {
		private[id] = true
	}
	infos, err := chromedp.Targets(b.ctx)
	if err != nil {
		return nil, err
	}
	var tabs []Tab
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		// Attached is the nearest thing CDP has to an active tab.
		t := Tab{ID: string(info.TargetID), URL: info.URL, StoreID: DefaultStoreID, Active: info.Attached}
		if private[info.BrowserContextID] {
			t.StoreID = string(info.BrowserContextID)
			t.Incognito = true
		}
		tabs = append(tabs, t)
	}
	return tabs, nil
}

// inTab runs actions against an existing page target.
func (b *CDP) inTab(tabID string, actions ...chromedp.Action) error {
	tctx, cancel := chromedp.NewContext(b.ctx, chromedp.WithTargetID(target.ID(tabID)))
	defer cancel()
	return chromedp.Run(tctx, actions...)
}

func (b *CDP) ReloadTab(_ context.Context, tabID string) error {
	return b.inTab(tabID, chromedp.Reload())
}

const readStorageJS = `(() => {
	const out = [];
	for (let i = 0; i < localStorage.length; i++) {
		const k = localStorage.key(i);
		out.push({key: k, value: localStorage.getItem(k)});
	}
	return out;
})()`

func (b *CDP) ReadLocalStorage(_ context.Context, tabID string) ([]cookiemap.LocalStorageItem, error) {
	var items []cookiemap.LocalStorageItem
	if err := b.inTab(tabID, chromedp.Evaluate(readStorageJS, &items)); err != nil {
		return nil, err
	}
	return items, nil
}

func (b *CDP) WriteLocalStorage(_ context.Context, tabID string, items []cookiemap.LocalStorageItem) error {
	if len(items) == 0 {
		return nil
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	js := fmt.Sprintf(`(() => {
	for (const it of %s) {
		if (it.key && it.value !== null && it.value !== undefined) localStorage.setItem(it.key, it.value);
	}
})()`, payload)
	return b.inTab(tabID, chromedp.Evaluate(js, nil))
}

var _ Browser = (*CDP)(nil)
