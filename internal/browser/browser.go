// Package browser abstracts the browser the daemon synchronizes: its
// cookie stores (the default jar and any private-browsing jars), its open
// tabs and the localStorage of those tabs.
//
// Two backends are provided. CDP drives a Chromium instance over the
// DevTools protocol, Bridge forwards every call to a connected browser
// extension as a JSON-RPC callback. Memory is an in-process jar used with
// --offline and by tests.
package browser

import (
	"context"
	"errors"
	"strings"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
)

// DefaultStoreID names the normal browsing cookie store.
const DefaultStoreID = "0"

// ErrNoIncognitoStore is returned when an operation needs a private
// browsing cookie store and none is open.
var ErrNoIncognitoStore = errors.New("browser: no incognito cookie store found")

// ErrDisconnected is returned by backends that have no live browser.
var ErrDisconnected = errors.New("browser: not connected")

// Store describes one cookie jar.
type Store struct {
	ID        string   `json:"id"`
	Incognito bool     `json:"incognito"`
	TabIDs    []string `json:"tabIds,omitempty"`
}

// Tab describes one open tab.
type Tab struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	StoreID   string `json:"storeId,omitempty"`
	Incognito bool   `json:"incognito,omitempty"`
	Active    bool   `json:"active,omitempty"`
}

// SetCookie is the input of Browser.SetCookie. ExpirationDate is in
// seconds since the epoch; zero sets a session cookie.
type SetCookie struct {
	URL            string `json:"url"`
	Name           string `json:"name"`
	Value          string `json:"value"`
	Domain         string `json:"domain,omitempty"`
	Path           string `json:"path,omitempty"`
	Secure         bool   `json:"secure,omitempty"`
	HTTPOnly       bool   `json:"httpOnly,omitempty"`
	SameSite       string `json:"sameSite,omitempty"`
	ExpirationDate int64  `json:"expirationDate,omitempty"`
	StoreID        string `json:"storeId,omitempty"`
}

// NewSetCookie builds the set request for a stored cookie in storeID.
// The expiry is left unset, callers decide it. An "unspecified" sameSite
// is omitted so the browser applies its default.
func NewSetCookie(c cookiemap.Cookie, storeID string) SetCookie {
	sc := SetCookie{
		URL:      cookiemap.CookieURL(c.Domain, c.Path, c.Secure),
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		StoreID:  storeID,
	}
	if c.SameSite != "" && c.SameSite != "unspecified" {
		sc.SameSite = c.SameSite
	}
	return sc
}

// Browser is the set of browser primitives the sync core depends on.
type Browser interface {
	// Cookies returns the cookies of storeID whose domain is domain or one
	// of its subdomains. An empty domain returns the whole store.
	Cookies(ctx context.Context, domain, storeID string) ([]cookiemap.Cookie, error)
	SetCookie(ctx context.Context, c SetCookie) error
	RemoveCookie(ctx context.Context, url, name, storeID string) error
	CookieStores(ctx context.Context) ([]Store, error)
	Tabs(ctx context.Context) ([]Tab, error)
	ReloadTab(ctx context.Context, tabID string) error
	ReadLocalStorage(ctx context.Context, tabID string) ([]cookiemap.LocalStorageItem, error)
	WriteLocalStorage(ctx context.Context, tabID string, items []cookiemap.LocalStorageItem) error
}

// IncognitoStoreID returns the id of the first private browsing store.
func IncognitoStoreID(ctx context.Context, b Browser) (string, error) {
	stores, err := b.CookieStores(ctx)
	if err != nil {
		return "", err
	}
	for _, s := range stores {
		if s.Incognito {
			return s.ID, nil
		}
	}
	return "", ErrNoIncognitoStore
}

// DomainMatches reports whether a cookie stored for cookieDomain is
// selected by the filter domain, following the getAll semantics of the
// extension cookie API.
func DomainMatches(cookieDomain, filter string) bool {
	if filter == "" {
		return true
	}
	d := strings.TrimPrefix(strings.ToLower(cookieDomain), ".")
	f := strings.TrimPrefix(strings.ToLower(filter), ".")
	return d == f || strings.HasSuffix(d, "."+f)
}

// TabsForHost returns the tabs whose URL hostname is host, ignoring any
// port. When incognito is set only private browsing tabs are returned.
func TabsForHost(tabs []Tab, host string, incognito bool) []Tab {
	host, _ = cookiemap.ExtractDomainAndPort(host)
	var out []Tab
	for _, t := range tabs {
		if incognito && !t.Incognito {
			continue
		}
		h, _ := cookiemap.ExtractDomainAndPort(cookiemap.HostOf(t.URL))
		if h != "" && h == host {
			out = append(out, t)
		}
	}
	return out
}
