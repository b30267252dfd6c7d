package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
)

// Memory is an in-process Browser. Cookies are keyed by store, domain,
// path and name the way a real jar keys them.
type Memory struct {
	mu      sync.Mutex
	stores  []Store
	jars    map[string]map[string]cookiemap.Cookie
	tabs    []Tab
	storage map[string][]cookiemap.LocalStorageItem
	// Reloaded records the ids passed to ReloadTab.
	Reloaded []string
	// FailSet makes SetCookie fail for cookies with this name.
	FailSet string
}

// NewMemory returns a Memory with only the default store.
func NewMemory() *Memory {
	return &Memory{
		stores:  []Store{{ID: DefaultStoreID}},
		jars:    map[string]map[string]cookiemap.Cookie{DefaultStoreID: {}},
		storage: make(map[string][]cookiemap.LocalStorageItem),
	}
}

func jarKey(c cookiemap.Cookie) string {
	return c.Domain + "|" + c.Path + "|" + c.Name
}

// AddStore opens another cookie store.
func (m *Memory) AddStore(id string, incognito bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores = append(m.stores, Store{ID: id, Incognito: incognito})
	if m.jars[id] == nil {
		m.jars[id] = make(map[string]cookiemap.Cookie)
	}
}

// AddTab opens a tab.
func (m *Memory) AddTab(t Tab) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.StoreID == "" {
		t.StoreID = DefaultStoreID
	}
	m.tabs = append(m.tabs, t)
	for i := range m.stores {
		if m.stores[i].ID == t.StoreID {
			m.stores[i].TabIDs = append(m.stores[i].TabIDs, t.ID)
		}
	}
}

// RemoveTab closes a tab.
func (m *Memory) RemoveTab(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tabs {
		if t.ID == id {
			m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
			break
		}
	}
	for i := range m.stores {
		ids := m.stores[i].TabIDs[:0]
		for _, tid := range m.stores[i].TabIDs {
			if tid != id {
				ids = append(ids, tid)
			}
		}
		m.stores[i].TabIDs = ids
	}
}

// Put stores c in storeID as is.
func (m *Memory) Put(storeID string, c cookiemap.Cookie) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jar := m.jars[storeID]
	if jar == nil {
		jar = make(map[string]cookiemap.Cookie)
		m.jars[storeID] = jar
	}
	jar[jarKey(c)] = c
}

// LocalStorage returns what was written to tabID.
func (m *Memory) LocalStorage(tabID string) []cookiemap.LocalStorageItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]cookiemap.LocalStorageItem(nil), m.storage[tabID]...)
}

func (m *Memory) Cookies(_ context.Context, domain, storeID string) ([]cookiemap.Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if storeID == "" {
		storeID = DefaultStoreID
	}
	var out []cookiemap.Cookie
	for _, c := range m.jars[storeID] {
		if DomainMatches(c.Domain, domain) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) SetCookie(_ context.Context, sc SetCookie) error {
	if sc.Name == m.FailSet && m.FailSet != "" {
		return fmt.Errorf("browser: failed to set cookie %s", sc.Name)
	}
	u, err := url.Parse(sc.URL)
	if err != nil {
		return err
	}
	c := cookiemap.Cookie{
		Name:     sc.Name,
		Value:    sc.Value,
		Domain:   sc.Domain,
		Path:     sc.Path,
		Secure:   sc.Secure,
		HTTPOnly: sc.HTTPOnly,
		SameSite: sc.SameSite,
		Session:  sc.ExpirationDate == 0,
	}
	if c.Domain == "" {
		c.Domain = u.Hostname()
	}
	if c.Path == "" {
		c.Path = "/"
	}
	if sc.ExpirationDate != 0 {
		c.ExpirationDate = float64(sc.ExpirationDate) * 1000
	}
	storeID := sc.StoreID
	if storeID == "" {
		storeID = DefaultStoreID
	}
	m.Put(storeID, c)
	return nil
}

func (m *Memory) RemoveCookie(_ context.Context, rawURL, name, storeID string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if storeID == "" {
		storeID = DefaultStoreID
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, c := range m.jars[storeID] {
		if c.Name == name && strings.TrimPrefix(c.Domain, ".") == u.Hostname() && c.Path == path {
			delete(m.jars[storeID], k)
		}
	}
	return nil
}

func (m *Memory) CookieStores(context.Context) ([]Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Store(nil), m.stores...), nil
}

func (m *Memory) Tabs(context.Context) ([]Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Tab(nil), m.tabs...), nil
}

func (m *Memory) ReloadTab(_ context.Context, tabID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reloaded = append(m.Reloaded, tabID)
	return nil
}

func (m *Memory) ReadLocalStorage(_ context.Context, tabID string) ([]cookiemap.LocalStorageItem, error) {
	return m.LocalStorage(tabID), nil
}

func (m *Memory) WriteLocalStorage(_ context.Context, tabID string, items []cookiemap.LocalStorageItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.storage[tabID]
	for _, it := range items {
		replaced := false
		for i := range cur {
			if cur[i].Key == it.Key {
				cur[i].Value = it.Value
				replaced = true
			}
		}
		if !replaced {
			cur = append(cur, it)
		}
	}
	m.storage[tabID] = cur
	return nil
}

var _ Browser = (*Memory)(nil)
