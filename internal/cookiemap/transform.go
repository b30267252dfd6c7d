package cookiemap

import (
	"errors"
	"strings"

	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
)

// ErrEmptyDomain is returned when a transform is asked to write an empty
// domain key.
var ErrEmptyDomain = errors.New("cookiemap: empty domain key")

// The transforms below never mutate their input. Domain entries that are
// not touched are shared between the old and the new map, entries that
// are touched are copied first.

// stamp starts a new root document from m, carrying createTime forward.
func stamp(m *CookiesMap, now int64) *CookiesMap {
	out := &CookiesMap{
		UpdateTime:      now,
		CreateTime:      now,
		DomainCookieMap: make(map[string]*DomainEntry),
	}
	if m == nil {
		return out
	}
	if m.CreateTime != 0 {
		out.CreateTime = m.CreateTime
	}
	for k, v := range m.DomainCookieMap {
		out.DomainCookieMap[k] = v
	}
	return out
}

func newEntry(prev *DomainEntry, cookies []Cookie, items []LocalStorageItem, now int64) *DomainEntry {
	e := &DomainEntry{
		UpdateTime:        now,
		CreateTime:        now,
		Cookies:           cookies,
		LocalStorageItems: items,
	}
	if prev != nil && prev.CreateTime != 0 {
		e.CreateTime = prev.CreateTime
	}
	return e
}

// MergeDomain replaces or inserts the entry for domain and copies every
// other domain through untouched.
func MergeDomain(m *CookiesMap, domain string, cookies []Cookie, items []LocalStorageItem, now int64) (*CookiesMap, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, ErrEmptyDomain
	}
	out := stamp(m, now)
	out.DomainCookieMap[domain] = newEntry(m.Entry(domain), cookies, items, now)
	return out, nil
}

// MergeMultipleDomains applies several domain updates in one document
// revision. Updates with an empty domain are skipped and reported back.
func MergeMultipleDomains(m *CookiesMap, updates []DomainUpdate, now int64) (out *CookiesMap, skipped int) {
	out = stamp(m, now)
	for _, u := range updates {
		domain := strings.TrimSpace(u.Domain)
		if domain == "" {
			skipped++
			continue
		}
		out.DomainCookieMap[domain] = newEntry(m.Entry(domain), u.Cookies, u.LocalStorageItems, now)
	}
	return out, skipped
}

// RemoveDomain deletes the entry for domain. Removing an unknown domain
// still produces a new revision.
func RemoveDomain(m *CookiesMap, domain string, now int64) *CookiesMap {
	out := stamp(m, now)
	delete(out.DomainCookieMap, domain)
	return out
}

// RemoveCookieItem drops the cookie whose "domain_name" identity equals id
// from the entry stored under domain. It fails with an ItemNotFound error
// when nothing matched.
func RemoveCookieItem(m *CookiesMap, domain, id string, now int64) (*CookiesMap, error) {
	prev := m.Entry(domain)
	if prev == nil {
		return nil, syncerr.New(syncerr.ItemNotFound, id+": cookie not found")
	}
	kept := make([]Cookie, 0, len(prev.Cookies))
	for _, c := range prev.Cookies {
		if c.ID() != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(prev.Cookies) {
		return nil, syncerr.New(syncerr.ItemNotFound, id+": cookie not found")
	}
	entry := *prev
	entry.Cookies = kept
	out := stamp(m, now)
	out.DomainCookieMap[domain] = &entry
	return out, nil
}

// EditCookieItem finds the first cookie in domain's entry matching old by
// (name, domain) and applies patch to it. A miss is not an error.
func EditCookieItem(m *CookiesMap, domain string, old Cookie, patch CookiePatch, now int64) *CookiesMap {
	out := stamp(m, now)
	prev := m.Entry(domain)
	if prev == nil {
		return out
	}
	for i, c := range prev.Cookies {
		if c.Name != old.Name || c.Domain != old.Domain {
			continue
		}
		entry := *prev
		entry.Cookies = make([]Cookie, len(prev.Cookies))
		copy(entry.Cookies, prev.Cookies)
		entry.Cookies[i] = patch.Apply(c)
		out.DomainCookieMap[domain] = &entry
		break
	}
	return out
}
