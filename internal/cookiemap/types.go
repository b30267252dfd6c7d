// Package cookiemap holds the synchronized document model, the pure
// transforms applied to it and the codecs used to put it on the wire.
//
// A CookiesMap is never patched in place remotely. Callers read the whole
// document, apply one of the transforms in this package and write the
// result back as a single blob.
package cookiemap

// CookiesMap is the root synchronized document. Timestamps are
// milliseconds since the Unix epoch.
type CookiesMap struct {
	UpdateTime      int64                   `json:"updateTime,omitempty"`
	CreateTime      int64                   `json:"createTime,omitempty"`
	DomainCookieMap map[string]*DomainEntry `json:"domainCookieMap,omitempty"`
}

// DomainEntry is the snapshot stored for one domain key.
type DomainEntry struct {
	UpdateTime        int64              `json:"updateTime,omitempty"`
	CreateTime        int64              `json:"createTime,omitempty"`
	Cookies           []Cookie           `json:"cookies,omitempty"`
	LocalStorageItems []LocalStorageItem `json:"localStorageItems,omitempty"`
}

// Cookie is the canonical cookie record. ExpirationDate is stored in
// milliseconds since the epoch; browser backends convert at the boundary.
type Cookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path,omitempty"`
	Secure         bool    `json:"secure,omitempty"`
	HTTPOnly       bool    `json:"httpOnly,omitempty"`
	SameSite       string  `json:"sameSite,omitempty"`
	ExpirationDate float64 `json:"expirationDate,omitempty"`
	Session        bool    `json:"session,omitempty"`
}

// ID returns the composite identity used by remove requests.
func (c Cookie) ID() string {
	return CookieID(c.Domain, c.Name)
}

// CookieID builds the "domain_name" identity string.
func CookieID(domain, name string) string {
	return domain + "_" + name
}

// LocalStorageItem is one key/value pair captured from a page's localStorage.
type LocalStorageItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CookiePatch carries the fields of an edit. Nil fields keep the stored
// value. Name and Domain of the new item may be changed too.
type CookiePatch struct {
	Name           *string  `json:"name,omitempty"`
	Value          *string  `json:"value,omitempty"`
	Domain         *string  `json:"domain,omitempty"`
	Path           *string  `json:"path,omitempty"`
	Secure         *bool    `json:"secure,omitempty"`
	HTTPOnly       *bool    `json:"httpOnly,omitempty"`
	SameSite       *string  `json:"sameSite,omitempty"`
	ExpirationDate *float64 `json:"expirationDate,omitempty"`
	Session        *bool    `json:"session,omitempty"`
}

// PatchOf returns a patch setting every field of c.
func PatchOf(c Cookie) CookiePatch {
	return CookiePatch{
		Name:           &c.Name,
		Value:          &c.Value,
		Domain:         &c.Domain,
		Path:           &c.Path,
		Secure:         &c.Secure,
		HTTPOnly:       &c.HTTPOnly,
		SameSite:       &c.SameSite,
		ExpirationDate: &c.ExpirationDate,
		Session:        &c.Session,
	}
}

// Apply returns c with every non-nil field of p written over it.
func (p CookiePatch) Apply(c Cookie) Cookie {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Value != nil {
		c.Value = *p.Value
	}
	if p.Domain != nil {
		c.Domain = *p.Domain
	}
	if p.Path != nil {
		c.Path = *p.Path
	}
	if p.Secure != nil {
		c.Secure = *p.Secure
	}
	if p.HTTPOnly != nil {
		c.HTTPOnly = *p.HTTPOnly
	}
	if p.SameSite != nil {
		c.SameSite = *p.SameSite
	}
	if p.ExpirationDate != nil {
		c.ExpirationDate = *p.ExpirationDate
	}
	if p.Session != nil {
		c.Session = *p.Session
	}
	return c
}

// DomainUpdate is one element of a batch merge.
type DomainUpdate struct {
	Domain            string             `json:"domain"`
	Cookies           []Cookie           `json:"cookies,omitempty"`
	LocalStorageItems []LocalStorageItem `json:"localStorageItems,omitempty"`
}

// Empty returns a map with no domains and zero timestamps.
func Empty() *CookiesMap {
	return &CookiesMap{}
}

// Len returns the number of domains in m.
func (m *CookiesMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.DomainCookieMap)
}

// Entry returns the entry stored for domain, or nil.
func (m *CookiesMap) Entry(domain string) *DomainEntry {
	if m == nil || m.DomainCookieMap == nil {
		return nil
	}
	return m.DomainCookieMap[domain]
}

// CookieCount returns the total number of cookies across all domains.
func (m *CookiesMap) CookieCount() int {
	n := 0
	if m == nil {
		return n
	}
	for _, e := range m.DomainCookieMap {
		if e != nil {
			n += len(e.Cookies)
		}
	}
	return n
}

// Plane selects the normal or the incognito copy of the document.
type Plane int

const (
	Normal Plane = iota
	Incognito
)

func (p Plane) String() string {
	if p == Incognito {
		return "incognito"
	}
	return "normal"
}

// PlaneOf maps an isIncognito request flag onto a Plane.
func PlaneOf(incognito bool) Plane {
	if incognito {
		return Incognito
	}
	return Normal
}
