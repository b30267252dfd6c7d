package cookies

import (
	"math"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
)

// CookieFormat identifies the format of a browser cookie store.
type CookieFormat int

const (
	// FormatUnknown means the cookie store format could not be detected.
	FormatUnknown CookieFormat = 0
	// FormatFirefox means the cookie store uses the Firefox moz_cookies SQLite schema.
	FormatFirefox CookieFormat = 1
	// FormatChrome means the cookie store uses the Chrome cookies SQLite schema.
	FormatChrome CookieFormat = 2
	// FormatNetscape means the cookie store uses the Netscape tab-separated text format.
	FormatNetscape CookieFormat = 3
)

func (f CookieFormat) String() string {
	switch f {
	case FormatFirefox:
		return "firefox"
	case FormatChrome:
		return "chrome"
	case FormatNetscape:
		return "netscape"
	}
	return "unknown"
}

// CookieSource describes where cookies were imported from.
type CookieSource struct {
	// Path is the filesystem path to the cookie store file.
	Path string
	// Format is the detected cookie store format.
	Format CookieFormat
	// Browser is the browser name (e.g., "Firefox", "Chrome", "Netscape").
	Browser string
	// Skipped counts cookies that could not be read, e.g. encrypted
	// values without a usable key.
	Skipped int
}

// newCookie builds a stored cookie. expires is Unix seconds; zero makes a
// session cookie.
func newCookie(name, value, domain, path string, expires int64, secure, httpOnly bool, sameSite string) cookiemap.Cookie {
	c := cookiemap.Cookie{
		Name:     name,
		Value:    value,
		Domain:   domain,
		Path:     path,
		Secure:   secure,
		HTTPOnly: httpOnly,
		SameSite: sameSite,
	}
	if expires <= 0 {
		c.Session = true
	} else {
		c.ExpirationDate = float64(expires) * 1000
	}
	return c
}

// Expires returns the expiration of a stored cookie, or the zero time for
// session cookies.
func Expires(c cookiemap.Cookie) time.Time {
	if c.Session || c.ExpirationDate <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(math.Floor(c.ExpirationDate)))
}

// sameSiteOf maps the integer SameSite column shared by Chrome (-1
// unspecified) and Firefox to the extension's spelling.
func sameSiteOf(v int) string {
	switch v {
	case 0:
		return "no_restriction"
	case 1:
		return "lax"
	case 2:
		return "strict"
	}
	return "unspecified"
}
