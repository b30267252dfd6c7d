package cookies

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
)

// Auto asks Importer.FromBrowser to try every known browser.
const Auto = "auto"

// ErrNoCookieStore is returned when no browser cookie store was found.
var ErrNoCookieStore = errors.New("no supported browser cookie store found")

// Importer reads cookies for a domain out of local browser profiles.
type Importer struct {
	log   logger.Logger
	specs func() []browserSpec
	keys  func(browser string) chromeKeys
}

// NewImporter creates an importer for the browsers installed for the
// current user.
func NewImporter(l logger.Logger) *Importer {
	l = logger.Or(l)
	return &Importer{
		log:   l,
		specs: getBrowserCookiePaths,
		keys:  func(browser string) chromeKeys { return loadChromeKeys(browser, l) },
	}
}

// FromFile imports cookies for domain from the cookie store at path. The
// format is detected from the file; SQLite stores are read from a copy.
func (im *Importer) FromFile(path, domain string) ([]cookiemap.Cookie, *CookieSource, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, nil, err
	}
	source := &CookieSource{Path: path, Format: format}

	var cookies []cookiemap.Cookie
	switch format {
	case FormatFirefox:
		source.Browser = "Firefox"
		err = withCopy(path, func(copied string) (err error) {
			cookies, err = ParseFirefox(copied, domain)
			return err
		})
	case FormatChrome:
		source.Browser = chromiumVendorOf(path)
		keys := im.keys(source.Browser)
		err = withCopy(path, func(copied string) (err error) {
			cookies, source.Skipped, err = ParseChrome(copied, domain, keys)
			return err
		})
		if source.Skipped > 0 {
			im.log.Warning("cookies: skipped %d encrypted %s cookies for %s", source.Skipped, source.Browser, domain)
		}
	case FormatNetscape:
		source.Browser = "Netscape"
		cookies, err = ParseNetscape(path, domain, im.log)
	default:
		return nil, nil, fmt.Errorf("error: unsupported cookie database schema at %s", path)
	}
	if err != nil {
		return nil, nil, err
	}
	return cookies, source, nil
}

// FromBrowser imports cookies for domain from the named browser, or from
// the first browser with a readable store when browser is Auto or empty.
// Detection order follows Browsers.
func (im *Importer) FromBrowser(browser, domain string) ([]cookiemap.Cookie, *CookieSource, error) {
	auto := browser == "" || strings.EqualFold(browser, Auto)
	var tried []string
	for _, b := range im.specs() {
		if !auto && !strings.EqualFold(b.Name, browser) {
			continue
		}
		tried = append(tried, b.Name)
		for _, path := range b.candidates() {
			cookies, source, err := im.FromFile(path, domain)
			if err != nil {
				im.log.Warning("cookies: %s store %s: %v", b.Name, path, err)
				continue
			}
			source.Browser = b.Name
			return cookies, source, nil
		}
	}
	if len(tried) == 0 {
		return nil, nil, fmt.Errorf("unknown browser %q", browser)
	}
	return nil, nil, fmt.Errorf("%w (tried %s)", ErrNoCookieStore, strings.Join(tried, ", "))
}

func withCopy(path string, fn func(copied string) error) error {
	copied, cleanup, err := SafeCopy(path)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(copied)
}
