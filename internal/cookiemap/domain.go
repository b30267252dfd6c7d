package cookiemap

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// ExtractDomainAndPort splits a domain key such as "example.com:8080"
// into its host and port. The host is converted to its ASCII form so it
// can be handed to browser cookie APIs.
func ExtractDomainAndPort(key string) (domain, port string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ""
	}
	if strings.Contains(key, "://") {
		if u, err := url.Parse(key); err == nil {
			key = u.Host
		}
	}
	domain = key
	if h, p, err := net.SplitHostPort(key); err == nil {
		domain, port = h, p
	}
	if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
		domain = ascii
	}
	return domain, port
}

// HostOf returns the host (with port) of rawURL, or "" when it does not
// parse.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// NormalizeDomain strips one leading dot and then one leading "www.".
func NormalizeDomain(d string) string {
	d = strings.TrimPrefix(d, ".")
	return strings.TrimPrefix(d, "www.")
}

// RelatedDomains reports whether two domains are equal after
// normalization, or one is a dot-separated subdomain of the other.
func RelatedDomains(a, b string) bool {
	na, nb := NormalizeDomain(a), NormalizeDomain(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb ||
		strings.HasSuffix(na, "."+nb) ||
		strings.HasSuffix(nb, "."+na)
}

// SuffixMatch is the rule used to decide whether a cookie or tab domain
// falls under a configured key. It is a plain string suffix test, so
// "notexample.com" matches the key "example.com".
// TODO: require a dot boundary once existing configs are migrated.
func SuffixMatch(domain, key string) bool {
	return key != "" && strings.HasSuffix(domain, key)
}

// CookieURL builds the URL a cookie is set or removed through. The
// leading dot of domain is dropped and path defaults to "/".
func CookieURL(domain, path string, secure bool) string {
	scheme := "https"
	if !secure {
		scheme = "http"
	}
	if path == "" {
		path = "/"
	}
	return scheme + "://" + strings.TrimPrefix(domain, ".") + path
}
