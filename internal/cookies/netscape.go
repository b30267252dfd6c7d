package cookies

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
)

const (
	netscapeHeader = "# Netscape HTTP Cookie File"
	httpOnlyPrefix = "#HttpOnly_"
)

// ParseNetscape reads cookies from a Netscape-format cookie text file for the given domain.
// Lines starting with # are skipped, except #HttpOnly_ which sets the HttpOnly flag.
// Malformed lines are skipped with a warning.
func ParseNetscape(filePath string, domain string, l logger.Logger) ([]cookiemap.Cookie, error) {
	l = logger.Or(l)
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error: cannot open Netscape cookie file: %w", err)
	}
	defer f.Close()

	now := time.Now()
	var cookies []cookiemap.Cookie

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			httpOnly = true
			line = line[len(httpOnlyPrefix):]
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			l.Warning("cookies: skipping malformed Netscape cookie line: %q", line)
			continue
		}
		cookieDomain := fields[0]
		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			l.Warning("cookies: skipping cookie with invalid expiry: %q", fields[4])
			continue
		}
		if !matchesDomain(cookieDomain, domain) {
			continue
		}
		if expiry > 0 && time.Unix(expiry, 0).Before(now) {
			continue
		}

		// Netscape files carry no SameSite attribute.
		cookies = append(cookies, newCookie(fields[5], fields[6], cookieDomain, fields[2],
			expiry, strings.EqualFold(fields[3], "TRUE"), httpOnly, "unspecified"))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to read Netscape cookie file: %w", err)
	}
	return cookies, nil
}

// WriteNetscape writes cookies in the Netscape format read by curl, wget
// and ParseNetscape. Session cookies get expiry 0.
func WriteNetscape(w io.Writer, cookies []cookiemap.Cookie) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, netscapeHeader)
	fmt.Fprintln(bw)
	for _, c := range cookies {
		domain := c.Domain
		if c.HTTPOnly {
			domain = httpOnlyPrefix + domain
		}
		var expiry int64
		if t := Expires(c); !t.IsZero() {
			expiry = t.Unix()
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domain, boolField(strings.HasPrefix(c.Domain, ".")), path, boolField(c.Secure), expiry, c.Name, c.Value)
	}
	return bw.Flush()
}

func boolField(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// matchesDomain checks if a cookie domain is domain, its dot form or a
// subdomain of it.
func matchesDomain(cookieDomain, domain string) bool {
	dotDomain := "." + domain
	return cookieDomain == domain || cookieDomain == dotDomain || strings.HasSuffix(cookieDomain, dotDomain)
}
