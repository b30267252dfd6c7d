package cookies

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

// browserSpec describes where a browser keeps its cookie database.
type browserSpec struct {
	// Name is the human-readable browser name (e.g., "Firefox").
	Name string
	// CookiePaths contains direct cookie file candidates for Chromium-family
	// browsers. The first path that exists on disk is used.
	CookiePaths []string
	// ProfilesIniPaths contains candidate paths to Firefox-style profiles.ini
	// files. Empty for Chromium-family browsers.
	ProfilesIniPaths []string
}

// chromiumCookiePaths returns the cookie database candidates of a
// Chromium profile directory, newest layout first.
func chromiumCookiePaths(profile string) []string {
	return []string{
		filepath.Join(profile, "Network", "Cookies"),
		filepath.Join(profile, "Cookies"),
	}
}

// defaultProfile returns the default profile directory named by a
// Firefox-style profiles.ini, or "" when there is none. An [Install*]
// Default= key wins over a [Profile*] section with Default=1.
func defaultProfile(iniPath string) string {
	cfg, err := ini.Load(iniPath)
	if err != nil {
		return ""
	}
	dir := filepath.Dir(iniPath)
	resolve := func(p string, relative bool) string {
		p = filepath.FromSlash(p)
		if relative {
			return filepath.Join(dir, p)
		}
		return p
	}

	var fallback string
	for _, sec := range cfg.Sections() {
		switch {
		case strings.HasPrefix(sec.Name(), "Install"):
			if d := sec.Key("Default").String(); d != "" {
				return resolve(d, true)
			}
		case strings.HasPrefix(sec.Name(), "Profile") && fallback == "":
			if sec.Key("Default").String() == "1" && sec.HasKey("Path") {
				rel := !sec.HasKey("IsRelative") || sec.Key("IsRelative").MustInt(1) != 0
				fallback = resolve(sec.Key("Path").String(), rel)
			}
		}
	}
	return fallback
}

// candidates lists the cookie databases of the browser that exist on disk.
func (b browserSpec) candidates() []string {
	var paths []string
	for _, p := range b.CookiePaths {
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	for _, iniPath := range b.ProfilesIniPaths {
		profile := defaultProfile(iniPath)
		if profile == "" {
			continue
		}
		p := filepath.Join(profile, "cookies.sqlite")
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}

// Browsers returns the names of the browsers whose cookie stores can be
// found automatically, in detection order.
func Browsers() []string {
	specs := getBrowserCookiePaths()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

// chromiumVendorOf guesses the Chromium-family browser owning a cookie
// database from its path. The answer selects the keychain entry.
func chromiumVendorOf(path string) string {
	p := strings.ToLower(filepath.ToSlash(path))
	switch {
	case strings.Contains(p, "bravesoftware"):
		return "Brave"
	case strings.Contains(p, "microsoft edge"), strings.Contains(p, "microsoft/edge"), strings.Contains(p, "microsoft-edge"):
		return "Edge"
	case strings.Contains(p, "chromium"):
		return "Chromium"
	}
	return "Chrome"
}
