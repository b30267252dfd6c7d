//go:build windows

package cookies

import (
	"os"
	"path/filepath"
)

// getBrowserCookiePathsForEnv returns browser specs for the given
// LOCALAPPDATA and APPDATA values. Firefox-family profiles live under
// APPDATA, Chromium-family ones under LOCALAPPDATA.
func getBrowserCookiePathsForEnv(localAppData, appData string) []browserSpec {
	userData := func(parts ...string) []string {
		p := filepath.Join(append([]string{localAppData}, parts...)...)
		return chromiumCookiePaths(filepath.Join(p, "User Data", "Default"))
	}
	return []browserSpec{
		{Name: "Firefox", ProfilesIniPaths: []string{filepath.Join(appData, "Mozilla", "Firefox", "profiles.ini")}},
		{Name: "LibreWolf", ProfilesIniPaths: []string{filepath.Join(appData, "LibreWolf", "profiles.ini")}},
		{Name: "Chrome", CookiePaths: userData("Google", "Chrome")},
		{Name: "Chromium", CookiePaths: userData("Chromium")},
		{Name: "Edge", CookiePaths: userData("Microsoft", "Edge")},
		{Name: "Brave", CookiePaths: userData("BraveSoftware", "Brave-Browser")},
	}
}

func getBrowserCookiePaths() []browserSpec {
	return getBrowserCookiePathsForEnv(os.Getenv("LOCALAPPDATA"), os.Getenv("APPDATA"))
}
