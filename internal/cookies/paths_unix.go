//go:build unix

package cookies

import (
	"os"
	"path/filepath"
	"runtime"
)

// getBrowserCookiePathsForHome returns browser specs under homeDir for the
// running OS.
func getBrowserCookiePathsForHome(homeDir string) []browserSpec {
	return browserSpecsFor(runtime.GOOS, homeDir)
}

// browserSpecsFor lists the cookie locations of supported browsers on a
// macOS or Linux home directory, in detection order.
func browserSpecsFor(goos, homeDir string) []browserSpec {
	if goos == "darwin" {
		support := filepath.Join(homeDir, "Library", "Application Support")
		return []browserSpec{
			{Name: "Firefox", ProfilesIniPaths: []string{filepath.Join(support, "Firefox", "profiles.ini")}},
			{Name: "LibreWolf", ProfilesIniPaths: []string{filepath.Join(support, "librewolf", "profiles.ini")}},
			{Name: "Chrome", CookiePaths: chromiumCookiePaths(filepath.Join(support, "Google", "Chrome", "Default"))},
			{Name: "Chromium", CookiePaths: chromiumCookiePaths(filepath.Join(support, "Chromium", "Default"))},
			{Name: "Edge", CookiePaths: chromiumCookiePaths(filepath.Join(support, "Microsoft Edge", "Default"))},
			{Name: "Brave", CookiePaths: chromiumCookiePaths(filepath.Join(support, "BraveSoftware", "Brave-Browser", "Default"))},
		}
	}
	config := filepath.Join(homeDir, ".config")
	return []browserSpec{
		{Name: "Firefox", ProfilesIniPaths: []string{
			filepath.Join(homeDir, ".mozilla", "firefox", "profiles.ini"),
			filepath.Join(homeDir, "snap", "firefox", "common", ".mozilla", "firefox", "profiles.ini"),
		}},
		{Name: "LibreWolf", ProfilesIniPaths: []string{filepath.Join(homeDir, ".librewolf", "profiles.ini")}},
		{Name: "Chrome", CookiePaths: chromiumCookiePaths(filepath.Join(config, "google-chrome", "Default"))},
		{Name: "Chromium", CookiePaths: chromiumCookiePaths(filepath.Join(config, "chromium", "Default"))},
		{Name: "Edge", CookiePaths: chromiumCookiePaths(filepath.Join(config, "microsoft-edge", "Default"))},
		{Name: "Brave", CookiePaths: chromiumCookiePaths(filepath.Join(config, "BraveSoftware", "Brave-Browser", "Default"))},
	}
}

func getBrowserCookiePaths() []browserSpec {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return getBrowserCookiePathsForHome(homeDir)
}
