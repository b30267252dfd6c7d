package cookies

import (
	"path/filepath"
	"testing"
)

func TestDefaultProfile(t *testing.T) {
	tests := []struct {
		name string
		ini  string
		want func(dir string) string
	}{
		{
			name: "install section wins",
			ini: `[Profile0]
Name=old
IsRelative=1
Path=Profiles/old.default
Default=1

[Install4F96D1932A9F858E]
Default=Profiles/new.default-release
Locked=1
`,
			want: func(dir string) string { return filepath.Join(dir, "Profiles", "new.default-release") },
		},
		{
			name: "default profile",
			ini: `[General]
StartWithLastProfile=1

[Profile1]
Name=work
IsRelative=1
Path=Profiles/work

[Profile0]
Name=default
IsRelative=1
Path=Profiles/abc.default
Default=1
`,
			want: func(dir string) string { return filepath.Join(dir, "Profiles", "abc.default") },
		},
		{
			name: "absolute path",
			ini: `[Profile0]
IsRelative=0
Path=/opt/profiles/main
Default=1
`,
			want: func(string) string { return filepath.FromSlash("/opt/profiles/main") },
		},
		{
			name: "no default",
			ini: `[Profile0]
Path=Profiles/x
`,
			want: func(string) string { return "" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, filepath.Join(dir, "profiles.ini"), tt.ini)
			if got, want := defaultProfile(path), tt.want(dir); got != want {
				t.Errorf("defaultProfile() = %q, want %q", got, want)
			}
		})
	}

	if got := defaultProfile(filepath.Join(t.TempDir(), "missing.ini")); got != "" {
		t.Errorf("defaultProfile(missing) = %q", got)
	}
}

func TestBrowserSpecCandidates(t *testing.T) {
	dir := t.TempDir()
	network := writeFile(t, filepath.Join(dir, "chrome", "Default", "Network", "Cookies"), "db")
	ffProfile := filepath.Join(dir, "firefox", "Profiles", "p.default")
	ffCookies := writeFile(t, filepath.Join(ffProfile, "cookies.sqlite"), "db")
	ini := writeFile(t, filepath.Join(dir, "firefox", "profiles.ini"), "[Profile0]\nIsRelative=1\nPath=Profiles/p.default\nDefault=1\n")

	chrome := browserSpec{Name: "Chrome", CookiePaths: chromiumCookiePaths(filepath.Join(dir, "chrome", "Default"))}
	if got := chrome.candidates(); len(got) != 1 || got[0] != network {
		t.Errorf("chrome candidates = %v", got)
	}
	ff := browserSpec{Name: "Firefox", ProfilesIniPaths: []string{filepath.Join(dir, "nope.ini"), ini}}
	if got := ff.candidates(); len(got) != 1 || got[0] != ffCookies {
		t.Errorf("firefox candidates = %v", got)
	}
}

func TestChromiumVendorOf(t *testing.T) {
	tests := map[string]string{
		"/home/u/.config/BraveSoftware/Brave-Browser/Default/Cookies":                    "Brave",
		"/home/u/.config/microsoft-edge/Default/Network/Cookies":                         "Edge",
		"/Users/u/Library/Application Support/Microsoft Edge/Default/Cookies":            "Edge",
		"C:/Users/u/AppData/Local/Microsoft/Edge/User Data/Default/Network/Cookies":      "Edge",
		"/home/u/.config/chromium/Default/Cookies":                                       "Chromium",
		"/home/u/.config/google-chrome/Default/Cookies":                                  "Chrome",
		"/tmp/Cookies":                                                                   "Chrome",
	}
	for path, want := range tests {
		if got := chromiumVendorOf(path); got != want {
			t.Errorf("chromiumVendorOf(%q) = %q, want %q", path, got, want)
		}
	}
}
