package cookies

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Filatest/sync-your-cookie/pkg/logger"
)

func testImporter(specs []browserSpec, keys chromeKeys) *Importer {
	return &Importer{
		log:   logger.NewNopLogger(),
		specs: func() []browserSpec { return specs },
		keys:  func(string) chromeKeys { return keys },
	}
}

func TestImporter_FromFile(t *testing.T) {
	dir := t.TempDir()
	future := time.Now().Add(time.Hour)
	keys := chromeKeys{v10: chromeKey("peanuts", 1)}

	braveDir := filepath.Join(dir, "BraveSoftware", "Default")
	writeFile(t, filepath.Join(braveDir, ".keep"), "")
	chromePath := chromeFixture(t, braveDir, 0, false, []chromeRow{
		{Name: "plain", Value: "1", HostKey: ".example.com", Path: "/", ExpiresUTC: unixToChrome(future.Unix())},
		{Name: "enc", HostKey: ".example.com", Path: "/", ExpiresUTC: unixToChrome(future.Unix()),
			Encrypted: encryptChrome(t, "v10", keys.v10, []byte("2"))},
		{Name: "lost", HostKey: ".example.com", Path: "/", ExpiresUTC: unixToChrome(future.Unix()),
			Encrypted: []byte("v11garbage-garbage!")},
	})
	ffDir := filepath.Join(dir, "ff")
	writeFile(t, filepath.Join(ffDir, ".keep"), "")
	ffPath := firefoxFixture(t, ffDir, []firefoxRow{{Name: "f", Value: "v", Host: "example.com", Path: "/", Expiry: future.Unix()}})
	txtPath := writeFile(t, filepath.Join(dir, "cookies.txt"),
		fmt.Sprintf("# Netscape HTTP Cookie File\n.example.com\tTRUE\t/\tFALSE\t%d\tn\tv\n", future.Unix()))

	tests := []struct {
		name        string
		path        string
		wantBrowser string
		wantFormat  CookieFormat
		wantNames   []string
		wantSkipped int
	}{
		{"chrome family", chromePath, "Brave", FormatChrome, []string{"enc", "plain"}, 1},
		{"firefox", ffPath, "Firefox", FormatFirefox, []string{"f"}, 0},
		{"netscape", txtPath, "Netscape", FormatNetscape, []string{"n"}, 0},
	}
	im := testImporter(nil, keys)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, src, err := im.FromFile(tt.path, "example.com")
			if err != nil {
				t.Fatalf("FromFile() error = %v", err)
			}
			if src.Browser != tt.wantBrowser || src.Format != tt.wantFormat || src.Path != tt.path || src.Skipped != tt.wantSkipped {
				t.Errorf("source = %+v", src)
			}
			var names []string
			for _, c := range got {
				names = append(names, c.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.wantNames, ",") {
				t.Errorf("cookies = %v, want %v", names, tt.wantNames)
			}
		})
	}

	if _, _, err := im.FromFile(filepath.Join(dir, "missing"), "example.com"); err == nil {
		t.Error("FromFile() on a missing file should fail")
	}
}

func TestImporter_FromBrowser(t *testing.T) {
	dir := t.TempDir()
	future := time.Now().Add(time.Hour)
	chromeDir := filepath.Join(dir, "chrome", "Default")
	writeFile(t, filepath.Join(chromeDir, ".keep"), "")
	chromeFixture(t, chromeDir, 0, false, []chromeRow{
		{Name: "c", Value: "1", HostKey: ".example.com", Path: "/", ExpiresUTC: unixToChrome(future.Unix())},
	})
	broken := writeFile(t, filepath.Join(dir, "broken", "Default", "Cookies"), "not a cookie store")

	specs := []browserSpec{
		{Name: "Firefox", ProfilesIniPaths: []string{filepath.Join(dir, "none", "profiles.ini")}},
		{Name: "Edge", CookiePaths: []string{broken}},
		{Name: "Chrome", CookiePaths: chromiumCookiePaths(chromeDir)},
	}
	im := testImporter(specs, chromeKeys{})

	for _, browser := range []string{"", "auto", "chrome", "Chrome"} {
		got, src, err := im.FromBrowser(browser, "example.com")
		if err != nil {
			t.Fatalf("FromBrowser(%q) error = %v", browser, err)
		}
		if src.Browser != "Chrome" || len(got) != 1 {
			t.Errorf("FromBrowser(%q) = %+v from %+v", browser, got, src)
		}
	}

	if _, _, err := im.FromBrowser("Firefox", "example.com"); !errors.Is(err, ErrNoCookieStore) {
		t.Errorf("FromBrowser(Firefox) error = %v, want ErrNoCookieStore", err)
	}
	if _, _, err := im.FromBrowser("Edge", "example.com"); !errors.Is(err, ErrNoCookieStore) {
		t.Errorf("unreadable store error = %v, want ErrNoCookieStore", err)
	}
	_, _, err := im.FromBrowser("Netscape Navigator", "example.com")
	if err == nil || errors.Is(err, ErrNoCookieStore) || !strings.Contains(err.Error(), "unknown browser") {
		t.Errorf("unknown browser error = %v", err)
	}
}

func TestNewImporter(t *testing.T) {
	im := NewImporter(nil)
	if im.log == nil || im.specs == nil || im.keys == nil {
		t.Errorf("NewImporter() = %+v", im)
	}
}
