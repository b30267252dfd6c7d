package cookies

import (
	"bytes"
	"testing"
	"time"
)

func TestParseChrome(t *testing.T) {
	future := unixToChrome(time.Now().Add(24 * time.Hour).Unix())
	past := unixToChrome(time.Now().Add(-time.Hour).Unix())
	dbPath := chromeFixture(t, t.TempDir(), 0, false, []chromeRow{
		{Name: "sid", Value: "abc123", HostKey: ".example.com", Path: "/", ExpiresUTC: future, Secure: 1, HTTPOnly: 1, SameSite: 1},
		{Name: "tmp", Value: "s", HostKey: "example.com", Path: "/", ExpiresUTC: 0, SameSite: -1},
		{Name: "api", Value: "v", HostKey: "api.example.com", Path: "/v1", ExpiresUTC: future, SameSite: 2},
		{Name: "old", Value: "x", HostKey: ".example.com", Path: "/", ExpiresUTC: past},
		{Name: "other", Value: "y", HostKey: ".example.org", Path: "/", ExpiresUTC: future},
		{Name: "evil", Value: "z", HostKey: "notexample.com", Path: "/", ExpiresUTC: future},
	})

	got, skipped, err := ParseChrome(dbPath, "example.com", chromeKeys{})
	if err != nil {
		t.Fatalf("ParseChrome() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	byName := map[string]int{}
	for i, c := range got {
		byName[c.Name] = i
	}
	if len(got) != 3 {
		t.Fatalf("got %d cookies (%v), want sid, tmp and api", len(got), byName)
	}
	// Ordered by path descending.
	if got[0].Name != "api" {
		t.Errorf("first cookie = %q, want api", got[0].Name)
	}

	sid := got[byName["sid"]]
	if !sid.Secure || !sid.HTTPOnly || sid.SameSite != "lax" || sid.Session {
		t.Errorf("sid = %+v", sid)
	}
	if d := time.Until(Expires(sid)); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("sid expires in %v, want about 24h", d)
	}
	tmp := got[byName["tmp"]]
	if !tmp.Session || tmp.ExpirationDate != 0 || tmp.SameSite != "unspecified" {
		t.Errorf("tmp = %+v, want a session cookie", tmp)
	}
	if got[byName["api"]].SameSite != "strict" {
		t.Errorf("api SameSite = %q", got[byName["api"]].SameSite)
	}
}

func TestParseChrome_Encrypted(t *testing.T) {
	future := unixToChrome(time.Now().Add(time.Hour).Unix())
	keys := chromeKeys{v10: chromeKey(chromeLinuxV10Password, chromeIterationsLinux)}
	hash := bytes.Repeat([]byte{0xAB}, 32)

	tests := []struct {
		name        string
		metaVersion int
		plain       []byte
	}{
		{"legacy", 0, []byte("secret-value")},
		{"hash prefixed", 24, append(hash, []byte("secret-value")...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := chromeFixture(t, t.TempDir(), tt.metaVersion, false, []chromeRow{
				{Name: "sid", HostKey: ".example.com", Path: "/", ExpiresUTC: future,
					Encrypted: encryptChrome(t, "v10", keys.v10, tt.plain)},
				{Name: "v11", HostKey: ".example.com", Path: "/", ExpiresUTC: future,
					Encrypted: encryptChrome(t, "v11", chromeKey("other", 1), []byte("x"))},
			})
			got, skipped, err := ParseChrome(dbPath, "example.com", keys)
			if err != nil {
				t.Fatalf("ParseChrome() error = %v", err)
			}
			if skipped != 1 {
				t.Errorf("skipped = %d, want the v11 cookie skipped", skipped)
			}
			if len(got) != 1 || got[0].Value != "secret-value" {
				t.Errorf("cookies = %+v", got)
			}
		})
	}
}

func TestParseChrome_LegacySchema(t *testing.T) {
	future := unixToChrome(time.Now().Add(time.Hour).Unix())
	dbPath := chromeFixture(t, t.TempDir(), 0, true, []chromeRow{
		{Name: "a", Value: "1", HostKey: "example.com", Path: "/", ExpiresUTC: future},
	})
	got, _, err := ParseChrome(dbPath, "example.com", chromeKeys{})
	if err != nil {
		t.Fatalf("ParseChrome() error = %v", err)
	}
	if len(got) != 1 || got[0].SameSite != "unspecified" {
		t.Errorf("cookies = %+v", got)
	}
}

func TestParseChrome_NotADatabase(t *testing.T) {
	path := writeFile(t, t.TempDir()+"/Cookies", "not sqlite")
	if _, _, err := ParseChrome(path, "example.com", chromeKeys{}); err == nil {
		t.Error("ParseChrome() on a text file should fail")
	}
}

func TestChromeToUnix(t *testing.T) {
	if got := chromeToUnix(0); got != 0 {
		t.Errorf("chromeToUnix(0) = %d, want 0", got)
	}
	if got := chromeToUnix(unixToChrome(1_700_000_000)); got != 1_700_000_000 {
		t.Errorf("chromeToUnix() = %d", got)
	}
}
