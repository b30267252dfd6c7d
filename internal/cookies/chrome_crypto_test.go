package cookies

import (
	"errors"
	"runtime"
	"testing"

	"github.com/Filatest/sync-your-cookie/pkg/logger"
)

func TestChromeKeysDecrypt(t *testing.T) {
	key := chromeKey("peanuts", 1)
	keys := chromeKeys{v10: key}

	got, err := keys.decrypt(encryptChrome(t, "v10", key, []byte("\x01\x02value")), 0)
	if err != nil || got != "value" {
		t.Errorf("decrypt() = %q, %v; want leading control bytes removed", got, err)
	}

	tests := []struct {
		name string
		enc  []byte
		want error
	}{
		{"too short", []byte("v10"), errChromeValueFormat},
		{"unknown prefix", []byte("v20abcdefghijklmnop"), errChromeValueFormat},
		{"no v11 key", encryptChrome(t, "v11", key, []byte("x")), errNoChromeKey},
		{"partial block", []byte("v10abc"), errChromeValueFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := keys.decrypt(tt.enc, 0); !errors.Is(err, tt.want) {
				t.Errorf("decrypt() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := keys.decrypt(encryptChrome(t, "v10", chromeKey("wrong", 1), []byte("value")), 0); err == nil {
		t.Error("decrypt() with the wrong key should fail")
	}
}

func TestUnpad(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    string
		wantErr bool
	}{
		{"one byte", []byte("abc\x01"), "abc", false},
		{"full block", append([]byte("0123456789abcdef"), []byte("\x10\x10\x10\x10\x10\x10\x10\x10\x10\x10\x10\x10\x10\x10\x10\x10")...), "0123456789abcdef", false},
		{"zero", []byte("abc\x00"), "", true},
		{"too long", []byte("abc\x11"), "", true},
		{"inconsistent", []byte("ab\x01\x02"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unpad(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unpad() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("unpad() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVendorFor(t *testing.T) {
	tests := map[string]string{
		"Chrome":   "Chrome Safe Storage",
		"Chromium": "Chromium Safe Storage",
		"Edge":     "Microsoft Edge Safe Storage",
		"Brave":    "Brave Safe Storage",
		"":         "Chrome Safe Storage",
	}
	for browser, want := range tests {
		if got := vendorFor(browser).service; got != want {
			t.Errorf("vendorFor(%q) = %q, want %q", browser, got, want)
		}
	}
}

func TestLoadChromeKeys(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("key layout differs per OS")
	}
	orig := keyringGet
	t.Cleanup(func() { keyringGet = orig })

	var asked string
	keyringGet = func(service, user string) (string, error) {
		asked = service
		return "", errors.New("secret not found in keyring")
	}
	keys := loadChromeKeys("Brave", logger.NewNopLogger())
	if asked != "Brave Safe Storage" {
		t.Errorf("keychain lookup for %q", asked)
	}
	if keys.v10 == nil || keys.v11 != nil {
		t.Errorf("without a keychain password only v10 should be set: %+v", keys)
	}

	t.Setenv(SafeStoragePasswordEnv, "hunter2")
	keyringGet = func(string, string) (string, error) {
		t.Error("keychain should not be read when the env override is set")
		return "", nil
	}
	keys = loadChromeKeys("Chrome", logger.NewNopLogger())
	if string(keys.v11) != string(chromeKey("hunter2", 1)) {
		t.Error("v11 key should derive from the env password")
	}
}
