package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
)

func TestDomainMatches(t *testing.T) {
	tests := []struct {
		cookie, filter string
		want           bool
	}{
		{".github.com", "github.com", true},
		{"api.github.com", "github.com", true},
		{"github.com", "", true},
		{"notgithub.com", "github.com", false},
		{"github.com", "api.github.com", false},
		{"GitHub.com", "github.com", true},
	}
	for _, tt := range tests {
		if got := DomainMatches(tt.cookie, tt.filter); got != tt.want {
			t.Errorf("DomainMatches(%q, %q) = %v, want %v", tt.cookie, tt.filter, got, tt.want)
		}
	}
}

func TestTabsForHost(t *testing.T) {
	tabs := []Tab{
		{ID: "1", URL: "https://github.com/x"},
		{ID: "2", URL: "https://github.com:8443/y", Incognito: true},
		{ID: "3", URL: "https://gitlab.com/"},
		{ID: "4", URL: "::bad"},
	}
	if got := TabsForHost(tabs, "github.com", false); len(got) != 2 {
		t.Errorf("normal match = %+v, want 2 tabs", got)
	}
	got := TabsForHost(tabs, "github.com", true)
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("incognito match = %+v", got)
	}
}

func TestIncognitoStoreID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if _, err := IncognitoStoreID(ctx, m); !errors.Is(err, ErrNoIncognitoStore) {
		t.Fatalf("err = %v, want ErrNoIncognitoStore", err)
	}
	m.AddStore("1", true)
	id, err := IncognitoStoreID(ctx, m)
	if err != nil || id != "1" {
		t.Fatalf("IncognitoStoreID = %q, %v", id, err)
	}
}

func TestMemoryCookieLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	err := m.SetCookie(ctx, SetCookie{
		URL: "https://github.com/", Name: "sid", Value: "1",
		Domain: ".github.com", Path: "/", ExpirationDate: 1900000000,
	})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := m.Cookies(ctx, "github.com", "")
	if len(got) != 1 || got[0].ExpirationDate != 1900000000*1000 || got[0].Session {
		t.Fatalf("Cookies = %+v", got)
	}
	if err := m.RemoveCookie(ctx, "https://github.com/", "sid", DefaultStoreID); err != nil {
		t.Fatal(err)
	}
	got, _ = m.Cookies(ctx, "github.com", "")
	if len(got) != 0 {
		t.Errorf("cookie not removed: %+v", got)
	}
}

func TestMemoryLocalStorageMerge(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.WriteLocalStorage(ctx, "t", []cookiemap.LocalStorageItem{{Key: "a", Value: "1"}})
	_ = m.WriteLocalStorage(ctx, "t", []cookiemap.LocalStorageItem{{Key: "a", Value: "2"}, {Key: "b", Value: "3"}})
	items, _ := m.ReadLocalStorage(ctx, "t")
	if len(items) != 2 || items[0].Value != "2" {
		t.Errorf("items = %+v", items)
	}
}

func TestSameSiteMapping(t *testing.T) {
	for _, s := range []string{"strict", "lax", "no_restriction"} {
		if got := sameSiteFromCDP(sameSiteToCDP(s)); got != s {
			t.Errorf("round trip %q = %q", s, got)
		}
	}
	if got := sameSiteToCDP("unspecified"); got != "" {
		t.Errorf("unspecified = %q, want empty", got)
	}
}
