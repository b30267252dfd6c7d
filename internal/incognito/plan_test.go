package incognito

import (
	"testing"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
)

var planNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ms(sec int64) float64 {
	return float64(sec) * 1000
}

func TestPlanCookie(t *testing.T) {
	future := planNow.Add(48 * time.Hour).Unix()
	past := planNow.Add(-48 * time.Hour).Unix()
	year := planNow.Add(repairTTL).Unix()
	month := planNow.Add(forceTTL).Unix()

	tests := []struct {
		name    string
		cookie  cookiemap.Cookie
		force   bool
		action  Action
		expires int64
	}{
		{"missing name", cookiemap.Cookie{Domain: "a.com"}, false, ActionSkip, 0},
		{"missing domain", cookiemap.Cookie{Name: "x"}, false, ActionSkip, 0},
		{"session", cookiemap.Cookie{Name: "x", Domain: "a.com", Session: true, ExpirationDate: ms(1)}, false, ActionSet, 0},
		{"no expiry", cookiemap.Cookie{Name: "x", Domain: "a.com"}, false, ActionSet, 0},
		{"valid", cookiemap.Cookie{Name: "x", Domain: "a.com", ExpirationDate: ms(future) + 999}, false, ActionSet, future},
		{"corrupted auth", cookiemap.Cookie{Name: "SESSDATA", Domain: ".bilibili.com", ExpirationDate: ms(1000000000)}, false, ActionRepair, year},
		{"corrupted auth prefix", cookiemap.Cookie{Name: "_gh_sess_x", Domain: "github.com", ExpirationDate: ms(1000000000)}, false, ActionRepair, year},
		{"corrupted other", cookiemap.Cookie{Name: "foo", Domain: "a.com", ExpirationDate: ms(1000000000)}, false, ActionDrop, 0},
		{"corrupted other forced", cookiemap.Cookie{Name: "foo", Domain: "a.com", ExpirationDate: ms(1000000000)}, true, ActionRepair, year},
		{"expired", cookiemap.Cookie{Name: "foo", Domain: "a.com", ExpirationDate: ms(past)}, false, ActionDrop, 0},
		{"expired forced", cookiemap.Cookie{Name: "foo", Domain: "a.com", ExpirationDate: ms(past)}, true, ActionRepair, month},
		{"expires now", cookiemap.Cookie{Name: "foo", Domain: "a.com", ExpirationDate: ms(planNow.Unix())}, false, ActionDrop, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, action := PlanCookie(tt.cookie, "1", planNow, tt.force)
			if action != tt.action {
				t.Fatalf("action = %v, want %v", action, tt.action)
			}
			if action == ActionSkip || action == ActionDrop {
				return
			}
			if sc.ExpirationDate != tt.expires {
				t.Errorf("expirationDate = %d, want %d", sc.ExpirationDate, tt.expires)
			}
			if sc.StoreID != "1" {
				t.Errorf("storeId = %q", sc.StoreID)
			}
		})
	}
}

func TestPlanCookieURLAndDomain(t *testing.T) {
	sc, _ := PlanCookie(cookiemap.Cookie{Name: "x", Domain: ".github.com", Secure: true}, "1", planNow, false)
	if sc.URL != "https://github.com/" {
		t.Errorf("url = %q", sc.URL)
	}
	if sc.Domain != ".github.com" {
		t.Errorf("domain = %q, want leading dot kept", sc.Domain)
	}
	sc, _ = PlanCookie(cookiemap.Cookie{Name: "x", Domain: "a.com", Path: "/app", SameSite: "unspecified"}, "1", planNow, false)
	if sc.URL != "http://a.com/app" {
		t.Errorf("url = %q", sc.URL)
	}
	if sc.SameSite != "" {
		t.Errorf("sameSite = %q, want dropped", sc.SameSite)
	}
	sc, _ = PlanCookie(cookiemap.Cookie{Name: "x", Domain: "a.com", SameSite: "lax"}, "1", planNow, false)
	if sc.SameSite != "lax" {
		t.Errorf("sameSite = %q, want lax", sc.SameSite)
	}
}
