package incognito

import (
	"math"
	"regexp"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
)

// Action is what PlanCookie decided for one stored cookie.
type Action int

const (
	// ActionSkip marks a cookie without a name or domain.
	ActionSkip Action = iota
	// ActionSet marks a cookie set with its stored expiry.
	ActionSet
	// ActionRepair marks a cookie set with a substituted expiry.
	ActionRepair
	// ActionDrop marks a cookie whose expiry rules it out.
	ActionDrop
)

func (a Action) String() string {
	switch a {
	case ActionSet:
		return "set"
	case ActionRepair:
		return "repaired"
	case ActionDrop:
		return "dropped"
	}
	return "skipped"
}

// corruptBefore is 2020-01-01T00:00:00Z. Expiries earlier than this come
// from precision loss in older compact payloads, not from real cookies.
const corruptBefore = 1577836800

const (
	repairTTL = 365 * 24 * time.Hour
	forceTTL  = 30 * 24 * time.Hour
)

// authCookie matches login cookies of sites users most often sync. These
// are repaired rather than dropped when their expiry is corrupted.
var authCookie = regexp.MustCompile(`^(SESSDATA|bili_jct|DedeUserID|user_session|logged_in|dotcom_user|remember_user_token|gitee-session|_gh_sess)`)

// PlanCookie converts a stored cookie into the parameters used to set it
// in the private browsing store storeID.
//
// A cookie with an expiry before 2020 is corrupted. It is given one more
// year when its name is a known login cookie or force is set, and dropped
// otherwise. An expired cookie gets thirty more days under force and is
// dropped otherwise. Session cookies keep no expiry.
func PlanCookie(c cookiemap.Cookie, storeID string, now time.Time, force bool) (browser.SetCookie, Action) {
	if c.Name == "" || c.Domain == "" {
		return browser.SetCookie{}, ActionSkip
	}
	sc := browser.NewSetCookie(c, storeID)

	action := ActionSet
	if c.ExpirationDate != 0 && !c.Session {
		exp := int64(math.Floor(c.ExpirationDate / 1000))
		nowSec := now.Unix()
		switch {
		case exp < corruptBefore:
			if !authCookie.MatchString(c.Name) && !force {
				return browser.SetCookie{}, ActionDrop
			}
			sc.ExpirationDate = now.Add(repairTTL).Unix()
			action = ActionRepair
		case exp > nowSec:
			sc.ExpirationDate = exp
		case force:
			sc.ExpirationDate = now.Add(forceTTL).Unix()
			action = ActionRepair
		default:
			return browser.SetCookie{}, ActionDrop
		}
	}
	return sc, action
}
