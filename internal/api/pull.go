package api

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/repo"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
)

// pull writes the remote cookies of one domain into the browser.
func (s *Api) pull(ctx context.Context, p *common.PullParams) (*common.SendResponse, error) {
	domain := strings.TrimSpace(p.Domain)
	if domain == "" {
		return nil, invalidParams("missing required param: domain")
	}
	return s.do(common.MethodPull, func() (*common.SendResponse, error) {
		t, _, err := s.target(p.IsIncognito)
		if err != nil {
			return nil, err
		}
		entry, err := s.pullInto(ctx, t, p.ActiveTabURL, domain, p.Reload)
		if err != nil {
			return nil, err
		}
		return common.OK("Pull success", entry), nil
	}), nil
}

// PullDomain pulls key into the normal store for the tab showing
// activeURL. It is called by the scheduler on navigation.
func (s *Api) PullDomain(ctx context.Context, activeURL, key string) error {
	t, _, err := s.target(false)
	if err != nil {
		return err
	}
	_, err = s.pullInto(ctx, t, activeURL, key, false)
	return err
}

func (s *Api) pullInto(ctx context.Context, t repo.Target, activeURL, domain string, reload bool) (*cookiemap.DomainEntry, error) {
	if err := t.Account.Check(); err != nil {
		return nil, err
	}
	if s.browser == nil {
		return nil, browser.ErrDisconnected
	}
	if err := s.mirror.SetPulling(ctx, domain, true); err != nil {
		s.log.Warning("api: %v", err)
	}
	defer func() {
		if err := s.mirror.SetPulling(ctx, domain, false); err != nil {
			s.log.Warning("api: %v", err)
		}
	}()

	m, err := s.repo.Read(ctx, t)
	if err != nil {
		return nil, err
	}
	entry := m.Entry(domain)
	if entry == nil || len(entry.Cookies) == 0 {
		return nil, syncerr.Errorf(syncerr.ItemNotFound, "no cookies found for %s", domain)
	}
	storeID, err := s.storeID(ctx, t.Plane)
	if err != nil {
		return nil, err
	}

	set := 0
	for _, c := range entry.Cookies {
		if err := s.browser.SetCookie(ctx, setCookieOf(c, storeID)); err != nil {
			s.log.Warning("api: set cookie %s for %s: %v", c.Name, domain, err)
			continue
		}
		set++
	}

	host, _ := cookiemap.ExtractDomainAndPort(domain)
	if h := cookiemap.HostOf(activeURL); h != "" {
		host, _ = cookiemap.ExtractDomainAndPort(h)
	}
	tabs, err := s.browser.Tabs(ctx)
	if err != nil {
		s.log.Warning("api: list tabs for %s: %v", host, err)
	}
	for _, tab := range browser.TabsForHost(tabs, host, t.Plane == cookiemap.Incognito) {
		if len(entry.LocalStorageItems) > 0 {
			if err := s.browser.WriteLocalStorage(ctx, tab.ID, entry.LocalStorageItems); err != nil {
				s.log.Warning("api: write localStorage to tab %s: %v", tab.ID, err)
			}
		}
		if reload {
			if err := s.browser.ReloadTab(ctx, tab.ID); err != nil {
				s.log.Warning("api: reload tab %s: %v", tab.ID, err)
			}
		}
	}

	s.repo.Announce(t.Plane, domain, "", set, fmt.Sprintf("Pulled %d cookies for domain %s", set, domain))
	return entry, nil
}

// setCookieOf converts a stored cookie to a browser set request. Stored
// expirations are milliseconds, the browser takes seconds.
func setCookieOf(c cookiemap.Cookie, storeID string) browser.SetCookie {
	sc := browser.NewSetCookie(c, storeID)
	if !c.Session && c.ExpirationDate > 0 {
		sc.ExpirationDate = int64(math.Ceil(c.ExpirationDate / 1000))
	}
	return sc
}
