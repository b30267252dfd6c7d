package api

import (
	"context"
	"errors"
	"strings"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/settings"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
)

var errNoCookies = syncerr.New(syncerr.Internal, "no cookies found")

// push uploads the cookies of one domain. Cookies and localStorage come
// from the request when present, otherwise from the browser and the
// mirror.
func (s *Api) push(ctx context.Context, p *common.PushParams) (*common.SendResponse, error) {
	host := strings.TrimSpace(p.Domain)
	if host == "" {
		return nil, invalidParams("missing required param: domain")
	}
	return s.do(common.MethodPush, func() (*common.SendResponse, error) {
		t, st, err := s.target(p.IsIncognito)
		if err != nil {
			return nil, err
		}
		if err := t.Account.Check(); err != nil {
			return nil, err
		}
		if p.SourceURL != "" || p.FavIconURL != "" {
			if _, err := s.settings.SetDomain(host, func(dc *settings.DomainConfig) {
				dc.SourceURL = p.SourceURL
				dc.FavIconURL = p.FavIconURL
			}); err != nil {
				s.log.Warning("api: record source of %s: %v", host, err)
			}
		}
		if err := s.mirror.SetPushing(ctx, host, true); err != nil {
			s.log.Warning("api: %v", err)
		}
		defer func() {
			if err := s.mirror.SetPushing(ctx, host, false); err != nil {
				s.log.Warning("api: %v", err)
			}
		}()

		cookies := p.Cookies
		if cookies == nil {
			if cookies, err = s.browserCookies(ctx, t.Plane, host); err != nil {
				return nil, err
			}
		}
		if len(cookies) == 0 {
			return nil, errNoCookies
		}
		items := p.LocalStorageItems
		if items == nil {
			items = s.localStorageFor(ctx, st, t.Plane, host)
		}
		res, err := s.repo.MergeDomain(ctx, t, host, cookies, items)
		if err != nil {
			return nil, err
		}
		return common.OK("Pushed success", res.Write), nil
	}), nil
}

// browserCookies lists the cookies of host in the store backing plane.
// An incognito plane without an open private window has no cookies.
func (s *Api) browserCookies(ctx context.Context, plane cookiemap.Plane, host string) ([]cookiemap.Cookie, error) {
	if s.browser == nil {
		return nil, browser.ErrDisconnected
	}
	storeID, err := s.storeID(ctx, plane)
	if errors.Is(err, browser.ErrNoIncognitoStore) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	domain, _ := cookiemap.ExtractDomainAndPort(host)
	return s.browser.Cookies(ctx, domain, storeID)
}

// localStorageFor captures localStorage from an open tab of host when
// the setting asks for it, and otherwise keeps the items already stored
// for host.
func (s *Api) localStorageFor(ctx context.Context, st settings.Settings, plane cookiemap.Plane, host string) []cookiemap.LocalStorageItem {
	if !st.IncludeLocalStorage || s.browser == nil {
		return s.mirror.LocalStorageItems(ctx, plane, host)
	}
	tabs, err := s.browser.Tabs(ctx)
	if err != nil {
		s.log.Warning("api: list tabs for %s: %v", host, err)
		return nil
	}
	domain, _ := cookiemap.ExtractDomainAndPort(host)
	for _, tab := range browser.TabsForHost(tabs, domain, plane == cookiemap.Incognito) {
		items, err := s.browser.ReadLocalStorage(ctx, tab.ID)
		if err != nil {
			s.log.Warning("api: read localStorage of tab %s: %v", tab.ID, err)
			continue
		}
		return items
	}
	return nil
}

// PushDomains commits the current browser cookies of every key in one
// write to the normal plane. It is called by the scheduler.
func (s *Api) PushDomains(ctx context.Context, keys []string) error {
	t, st, err := s.target(false)
	if err != nil {
		return err
	}
	if err := t.Account.Check(); err != nil {
		return err
	}
	updates := make([]cookiemap.DomainUpdate, 0, len(keys))
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			s.log.Warning("api: skipping empty host in batch push")
			continue
		}
		cookies, err := s.browserCookies(ctx, cookiemap.Normal, key)
		if err != nil {
			return err
		}
		updates = append(updates, cookiemap.DomainUpdate{
			Domain:            key,
			Cookies:           cookies,
			LocalStorageItems: s.localStorageFor(ctx, st, cookiemap.Normal, key),
		})
	}
	if len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		if err := s.mirror.SetPushing(ctx, u.Domain, true); err != nil {
			s.log.Warning("api: %v", err)
		}
	}
	defer func() {
		for _, u := range updates {
			if err := s.mirror.SetPushing(ctx, u.Domain, false); err != nil {
				s.log.Warning("api: %v", err)
			}
		}
	}()
	_, err = s.repo.MergeMultipleDomains(ctx, t, updates)
	return err
}
