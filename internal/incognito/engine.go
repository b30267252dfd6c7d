// Package incognito materializes the incognito plane of the remote
// store into the browser's private browsing cookie jar, and offers the
// housekeeping operations around it.
package incognito

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/repo"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
	"github.com/google/uuid"
)

// ErrNormalEmpty is returned by CopyNormal when there is nothing to copy.
var ErrNormalEmpty = syncerr.New(syncerr.Internal, "No cookies found in normal storage")

// Config holds the collaborators of an Engine.
type Config struct {
	Repo    *repo.Repository
	Browser browser.Browser
	// Notifier may be nil.
	Notifier repo.Notifier
	Logger   logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Engine reconciles the incognito plane with the browser.
type Engine struct {
	repo     *repo.Repository
	browser  browser.Browser
	notifier repo.Notifier
	log      logger.Logger
	now      func() time.Time
}

// New creates an Engine.
func New(cfg Config) *Engine {
	e := &Engine{
		repo:     cfg.Repo,
		browser:  cfg.Browser,
		notifier: cfg.Notifier,
		log:      logger.Or(cfg.Logger),
		now:      cfg.Now,
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// SyncOptions carries the settings a sync run depends on.
type SyncOptions struct {
	Enabled bool
	Force   bool
	// Target must address the incognito plane.
	Target repo.Target
}

// Report summarizes one sync run. Ran is false when the run was skipped
// or the remote map held no domains.
type Report struct {
	Ran      bool `json:"ran"`
	Domains  int  `json:"domains"`
	Set      int  `json:"set"`
	Repaired int  `json:"repaired"`
	Dropped  int  `json:"dropped"`
	Failed   int  `json:"failed"`
}

// Synced is the number of cookies written to the browser.
func (r Report) Synced() int {
	return r.Set + r.Repaired
}

// Sync reads the incognito plane and sets its cookies in the private
// browsing store, replaying localStorage into matching incognito tabs.
// It does nothing unless opts.Enabled is set, the account is configured
// and a private browsing store is open. Failures of single cookies are
// logged and counted, they never abort the run.
func (e *Engine) Sync(ctx context.Context, opts SyncOptions) (Report, error) {
	var rep Report
	if !opts.Enabled {
		e.log.Info("incognito: sync disabled in settings")
		return rep, nil
	}
	if !opts.Target.Account.Configured() {
		e.log.Info("incognito: account not configured")
		return rep, nil
	}
	storeID, err := browser.IncognitoStoreID(ctx, e.browser)
	if errors.Is(err, browser.ErrNoIncognitoStore) {
		e.log.Info("incognito: no incognito cookie store found")
		return rep, nil
	}
	if err != nil {
		return rep, err
	}

	opts.Target.Plane = cookiemap.Incognito
	m, err := e.repo.Read(ctx, opts.Target)
	if err != nil {
		return rep, err
	}
	if m.Len() == 0 {
		e.log.Info("incognito: no cookies found in remote storage")
		return rep, nil
	}

	now := e.now()
	for domain, entry := range m.DomainCookieMap {
		if entry == nil || len(entry.Cookies) == 0 {
			continue
		}
		rep.Domains++
		for _, c := range entry.Cookies {
			e.apply(ctx, &rep, domain, c, storeID, now, opts.Force)
		}
		if len(entry.LocalStorageItems) > 0 {
			e.replayStorage(ctx, domain, entry.LocalStorageItems)
		}
	}
	rep.Ran = true
	e.log.Info("incognito: synced %d cookies across %d domains (%d dropped, %d failed)",
		rep.Synced(), rep.Domains, rep.Dropped, rep.Failed)
	return rep, nil
}

func (e *Engine) apply(ctx context.Context, rep *Report, domain string, c cookiemap.Cookie, storeID string, now time.Time, force bool) {
	sc, action := PlanCookie(c, storeID, now, force)
	cookiesTotal.WithLabelValues(action.String()).Inc()
	switch action {
	case ActionSkip:
		e.log.Warning("incognito: skipping invalid cookie name=%q domain=%q", c.Name, c.Domain)
		return
	case ActionDrop:
		rep.Dropped++
		e.log.Info("incognito: dropping cookie %s for %s, expiry %.0f", c.Name, domain, c.ExpirationDate)
		return
	}
	if err := e.browser.SetCookie(ctx, sc); err != nil {
		rep.Failed++
		cookiesTotal.WithLabelValues("failed").Inc()
		e.log.Warning("incognito: failed to set cookie %s for %s: %v", c.Name, domain, err)
		return
	}
	if action == ActionRepair {
		rep.Repaired++
		return
	}
	rep.Set++
}

func (e *Engine) replayStorage(ctx context.Context, domain string, items []cookiemap.LocalStorageItem) {
	tabs, err := e.browser.Tabs(ctx)
	if err != nil {
		e.log.Warning("incognito: failed to list tabs for %s: %v", domain, err)
		return
	}
	for _, t := range browser.TabsForHost(tabs, domain, true) {
		if err := e.browser.WriteLocalStorage(ctx, t.ID, items); err != nil {
			e.log.Warning("incognito: failed to write localStorage to tab %s: %v", t.ID, err)
		}
	}
}

// Remove deletes a whole domain, or one cookie when id is set, from the
// incognito plane.
func (e *Engine) Remove(ctx context.Context, t repo.Target, domain, id string) (*repo.Result, error) {
	t.Plane = cookiemap.Incognito
	if id == "" {
		return e.repo.RemoveDomain(ctx, t, domain)
	}
	return e.repo.RemoveCookieItem(ctx, t, domain, id)
}

// Clear removes every cookie of the private browsing store, independent
// of the remote map, and returns how many were listed.
func (e *Engine) Clear(ctx context.Context) (int, error) {
	storeID, err := browser.IncognitoStoreID(ctx, e.browser)
	if errors.Is(err, browser.ErrNoIncognitoStore) {
		e.log.Info("incognito: no incognito cookie store found")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	cookies, err := e.browser.Cookies(ctx, "", storeID)
	if err != nil {
		return 0, err
	}
	for _, c := range cookies {
		u := cookiemap.CookieURL(c.Domain, c.Path, true)
		if err := e.browser.RemoveCookie(ctx, u, c.Name, storeID); err != nil {
			e.log.Warning("incognito: failed to remove cookie %s: %v", c.Name, err)
		}
	}
	clearedTotal.Add(float64(len(cookies)))
	msg := fmt.Sprintf("Cleared %d cookies from incognito store", len(cookies))
	e.log.Info("incognito: %s", msg)
	e.notify(common.LogPayload{Msg: msg, Count: len(cookies)})
	return len(cookies), nil
}

// CopyNormal copies the normal plane document to the incognito key as
// is and returns the number of domains copied.
func (e *Engine) CopyNormal(ctx context.Context, normal repo.Target) (int, error) {
	normal.Plane = cookiemap.Normal
	m, err := e.repo.Read(ctx, normal)
	if err != nil {
		return 0, err
	}
	if m.Len() == 0 {
		return 0, ErrNormalEmpty
	}
	inc := normal
	inc.Plane = cookiemap.Incognito
	if _, err := e.repo.Write(ctx, inc, m); err != nil {
		return 0, err
	}
	return m.Len(), nil
}

func (e *Engine) notify(p common.LogPayload) {
	if e.notifier == nil {
		return
	}
	p.TS = e.now().UnixMilli()
	e.notifier.Notify(common.LogEvent{EventID: uuid.NewString(), Type: common.IncognitoLog, Payload: p})
}
