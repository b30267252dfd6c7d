// Package repo turns domain scoped updates into full read-merge-write
// cycles against the remote store and keeps the local mirror current.
//
// Every mutation reads the whole document, applies one pure transform
// from package cookiemap and writes the whole document back. There is no
// version check on write: two overlapping operations on the same plane
// resolve as last write wins.
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/internal/mirror"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
	"github.com/google/uuid"
)

// Notifier receives the log events emitted after successful writes.
// Implementations must not block.
type Notifier interface {
	Notify(ev common.LogEvent)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ev common.LogEvent)

func (f NotifierFunc) Notify(ev common.LogEvent) { f(ev) }

// Target selects the plane, credentials, keys and encoding of one
// operation.
type Target struct {
	Plane    cookiemap.Plane
	Account  kv.Account
	Keys     kv.Keys
	Encoding cookiemap.Encoding
}

// Config holds the collaborators of a Repository.
type Config struct {
	Store  kv.Store
	Mirror *mirror.Store
	// Notifier may be nil.
	Notifier Notifier
	Logger   logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Repository is the synchronization core.
type Repository struct {
	store    kv.Store
	mirror   *mirror.Store
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

// Result is the outcome of a successful mutation.
type Result struct {
	Map   *cookiemap.CookiesMap
	Write *kv.WriteResult
}

// New creates a Repository.
func New(cfg Config) *Repository {
	r := &Repository{
		store:    cfg.Store,
		mirror:   cfg.Mirror,
		notifier: cfg.Notifier,
		log:      logger.Or(cfg.Logger),
		now:      cfg.Now,
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Mirror returns the local mirror store.
func (r *Repository) Mirror() *mirror.Store {
	return r.mirror
}

func (r *Repository) nowMilli() int64 {
	return r.now().UnixMilli()
}

func (r *Repository) gateway(t Target) *kv.Gateway {
	return kv.NewGateway(r.store, t.Keys)
}

// Read fetches and decodes the remote document of t.Plane. A missing key
// or an undecodable blob yields an empty map. The mirror is refreshed
// with the result.
func (r *Repository) Read(ctx context.Context, t Target) (m *cookiemap.CookiesMap, err error) {
	defer observe("read", t.Plane, &err)()
	g := r.gateway(t)
	var (
		blob  string
		found bool
	)
	if t.Plane == cookiemap.Incognito {
		blob, found, err = g.ReadIncognito(ctx, t.Account)
	} else {
		blob, found, err = g.Read(ctx, t.Account)
	}
	if err != nil {
		return nil, err
	}
	m = cookiemap.Empty()
	if found {
		m = cookiemap.Decode(blob, t.Encoding, r.log)
	}
	r.saveMirror(ctx, t.Plane, m)
	return m, nil
}

// ReadWithStatus returns the mirror snapshot while a push is in flight
// and it is non-empty, otherwise it reads the remote document.
func (r *Repository) ReadWithStatus(ctx context.Context, t Target) (*cookiemap.CookiesMap, error) {
	if err := t.Account.Check(); err != nil {
		return nil, err
	}
	if r.mirror != nil {
		busy, err := r.mirror.AnyPushing(ctx)
		if err != nil {
			r.log.Warning("repo: %v", err)
		}
		if busy {
			if m, err := r.mirror.Load(ctx, t.Plane); err == nil && m.Len() > 0 {
				return m, nil
			}
		}
	}
	return r.Read(ctx, t)
}

// Write encodes m and stores it for t.Plane, then updates the mirror.
func (r *Repository) Write(ctx context.Context, t Target, m *cookiemap.CookiesMap) (res *kv.WriteResult, err error) {
	defer observe("write", t.Plane, &err)()
	blob, err := cookiemap.Encode(m, t.Encoding)
	if err != nil {
		return nil, syncerr.Wrap(syncerr.Internal, err)
	}
	g := r.gateway(t)
	if t.Plane == cookiemap.Incognito {
		res, err = g.WriteIncognito(ctx, blob, t.Account)
	} else {
		res, err = g.Write(ctx, blob, t.Account)
	}
	if err != nil {
		return res, err
	}
	if res != nil && !res.Success {
		return res, writeFailure(res)
	}
	r.saveMirror(ctx, t.Plane, m)
	return res, nil
}

func writeFailure(res *kv.WriteResult) error {
	msg := "remote write failed"
	if len(res.Errors) > 0 {
		msg = res.Errors[0].Message
	}
	return syncerr.New(syncerr.Internal, msg)
}

func (r *Repository) saveMirror(ctx context.Context, p cookiemap.Plane, m *cookiemap.CookiesMap) {
	if r.mirror == nil {
		return
	}
	if err := r.mirror.Save(ctx, p, m); err != nil {
		r.log.Warning("repo: mirror update failed: %v", err)
	}
}

// mutate runs one read-transform-write cycle.
func (r *Repository) mutate(ctx context.Context, t Target, op string, fn func(old *cookiemap.CookiesMap, now int64) (*cookiemap.CookiesMap, error)) (res *Result, err error) {
	defer observe(op, t.Plane, &err)()
	if err := t.Account.Check(); err != nil {
		return nil, err
	}
	old, err := r.Read(ctx, t)
	if err != nil {
		return nil, err
	}
	next, err := fn(old, r.nowMilli())
	if err != nil {
		return nil, err
	}
	wr, err := r.Write(ctx, t, next)
	if err != nil {
		return nil, err
	}
	return &Result{Map: next, Write: wr}, nil
}

// Announce broadcasts msg for domain on plane p. The " (incognito)" suffix
// is appended on the incognito plane.
func (r *Repository) Announce(p cookiemap.Plane, domain, id string, count int, msg string) {
	if r.notifier == nil {
		return
	}
	if p == cookiemap.Incognito {
		msg += " (incognito)"
	}
	ev := common.LogEvent{
		EventID: uuid.NewString(),
		Type:    common.LogTypeOf(p),
		Payload: common.LogPayload{
			Msg:    msg,
			Domain: domain,
			ID:     id,
			Count:  count,
			TS:     r.nowMilli(),
		},
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warning("repo: notifier panicked: %v", rec)
		}
	}()
	r.notifier.Notify(ev)
}

// MergeDomain replaces the entry of domain with cookies and items.
func (r *Repository) MergeDomain(ctx context.Context, t Target, domain string, cookies []cookiemap.Cookie, items []cookiemap.LocalStorageItem) (*Result, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, syncerr.Wrap(syncerr.Internal, cookiemap.ErrEmptyDomain)
	}
	res, err := r.mutate(ctx, t, "merge", func(old *cookiemap.CookiesMap, now int64) (*cookiemap.CookiesMap, error) {
		return cookiemap.MergeDomain(old, domain, cookies, items, now)
	})
	if err != nil {
		return nil, err
	}
	r.Announce(t.Plane, domain, "", len(cookies), fmt.Sprintf("Pushed %d cookies for domain %s", len(cookies), domain))
	return res, nil
}

// MergeMultipleDomains commits several domain updates in one write.
// Updates with an empty domain are dropped before anything is sent; if
// none remain no write happens and the result is nil.
func (r *Repository) MergeMultipleDomains(ctx context.Context, t Target, updates []cookiemap.DomainUpdate) (*Result, error) {
	valid := make([]cookiemap.DomainUpdate, 0, len(updates))
	names := make([]string, 0, len(updates))
	for _, u := range updates {
		u.Domain = strings.TrimSpace(u.Domain)
		if u.Domain == "" {
			r.log.Warning("repo: skipping empty host in batch push")
			continue
		}
		valid = append(valid, u)
		names = append(names, u.Domain)
	}
	if len(valid) == 0 {
		return nil, nil
	}
	res, err := r.mutate(ctx, t, "merge_multiple", func(old *cookiemap.CookiesMap, now int64) (*cookiemap.CookiesMap, error) {
		m, _ := cookiemap.MergeMultipleDomains(old, valid, now)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	r.Announce(t.Plane, strings.Join(names, ","), "", len(valid),
		fmt.Sprintf("Pushed %d domains: %s", len(valid), strings.Join(names, ", ")))
	return res, nil
}

// RemoveDomain deletes the entry of domain.
func (r *Repository) RemoveDomain(ctx context.Context, t Target, domain string) (*Result, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, syncerr.Wrap(syncerr.Internal, cookiemap.ErrEmptyDomain)
	}
	res, err := r.mutate(ctx, t, "remove_domain", func(old *cookiemap.CookiesMap, now int64) (*cookiemap.CookiesMap, error) {
		return cookiemap.RemoveDomain(old, domain, now), nil
	})
	if err != nil {
		return nil, err
	}
	r.Announce(t.Plane, domain, "", 0, "Removed all cookies for domain "+domain)
	return res, nil
}

// RemoveCookieItem deletes one cookie by its "domain_name" id.
func (r *Repository) RemoveCookieItem(ctx context.Context, t Target, domain, id string) (*Result, error) {
	res, err := r.mutate(ctx, t, "remove_item", func(old *cookiemap.CookiesMap, now int64) (*cookiemap.CookiesMap, error) {
		return cookiemap.RemoveCookieItem(old, domain, id, now)
	})
	if err != nil {
		return nil, err
	}
	r.Announce(t.Plane, domain, id, 1, fmt.Sprintf("Removed cookie %s from domain %s", id, domain))
	return res, nil
}

// EditCookieItem patches the first cookie of domain matching old.
func (r *Repository) EditCookieItem(ctx context.Context, t Target, domain string, old cookiemap.Cookie, patch cookiemap.CookiePatch) (*Result, error) {
	res, err := r.mutate(ctx, t, "edit_item", func(m *cookiemap.CookiesMap, now int64) (*cookiemap.CookiesMap, error) {
		return cookiemap.EditCookieItem(m, domain, old, patch, now), nil
	})
	if err != nil {
		return nil, err
	}
	r.Announce(t.Plane, domain, old.ID(), 1, fmt.Sprintf("Edited cookie %s in domain %s", old.ID(), domain))
	return res, nil
}
