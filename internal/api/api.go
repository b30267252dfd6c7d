// Package api implements the inbound requests the daemon serves. Every
// cookie operation answers with a common.SendResponse: business failures
// are reported in the envelope, only malformed requests become JSON-RPC
// errors.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/incognito"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/internal/mirror"
	"github.com/Filatest/sync-your-cookie/internal/repo"
	"github.com/Filatest/sync-your-cookie/internal/settings"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
)

const codeInvalidParams = jrpc2.Code(-32602)

func invalidParams(format string, args ...any) error {
	return &jrpc2.Error{Code: codeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

// Accounts stores the remote store credentials. Account returns the zero
// value when nothing is stored.
type Accounts interface {
	Account() (kv.Account, error)
	SetAccount(a kv.Account) error
	ClearAccount() error
}

// Events receives the browser events forwarded by the extension.
type Events interface {
	OnCookieChanged(domain string)
	OnTabUpdated(tabID, url, status string)
	OnTabActivated()
	OnIncognitoWindowOpened()
}

// Config holds the collaborators of an Api.
type Config struct {
	Repo      *repo.Repository
	Engine    *incognito.Engine
	Browser   browser.Browser
	Settings  *settings.Store
	Accounts  Accounts
	Logger    logger.Logger
	Version   string
	Commit    string
	BuildType string
	// Stop is called by daemon.stop. May be nil.
	Stop func()
}

// Api serves the daemon's RPC methods.
type Api struct {
	log      logger.Logger
	repo     *repo.Repository
	mirror   *mirror.Store
	engine   *incognito.Engine
	browser  browser.Browser
	settings *settings.Store
	accounts Accounts
	events   Events
	stop     func()

	version   string
	commit    string
	buildType string
}

// NewApi creates an Api.
func NewApi(cfg Config) (*Api, error) {
	if cfg.Repo == nil || cfg.Settings == nil || cfg.Accounts == nil {
		return nil, fmt.Errorf("api: repo, settings and accounts are required")
	}
	return &Api{
		log:       logger.Or(cfg.Logger),
		repo:      cfg.Repo,
		mirror:    cfg.Repo.Mirror(),
		engine:    cfg.Engine,
		browser:   cfg.Browser,
		settings:  cfg.Settings,
		accounts:  cfg.Accounts,
		stop:      cfg.Stop,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
	}, nil
}

// AttachEvents routes the event.* methods to ev, usually the scheduler.
// Must be called before the server starts.
func (s *Api) AttachEvents(ev Events) {
	s.events = ev
}

// Methods returns the handler map served over every transport.
func (s *Api) Methods() handler.Map {
	return handler.Map{
		common.MethodPush:       handler.New(s.push),
		common.MethodPull:       handler.New(s.pull),
		common.MethodRemove:     handler.New(s.remove),
		common.MethodRemoveItem: handler.New(s.removeItem),
		common.MethodEditItem:   handler.New(s.editItem),
		common.MethodList:       handler.New(s.list),
		common.MethodGet:        handler.New(s.get),

		common.MethodIncSync:   handler.New(s.incognitoSync),
		common.MethodIncClear:  handler.New(s.incognitoClear),
		common.MethodIncCopy:   handler.New(s.incognitoCopy),
		common.MethodIncRemove: handler.New(s.incognitoRemove),

		common.MethodCookieEvent: handler.New(s.cookieChanged),
		common.MethodTabEvent:    handler.New(s.tabUpdated),
		common.MethodTabActive:   handler.New(s.tabActivated),
		common.MethodIncWindow:   handler.New(s.incognitoWindowOpened),

		common.MethodAccountSet: handler.New(s.accountSet),
		common.MethodAccountGet: handler.New(s.accountGet),
		common.MethodAccountDel: handler.New(s.accountClear),

		common.MethodSettingsGet: handler.New(s.settingsGet),
		common.MethodSettingsSet: handler.New(s.settingsUpdate),

		common.MethodStop:    handler.New(s.daemonStop),
		common.MethodVersion: handler.New(s.daemonVersion),
	}
}

// target resolves the credentials, keys and encoding of one operation
// from the current settings.
func (s *Api) target(incognito bool) (repo.Target, settings.Settings, error) {
	st := s.settings.Get()
	acct, err := s.accounts.Account()
	if err != nil {
		return repo.Target{}, st, err
	}
	return repo.Target{
		Plane:    cookiemap.PlaneOf(incognito),
		Account:  acct,
		Keys:     st.Keys(),
		Encoding: st.Encoding(),
	}, st, nil
}

// storeID returns the browser cookie store backing plane p.
func (s *Api) storeID(ctx context.Context, p cookiemap.Plane) (string, error) {
	if p == cookiemap.Incognito {
		return browser.IncognitoStoreID(ctx, s.browser)
	}
	return browser.DefaultStoreID, nil
}

// do runs fn and folds its error into the response envelope. A panic in
// fn is reported as a failed response instead of taking the daemon down.
func (s *Api) do(op string, fn func() (*common.SendResponse, error)) (resp *common.SendResponse) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("api: %s panicked: %v", op, rec)
			resp = common.Fail(fmt.Errorf("%s: internal error", op))
		}
	}()
	resp, err := fn()
	if err != nil {
		s.log.Warning("api: %s failed after %s: %v", op, time.Since(start).Round(time.Millisecond), err)
		return common.Fail(err)
	}
	return resp
}

// Warm reads both planes once so the mirror reflects the remote store.
// Planes whose account is not configured are skipped.
func (s *Api) Warm(ctx context.Context) {
	if err := s.mirror.ResetStatus(ctx); err != nil {
		s.log.Warning("api: reset domain status: %v", err)
	}
	for _, inc := range []bool{false, true} {
		t, _, err := s.target(inc)
		if err != nil {
			s.log.Warning("api: warm: %v", err)
			return
		}
		if !t.Account.Configured() {
			s.log.Info("api: account not configured, skipping initial pull")
			return
		}
		m, err := s.repo.Read(ctx, t)
		if err != nil {
			s.log.Warning("api: initial pull of %s plane: %v", t.Plane, err)
			continue
		}
		s.log.Info("api: mirrored %d domains of the %s plane", m.Len(), t.Plane)
	}
}
