package daemon

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/api"
	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/incognito"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/internal/mirror"
	"github.com/Filatest/sync-your-cookie/internal/repo"
	"github.com/Filatest/sync-your-cookie/internal/scheduler"
	"github.com/Filatest/sync-your-cookie/internal/server"
	"github.com/Filatest/sync-your-cookie/internal/settings"
	"github.com/Filatest/sync-your-cookie/pkg/credman"
)

// Components holds the assembled daemon.
type Components struct {
	Settings  *settings.Store
	Mirror    *mirror.Store
	Store     kv.Store
	Repo      *repo.Repository
	Engine    *incognito.Engine
	Browser   browser.Browser
	Bridge    *browser.Bridge
	Api       *api.Api
	Scheduler *scheduler.Scheduler
	Server    *server.Server

	closers []func() error
}

// Close releases the components in reverse order of creation.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
	c.closers = nil
}

// assemble creates every component. The scheduler lives until ctx ends.
func (r *Runner) assemble(ctx context.Context) (_ *Components, err error) {
	cfg, deps, l := r.config, r.deps, r.deps.Logger
	c := &Components{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	if err := deps.Fs.MkdirAll(cfg.ConfigDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if c.Settings, err = settings.Open(deps.Fs, filepath.Join(cfg.ConfigDir, settings.FileName), l); err != nil {
		return nil, err
	}
	if c.Mirror, err = mirror.Open(filepath.Join(cfg.ConfigDir, mirror.FileName), l); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, c.Mirror.Close)

	accounts := deps.Accounts
	if accounts == nil {
		v, err := credman.Open(deps.Fs, cfg.ConfigDir, common.AppName, l)
		if err != nil {
			return nil, fmt.Errorf("open account vault: %w", err)
		}
		accounts = NewVaultAccounts(v)
	}

	c.Store = deps.Store
	if c.Store == nil {
		c.Store = kv.NewClient(&kv.ClientConfig{Endpoint: cfg.KVEndpoint, Logger: l})
	}

	if err := r.assembleBrowser(ctx, c); err != nil {
		return nil, err
	}

	// The server is created after the api, whose methods it serves, but
	// the repository announces through its notifier.
	var srv *server.Server
	notify := repo.NotifierFunc(func(ev common.LogEvent) {
		if srv != nil {
			srv.Notifier().Notify(ev)
		}
	})
	c.Repo = repo.New(repo.Config{Store: c.Store, Mirror: c.Mirror, Notifier: notify, Logger: l})
	c.Engine = incognito.New(incognito.Config{Repo: c.Repo, Browser: c.Browser, Notifier: notify, Logger: l})
	c.Api, err = api.NewApi(api.Config{
		Repo:      c.Repo,
		Engine:    c.Engine,
		Browser:   c.Browser,
		Settings:  c.Settings,
		Accounts:  accounts,
		Logger:    l,
		Version:   cfg.Version,
		Commit:    cfg.Commit,
		BuildType: cfg.BuildType,
		Stop: func() {
			if err := r.Shutdown(); err != nil {
				l.Warning("daemon: stop requested: %v", err)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	c.Scheduler = scheduler.New(ctx, scheduler.Config{
		Syncer:   c.Api,
		Browser:  c.Browser,
		Settings: c.Settings.Get,
		Logger:   l,
		Clock:    deps.Clock,
		Debounce: cfg.Debounce,
		Watchdog: cfg.Watchdog,
	})
	c.Api.AttachEvents(c.Scheduler)

	rpcPort := cfg.RPCPort
	if cfg.RPCSecret == "" && rpcPort > 0 {
		l.Info("daemon: %s is not set, extension endpoint disabled", common.RPCSecretEnv)
		rpcPort = 0
	}
	srv = server.New(l, c.Api.Methods(), &server.Config{
		TCPPort: cfg.TCPPort,
		RPCPort: rpcPort,
		Secret:  cfg.RPCSecret,
		Bridge:  c.Bridge,
	})
	c.Server = srv
	return c, nil
}

// assembleBrowser selects the browser backend.
func (r *Runner) assembleBrowser(ctx context.Context, c *Components) error {
	if r.deps.Browser != nil {
		c.Browser = r.deps.Browser
		if b, ok := r.deps.Browser.(*browser.Bridge); ok {
			c.Bridge = b
		}
		return nil
	}
	switch r.config.BrowserMode {
	case BrowserExtension:
		c.Bridge = browser.NewBridge()
		c.Browser = c.Bridge
	case BrowserCDP:
		if r.config.CDPURL == "" {
			return fmt.Errorf("browser backend %q needs %s", BrowserCDP, common.CDPURLEnv)
		}
		b, err := browser.DialCDP(ctx, r.config.CDPURL, r.deps.Logger)
		if err != nil {
			return err
		}
		c.Browser = b
		c.closers = append(c.closers, b.Close)
	default:
		return fmt.Errorf("unknown browser backend %q", r.config.BrowserMode)
	}
	return nil
}
