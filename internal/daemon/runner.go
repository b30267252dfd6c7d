// Package daemon runs the sync daemon: it assembles the settings store,
// the local mirror, the remote store client, the repository, the
// incognito engine, the change scheduler and the RPC server, and manages
// their lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/internal/scheduler"
	"github.com/Filatest/sync-your-cookie/internal/settings"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start is called on a running
	// runner, or when another daemon holds the lock of the config
	// directory.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// Service name constants for Windows service registration.
const (
	DefaultServiceName = "SyncYourCookie"
	DefaultDisplayName = "Sync Your Cookie"
	DefaultDescription = "Synchronizes browser cookies through Cloudflare Workers KV"
)

// Browser backends.
const (
	// BrowserExtension drives the browser through the extension, connected
	// over WebSocket or through the native messaging host.
	BrowserExtension = "extension"
	// BrowserCDP drives a Chromium instance over the DevTools protocol.
	BrowserCDP = "cdp"
)

// Config holds the configuration for the daemon runner.
type Config struct {
	// ConfigDir holds settings.yaml, mirror.db, the vault and the lock
	// and pid files. Defaults to common.ConfigDir().
	ConfigDir string

	// TCPPort is used when the local socket is unavailable.
	TCPPort int
	// RPCPort serves the extension endpoint. Zero disables it.
	RPCPort int
	// RPCSecret authenticates the extension endpoint. When empty the
	// endpoint is not started.
	RPCSecret string

	// BrowserMode is BrowserExtension or BrowserCDP.
	BrowserMode string
	// CDPURL is the DevTools WebSocket URL used in BrowserCDP mode.
	CDPURL string

	// KVEndpoint overrides the remote store endpoint.
	KVEndpoint string

	Debounce time.Duration
	Watchdog time.Duration
	// SettingsDebounce coalesces edits of settings.yaml.
	SettingsDebounce time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// A zero value means no timeout.
	ShutdownTimeout time.Duration

	Version   string
	Commit    string
	BuildType string
}

// Dependencies holds the replaceable collaborators of the runner. Nil
// fields get the production implementation.
type Dependencies struct {
	Fs     afero.Fs
	Logger logger.Logger
	// Store replaces the Workers KV client.
	Store kv.Store
	// Browser replaces the backend selected by Config.BrowserMode.
	Browser browser.Browser
	// Accounts replaces the encrypted vault.
	Accounts Accounts
	// Clock drives the scheduler.
	Clock scheduler.Clock
	// WatchSettings enables reloading settings.yaml on change. It needs
	// the OS filesystem.
	WatchSettings bool
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config *Config
	deps   *Dependencies

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	components *Components
}

// New creates a new daemon runner. A nil config or deps uses defaults.
func New(config *Config, deps *Dependencies) *Runner {
	return &Runner{
		config: applyConfigDefaults(config),
		deps:   applyDependencyDefaults(deps),
	}
}

func applyConfigDefaults(config *Config) *Config {
	var c Config
	if config != nil {
		c = *config
	}
	if c.ConfigDir == "" {
		c.ConfigDir = common.ConfigDir()
	}
	if c.TCPPort == 0 {
		c.TCPPort = common.TCPPort()
	}
	if c.BrowserMode == "" {
		c.BrowserMode = BrowserExtension
	}
	if c.Debounce <= 0 {
		c.Debounce = scheduler.DefaultDebounce
	}
	if c.Watchdog <= 0 {
		c.Watchdog = scheduler.DefaultWatchdog
	}
	if c.SettingsDebounce <= 0 {
		c.SettingsDebounce = settings.DefaultWatchDebounce
	}
	return &c
}

func applyDependencyDefaults(deps *Dependencies) *Dependencies {
	var d Dependencies
	if deps != nil {
		d = *deps
	}
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
		if deps == nil {
			d.WatchSettings = true
		}
	}
	d.Logger = logger.Or(d.Logger)
	return &d
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config
}

// Components returns the assembled components while the daemon runs.
func (r *Runner) Components() *Components {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.components
}

// Start assembles the components and serves until ctx is canceled or
// Shutdown is called. A clean stop returns nil.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	lock, err := acquireLock(r.config.ConfigDir)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	c, err := r.assemble(ctx)
	if err != nil {
		cancel()
		lock.release()
		r.mu.Unlock()
		return fmt.Errorf("daemon: %w", err)
	}
	r.cancel = cancel
	r.done = make(chan struct{})
	r.components = c
	r.running = true
	r.mu.Unlock()

	if err := WritePidFile(r.config.ConfigDir); err != nil {
		r.deps.Logger.Warning("daemon: write pid file: %v", err)
	}
	r.deps.Logger.Info("daemon: started %s (%s, browser backend %s)", r.config.Version, r.config.ConfigDir, r.config.BrowserMode)

	err = r.serve(ctx, c)

	cancel()
	c.Close()
	RemovePidFile(r.config.ConfigDir)
	lock.release()

	r.mu.Lock()
	r.running = false
	r.components = nil
	close(r.done)
	r.mu.Unlock()
	r.deps.Logger.Info("daemon: stopped")
	return err
}

// serve runs the server, the settings watcher and the initial pull until
// ctx ends.
func (r *Runner) serve(ctx context.Context, c *Components) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.Server.Start(gctx)
	})
	if r.deps.WatchSettings {
		g.Go(func() error {
			if err := c.Settings.Watch(gctx, r.config.SettingsDebounce); err != nil {
				r.deps.Logger.Warning("daemon: settings watcher stopped: %v", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		c.Api.Warm(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}

// Shutdown stops a running daemon and waits for it to release its
// resources. Returns ErrShutdownTimeout when that takes longer than the
// configured timeout.
func (r *Runner) Shutdown() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrNotRunning
	}
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	if r.config.ShutdownTimeout <= 0 {
		<-done
		return nil
	}
	select {
	case <-done:
		return nil
	case <-time.After(r.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

// IsRunning returns true if the daemon is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
