package cmd

import (
	"bytes"
	"flag"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/api"
	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/incognito"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/internal/mirror"
	"github.com/Filatest/sync-your-cookie/internal/repo"
	"github.com/Filatest/sync-your-cookie/internal/settings"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/Filatest/sync-your-cookie/pkg/syncclient"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

const testVersion = "1.2.3"

// captureOutput captures stdout and stderr during function execution.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout, oldStderr := os.Stdout, os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout, os.Stderr = wOut, wErr

	drain := func(r *os.File) <-chan string {
		c := make(chan string, 1)
		go func() {
			var b bytes.Buffer
			io.Copy(&b, r)
			r.Close()
			c <- b.String()
		}()
		return c
	}
	outC, errC := drain(rOut), drain(rErr)

	f()

	wOut.Close()
	wErr.Close()
	os.Stdout, os.Stderr = oldStdout, oldStderr
	return <-outC, <-errC
}

// assertContains checks if output contains the expected substring.
func assertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

// assertNotContains checks if output does NOT contain the specified substring.
func assertNotContains(t *testing.T, output, notExpected string) {
	t.Helper()
	if strings.Contains(output, notExpected) {
		t.Errorf("expected output to NOT contain %q, got:\n%s", notExpected, output)
	}
}

// assertErrorFormat checks the runtime error format sycd: cmd[action]: msg.
func assertErrorFormat(t *testing.T, output, cmd, action string) {
	t.Helper()
	pattern := "sycd: " + cmd + "[" + action + "]:"
	if !strings.Contains(output, pattern) {
		t.Errorf("expected error format %q, got:\n%s", pattern, output)
	}
}

// newContext creates a CLI context for testing commands. Only string and
// bool flags are registered.
func newContext(args []string, name string, flags ...cli.Flag) *cli.Context {
	app := cli.NewApp()
	app.Name = "sycd"
	app.HelpName = "sycd"
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	for _, f := range flags {
		switch sf := f.(type) {
		case cli.StringFlag:
			set.String(sf.Name, sf.Value, sf.Usage)
		case cli.BoolFlag:
			set.Bool(sf.Name, false, sf.Usage)
		case cli.IntFlag:
			set.Int(sf.Name, sf.Value, sf.Usage)
		case cli.DurationFlag:
			set.Duration(sf.Name, sf.Value, sf.Usage)
		}
	}
	_ = set.Parse(args)
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: name}
	return ctx
}

type memAccounts struct {
	mu   sync.Mutex
	acct kv.Account
}

func (m *memAccounts) Account() (kv.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acct, nil
}

func (m *memAccounts) SetAccount(a kv.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acct = a
	return nil
}

func (m *memAccounts) ClearAccount() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acct = kv.Account{}
	return nil
}

// testDaemon serves the daemon's methods in process. Every connect dials
// a fresh pipe to it.
type testDaemon struct {
	store    *kv.MemStore
	browser  *browser.Memory
	settings *settings.Store
	accounts *memAccounts
	api      *api.Api
	stopped  chan struct{}
}

var testAccount = kv.Account{AccountID: "acc", NamespaceID: "ns", Token: "tok-secret"}

func startTestDaemon(t *testing.T) *testDaemon {
	t.Helper()
	ms, err := mirror.Open(filepath.Join(t.TempDir(), mirror.FileName), nil)
	if err != nil {
		t.Fatalf("mirror.Open: %v", err)
	}
	t.Cleanup(func() { ms.Close() })
	st, err := settings.Open(afero.NewMemMapFs(), "/cfg/"+settings.FileName, nil)
	if err != nil {
		t.Fatalf("settings.Open: %v", err)
	}
	d := &testDaemon{
		store:    kv.NewMemStore(),
		browser:  browser.NewMemory(),
		settings: st,
		accounts: &memAccounts{acct: testAccount},
		stopped:  make(chan struct{}),
	}
	l := logger.NewMockLogger()
	r := repo.New(repo.Config{Store: d.store, Mirror: ms, Logger: l, Now: time.Now})
	eng := incognito.New(incognito.Config{Repo: r, Browser: d.browser, Logger: l, Now: time.Now})
	d.api, err = api.NewApi(api.Config{
		Repo:     r,
		Engine:   eng,
		Browser:  d.browser,
		Settings: st,
		Accounts: d.accounts,
		Logger:   l,
		Version:  testVersion,
		Stop:     func() { close(d.stopped) },
	})
	if err != nil {
		t.Fatalf("NewApi: %v", err)
	}

	var servers []*jrpc2.Server
	var mu sync.Mutex
	origConnect := connect
	connect = func(opts *syncclient.Options) (*syncclient.Client, error) {
		c, srv := net.Pipe()
		s := jrpc2.NewServer(d.api.Methods(), nil).Start(channel.Line(srv, srv))
		mu.Lock()
		servers = append(servers, s)
		mu.Unlock()
		return syncclient.New(c, opts), nil
	}
	origExiter := cli.OsExiter
	cli.OsExiter = func(int) {}
	t.Cleanup(func() {
		connect = origConnect
		cli.OsExiter = origExiter
		mu.Lock()
		defer mu.Unlock()
		for _, s := range servers {
			s.Stop()
		}
	})
	return d
}

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	stdout, stderr = captureOutput(func() {
		err = Execute(append([]string{"sycd"}, args...), BuildArgs{Version: testVersion, BuildType: "test"})
	})
	return stdout, stderr, err
}
