package scheduler

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/settings"
)

type call struct {
	method string
	args   []string
}

type fakeSyncer struct {
	mu      sync.Mutex
	calls   chan call
	pushErr error
}

func newFakeSyncer() *fakeSyncer {
	return &fakeSyncer{calls: make(chan call, 16)}
}

func (f *fakeSyncer) PushDomains(_ context.Context, keys []string) error {
	f.calls <- call{"push", keys}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushErr
}

func (f *fakeSyncer) PullDomain(_ context.Context, url, key string) error {
	f.calls <- call{"pull", []string{url, key}}
	return nil
}

func (f *fakeSyncer) SyncIncognito(context.Context) error {
	f.calls <- call{"incognito", nil}
	return nil
}

func (f *fakeSyncer) setPushErr(err error) {
	f.mu.Lock()
	f.pushErr = err
	f.mu.Unlock()
}

func (f *fakeSyncer) expect(t *testing.T, method string) call {
	t.Helper()
	select {
	case c := <-f.calls:
		if c.method != method {
			t.Fatalf("call = %+v, want %s", c, method)
		}
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("no %s call", method)
	}
	return call{}
}

func (f *fakeSyncer) expectNone(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected call %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

type fixture struct {
	sched   *Scheduler
	clock   *fakeClock
	syncer  *fakeSyncer
	browser *browser.Memory
	st      settings.Settings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	st := settings.Defaults()
	st.EnableIncognitoSync = true
	st.Domains = map[string]settings.DomainConfig{
		"github.com":   {AutoPush: true, AutoPull: true},
		"bilibili.com": {AutoPush: true},
		"example.org":  {AutoPull: true},
	}
	f := &fixture{clock: newFakeClock(), syncer: newFakeSyncer(), browser: browser.NewMemory(), st: st}
	f.sched = New(ctx, Config{
		Syncer:   f.syncer,
		Browser:  f.browser,
		Settings: func() settings.Settings { return f.st },
		Clock:    f.clock,
	})
	return f
}

// advance moves the fake clock. The Stats round trip returns once every
// deadline that became due has been handled.
func (f *fixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.sched.Stats()
}

func TestResolve(t *testing.T) {
	st := settings.Settings{Domains: map[string]settings.DomainConfig{
		"github.com":     {AutoPush: true},
		"www.gitlab.com": {AutoPush: true},
		"api.a.com":      {AutoPush: true},
		"off.com":        {AutoPush: false},
		"":               {AutoPush: true},
	}}
	got := Resolve([]string{".github.com", "gitlab.com", "a.com", "off.com", "notgithub.com"}, st)
	want := []string{"api.a.com", "github.com", "www.gitlab.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestDebounceCoalesces(t *testing.T) {
	f := newFixture(t)
	f.sched.OnCookieChanged(".github.com")
	f.advance(5 * time.Second)
	f.sched.OnCookieChanged("api.github.com")
	f.advance(5 * time.Second)
	f.sched.OnCookieChanged(".bilibili.com")
	f.sched.OnCookieChanged("unrelated.net")

	f.advance(14 * time.Second)
	f.syncer.expectNone(t)

	f.advance(time.Second)
	c := f.syncer.expect(t, "push")
	if want := []string{"bilibili.com", "github.com"}; !reflect.DeepEqual(c.args, want) {
		t.Errorf("pushed %v, want %v", c.args, want)
	}
	f.syncer.expectNone(t)
	if st := f.sched.Stats(); len(st.Pending) != 0 || st.DebounceArmed || st.WatchdogArmed {
		t.Errorf("stats after flush = %+v", st)
	}
}

func TestIgnoresEmptyAndUnconfigured(t *testing.T) {
	f := newFixture(t)
	f.sched.OnCookieChanged("  ")
	f.sched.OnCookieChanged("example.org")
	if st := f.sched.Stats(); len(st.Pending) != 0 || st.DebounceArmed {
		t.Errorf("stats = %+v", st)
	}
}

func TestWatchdogBoundsStaleness(t *testing.T) {
	f := newFixture(t)
	// a change every 10s keeps resetting the debounce window
	for i := 0; i < 6; i++ {
		f.sched.OnCookieChanged("github.com")
		f.advance(10 * time.Second)
	}
	st := f.sched.Stats()
	if !st.TimedOut || !st.DebounceArmed {
		t.Fatalf("stats after 60s = %+v", st)
	}
	// dropped: must not reset the debounce window
	f.sched.OnCookieChanged("bilibili.com")
	if st := f.sched.Stats(); len(st.Pending) != 1 {
		t.Errorf("pending = %v, want only github.com", st.Pending)
	}
	f.advance(5 * time.Second)
	c := f.syncer.expect(t, "push")
	if want := []string{"github.com"}; !reflect.DeepEqual(c.args, want) {
		t.Errorf("pushed %v, want %v", c.args, want)
	}
	if st := f.sched.Stats(); st.TimedOut {
		t.Error("timeout flag not cleared by flush")
	}

	// the watchdog is re-armed for the next burst
	f.sched.OnCookieChanged("github.com")
	if st := f.sched.Stats(); !st.WatchdogArmed {
		t.Error("watchdog not re-armed")
	}
}

func TestFailedFlushKeepsPending(t *testing.T) {
	f := newFixture(t)
	f.syncer.setPushErr(errors.New("offline"))
	f.sched.OnCookieChanged("github.com")
	f.advance(15 * time.Second)
	f.syncer.expect(t, "push")
	if st := f.sched.Stats(); len(st.Pending) != 1 {
		t.Fatalf("pending = %v, want kept", st.Pending)
	}

	f.syncer.setPushErr(nil)
	f.sched.OnCookieChanged("bilibili.com")
	f.advance(15 * time.Second)
	c := f.syncer.expect(t, "push")
	if want := []string{"bilibili.com", "github.com"}; !reflect.DeepEqual(c.args, want) {
		t.Errorf("pushed %v, want %v", c.args, want)
	}
}

func TestFailedFlushRetries(t *testing.T) {
	f := newFixture(t)
	f.syncer.setPushErr(errors.New("offline"))
	f.sched.OnCookieChanged("github.com")
	f.advance(15 * time.Second)
	f.syncer.expect(t, "push")
	if st := f.sched.Stats(); !st.DebounceArmed {
		t.Fatal("debounce not re-armed after a failed flush")
	}

	// no new cookie events: the kept batch is retried on its own
	f.advance(15 * time.Second)
	f.syncer.expect(t, "push")

	// the second retry waits twice as long
	f.advance(15 * time.Second)
	f.syncer.expectNone(t)
	f.syncer.setPushErr(nil)
	f.advance(15 * time.Second)
	c := f.syncer.expect(t, "push")
	if want := []string{"github.com"}; !reflect.DeepEqual(c.args, want) {
		t.Errorf("pushed %v, want %v", c.args, want)
	}
	if st := f.sched.Stats(); len(st.Pending) != 0 || st.DebounceArmed {
		t.Errorf("stats after retry = %+v", st)
	}
}

func TestAutoPull(t *testing.T) {
	f := newFixture(t)
	f.browser.AddTab(browser.Tab{ID: "1", URL: "https://github.com/a"})

	f.sched.OnTabUpdated("1", "https://github.com/a", "complete")
	f.syncer.expectNone(t)

	f.sched.OnTabUpdated("1", "https://github.com/a", "loading")
	c := f.syncer.expect(t, "pull")
	if c.args[1] != "github.com" {
		t.Errorf("pulled key %q", c.args[1])
	}

	f.sched.OnTabUpdated("2", "https://bilibili.com/", "loading")
	f.syncer.expectNone(t)
}

func TestAutoPullSkipsOpenHost(t *testing.T) {
	f := newFixture(t)
	f.browser.AddTab(browser.Tab{ID: "1", URL: "https://github.com/a"})
	f.browser.AddTab(browser.Tab{ID: "2", URL: "https://github.com/b"})
	f.sched.OnTabUpdated("2", "https://github.com/b", "loading")
	f.syncer.expectNone(t)
}

func TestAutoPullSkipsPreviouslyActiveHost(t *testing.T) {
	f := newFixture(t)
	f.browser.AddTab(browser.Tab{ID: "1", URL: "https://example.org/", Active: true})
	f.sched.OnTabActivated()
	// tab 1 is closed, then a new tab opens example.org
	f.browser.RemoveTab("1")
	f.sched.OnTabUpdated("3", "https://example.org/x", "loading")
	f.syncer.expectNone(t)
}

func TestIncognitoWindowDelay(t *testing.T) {
	f := newFixture(t)
	f.sched.OnIncognitoWindowOpened()
	f.advance(500 * time.Millisecond)
	f.syncer.expectNone(t)
	f.advance(500 * time.Millisecond)
	f.syncer.expect(t, "incognito")

	f.st.EnableIncognitoSync = false
	f.sched.OnIncognitoWindowOpened()
	f.advance(time.Second)
	f.syncer.expectNone(t)
}
