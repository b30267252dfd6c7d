package incognito

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Filatest/sync-your-cookie/internal/browser"
	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/internal/kv"
	"github.com/Filatest/sync-your-cookie/internal/repo"
)

var account = kv.Account{AccountID: "acc", NamespaceID: "ns", Token: "tok"}

type events struct {
	mu  sync.Mutex
	got []common.LogEvent
}

func (e *events) Notify(ev common.LogEvent) {
	e.mu.Lock()
	e.got = append(e.got, ev)
	e.mu.Unlock()
}

type fixture struct {
	engine  *Engine
	repo    *repo.Repository
	browser *browser.Memory
	events  *events
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := func() time.Time { return planNow }
	ev := &events{}
	r := repo.New(repo.Config{Store: kv.NewMemStore(), Now: now})
	b := browser.NewMemory()
	return &fixture{
		engine:  New(Config{Repo: r, Browser: b, Notifier: ev, Now: now}),
		repo:    r,
		browser: b,
		events:  ev,
	}
}

func target(p cookiemap.Plane) repo.Target {
	return repo.Target{Plane: p, Account: account, Keys: kv.Keys{}.WithDefaults(), Encoding: cookiemap.EncodingCompact}
}

func (f *fixture) seed(t *testing.T, p cookiemap.Plane, domain string, cookies []cookiemap.Cookie, items []cookiemap.LocalStorageItem) {
	t.Helper()
	if _, err := f.repo.MergeDomain(context.Background(), target(p), domain, cookies, items); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestSyncSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rep, err := f.engine.Sync(ctx, SyncOptions{Enabled: false, Target: target(cookiemap.Incognito)})
	if err != nil || rep.Ran {
		t.Errorf("disabled: %+v, %v", rep, err)
	}

	noAccount := target(cookiemap.Incognito)
	noAccount.Account = kv.Account{}
	rep, err = f.engine.Sync(ctx, SyncOptions{Enabled: true, Target: noAccount})
	if err != nil || rep.Ran {
		t.Errorf("no account: %+v, %v", rep, err)
	}

	rep, err = f.engine.Sync(ctx, SyncOptions{Enabled: true, Target: target(cookiemap.Incognito)})
	if err != nil || rep.Ran {
		t.Errorf("no incognito store: %+v, %v", rep, err)
	}

	f.browser.AddStore("1", true)
	rep, err = f.engine.Sync(ctx, SyncOptions{Enabled: true, Target: target(cookiemap.Incognito)})
	if err != nil || rep.Ran {
		t.Errorf("empty map: %+v, %v", rep, err)
	}
}

func TestSyncAppliesPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.browser.AddStore("1", true)
	f.browser.AddTab(browser.Tab{ID: "t1", URL: "https://www.bilibili.com/", StoreID: "1", Incognito: true})
	f.browser.AddTab(browser.Tab{ID: "t2", URL: "https://www.bilibili.com/", StoreID: browser.DefaultStoreID})
	f.browser.FailSet = "broken"

	f.seed(t, cookiemap.Incognito, "www.bilibili.com", []cookiemap.Cookie{
		{Name: "SESSDATA", Value: "s", Domain: ".bilibili.com", ExpirationDate: ms(1000000000)},
		{Name: "foo", Value: "f", Domain: ".bilibili.com", ExpirationDate: ms(1000000000)},
		{Name: "ok", Value: "o", Domain: ".bilibili.com", Session: true},
		{Name: "broken", Value: "b", Domain: ".bilibili.com", Session: true},
		{Name: "", Domain: ".bilibili.com"},
	}, []cookiemap.LocalStorageItem{{Key: "theme", Value: "dark"}})

	rep, err := f.engine.Sync(ctx, SyncOptions{Enabled: true, Target: target(cookiemap.Normal)})
	if err != nil {
		t.Fatal(err)
	}
	want := Report{Ran: true, Domains: 1, Set: 1, Repaired: 1, Dropped: 1, Failed: 1}
	if rep != want {
		t.Errorf("report = %+v, want %+v", rep, want)
	}

	got, _ := f.browser.Cookies(ctx, "bilibili.com", "1")
	names := map[string]bool{}
	for _, c := range got {
		names[c.Name] = true
	}
	if !names["SESSDATA"] || !names["ok"] || names["foo"] || len(got) != 2 {
		t.Errorf("incognito jar = %+v", got)
	}
	normal, _ := f.browser.Cookies(ctx, "", browser.DefaultStoreID)
	if len(normal) != 0 {
		t.Errorf("normal jar touched: %+v", normal)
	}
	if items := f.browser.LocalStorage("t1"); len(items) != 1 {
		t.Errorf("incognito tab storage = %+v", items)
	}
	if items := f.browser.LocalStorage("t2"); len(items) != 0 {
		t.Errorf("normal tab storage = %+v", items)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if n, err := f.engine.Clear(ctx); err != nil || n != 0 {
		t.Fatalf("no store: %d, %v", n, err)
	}
	f.browser.AddStore("1", true)
	f.browser.Put("1", cookiemap.Cookie{Name: "a", Domain: ".a.com", Path: "/"})
	f.browser.Put("1", cookiemap.Cookie{Name: "b", Domain: "b.com", Path: "/x"})
	f.browser.Put(browser.DefaultStoreID, cookiemap.Cookie{Name: "keep", Domain: "a.com", Path: "/"})

	n, err := f.engine.Clear(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	if left, _ := f.browser.Cookies(ctx, "", "1"); len(left) != 0 {
		t.Errorf("incognito jar = %+v", left)
	}
	if kept, _ := f.browser.Cookies(ctx, "", browser.DefaultStoreID); len(kept) != 1 {
		t.Errorf("normal jar = %+v", kept)
	}
	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	last := f.events.got[len(f.events.got)-1]
	if last.Type != common.IncognitoLog || last.Payload.Msg != "Cleared 2 cookies from incognito store" {
		t.Errorf("event = %+v", last)
	}
}

func TestCopyNormal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.engine.CopyNormal(ctx, target(cookiemap.Normal)); !errors.Is(err, ErrNormalEmpty) {
		t.Fatalf("err = %v, want ErrNormalEmpty", err)
	}
	f.seed(t, cookiemap.Normal, "a.com", []cookiemap.Cookie{{Name: "x", Domain: "a.com"}}, nil)
	f.seed(t, cookiemap.Normal, "b.com", nil, nil)
	n, err := f.engine.CopyNormal(ctx, target(cookiemap.Normal))
	if err != nil || n != 2 {
		t.Fatalf("CopyNormal = %d, %v", n, err)
	}
	inc, err := f.repo.Read(ctx, target(cookiemap.Incognito))
	if err != nil || inc.Len() != 2 {
		t.Fatalf("incognito plane = %+v, %v", inc, err)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, cookiemap.Incognito, "a.com", []cookiemap.Cookie{{Name: "x", Domain: "a.com"}, {Name: "y", Domain: "a.com"}}, nil)

	res, err := f.engine.Remove(ctx, target(cookiemap.Normal), "a.com", "a.com_x")
	if err != nil {
		t.Fatal(err)
	}
	if n := len(res.Map.Entry("a.com").Cookies); n != 1 {
		t.Errorf("cookies = %d, want 1", n)
	}
	res, err = f.engine.Remove(ctx, target(cookiemap.Normal), "a.com", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Map.Len() != 0 {
		t.Errorf("domains = %d, want 0", res.Map.Len())
	}
	normal, _ := f.repo.Read(ctx, target(cookiemap.Normal))
	if normal.Len() != 0 {
		t.Errorf("normal plane touched")
	}
}
