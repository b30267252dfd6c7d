package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/spf13/afero"
)

func openMem(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := Open(fs, "/cfg/settings.yaml", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, fs
}

func TestDefaults(t *testing.T) {
	s, _ := openMem(t)
	got := s.Get()
	if got.StorageKey != "sync-your-cookie" || got.IncognitoStorageKey != "sync-your-cookie-incognito" {
		t.Errorf("unexpected keys %q %q", got.StorageKey, got.IncognitoStorageKey)
	}
	if !got.ProtobufEncoding || got.IncludeLocalStorage || got.ContextMenu {
		t.Errorf("unexpected defaults %+v", got)
	}
	if got.Encoding() != cookiemap.EncodingCompact {
		t.Error("default encoding should be compact")
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/cfg/settings.yaml", []byte("includeLocalStorage: true\ndomains:\n  example.com:\n    autoPush: true\n"), 0o600)
	s, err := Open(fs, "/cfg/settings.yaml", nil)
	if err != nil {
		t.Fatal(err)
	}
	got := s.Get()
	if !got.ProtobufEncoding {
		t.Error("protobufEncoding default lost")
	}
	if !got.IncludeLocalStorage {
		t.Error("includeLocalStorage not read")
	}
	if c, ok := got.Domain("example.com"); !ok || !c.AutoPush {
		t.Errorf("domain rules not read: %+v", got.Domains)
	}
}

func TestUpdatePersistsAndRemembersKeys(t *testing.T) {
	s, fs := openMem(t)
	var seen []Settings
	s.Subscribe(func(st Settings) { seen = append(seen, st) })

	_, err := s.Update(func(st *Settings) { st.StorageKey = "work" })
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := s.Get()
	if len(got.StorageKeyList) != 2 || got.StorageKeyList[0] != "work" {
		t.Errorf("key list = %v", got.StorageKeyList)
	}
	data, err := afero.ReadFile(fs, "/cfg/settings.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "storageKey: work") {
		t.Errorf("file not written:\n%s", data)
	}
	if len(seen) != 1 || seen[0].StorageKey != "work" {
		t.Errorf("subscribers saw %v", seen)
	}
}

func TestUpdateRejectsInvalid(t *testing.T) {
	s, _ := openMem(t)
	_, err := s.Update(func(st *Settings) { st.IncognitoStorageKey = st.StorageKey })
	if err == nil {
		t.Fatal("expected equal keys to be rejected")
	}
	_, err = s.SetDomain(" ", func(c *DomainConfig) { c.AutoPush = true })
	if err == nil {
		t.Fatal("expected empty domain key to be rejected")
	}
	if s.Get().IncognitoStorageKey == s.Get().StorageKey {
		t.Error("invalid update leaked into the snapshot")
	}
}

func TestSetDomainAndMatching(t *testing.T) {
	s, _ := openMem(t)
	if _, err := s.SetDomain("example.com", func(c *DomainConfig) { c.AutoPush = true }); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetDomain("pull.org", func(c *DomainConfig) { c.AutoPull = true }); err != nil {
		t.Fatal(err)
	}
	st := s.Get()
	if k, ok := st.AutoPushKeyFor(".www.example.com"); !ok || k != "example.com" {
		t.Errorf("AutoPushKeyFor = %q %v", k, ok)
	}
	if _, ok := st.AutoPushKeyFor("pull.org"); ok {
		t.Error("autoPull-only domain matched autoPush")
	}
	if k, ok := st.AutoPullKeyFor("app.pull.org"); !ok || k != "pull.org" {
		t.Errorf("AutoPullKeyFor = %q %v", k, ok)
	}
	if _, err := s.RemoveDomain("example.com"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get().Domain("example.com"); ok {
		t.Error("domain not removed")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s, _ := openMem(t)
	_, _ = s.SetDomain("a.com", func(c *DomainConfig) { c.AutoPull = true })
	snap := s.Get()
	snap.Domains["a.com"] = DomainConfig{}
	if c, _ := s.Get().Domain("a.com"); !c.AutoPull {
		t.Error("mutating a snapshot changed the store")
	}
}

func TestWatchReloadsOnDiskChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	s, err := Open(afero.NewOsFs(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	changed := make(chan Settings, 4)
	s.Subscribe(func(st Settings) { changed <- st })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, 20*time.Millisecond) }()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("forceIncognitoSync: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case st := <-changed:
		if !st.ForceIncognitoSync {
			t.Errorf("reloaded settings = %+v", st)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not reload the file")
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
