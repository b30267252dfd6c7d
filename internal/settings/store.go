package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileName is the settings file name inside the config directory.
const FileName = "settings.yaml"

// DefaultWatchDebounce coalesces bursts of writes to the settings file.
const DefaultWatchDebounce = 100 * time.Millisecond

// Store keeps the current Settings and writes changes through to disk.
type Store struct {
	fs   afero.Fs
	path string
	log  logger.Logger

	mu   sync.RWMutex
	cur  Settings
	subs []func(Settings)
}

// Open loads path from fs. A missing file yields Defaults.
func Open(fs afero.Fs, path string, l logger.Logger) (*Store, error) {
	s := &Store{fs: fs, path: path, log: logger.Or(l), cur: Defaults()}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns a snapshot of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Clone()
}

// Subscribe registers fn to be called with every new snapshot.
func (s *Store) Subscribe(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Reload re-reads the file. Fields missing from the file keep their
// default values.
func (s *Store) Reload() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("settings: read %s: %w", s.path, err)
	}
	next := Defaults()
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("settings: parse %s: %w", s.path, err)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	s.publish(next)
	return nil
}

// Update applies fn to a copy of the current settings, validates the
// result and persists it.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	s.mu.RLock()
	next := s.cur.Clone()
	s.mu.RUnlock()

	prevKey, prevInc := next.StorageKey, next.IncognitoStorageKey
	fn(&next)
	if next.StorageKey != prevKey {
		next.StorageKeyList = rememberKey(next.StorageKeyList, next.StorageKey)
	}
	if next.IncognitoStorageKey != prevInc {
		next.IncognitoStorageKeyList = rememberKey(next.IncognitoStorageKeyList, next.IncognitoStorageKey)
	}
	if err := next.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	if err := s.write(next); err != nil {
		return Settings{}, err
	}
	s.publish(next)
	return next.Clone(), nil
}

// SetDomain updates the rules for one domain key.
func (s *Store) SetDomain(key string, fn func(*DomainConfig)) (Settings, error) {
	return s.Update(func(st *Settings) {
		if st.Domains == nil {
			st.Domains = make(map[string]DomainConfig)
		}
		c := st.Domains[key]
		fn(&c)
		st.Domains[key] = c
	})
}

// RemoveDomain drops the rules for one domain key.
func (s *Store) RemoveDomain(key string) (Settings, error) {
	return s.Update(func(st *Settings) {
		delete(st.Domains, key)
	})
}

func (s *Store) publish(next Settings) {
	s.mu.Lock()
	s.cur = next
	subs := slices.Clone(s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(next.Clone())
	}
}

// write stores st atomically via a temp file and rename.
func (s *Store) write(st Settings) error {
	data, err := yaml.Marshal(&st)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("settings: write: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("settings: rename: %w", err)
	}
	return nil
}

// Watch reloads the file whenever it changes on disk until ctx is done.
// Bursts of events are coalesced over debounce. It only works for stores
// backed by the OS filesystem.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings: watch: %w", err)
	}
	defer w.Close()
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("settings: watch: %w", err)
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("settings: watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	var (
		timer  *time.Timer
		reload = make(chan struct{}, 1)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			if err := s.Reload(); err != nil {
				s.log.Warning("settings: reload failed: %v", err)
				continue
			}
			s.log.Info("settings: reloaded %s", s.path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warning("settings: watcher error: %v", err)
		}
	}
}
