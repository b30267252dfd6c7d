// Package mirror is the process-local cache of the last known cookie map
// for each plane, plus the per-domain push/pull status flags.
package mirror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	_ "modernc.org/sqlite"
)

// FileName is the mirror database name inside the config directory.
const FileName = "mirror.db"

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    plane      TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS domain_status (
    domain     TEXT PRIMARY KEY,
    pushing    INTEGER NOT NULL DEFAULT 0,
    pulling    INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL
);`

// Status is the sync state of one domain.
type Status struct {
	Domain  string `json:"domain"`
	Pushing bool   `json:"pushing"`
	Pulling bool   `json:"pulling"`
}

// Store is a sqlite backed mirror. The zero value is not usable, call Open.
type Store struct {
	db  *sql.DB
	log logger.Logger

	// cache avoids decoding the snapshot on every read.
	mu    sync.RWMutex
	cache map[cookiemap.Plane]*cookiemap.CookiesMap
}

// Open opens or creates the mirror database at path. Use ":memory:" for
// a throwaway store.
func Open(path string, l logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("mirror: open %s: %w", path, err)
	}
	// sqlite allows one writer, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("mirror: init schema: %w", err)
	}
	return &Store{
		db:    db,
		log:   logger.Or(l),
		cache: make(map[cookiemap.Plane]*cookiemap.CookiesMap),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the snapshot for plane. A missing or unreadable snapshot
// yields an empty map.
func (s *Store) Load(ctx context.Context, plane cookiemap.Plane) (*cookiemap.CookiesMap, error) {
	s.mu.RLock()
	m, ok := s.cache[plane]
	s.mu.RUnlock()
	if ok {
		return m, nil
	}
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE plane = ?`, plane.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return cookiemap.Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("mirror: load %s: %w", plane, err)
	}
	m = cookiemap.Decode(payload, cookiemap.EncodingJSON, s.log)
	s.mu.Lock()
	s.cache[plane] = m
	s.mu.Unlock()
	return m, nil
}

// Save replaces the snapshot for plane.
func (s *Store) Save(ctx context.Context, plane cookiemap.Plane, m *cookiemap.CookiesMap) error {
	payload, err := cookiemap.Encode(m, cookiemap.EncodingJSON)
	if err != nil {
		return fmt.Errorf("mirror: encode %s: %w", plane, err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO snapshots (plane, payload, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(plane) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		plane.String(), payload, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("mirror: save %s: %w", plane, err)
	}
	s.mu.Lock()
	s.cache[plane] = m
	s.mu.Unlock()
	return nil
}

// LocalStorageItems returns the items stored for domain in plane's
// snapshot.
func (s *Store) LocalStorageItems(ctx context.Context, plane cookiemap.Plane, domain string) []cookiemap.LocalStorageItem {
	m, err := s.Load(ctx, plane)
	if err != nil {
		s.log.Warning("mirror: %v", err)
		return nil
	}
	if e := m.Entry(domain); e != nil {
		return e.LocalStorageItems
	}
	return nil
}

func (s *Store) setFlag(ctx context.Context, column, domain string, v bool) error {
	flag := 0
	if v {
		flag = 1
	}
	q := fmt.Sprintf(`
        INSERT INTO domain_status (domain, %[1]s, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(domain) DO UPDATE SET %[1]s = excluded.%[1]s, updated_at = excluded.updated_at`, column)
	if _, err := s.db.ExecContext(ctx, q, domain, flag, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("mirror: set %s for %s: %w", column, domain, err)
	}
	return nil
}

// SetPushing marks domain as being pushed or not.
func (s *Store) SetPushing(ctx context.Context, domain string, v bool) error {
	return s.setFlag(ctx, "pushing", domain, v)
}

// SetPulling marks domain as being pulled or not.
func (s *Store) SetPulling(ctx context.Context, domain string, v bool) error {
	return s.setFlag(ctx, "pulling", domain, v)
}

// Status returns the flags of domain.
func (s *Store) Status(ctx context.Context, domain string) (Status, error) {
	st := Status{Domain: domain}
	err := s.db.QueryRowContext(ctx, `SELECT pushing, pulling FROM domain_status WHERE domain = ?`, domain).
		Scan(&st.Pushing, &st.Pulling)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("mirror: status %s: %w", domain, err)
	}
	return st, nil
}

// AnyPushing reports whether some domain is currently being pushed.
func (s *Store) AnyPushing(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM domain_status WHERE pushing = 1`).Scan(&n); err != nil {
		return false, fmt.Errorf("mirror: pushing count: %w", err)
	}
	return n > 0, nil
}

// ResetStatus clears every flag. The daemon calls it on start so a crash
// mid-push does not leave domains stuck.
func (s *Store) ResetStatus(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE domain_status SET pushing = 0, pulling = 0`); err != nil {
		return fmt.Errorf("mirror: reset status: %w", err)
	}
	return nil
}
