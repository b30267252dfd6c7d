package kv

import (
	"context"
	"sync"
)

// MemStore is an in-process Store. The daemon uses it with --offline and
// tests use it in place of the HTTP client.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
	// Writes counts successful Put calls.
	Writes int
	// FailWith, when set, is returned by every call.
	FailWith error
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func memKey(acct Account, key string) string {
	return acct.AccountID + "/" + acct.NamespaceID + "/" + key
}

func (s *MemStore) Get(_ context.Context, acct Account, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return "", false, s.FailWith
	}
	v, ok := s.values[memKey(acct, key)]
	return v, ok, nil
}

func (s *MemStore) Put(_ context.Context, acct Account, key, value string) (*WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return &WriteResult{Success: false}, s.FailWith
	}
	s.values[memKey(acct, key)] = value
	s.Writes++
	return &WriteResult{Success: true}, nil
}

// WriteCount returns the number of successful writes so far.
func (s *MemStore) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Writes
}

// SetFailure makes subsequent calls fail with err; nil clears it.
func (s *MemStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailWith = err
}

var (
	_ Store = (*MemStore)(nil)
	_ Store = (*Client)(nil)
)
