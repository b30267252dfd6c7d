// Package credman keeps the remote store credentials encrypted on disk.
// The master key lives in the OS keyring, or in a 0600 file next to the
// vault when no keyring is available.
package credman

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Filatest/sync-your-cookie/pkg/credman/encryption"
	"github.com/Filatest/sync-your-cookie/pkg/credman/keyring"
	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/spf13/afero"
)

// FileName is the vault file inside the config directory.
const FileName = "accounts.enc"

// additionalData binds sealed contents to their purpose.
var additionalData = []byte("sync-your-cookie/account")

// ErrKeyMismatch is returned when the vault exists but cannot be opened
// with the current master key, e.g. after the keyring was reset.
var ErrKeyMismatch = errors.New("credman: vault cannot be decrypted with the current key")

// Account holds the remote store credentials.
type Account struct {
	AccountID   string `json:"accountId"`
	NamespaceID string `json:"namespaceId"`
	Token       string `json:"token"`
}

// Vault stores one Account encrypted at path.
type Vault struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	key  []byte
}

// New returns a Vault at path sealed with key.
func New(fs afero.Fs, path string, key []byte) (*Vault, error) {
	if len(key) != keyring.KeySize {
		return nil, fmt.Errorf("credman: key must be %d bytes, got %d", keyring.KeySize, len(key))
	}
	return &Vault{fs: fs, path: path, key: key}, nil
}

// Open loads the master key for appName, creating one if needed, and
// returns the vault in dir.
func Open(fs afero.Fs, dir, appName string, l logger.Logger) (*Vault, error) {
	l = logger.Or(l)
	key, ks, err := keyring.Load(keyring.NewKeyring(appName), keyring.NewFileKeyStore(fs, dir))
	if err != nil {
		return nil, err
	}
	if _, ok := ks.(*keyring.FileKeyStore); ok {
		l.Warning("credman: system keyring unavailable, master key kept in %s", dir)
	}
	return New(fs, filepath.Join(dir, FileName), key)
}

// Load returns the stored account, or the zero Account if none is stored.
func (v *Vault) Load() (Account, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := afero.ReadFile(v.fs, v.path)
	if errors.Is(err, os.ErrNotExist) {
		return Account{}, nil
	}
	if err != nil {
		return Account{}, fmt.Errorf("credman: read vault: %w", err)
	}
	plain, err := encryption.Open(data, v.key, additionalData)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}
	var a Account
	if err := json.Unmarshal(plain, &a); err != nil {
		return Account{}, fmt.Errorf("credman: decode vault: %w", err)
	}
	return a, nil
}

// Save replaces the stored account.
func (v *Vault) Save(a Account) error {
	plain, err := json.Marshal(a)
	if err != nil {
		return err
	}
	sealed, err := encryption.Seal(plain, v.key, additionalData)
	if err != nil {
		return fmt.Errorf("credman: seal vault: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.fs.MkdirAll(filepath.Dir(v.path), 0o700); err != nil {
		return fmt.Errorf("credman: create vault dir: %w", err)
	}
	return keyring.WriteFileAtomic(v.fs, v.path, sealed, 0o600)
}

// Clear removes the stored account.
func (v *Vault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.fs.Remove(v.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credman: remove vault: %w", err)
	}
	return nil
}
