// Package keyring stores the vault master key in the operating system
// keyring, with a file fallback for systems that have none.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeySize is the length of a master key in bytes.
const KeySize = 32

// KeyStore persists one master key.
type KeyStore interface {
	// GetKey returns the stored key.
	GetKey() ([]byte, error)
	// SetKey generates, stores and returns a new key.
	SetKey() ([]byte, error)
	DeleteKey() error
}

// Keyring keeps the key in the OS keyring under AppName/KeyField.
type Keyring struct {
	AppName  string
	KeyField string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// NewKeyring returns a Keyring for the given service name.
func NewKeyring(appName string) *Keyring {
	return &Keyring{
		AppName:  appName,
		KeyField: "vault",
	}
}

func (k *Keyring) SetKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := randRead(key); err != nil {
		return nil, err
	}
	if err := keyringSet(k.AppName, k.KeyField, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

func (k *Keyring) GetKey() ([]byte, error) {
	s, err := keyringGet(k.AppName, k.KeyField)
	if err != nil {
		return nil, err
	}
	return decodeKey(s)
}

func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.AppName, k.KeyField)
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid key format: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length: expected %d, got %d", KeySize, len(key))
	}
	return key, nil
}

// Load returns the first key any store holds. When none has one, a new
// key is created in the first store that accepts it.
func Load(stores ...KeyStore) ([]byte, KeyStore, error) {
	for _, s := range stores {
		if key, err := s.GetKey(); err == nil {
			return key, s, nil
		}
	}
	var errs []error
	for _, s := range stores {
		key, err := s.SetKey()
		if err == nil {
			return key, s, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, nil, errors.New("keyring: no key store")
	}
	return nil, nil, fmt.Errorf("keyring: no usable key store: %w", errors.Join(errs...))
}
