package keyring

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

// stubKeyring swaps the go-keyring functions for an in-memory map.
func stubKeyring(t *testing.T) map[string]string {
	t.Helper()
	origSet, origGet, origDelete, origRand := keyringSet, keyringGet, keyringDelete, randRead
	t.Cleanup(func() {
		keyringSet, keyringGet, keyringDelete, randRead = origSet, origGet, origDelete, origRand
	})
	store := map[string]string{}
	keyringSet = func(app, key, value string) error {
		store[app+"/"+key] = value
		return nil
	}
	keyringGet = func(app, key string) (string, error) {
		v, ok := store[app+"/"+key]
		if !ok {
			return "", errors.New("secret not found in keyring")
		}
		return v, nil
	}
	keyringDelete = func(app, key string) error {
		delete(store, app+"/"+key)
		return nil
	}
	return store
}

func TestKeyringSetGetDelete(t *testing.T) {
	store := stubKeyring(t)
	randRead = func(b []byte) (int, error) {
		for i := range b {
			b[i] = byte(i)
		}
		return len(b), nil
	}

	kr := NewKeyring("sync-your-cookie")
	key, err := kr.SetKey()
	if err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	if len(key) != KeySize {
		t.Fatalf("expected %d-byte key, got %d", KeySize, len(key))
	}
	if store["sync-your-cookie/vault"] != hex.EncodeToString(key) {
		t.Fatalf("unexpected stored value %q", store["sync-your-cookie/vault"])
	}

	got, err := kr.GetKey()
	if err != nil {
		t.Fatalf("GetKey: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatalf("roundtrip failed: set %x, got %x", key, got)
	}

	if err := kr.DeleteKey(); err != nil {
		t.Fatalf("DeleteKey: %v", err)
	}
	if _, err := kr.GetKey(); err == nil {
		t.Fatal("expected error after delete")
	}
}

func TestKeyringSetError(t *testing.T) {
	stubKeyring(t)
	kr := NewKeyring("app")

	randRead = func(b []byte) (int, error) { return 0, errors.New("rand fail") }
	if _, err := kr.SetKey(); err == nil {
		t.Fatalf("expected rand error")
	}

	randRead = func(b []byte) (int, error) { return len(b), nil }
	keyringSet = func(string, string, string) error { return errors.New("set fail") }
	if _, err := kr.SetKey(); err == nil {
		t.Fatalf("expected set error")
	}
}

func TestKeyringGetInvalid(t *testing.T) {
	stubKeyring(t)
	kr := NewKeyring("app")
	for _, v := range []string{"not-valid-hex!", "aabbccdd"} {
		keyringGet = func(string, string) (string, error) { return v, nil }
		if _, err := kr.GetKey(); err == nil {
			t.Fatalf("expected error for stored value %q", v)
		}
	}
}

type failingStore struct{ err error }

func (f failingStore) GetKey() ([]byte, error) { return nil, f.err }
func (f failingStore) SetKey() ([]byte, error) { return nil, f.err }
func (f failingStore) DeleteKey() error { return f.err }

func TestLoad(t *testing.T) {
	stubKeyring(t)
	kr := NewKeyring("app")

	// Nothing stored: the key is created in the first store.
	key, ks, err := Load(kr, failingStore{errors.New("unused")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ks != kr {
		t.Fatalf("expected key to be created in the keyring")
	}

	// Existing key is returned as is.
	again, _, err := Load(kr)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(key, again) {
		t.Fatal("expected the stored key to be reused")
	}
}

func TestLoadFallsBack(t *testing.T) {
	fallback := newMemFileStore(t)
	key, ks, err := Load(failingStore{errors.New("dbus unavailable")}, fallback)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ks != fallback || len(key) != KeySize {
		t.Fatalf("expected the file store to hold a new key, got %T", ks)
	}
}

func TestLoadAllFail(t *testing.T) {
	if _, _, err := Load(failingStore{errors.New("a")}, failingStore{errors.New("b")}); err == nil {
		t.Fatal("expected error when no store works")
	}
	if _, _, err := Load(); err == nil {
		t.Fatal("expected error without stores")
	}
}
