package credman

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestVaultSaveLoadClear(t *testing.T) {
	fs := afero.NewMemMapFs()
	v, err := New(fs, "/cfg/"+FileName, testKey(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := v.Load()
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if got != (Account{}) {
		t.Fatalf("expected zero account, got %+v", got)
	}

	want := Account{AccountID: "acc", NamespaceID: "ns", Token: "tok-123"}
	if err := v.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := afero.ReadFile(fs, "/cfg/"+FileName)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if bytes.Contains(raw, []byte("tok-123")) {
		t.Fatal("token stored in clear text")
	}
	info, _ := fs.Stat("/cfg/" + FileName)
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("vault permissions = %o, want 600", info.Mode().Perm())
	}

	// A second vault on the same file and key sees the account.
	v2, _ := New(fs, "/cfg/"+FileName, testKey(1))
	if got, err = v2.Load(); err != nil || got != want {
		t.Fatalf("Load = %+v, %v; want %+v", got, err, want)
	}

	if err := v.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got, _ = v.Load(); got != (Account{}) {
		t.Fatalf("expected zero account after clear, got %+v", got)
	}
	if err := v.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestVaultWrongKey(t *testing.T) {
	fs := afero.NewMemMapFs()
	v, _ := New(fs, "/v", testKey(1))
	if err := v.Save(Account{AccountID: "a", NamespaceID: "n", Token: "t"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	other, _ := New(fs, "/v", testKey(2))
	if _, err := other.Load(); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
}

func TestVaultCorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/v", []byte(`{"accountId":"plain"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	v, _ := New(fs, "/v", testKey(1))
	if _, err := v.Load(); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New(afero.NewMemMapFs(), "/v", []byte("short")); err == nil {
		t.Fatal("expected error for short key")
	}
}
