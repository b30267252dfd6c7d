package cookies

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	_ "modernc.org/sqlite"
)

func unixToChrome(unixSec int64) int64 {
	return (unixSec + chromeEpochOffsetSeconds) * 1_000_000
}

type chromeRow struct {
	Name       string
	Value      string
	Encrypted  []byte
	HostKey    string
	Path       string
	ExpiresUTC int64
	Secure     int
	HTTPOnly   int
	SameSite   int
}

// chromeFixture writes a Chrome Cookies database. metaVersion 0 leaves out
// the meta table; legacy leaves out the samesite column.
func chromeFixture(t *testing.T, dir string, metaVersion int, legacy bool, rows []chromeRow) string {
	t.Helper()
	dbPath := filepath.Join(dir, "Cookies")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	sameSiteCol := ",\n        samesite INTEGER NOT NULL DEFAULT -1"
	if legacy {
		sameSiteCol = ""
	}
	mustExec(t, db, `CREATE TABLE cookies (
        creation_utc INTEGER NOT NULL,
        host_key TEXT NOT NULL,
        name TEXT NOT NULL,
        value TEXT NOT NULL,
        encrypted_value BLOB NOT NULL DEFAULT x'',
        path TEXT NOT NULL DEFAULT '/',
        expires_utc INTEGER NOT NULL DEFAULT 0,
        is_secure INTEGER NOT NULL DEFAULT 0,
        is_httponly INTEGER NOT NULL DEFAULT 0`+sameSiteCol+`
    )`)
	if metaVersion > 0 {
		mustExec(t, db, `CREATE TABLE meta (key LONGVARCHAR NOT NULL UNIQUE PRIMARY KEY, value LONGVARCHAR)`)
		mustExec(t, db, `INSERT INTO meta (key, value) VALUES ('version', ?)`, strconv.Itoa(metaVersion))
	}
	for _, r := range rows {
		enc := r.Encrypted
		if enc == nil {
			enc = []byte{}
		}
		if legacy {
			mustExec(t, db, `INSERT INTO cookies (creation_utc, host_key, name, value, encrypted_value, path, expires_utc, is_secure, is_httponly)
                VALUES (0, ?, ?, ?, ?, ?, ?, ?, ?)`, r.HostKey, r.Name, r.Value, enc, r.Path, r.ExpiresUTC, r.Secure, r.HTTPOnly)
			continue
		}
		mustExec(t, db, `INSERT INTO cookies (creation_utc, host_key, name, value, encrypted_value, path, expires_utc, is_secure, is_httponly, samesite)
            VALUES (0, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r.HostKey, r.Name, r.Value, enc, r.Path, r.ExpiresUTC, r.Secure, r.HTTPOnly, r.SameSite)
	}
	return dbPath
}

type firefoxRow struct {
	Name     string
	Value    string
	Host     string
	Path     string
	Expiry   int64
	Secure   int
	HTTPOnly int
	SameSite int
}

func firefoxFixture(t *testing.T, dir string, rows []firefoxRow) string {
	t.Helper()
	dbPath := filepath.Join(dir, "cookies.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	mustExec(t, db, `CREATE TABLE moz_cookies (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        value TEXT NOT NULL,
        host TEXT NOT NULL,
        path TEXT NOT NULL DEFAULT '/',
        expiry INTEGER NOT NULL DEFAULT 0,
        isSecure INTEGER NOT NULL DEFAULT 0,
        isHttpOnly INTEGER NOT NULL DEFAULT 0,
        sameSite INTEGER NOT NULL DEFAULT 0
    )`)
	for _, r := range rows {
		mustExec(t, db, `INSERT INTO moz_cookies (name, value, host, path, expiry, isSecure, isHttpOnly, sameSite) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Name, r.Value, r.Host, r.Path, r.Expiry, r.Secure, r.HTTPOnly, r.SameSite)
	}
	return dbPath
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// encryptChrome produces an encrypted_value the way Chromium does.
func encryptChrome(t *testing.T, prefix string, key []byte, plain []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	n := aes.BlockSize - len(plain)%aes.BlockSize
	padded := append(bytes.Clone(plain), bytes.Repeat([]byte{byte(n)}, n)...)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, []byte(chromeIV)).CryptBlocks(out, padded)
	return append([]byte(prefix), out...)
}

func openWritable(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}
