package cookies

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	dir := t.TempDir()
	chromeDir, firefoxDir := filepath.Join(dir, "chrome"), filepath.Join(dir, "firefox")
	os.MkdirAll(chromeDir, 0o755)
	os.MkdirAll(firefoxDir, 0o755)

	tests := []struct {
		name    string
		path    string
		want    CookieFormat
		wantErr bool
	}{
		{"chrome", chromeFixture(t, chromeDir, 0, false, nil), FormatChrome, false},
		{"firefox", firefoxFixture(t, firefoxDir, nil), FormatFirefox, false},
		{"netscape", writeFile(t, filepath.Join(dir, "a.txt"), "# Netscape HTTP Cookie File\n"), FormatNetscape, false},
		{"netscape crlf", writeFile(t, filepath.Join(dir, "b.txt"), "# HTTP Cookie File\r\n.x\tTRUE\t/\tFALSE\t0\ta\tb\r\n"), FormatNetscape, false},
		{"short text", writeFile(t, filepath.Join(dir, "c.txt"), "hi"), FormatUnknown, true},
		{"other text", writeFile(t, filepath.Join(dir, "d.txt"), "name=value\n"), FormatUnknown, true},
		{"empty", writeFile(t, filepath.Join(dir, "e.txt"), ""), FormatUnknown, true},
		{"directory", dir, FormatUnknown, true},
		{"missing", filepath.Join(dir, "missing"), FormatUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFormat_UnknownSQLiteSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	db := openWritable(t, path)
	mustExec(t, db, `CREATE TABLE things (id INTEGER)`)
	db.Close()
	if _, err := DetectFormat(path); err == nil {
		t.Error("DetectFormat() should reject a database without a cookie table")
	}
}

func TestCookieFormatString(t *testing.T) {
	for f, want := range map[CookieFormat]string{
		FormatFirefox: "firefox", FormatChrome: "chrome", FormatNetscape: "netscape", FormatUnknown: "unknown",
	} {
		if f.String() != want {
			t.Errorf("%d.String() = %q, want %q", f, f.String(), want)
		}
	}
}
