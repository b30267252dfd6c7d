package cookies

import (
	"bufio"
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// sqliteMagic is the first 16 bytes of any SQLite database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// DetectFormat determines the cookie store format of the file at path from
// its header: SQLite databases are told apart by their cookie table, text
// files by the Netscape header line.
func DetectFormat(path string) (CookieFormat, error) {
	if err := checkSource(path); err != nil {
		return FormatUnknown, err
	}
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("error: cannot open cookie file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	header, err := br.Peek(len(sqliteMagic))
	if err != nil && err != io.EOF {
		return FormatUnknown, fmt.Errorf("error: cannot read cookie file: %w", err)
	}
	if bytes.Equal(header, sqliteMagic) {
		return detectSQLiteFormat(path)
	}

	first, _ := br.ReadString('\n')
	switch strings.TrimRight(first, "\r\n") {
	case netscapeHeader, "# HTTP Cookie File":
		return FormatNetscape, nil
	}
	return FormatUnknown, fmt.Errorf("error: unsupported cookie database schema at %s", path)
}

func detectSQLiteFormat(path string) (CookieFormat, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return FormatUnknown, fmt.Errorf("error: cannot open SQLite database: %w", err)
	}
	defer db.Close()

	for _, t := range []struct {
		table  string
		format CookieFormat
	}{
		{"moz_cookies", FormatFirefox},
		{"cookies", FormatChrome},
	} {
		var name string
		if db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, t.table).Scan(&name) == nil {
			return t.format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("error: unsupported cookie database schema at %s", path)
}
