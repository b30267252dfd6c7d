package cookies

import (
	"fmt"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	_ "modernc.org/sqlite"
)

// ParseFirefox reads cookies from a Firefox cookies.sqlite file for the given domain.
// The dbPath should be a path to a copied (not in-use) SQLite database.
// Expired cookies are skipped.
func ParseFirefox(dbPath string, domain string) ([]cookiemap.Cookie, error) {
	db, err := openSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("error: cannot open Firefox cookie database: %w", err)
	}
	defer db.Close()

	sameSite := "-1"
	if hasColumn(db, "moz_cookies", "sameSite") {
		sameSite = "sameSite"
	}

	rows, err := db.Query(`
        SELECT name, value, host, path, expiry, isSecure, isHttpOnly, `+sameSite+`
        FROM moz_cookies
        WHERE (host = ? OR host = ? OR host LIKE ?)
          AND expiry > ?
        ORDER BY path DESC, name ASC
    `, domain, "."+domain, "%."+domain, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("error: failed to query Firefox cookies: %w", err)
	}
	defer rows.Close()

	var cookies []cookiemap.Cookie
	for rows.Next() {
		var (
			name, value, host, path  string
			expiry                   int64
			isSecure, isHttpOnly, ss int
		)
		if err := rows.Scan(&name, &value, &host, &path, &expiry, &isSecure, &isHttpOnly, &ss); err != nil {
			return nil, fmt.Errorf("error: failed to scan Firefox cookie row: %w", err)
		}
		cookies = append(cookies, newCookie(name, value, host, path, expiry, isSecure != 0, isHttpOnly != 0, sameSiteOf(ss)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate Firefox cookie rows: %w", err)
	}
	return cookies, nil
}
