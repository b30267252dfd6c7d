package cookies

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/Filatest/sync-your-cookie/internal/cookiemap"
	_ "modernc.org/sqlite"
)

// chromeEpochOffsetSeconds is the number of seconds between the Windows NT epoch
// (1601-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01 00:00:00 UTC).
const chromeEpochOffsetSeconds int64 = 11_644_473_600

// chromeToUnix converts a Chrome timestamp (microseconds since 1601-01-01)
// to a Unix timestamp (seconds since 1970-01-01). Zero stays zero.
func chromeToUnix(chromeUSec int64) int64 {
	if chromeUSec == 0 {
		return 0
	}
	return (chromeUSec / 1_000_000) - chromeEpochOffsetSeconds
}

func openSQLite(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite", fmt.Sprintf("file:%s?immutable=1", dbPath))
}

// hasColumn reports whether table has the named column. Older Chrome
// databases lack samesite and meta versions.
func hasColumn(db *sql.DB, table, column string) bool {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n)
	return err == nil && n > 0
}

// chromeMetaVersion reads the schema version from the meta table, or 0.
func chromeMetaVersion(db *sql.DB) int {
	var v string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&v); err != nil {
		return 0
	}
	n, _ := strconv.Atoi(v)
	return n
}

// ParseChrome reads cookies for domain from a copied Chrome Cookies SQLite
// file. Encrypted values are decrypted with keys; cookies that cannot be
// decrypted are counted in skipped. Expired cookies are left out, session
// cookies are kept.
func ParseChrome(dbPath string, domain string, keys chromeKeys) (cookies []cookiemap.Cookie, skipped int, err error) {
	db, err := openSQLite(dbPath)
	if err != nil {
		return nil, 0, fmt.Errorf("error: cannot open Chrome cookie database: %w", err)
	}
	defer db.Close()

	sameSite := "-1"
	if hasColumn(db, "cookies", "samesite") {
		sameSite = "samesite"
	}
	metaVersion := chromeMetaVersion(db)
	nowChrome := (time.Now().Unix() + chromeEpochOffsetSeconds) * 1_000_000

	rows, err := db.Query(`
        SELECT name, value, encrypted_value, host_key, path, expires_utc, is_secure, is_httponly, `+sameSite+`
        FROM cookies
        WHERE (host_key = ? OR host_key = ? OR host_key LIKE ?)
          AND (expires_utc = 0 OR expires_utc > ?)
        ORDER BY path DESC, name ASC
    `, domain, "."+domain, "%."+domain, nowChrome)
	if err != nil {
		return nil, 0, fmt.Errorf("error: failed to query Chrome cookies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name, value, hostKey, path string
			encrypted                  []byte
			expiresUTC                 int64
			isSecure, isHttpOnly, ss   int
		)
		if err := rows.Scan(&name, &value, &encrypted, &hostKey, &path, &expiresUTC, &isSecure, &isHttpOnly, &ss); err != nil {
			return nil, 0, fmt.Errorf("error: failed to scan Chrome cookie row: %w", err)
		}
		if value == "" && len(encrypted) > 0 {
			value, err = keys.decrypt(encrypted, metaVersion)
			if err != nil {
				skipped++
				continue
			}
		}
		cookies = append(cookies, newCookie(name, value, hostKey, path,
			chromeToUnix(expiresUTC), isSecure != 0, isHttpOnly != 0, sameSiteOf(ss)))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error: failed to iterate Chrome cookie rows: %w", err)
	}
	return cookies, skipped, nil
}
