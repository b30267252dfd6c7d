// Package cookies reads cookies out of local browser profiles so they can
// be pushed to the remote store without the extension, and writes stored
// cookies back out in the Netscape format understood by curl and wget.
//
// Firefox (moz_cookies) and Chrome-family (cookies) SQLite databases are
// read from a temporary copy. Chrome values encrypted with the "Safe
// Storage" key are decrypted on Linux and macOS; Windows DPAPI values are
// skipped. Cookie values are never logged.
package cookies
