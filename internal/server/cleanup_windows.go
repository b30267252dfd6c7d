//go:build windows

package server

// cleanupSocket is a no-op: the OS removes a named pipe with its last
// handle.
func cleanupSocket() error {
	return nil
}
