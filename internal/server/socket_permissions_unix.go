//go:build !windows

package server

import "os"

// setSocketPermissions restricts the socket to the owning user.
func setSocketPermissions(path string) {
	_ = os.Chmod(path, 0o700)
}
