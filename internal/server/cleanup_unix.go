//go:build !windows

package server

import (
	"os"

	"github.com/Filatest/sync-your-cookie/common"
)

// cleanupSocket removes the unix socket file if it exists.
func cleanupSocket() error {
	if err := os.Remove(common.SocketPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
