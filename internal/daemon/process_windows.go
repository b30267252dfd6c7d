//go:build windows

package daemon

import (
	"time"

	"golang.org/x/sys/windows"
)

const stillActive = 259

// IsProcessRunning opens pid with minimal access rights and checks its
// exit code.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)
	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == stillActive
}

// KillProcess terminates pid. Windows has no SIGTERM; callers should ask
// the daemon to stop over RPC first.
func KillProcess(pid int, timeout time.Duration) error {
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE|windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)
	if err := windows.TerminateProcess(h, 1); err != nil {
		return err
	}
	_, err = windows.WaitForSingleObject(h, uint32(timeout/time.Millisecond))
	return err
}
