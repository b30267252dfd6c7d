//go:build !windows

package syncclient

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"syscall"

	"github.com/Filatest/sync-your-cookie/common"
)

// dial connects over the unix socket, falling back to TCP.
func dial() (net.Conn, error) {
	path := common.SocketPath()
	if common.ForceTCP() {
		return dialFunc("tcp", tcpAddress())
	}
	conn, unixErr := dialFunc("unix", path)
	if unixErr == nil {
		return conn, nil
	}
	debugLog("unix socket %s: %v, falling back to tcp", path, unixErr)
	conn, err := dialFunc("tcp", tcpAddress())
	if err != nil {
		return nil, fmt.Errorf("unix socket error: %v; tcp error: %w", unixErr, err)
	}
	return conn, nil
}

func dialPipe(string) (net.Conn, error) {
	return nil, ErrPipeNotSupported
}

// spawnDaemon starts "sycd daemon" detached from the caller's process
// group so it outlives the CLI.
func spawnDaemon() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	cmd := exec.Command(executable, "daemon")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	_ = cmd.Process.Release()
	return nil
}
