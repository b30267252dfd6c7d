//go:build windows

package syncclient

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Microsoft/go-winio"
)

// dialPipeFunc is replaced in tests.
var dialPipeFunc = func(ctx context.Context, path string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, path)
}

func dialPipe(path string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), common.DefaultDialTimeout)
	defer cancel()
	return dialPipeFunc(ctx, path)
}

// dial connects over the named pipe, falling back to TCP.
func dial() (net.Conn, error) {
	if common.ForceTCP() {
		return dialFunc("tcp", tcpAddress())
	}
	path := common.PipePath()
	conn, pipeErr := dialPipe(path)
	if pipeErr == nil {
		return conn, nil
	}
	debugLog("named pipe %s: %v, falling back to tcp", path, pipeErr)
	conn, err := dialFunc("tcp", tcpAddress())
	if err != nil {
		return nil, fmt.Errorf("named pipe error: %v; tcp error: %w", pipeErr, err)
	}
	return conn, nil
}

func spawnDaemon() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	cmd := exec.Command(executable, "daemon")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	_ = cmd.Process.Release()
	return nil
}
