package syncclient

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/Filatest/sync-your-cookie/common"
)

// dialFunc is replaced in tests.
var dialFunc = func(network, address string) (net.Conn, error) {
	return net.DialTimeout(network, address, common.DefaultDialTimeout)
}

// tcpAddress returns the loopback address of the TCP fallback transport.
func tcpAddress() string {
	return fmt.Sprintf("%s:%d", common.TCPHost, common.TCPPort())
}

func debugLog(format string, args ...any) {
	if common.Debug() {
		log.Printf(format, args...)
	}
}

const (
	daemonStartTimeout = 3 * time.Second
	socketPollInterval = 50 * time.Millisecond
)

// isDaemonRunning reports whether the daemon accepts connections.
func isDaemonRunning() bool {
	conn, err := dial()
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// ensureDaemon starts the daemon unless one is already running and waits
// for it to accept connections.
func ensureDaemon() error {
	if isDaemonRunning() {
		return nil
	}
	if err := spawnDaemon(); err != nil {
		return err
	}
	return waitForDaemon(daemonStartTimeout)
}

func waitForDaemon(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if isDaemonRunning() {
			return nil
		}
		time.Sleep(socketPollInterval)
	}
	return fmt.Errorf("daemon failed to start within %v", timeout)
}
