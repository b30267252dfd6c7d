//go:build !windows

package server

import (
	"fmt"
	"net"
	"os"

	"github.com/Filatest/sync-your-cookie/common"
)

// createListener listens on the unix socket and falls back to TCP on
// loopback when the socket cannot be created or SYC_FORCE_TCP=1.
func (s *Server) createListener() (net.Listener, error) {
	if common.ForceTCP() {
		s.log.Info("server: force TCP mode enabled")
		return s.listenTCP()
	}
	path := common.SocketPath()
	_ = os.Remove(path)
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		s.log.Warning("server: unix socket %s: %v, falling back to tcp", path, err)
		return s.listenTCP()
	}
	setSocketPermissions(path)
	return l, nil
}

func (s *Server) listenTCP() (net.Listener, error) {
	l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.cfg.TCPPort))
	if err != nil {
		return nil, fmt.Errorf("server: listen tcp: %w", err)
	}
	return l, nil
}
