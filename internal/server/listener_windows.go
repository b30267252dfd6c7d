//go:build windows

package server

import (
	"fmt"
	"net"

	"github.com/Filatest/sync-your-cookie/common"
	"github.com/Microsoft/go-winio"
)

// pipeSecurityDescriptor grants access to SYSTEM, Administrators and the
// user running the daemon only.
const pipeSecurityDescriptor = "D:(A;;GA;;;SY)(A;;GA;;;BA)(A;;GA;;;CO)"

// createListener listens on the named pipe and falls back to TCP on
// loopback when the pipe cannot be created or SYC_FORCE_TCP=1.
func (s *Server) createListener() (net.Listener, error) {
	if common.ForceTCP() {
		s.log.Info("server: force TCP mode enabled")
		return s.listenTCP()
	}
	path := common.PipePath()
	l, err := winio.ListenPipe(path, &winio.PipeConfig{
		SecurityDescriptor: pipeSecurityDescriptor,
	})
	if err != nil {
		s.log.Warning("server: named pipe %s: %v, falling back to tcp (firewall prompts may occur)", path, err)
		return s.listenTCP()
	}
	return l, nil
}

func (s *Server) listenTCP() (net.Listener, error) {
	l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.cfg.TCPPort))
	if err != nil {
		return nil, fmt.Errorf("server: listen tcp: %w", err)
	}
	return l, nil
}
