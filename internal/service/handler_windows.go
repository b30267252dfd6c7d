//go:build windows

// Package service runs the sync daemon as a Windows service and manages
// its registration with the Service Control Manager.
package service

import (
	"context"
	"time"

	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"golang.org/x/sys/windows/svc"
)

const acceptedCommands = svc.AcceptStop | svc.AcceptShutdown

// startGrace is how long Execute waits for an immediate start failure
// before reporting the service as running.
const startGrace = 50 * time.Millisecond

// Runner is the part of daemon.Runner the handler drives.
type Runner interface {
	// Start blocks until the daemon stops.
	Start(ctx context.Context) error
	Shutdown() error
	IsRunning() bool
}

// Handler implements svc.Handler for the daemon.
type Handler struct {
	runner Runner
	log    logger.Logger
}

// NewHandler creates a handler running runner. A nil logger discards
// messages.
func NewHandler(runner Runner, l logger.Logger) *Handler {
	return &Handler{runner: runner, log: logger.Or(l)}
}

// Execute implements svc.Handler. Service start arguments are ignored;
// the daemon reads its configuration from the environment and the config
// directory.
//
//	StartPending -> Running -> StopPending -> Stopped
func (h *Handler) Execute(_ []string, requests <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	status <- svc.Status{State: svc.StartPending}
	h.log.Info("service starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startErr := make(chan error, 1)
	go func() { startErr <- h.runner.Start(ctx) }()

	select {
	case err := <-startErr:
		if err != nil {
			h.log.Error("service failed to start: %v", err)
			status <- svc.Status{State: svc.Stopped}
			return false, 1
		}
		status <- svc.Status{State: svc.Stopped}
		return false, 0
	case <-time.After(startGrace):
	}

	status <- svc.Status{State: svc.Running, Accepts: acceptedCommands}
	h.log.Info("service running")

	for {
		select {
		case req, ok := <-requests:
			if !ok {
				return false, 0
			}
			switch req.Cmd {
			case svc.Interrogate:
				status <- req.CurrentStatus
			case svc.Stop, svc.Shutdown:
				return h.stop(status, cancel)
			}
		case err := <-startErr:
			// The daemon stopped on its own, e.g. daemon.stop over RPC.
			if err != nil {
				h.log.Error("daemon exited: %v", err)
				status <- svc.Status{State: svc.Stopped}
				return false, 1
			}
			h.log.Info("daemon exited")
			status <- svc.Status{State: svc.Stopped}
			return false, 0
		}
	}
}

func (h *Handler) stop(status chan<- svc.Status, cancel context.CancelFunc) (bool, uint32) {
	h.log.Info("service stopping")
	status <- svc.Status{State: svc.StopPending}
	cancel()
	if err := h.runner.Shutdown(); err != nil && h.runner.IsRunning() {
		h.log.Error("service shutdown: %v", err)
		status <- svc.Status{State: svc.Stopped}
		return false, 1
	}
	h.log.Info("service stopped")
	status <- svc.Status{State: svc.Stopped}
	return false, 0
}

// AcceptedCommands returns the service commands the handler accepts.
func (h *Handler) AcceptedCommands() svc.Accepted {
	return acceptedCommands
}

// IsWindowsService reports whether the process was started by the SCM.
func IsWindowsService() (bool, error) {
	return svc.IsWindowsService()
}

// Run runs the handler as service name until the SCM stops it.
func Run(name string, h *Handler) error {
	return svc.Run(name, h)
}
