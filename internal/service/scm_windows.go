//go:build windows

package service

import (
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

type scm struct{ m *mgr.Mgr }

type scmService struct {
	name string
	s    *mgr.Service
}

// OpenSCManager connects to the local Service Control Manager. Close the
// returned manager when done.
func OpenSCManager() (SCManagerInterface, error) {
	m, err := mgr.Connect()
	if err != nil {
		return nil, fmt.Errorf("service: connect to SCM: %w", err)
	}
	return &scm{m: m}, nil
}

func (c *scm) OpenService(name string) (ServiceInterface, error) {
	s, err := c.m.OpenService(name)
	if err != nil {
		return nil, fmt.Errorf("service: open %q: %w (%v)", name, ErrServiceNotFound, err)
	}
	return &scmService{name: name, s: s}, nil
}

func (c *scm) CreateService(name, exePath string, config ServiceConfig) (ServiceInterface, error) {
	if s, err := c.m.OpenService(name); err == nil {
		s.Close()
		return nil, ErrServiceExists
	}
	s, err := c.m.CreateService(name, exePath, mgr.Config{
		ServiceType:  windows.SERVICE_WIN32_OWN_PROCESS,
		ErrorControl: windows.SERVICE_ERROR_NORMAL,
		StartType:    config.StartType,
		DisplayName:  config.DisplayName,
		Description:  config.Description,
	}, config.Args...)
	if err != nil {
		return nil, fmt.Errorf("service: create %q: %w", name, err)
	}
	return &scmService{name: name, s: s}, nil
}

func (c *scm) Close() error { return c.m.Disconnect() }

func (h *scmService) Start() error {
	return h.wrap("start", h.s.Start())
}

func (h *scmService) Stop() error {
	_, err := h.s.Control(svc.Stop)
	return h.wrap("stop", err)
}

func (h *scmService) Delete() error {
	return h.wrap("delete", h.s.Delete())
}

func (h *scmService) Status() (ServiceStatus, error) {
	q, err := h.s.Query()
	if err != nil {
		return 0, h.wrap("query", err)
	}
	return ServiceStatus(q.State), nil
}

func (h *scmService) Close() error { return h.s.Close() }

func (h *scmService) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("service: %s %q: %w", op, h.name, err)
}
