//go:build windows

package service

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

var (
	ErrServiceExists         = errors.New("service already exists")
	ErrServiceNotFound       = errors.New("service not found")
	ErrServiceAlreadyRunning = errors.New("service is already running")
	ErrServiceNotRunning     = errors.New("service is not running")
)

// Start types accepted by ServiceConfig.
const (
	StartTypeAutomatic = uint32(mgr.StartAutomatic)
	StartTypeManual    = uint32(mgr.StartManual)
	StartTypeDisabled  = uint32(mgr.StartDisabled)
)

// ServiceStatus is the SCM state of an installed service.
type ServiceStatus uint32

const (
	StatusStopped         = ServiceStatus(svc.Stopped)
	StatusStartPending    = ServiceStatus(svc.StartPending)
	StatusStopPending     = ServiceStatus(svc.StopPending)
	StatusRunning         = ServiceStatus(svc.Running)
	StatusContinuePending = ServiceStatus(svc.ContinuePending)
	StatusPausePending    = ServiceStatus(svc.PausePending)
	StatusPaused          = ServiceStatus(svc.Paused)
)

var statusNames = map[ServiceStatus]string{
	StatusStopped:         "Stopped",
	StatusStartPending:    "Start Pending",
	StatusStopPending:     "Stop Pending",
	StatusRunning:         "Running",
	StatusContinuePending: "Continue Pending",
	StatusPausePending:    "Pause Pending",
	StatusPaused:          "Paused",
}

func (s ServiceStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", uint32(s))
}

// ServiceConfig describes the daemon service registered by Install. A zero
// StartType means automatic start.
type ServiceConfig struct {
	DisplayName string
	Description string
	StartType   uint32
	Args        []string
}

// SCManagerInterface is the part of the Service Control Manager used by
// ServiceManager. OpenService must return an error wrapping
// ErrServiceNotFound for unknown names.
type SCManagerInterface interface {
	OpenService(name string) (ServiceInterface, error)
	CreateService(name, exePath string, config ServiceConfig) (ServiceInterface, error)
	Close() error
}

// ServiceInterface is an open service handle.
type ServiceInterface interface {
	Start() error
	Stop() error
	Delete() error
	Status() (ServiceStatus, error)
	Close() error
}

// ServiceManager installs and controls the sycd service.
type ServiceManager struct {
	scm SCManagerInterface
}

func NewServiceManager(scm SCManagerInterface) *ServiceManager {
	return &ServiceManager{scm: scm}
}

// withService opens name, passes the handle and its current status to fn
// and closes the handle afterwards.
func (m *ServiceManager) withService(name string, fn func(s ServiceInterface, st ServiceStatus) error) error {
	s, err := m.scm.OpenService(name)
	if err != nil {
		return err
	}
	defer s.Close()
	st, err := s.Status()
	if err != nil {
		return err
	}
	return fn(s, st)
}

// Install registers the service. It fails with ErrServiceExists when a
// service with the same name is already registered.
func (m *ServiceManager) Install(name, exePath string, config ServiceConfig) error {
	if config.StartType == 0 {
		config.StartType = StartTypeAutomatic
	}
	s, err := m.scm.CreateService(name, exePath, config)
	if err != nil {
		return err
	}
	return s.Close()
}

// Uninstall stops the service when it is running and deletes it.
func (m *ServiceManager) Uninstall(name string) error {
	return m.withService(name, func(s ServiceInterface, st ServiceStatus) error {
		if st == StatusRunning {
			if err := s.Stop(); err != nil {
				return err
			}
		}
		return s.Delete()
	})
}

func (m *ServiceManager) Start(name string) error {
	return m.withService(name, func(s ServiceInterface, st ServiceStatus) error {
		if st == StatusRunning {
			return ErrServiceAlreadyRunning
		}
		return s.Start()
	})
}

func (m *ServiceManager) Stop(name string) error {
	return m.withService(name, func(s ServiceInterface, st ServiceStatus) error {
		if st == StatusStopped {
			return ErrServiceNotRunning
		}
		return s.Stop()
	})
}

func (m *ServiceManager) Status(name string) (status ServiceStatus, err error) {
	err = m.withService(name, func(_ ServiceInterface, st ServiceStatus) error {
		status = st
		return nil
	})
	return status, err
}
