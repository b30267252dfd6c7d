//go:build windows

package service

import "golang.org/x/sys/windows/svc/eventlog"

// RegisterEventSource registers name as a Windows Event Log source, so
// logger.NewEventLogger can open it.
func RegisterEventSource(name string) error {
	return eventlog.InstallAsEventCreate(name, eventlog.Error|eventlog.Warning|eventlog.Info)
}

// RemoveEventSource removes the event source registered for name.
func RemoveEventSource(name string) error {
	return eventlog.Remove(name)
}
