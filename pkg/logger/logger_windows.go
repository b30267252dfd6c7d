//go:build windows

package logger

import (
	"fmt"

	"golang.org/x/sys/windows/svc/eventlog"
)

// Event IDs written by EventLogger.
const (
	EventIDInfo    uint32 = 1
	EventIDWarning uint32 = 2
	EventIDError   uint32 = 3
)

// EventLogWriter is the part of *eventlog.Log EventLogger writes to.
type EventLogWriter interface {
	Info(eid uint32, msg string) error
	Warning(eid uint32, msg string) error
	Error(eid uint32, msg string) error
	Close() error
}

// eventLogOpener is replaced in tests.
var eventLogOpener = func(source string) (EventLogWriter, error) {
	return eventlog.Open(source)
}

// EventLogger writes to the Windows Event Log. The source must have been
// registered, which "sycd service install" does.
type EventLogger struct {
	log EventLogWriter
}

// NewEventLogger opens the event source, usually the service name.
func NewEventLogger(source string) (*EventLogger, error) {
	w, err := eventLogOpener(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", source, err)
	}
	return &EventLogger{log: w}, nil
}

// NewEventLoggerWithWriter wraps an already open writer.
func NewEventLoggerWithWriter(w EventLogWriter) *EventLogger {
	return &EventLogger{log: w}
}

// write drops the writer's error; a full event log must not stop syncing.
func (e *EventLogger) write(lv Level, format string, args []interface{}) {
	if e.log == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	switch lv {
	case LevelInfo:
		_ = e.log.Info(EventIDInfo, msg)
	case LevelWarning:
		_ = e.log.Warning(EventIDWarning, msg)
	default:
		_ = e.log.Error(EventIDError, msg)
	}
}

func (e *EventLogger) Info(format string, args ...interface{}) {
	e.write(LevelInfo, format, args)
}

func (e *EventLogger) Warning(format string, args ...interface{}) {
	e.write(LevelWarning, format, args)
}

func (e *EventLogger) Error(format string, args ...interface{}) {
	e.write(LevelError, format, args)
}

func (e *EventLogger) Close() error {
	if e.log == nil {
		return nil
	}
	err := e.log.Close()
	e.log = nil
	return err
}

var _ Logger = (*EventLogger)(nil)
