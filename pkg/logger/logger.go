// Package logger provides the logging interface used by the cookie sync
// daemon, its CLI and the native messaging host. Backends include console
// output and, on Windows, the Event Log.
package logger

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Logger is what every sync component logs through. Cookie values and
// account tokens must never be passed to it.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	// Close releases the backend. Safe to call more than once.
	Close() error
}

// Level is the severity of a message.
type Level int32

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (lv Level) String() string {
	switch lv {
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("Level(%d)", int32(lv))
}

// ParseLevel accepts info, warning (or warn) and error in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// StandardLogger writes "[LEVEL] message" lines to a *log.Logger.
// Messages below the minimum level are dropped.
type StandardLogger struct {
	logger *log.Logger
	min    atomic.Int32
}

// NewStandardLogger logs every level to l.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// SetLevel drops messages below lv from now on.
func (s *StandardLogger) SetLevel(lv Level) { s.min.Store(int32(lv)) }

func (s *StandardLogger) logf(lv Level, format string, args []interface{}) {
	if int32(lv) < s.min.Load() {
		return
	}
	s.logger.Printf("["+lv.String()+"] "+format, args...)
}

func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logf(LevelInfo, format, args)
}

func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logf(LevelWarning, format, args)
}

func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logf(LevelError, format, args)
}

func (s *StandardLogger) Close() error { return nil }

// NopLogger discards everything.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (NopLogger) Info(string, ...interface{})    {}
func (NopLogger) Warning(string, ...interface{}) {}
func (NopLogger) Error(string, ...interface{})   {}
func (NopLogger) Close() error                   { return nil }

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// Or returns l, or a NopLogger when l is nil.
func Or(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
