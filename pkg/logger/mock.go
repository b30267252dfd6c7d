package logger

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is one message recorded by MockLogger.
type Entry struct {
	Level Level
	Msg   string
}

// MockLogger records messages for assertions in tests. It is safe for
// concurrent use, including from timer goroutines.
type MockLogger struct {
	mu      sync.Mutex
	entries []Entry
	closed  bool
}

func NewMockLogger() *MockLogger { return &MockLogger{} }

func (m *MockLogger) record(lv Level, format string, args []interface{}) {
	m.mu.Lock()
	m.entries = append(m.entries, Entry{Level: lv, Msg: fmt.Sprintf(format, args...)})
	m.mu.Unlock()
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.record(LevelInfo, format, args)
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.record(LevelWarning, format, args)
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.record(LevelError, format, args)
}

func (m *MockLogger) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (m *MockLogger) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Entries returns a copy of everything recorded.
func (m *MockLogger) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

func (m *MockLogger) at(lv Level) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		if e.Level == lv {
			out = append(out, e.Msg)
		}
	}
	return out
}

func (m *MockLogger) Infos() []string    { return m.at(LevelInfo) }
func (m *MockLogger) Warnings() []string { return m.at(LevelWarning) }
func (m *MockLogger) Errors() []string   { return m.at(LevelError) }

// Contains reports whether any message contains substr.
func (m *MockLogger) Contains(substr string) bool {
	for _, e := range m.Entries() {
		if strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

var _ Logger = (*MockLogger)(nil)
