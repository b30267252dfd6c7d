package logger

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
)

func TestStandardLogger_Levels(t *testing.T) {
	tests := []struct {
		name   string
		log    func(*StandardLogger)
		prefix string
		msg    string
	}{
		{"info", func(l *StandardLogger) { l.Info("pushed %d cookies", 12) }, "[INFO] ", "pushed 12 cookies"},
		{"warning", func(l *StandardLogger) { l.Warning("decode %s failed", "compact") }, "[WARNING] ", "decode compact failed"},
		{"error", func(l *StandardLogger) { l.Error("flush failed: %v", "Token is empty") }, "[ERROR] ", "flush failed: Token is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewStandardLogger(log.New(&buf, "", 0)))
			if got := buf.String(); got != tt.prefix+tt.msg+"\n" {
				t.Errorf("got %q, want %q", got, tt.prefix+tt.msg+"\n")
			}
		})
	}
}

func TestStandardLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewStandardLogger(log.New(&buf, "", 0))
	l.SetLevel(LevelWarning)

	l.Info("dropped")
	l.Warning("kept %d", 1)
	l.Error("kept %d", 2)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARNING] kept 1") || !strings.Contains(out, "[ERROR] kept 2") {
		t.Errorf("missing messages: %q", out)
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"warn":    LevelWarning,
		"Warning": LevelWarning,
		" error ": LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("debug"); err == nil {
		t.Error("expected error for unknown level")
	}
	if LevelError.String() != "ERROR" || Level(9).String() != "Level(9)" {
		t.Error("unexpected Level.String output")
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("test")
	l.Warning("test")
	l.Error("test")
	if err := l.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestMockLogger_Records(t *testing.T) {
	m := NewMockLogger()
	m.Info("info %d", 1)
	m.Warning("warn %s", "test")
	m.Info("info %d", 2)
	m.Error("err %v", "fail")

	if got := m.Infos(); len(got) != 2 || got[0] != "info 1" || got[1] != "info 2" {
		t.Errorf("Infos = %q", got)
	}
	if got := m.Warnings(); len(got) != 1 || got[0] != "warn test" {
		t.Errorf("Warnings = %q", got)
	}
	if got := m.Errors(); len(got) != 1 || got[0] != "err fail" {
		t.Errorf("Errors = %q", got)
	}
	entries := m.Entries()
	if len(entries) != 4 || entries[1].Level != LevelWarning {
		t.Errorf("Entries = %+v", entries)
	}
	if !m.Contains("fail") || m.Contains("missing") {
		t.Error("Contains mismatch")
	}

	if m.Closed() {
		t.Error("Closed before Close")
	}
	_ = m.Close()
	if !m.Closed() {
		t.Error("Closed should be true after Close")
	}
}

func TestMockLogger_ConcurrentUse(t *testing.T) {
	m := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Warning("w%d", i)
			m.Error("e%d", i)
		}(i)
	}
	wg.Wait()
	if got := len(m.Warnings()); got != 20 {
		t.Errorf("expected 20 warnings, got %d", got)
	}
	if got := len(m.Errors()); got != 20 {
		t.Errorf("expected 20 errors, got %d", got)
	}
}

type failingCloser struct {
	*MockLogger
	err error
}

func (f failingCloser) Close() error {
	_ = f.MockLogger.Close()
	return f.err
}

func TestMultiLogger_Broadcasts(t *testing.T) {
	a, b := NewMockLogger(), NewMockLogger()
	multi := NewMultiLogger(a, nil, b)

	multi.Info("pushed %s", "github.com")
	multi.Warning("slow")
	multi.Error("failed")

	for i, m := range []*MockLogger{a, b} {
		if len(m.Entries()) != 3 {
			t.Errorf("logger %d got %d entries", i, len(m.Entries()))
		}
		if got := m.Infos(); len(got) != 1 || got[0] != "pushed github.com" {
			t.Errorf("logger %d infos = %q", i, got)
		}
	}
}

func TestMultiLogger_CloseJoinsErrors(t *testing.T) {
	e1, e2 := errors.New("first"), errors.New("second")
	ok := NewMockLogger()
	f1 := failingCloser{NewMockLogger(), e1}
	f2 := failingCloser{NewMockLogger(), e2}

	err := NewMultiLogger(f1, ok, f2).Close()
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Errorf("Close = %v, want both errors", err)
	}
	if !ok.Closed() || !f2.Closed() {
		t.Error("every backend should be closed")
	}

	if err := NewMultiLogger().Close(); err != nil {
		t.Errorf("empty Close = %v", err)
	}
}

func TestOr(t *testing.T) {
	if _, ok := Or(nil).(*NopLogger); !ok {
		t.Error("Or(nil) should return a NopLogger")
	}
	m := NewMockLogger()
	if Or(m) != Logger(m) {
		t.Error("Or should return the given logger")
	}
}
